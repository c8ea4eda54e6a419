// Command calibrate searches for the broadphase grid cell size that
// minimizes the average number of candidates the detector examines per
// particle, for a given particle count and broadphase method. It is a
// tuning tool: it never touches solver or detector semantics, only the
// cell_size config value traces are later recorded under.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/tccd-sim/collider/config"
	"github.com/tccd-sim/collider/detector"
)

func main() {
	configPath := flag.String("config", "", "base config YAML file (empty = use embedded defaults)")
	methodFlag := flag.String("method", "cell-list", "broadphase method to calibrate: cell-list, tccd, swept-aabb")
	seeds := flag.Int("seeds", 5, "number of particle scatter seeds averaged per evaluation")
	maxEvals := flag.Int("max-evals", 60, "maximum number of CMA-ES evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "output directory for the eval log and best config (required)")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("-output is required")
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	method, ok := detector.ParseMethod(*methodFlag)
	if !ok {
		log.Fatalf("invalid -method %q: want cell-list, tccd, or swept-aabb", *methodFlag)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector(baseCfg.Physics.GridCellSize)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	objective := NewObjective(method, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			clamped := params.Clamp(raw)
			return objective.Evaluate(clamped[0])
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	cmaMethod := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()
	logWriter.Write([]string{"eval", "avg_candidates", "grid_cell_size"})

	evalCount := 0
	bestFitness := 1e18
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		raw := params.Denormalize(x)
		clamped := params.Clamp(raw)
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = append([]float64(nil), clamped...)
		}

		logWriter.Write([]string{
			strconv.Itoa(evalCount),
			fmt.Sprintf("%.6f", fitness),
			fmt.Sprintf("%.6f", clamped[0]),
		})
		logWriter.Flush()

		fmt.Printf("eval %d/%d: avg_candidates=%.3f cell_size=%.3f (best=%.3f)\n",
			evalCount, *maxEvals, fitness, clamped[0], bestFitness)

		return fitness
	}

	fmt.Printf("calibrating %s broadphase, %d particles, population=%d, max_evals=%d\n",
		method, baseCfg.Particles.Count, popSize, *maxEvals)

	result, err := optimize.Minimize(problem, initX, settings, cmaMethod)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil {
		bestParams = params.Denormalize(result.X)
	}

	fmt.Printf("\ncalibration complete after %d evaluations in %s\n", evalCount, time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("best grid_cell_size: %.6f (avg candidates/particle: %.3f)\n", bestParams[0], bestFitness)

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload base config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	outPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(outPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("best config saved to: %s\n", outPath)
	}
}
