// Package main implements CMA-ES search for the broadphase grid's
// cell size.
package main

import (
	"github.com/tccd-sim/collider/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// ParamVector holds the set of all optimizable parameters. Kept as a
// vector (rather than a bare float64) so the CMA-ES wiring, clamping,
// and config-writeback idiom matches a multi-parameter search even
// though this tool currently searches a single dimension.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector searches cell_size around whatever value the base
// config already has, widened to a generous bracket: too small floods
// every particle's neighborhood with empty cells, too large degrades
// toward brute-force O(N) candidate lists.
func NewParamVector(baseCellSize float64) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "grid_cell_size", Min: 1.0, Max: 400.0, Default: baseCellSize},
		},
	}
}

func (pv *ParamVector) Dim() int { return len(pv.Specs) }

func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes the clamped cell size back onto cfg's derived
// physics section.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Physics.GridCellSize = clamped[0]
	cfg.Derived.GridCellSize32 = float32(clamped[0])
}
