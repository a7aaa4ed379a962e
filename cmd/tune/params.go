package main

import (
	"github.com/pthm-cable/flappy/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable NEAT parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Weight mutation
			{Name: "weight_mut_power", Path: "neat.weight_mut_power", Min: 0.1, Max: 2.5, Default: 0.5},
			{Name: "mutate_link_weights_prob", Path: "neat.mutate_link_weights_prob", Min: 0.3, Max: 1.0, Default: 0.8},
			// Structure
			{Name: "mutate_add_node_prob", Path: "neat.mutate_add_node_prob", Min: 0.01, Max: 0.5, Default: 0.2},
			{Name: "mutate_add_link_prob", Path: "neat.mutate_add_link_prob", Min: 0.05, Max: 0.9, Default: 0.5},
			// Speciation and selection
			{Name: "compat_threshold", Path: "neat.compat_threshold", Min: 1.0, Max: 6.0, Default: 3.0},
			{Name: "survival_thresh", Path: "neat.survival_thresh", Min: 0.1, Max: 0.6, Default: 0.2},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	cfg.NEAT.WeightMutPower = clamped[0]
	cfg.NEAT.MutateLinkWeightsProb = clamped[1]
	cfg.NEAT.MutateAddNodeProb = clamped[2]
	cfg.NEAT.MutateAddLinkProb = clamped[3]
	cfg.NEAT.CompatThreshold = clamped[4]
	cfg.NEAT.SurvivalThresh = clamped[5]
}
