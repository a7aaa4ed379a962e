package neural

import (
	"fmt"
	"math"
)

// DefaultThreshold is the output level above which a policy flaps.
const DefaultThreshold = 0.2

// Action is a policy decision.
type Action bool

const (
	Idle Action = false
	Flap Action = true
)

// Observation is what a bird sees each tick.
type Observation struct {
	Y              float64 // Bird's vertical position
	TopDistance    float64 // |Y - gap top| of the target pipe
	BottomDistance float64 // |Y - gap bottom| of the target pipe
}

// Observe builds an observation for a bird at y looking at a gap [top, bottom].
func Observe(y, top, bottom float64) Observation {
	return Observation{
		Y:              y,
		TopDistance:    math.Abs(y - top),
		BottomDistance: math.Abs(y - bottom),
	}
}

// Decider maps an observation to an action.
type Decider interface {
	Decide(obs Observation) (Action, error)
}

// Policy adapts a brain network to the flap decision.
type Policy struct {
	brain     *BrainController
	threshold float64
	inputs    [BrainInputs]float64
}

// NewPolicy wraps a brain with the given decision threshold.
func NewPolicy(brain *BrainController, threshold float64) *Policy {
	return &Policy{brain: brain, threshold: threshold}
}

// Decide runs the network on obs and thresholds its single output.
func (p *Policy) Decide(obs Observation) (Action, error) {
	p.inputs = [BrainInputs]float64{obs.Y, obs.TopDistance, obs.BottomDistance, 1}

	outputs, err := p.brain.Think(p.inputs[:])
	if err != nil {
		return Idle, err
	}
	if len(outputs) == 0 {
		return Idle, fmt.Errorf("network produced no outputs")
	}
	return Action(outputs[0] > p.threshold), nil
}
