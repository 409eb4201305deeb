package character

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// StateType identifies one of the closed set of movement states.
type StateType uint8

const (
	StateIdle StateType = iota
	StateWalk
	StateRun
	StateSprint
	StateCrouch
	StateJump
	StateFall
	StateWallClimb
)

// String ...
func (t StateType) String() string {
	switch t {
	case StateIdle:
		return "idle"
	case StateWalk:
		return "walk"
	case StateRun:
		return "run"
	case StateSprint:
		return "sprint"
	case StateCrouch:
		return "crouch"
	case StateJump:
		return "jump"
	case StateFall:
		return "fall"
	case StateWallClimb:
		return "wall_climb"
	}
	return "unknown"
}

// Grounded reports whether the state type is one of the grounded locomotion
// states.
func (t StateType) Grounded() bool {
	switch t {
	case StateIdle, StateWalk, StateRun, StateSprint, StateCrouch:
		return true
	}
	return false
}

// State is a single movement state variant. Update produces the desired
// displacement for the tick; Transition proposes the next state, if any.
// States must keep all transient data on the Context — a state instance is
// owned by exactly one character and must still never be shared.
type State interface {
	Type() StateType
	Enter(ctx *Context)
	Update(ctx *Context) mgl32.Vec3
	Transition(ctx *Context) (StateType, bool)
	Exit(ctx *Context)
}

// stateFactories maps state types to their constructors, in registration
// order. Each character gets its own instance set built from these.
var stateFactories = orderedmap.NewOrderedMap[StateType, func() State]()

// RegisterState registers a state constructor. The concrete state set
// registers itself in its package init; characters created before any
// registration have no states and reject every transition.
func RegisterState(t StateType, factory func() State) {
	stateFactories.Set(t, factory)
}

// newStateSet instantiates one state per registered factory.
func newStateSet() *orderedmap.OrderedMap[StateType, State] {
	set := orderedmap.NewOrderedMap[StateType, State]()
	for el := stateFactories.Front(); el != nil; el = el.Next() {
		set.Set(el.Key, el.Value())
	}
	return set
}
