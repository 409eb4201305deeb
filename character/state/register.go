// Package state implements the character's closed set of movement states.
// Importing it registers the state constructors; Register attaches a fresh
// instance set to a character.
package state

import (
	"github.com/charmotion/charmotion/character"
)

func init() {
	character.RegisterState(character.StateIdle, func() character.State { return idle{} })
	character.RegisterState(character.StateWalk, func() character.State { return walk{} })
	character.RegisterState(character.StateRun, func() character.State { return run{} })
	character.RegisterState(character.StateSprint, func() character.State { return sprint{} })
	character.RegisterState(character.StateCrouch, func() character.State { return crouch{} })
	character.RegisterState(character.StateJump, func() character.State { return &jump{} })
	character.RegisterState(character.StateFall, func() character.State { return &fall{} })
	character.RegisterState(character.StateWallClimb, func() character.State { return &wallClimb{} })
}
