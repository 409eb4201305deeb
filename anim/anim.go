// Package anim exposes the opaque animation-controller surface the movement
// core writes to. The core only ever pushes named parameter values; playback
// is someone else's problem entirely.
package anim

import "github.com/zeebo/xxh3"

// Param is a pre-hashed animation parameter identifier. Hashing happens once
// at config time so per-tick writes never touch the parameter's string name.
type Param uint64

// Hash derives the Param for a parameter name.
func Hash(name string) Param {
	return Param(xxh3.HashString(name))
}

// Controller is an opaque sink for animation parameter writes. Writes against
// a controller whose Valid returns false are silently skipped by the core.
type Controller interface {
	Valid() bool
	SetFloat(p Param, v float32)
	SetBool(p Param, v bool)
	SetTrigger(p Param)
}

// NopController discards every write and always reports itself valid.
type NopController struct{}

func (NopController) Valid() bool             { return true }
func (NopController) SetFloat(Param, float32) {}
func (NopController) SetBool(Param, bool)     {}
func (NopController) SetTrigger(Param)        {}
