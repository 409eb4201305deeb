package character

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/charmotion/charmotion/anim"
	"github.com/charmotion/charmotion/game"
	"github.com/charmotion/charmotion/scene"
)

// Resolver converts a desired displacement into a collision-safe one, moving
// the context's position, and classifies ground support.
type Resolver interface {
	DetectGround(ctx *Context)
	Move(ctx *Context, desired mgl32.Vec3) mgl32.Vec3
}

// PlatformTracker keeps the character attached to a moving platform. CatchUp
// is the cosmetic variable-rate pass and must never run collision queries.
type PlatformTracker interface {
	PreMove(ctx *Context)
	PostMove(ctx *Context)
	CatchUp(ctx *Context)
	Attached() bool
	Velocity() mgl32.Vec3
}

type animHandles struct {
	speed         anim.Param
	grounded      anim.Param
	verticalSpeed anim.Param
	jump          anim.Param
	climbing      anim.Param
}

// Character is one kinematically simulated character: its context, state set,
// and attached movement components. It is not safe for concurrent use; all
// methods are expected to be called from the owning tick loop.
type Character struct {
	log  *logrus.Logger
	src  scene.Source
	conf *Config

	ctx    *Context
	states *orderedmap.OrderedMap[StateType, State]
	active State

	resolver Resolver
	platform PlatformTracker

	h      Handler
	params animHandles
}

// New creates a character standing at pos. A nil config is replaced by
// DefaultConfig and logged, never treated as fatal. Components and the state
// set must be attached afterwards (state.Register, movement.Register).
func New(log *logrus.Logger, conf *Config, src scene.Source, pos mgl32.Vec3) *Character {
	if log == nil {
		log = logrus.New()
	}
	if conf == nil {
		log.Warn("character: nil config, substituting defaults")
		conf = DefaultConfig()
	}

	c := &Character{
		log:  log,
		src:  src,
		conf: conf,
		h:    NopHandler{},
	}
	c.ctx = &Context{
		c:           c,
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Position:    pos,
		Orientation: mgl32.QuatIdent(),
		Config:      conf,
		Animator:    anim.NopController{},
		Authority:   AllowAll{},
		Log:         log,
	}
	c.params = animHandles{
		speed:         anim.Hash(conf.Anim.Speed),
		grounded:      anim.Hash(conf.Anim.Grounded),
		verticalSpeed: anim.Hash(conf.Anim.VerticalSpeed),
		jump:          anim.Hash(conf.Anim.Jump),
		climbing:      anim.Hash(conf.Anim.Climbing),
	}

	c.states = newStateSet()
	if first := c.states.Front(); first != nil {
		c.active = first.Value
		c.active.Enter(c.ctx)
	} else {
		log.Error("character: no movement states registered")
	}
	return c
}

// Context exposes the character's movement context to attached components.
func (c *Character) Context() *Context {
	return c.ctx
}

// Source returns the spatial query service the character was created with.
func (c *Character) Source() scene.Source {
	return c.src
}

// Config returns the character's movement config.
func (c *Character) Config() *Config {
	return c.conf
}

// Log returns the character's logger.
func (c *Character) Log() *logrus.Logger {
	return c.log
}

// Position returns the character's authoritative position.
func (c *Character) Position() mgl32.Vec3 {
	return c.ctx.Position
}

// SetPosition teleports the character, bypassing collision resolution.
func (c *Character) SetPosition(pos mgl32.Vec3) {
	c.ctx.Position = pos
}

// Orientation returns the character's smoothed visual facing.
func (c *Character) Orientation() mgl32.Quat {
	return c.ctx.Orientation
}

// ActiveState returns the type of the currently active state.
func (c *Character) ActiveState() StateType {
	if c.active == nil {
		return StateIdle
	}
	return c.active.Type()
}

// Handle sets the handler receiving the character's movement events. A nil
// handler resets to NopHandler.
func (c *Character) Handle(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	c.h = h
}

// SetAuthority sets the external gate consulted before transitions. A nil
// authority resets to AllowAll.
func (c *Character) SetAuthority(a Authority) {
	if a == nil {
		a = AllowAll{}
	}
	c.ctx.Authority = a
}

// SetAnimator sets the animation controller parameter writes go to.
func (c *Character) SetAnimator(a anim.Controller) {
	if a == nil {
		a = anim.NopController{}
	}
	c.ctx.Animator = a
}

// SetResolver attaches the collision resolver component.
func (c *Character) SetResolver(r Resolver) {
	c.resolver = r
}

// SetPlatformTracker attaches the moving platform tracker component.
func (c *Character) SetPlatformTracker(t PlatformTracker) {
	c.platform = t
}

// PlatformTracker returns the attached platform tracker, if any.
func (c *Character) PlatformTracker() PlatformTracker {
	return c.platform
}

// SetInputDirection sets the world-space movement input for following ticks.
func (c *Character) SetInputDirection(dir mgl32.Vec3) {
	c.ctx.InputDirection = dir
}

// SetJumpPressed buffers or clears a jump press.
func (c *Character) SetJumpPressed(pressed bool) {
	c.ctx.JumpPressed = pressed
}

// SetRunHeld sets whether the run modifier is held.
func (c *Character) SetRunHeld(held bool) {
	c.ctx.RunHeld = held
}

// SetSprintHeld sets whether the sprint modifier is held.
func (c *Character) SetSprintHeld(held bool) {
	c.ctx.SprintHeld = held
}

// SetCrouchHeld sets whether the crouch modifier is held.
func (c *Character) SetCrouchHeld(held bool) {
	c.ctx.CrouchHeld = held
}

// SetUseRootMotion selects animation-driven displacement over the state
// machine's output whenever a root motion delta is available.
func (c *Character) SetUseRootMotion(use bool) {
	c.ctx.UseRootMotion = use
}

// SetRootMotionDelta provides the animation system's displacement for the next
// tick. It is consumed by the tick that uses it.
func (c *Character) SetRootMotionDelta(delta mgl32.Vec3) {
	c.ctx.RootMotionDelta = delta
}

// SetWorldUp changes the character's gravity-opposing reference direction.
func (c *Character) SetWorldUp(up mgl32.Vec3) {
	c.ctx.WorldUp = game.SafeNormalize(up)
}

// RequestStateChange attempts a transition to the given state type. It returns
// false when the authority vetoes the transition or the type is unknown; a
// request for the already-active type is a no-op returning true.
func (c *Character) RequestStateChange(t StateType) bool {
	return c.setState(t)
}

// EnterWallClimb hands a discovered wall normal to the context and requests
// the wall climb state. Wall detection itself is an external collaborator.
func (c *Character) EnterWallClimb(wallNormal mgl32.Vec3) bool {
	normal := game.SafeNormalize(wallNormal)
	if normal.LenSqr() == 0 {
		c.log.Error("character: wall climb requested with zero wall normal")
		return false
	}
	c.ctx.WallNormal = normal
	return c.setState(StateWallClimb)
}

// LaunchCharacter replaces the character's velocity with the given one and
// briefly suspends the ground constraint so the launch is not snapped away.
func (c *Character) LaunchCharacter(vel mgl32.Vec3) {
	ctx := c.ctx
	ctx.VerticalVelocity = vel.Dot(ctx.WorldUp)
	ctx.InheritedVelocity = game.ProjectOnPlane(vel, ctx.WorldUp)
	c.PauseGroundConstraint(10)
	c.setState(StateFall)
}

// AddForce accumulates an impulse applied after the next collision resolution.
func (c *Character) AddForce(impulse mgl32.Vec3) {
	c.ctx.PendingImpulse = c.ctx.PendingImpulse.Add(impulse)
}

// AddExplosionForce applies a radial impulse from origin, falling off linearly
// to zero at radius.
func (c *Character) AddExplosionForce(strength float32, origin mgl32.Vec3, radius float32) {
	if radius <= 0 {
		return
	}
	delta := c.ctx.Position.Sub(origin)
	dist := delta.Len()
	if dist >= radius {
		return
	}
	falloff := 1 - dist/radius
	dir := game.SafeNormalize(delta)
	if dir.LenSqr() == 0 {
		dir = c.ctx.WorldUp
	}
	c.AddForce(dir.Mul(strength * falloff))
}

// PauseGroundConstraint suspends ground snapping for the given number of fixed
// ticks. Used after launches to avoid an instant re-snap to the floor.
func (c *Character) PauseGroundConstraint(ticks int) {
	if ticks > c.ctx.GroundConstraintPause {
		c.ctx.GroundConstraintPause = ticks
	}
}

// setState commits a state transition: authority gate, exit, swap, enter,
// notifications. Exit of the old state always precedes Enter of the new.
func (c *Character) setState(t StateType) bool {
	if c.active != nil && c.active.Type() == t {
		return true
	}

	next, ok := c.states.Get(t)
	if !ok {
		c.log.Errorf("character: transition to unregistered state %v rejected", t)
		return false
	}
	if !c.ctx.Authority.CanEnterState(t, c.ctx) {
		return false
	}

	old := StateIdle
	if c.active != nil {
		old = c.active.Type()
		c.active.Exit(c.ctx)
		c.ctx.Authority.OnStateExited(old)
	}

	landing := !old.Grounded() && t.Grounded() && c.ctx.IsGrounded && c.ctx.VerticalVelocity <= 0
	c.active = next
	c.active.Enter(c.ctx)
	c.ctx.Authority.OnStateEntered(t)

	if landing {
		c.land()
	}
	c.h.HandleStateChanged(old, t)
	return true
}

// land performs the confirmed grounded-and-descending bookkeeping: jump count
// reset, inherited air velocity cleared, Landed event.
func (c *Character) land() {
	c.ctx.JumpCount = 0
	c.ctx.InheritedVelocity = mgl32.Vec3{}
	c.h.HandleLanded()
}

func (c *Character) notifyJumpStarted() {
	if c.ctx.Animator.Valid() {
		c.ctx.Animator.SetTrigger(c.params.jump)
	}
	c.h.HandleJumpStarted()
}

// writeAnimParams pushes the tick's outputs to the animation controller.
// Writes are skipped entirely while the controller reports itself invalid.
func (c *Character) writeAnimParams() {
	a := c.ctx.Animator
	if !a.Valid() {
		return
	}
	a.SetFloat(c.params.speed, c.ctx.CurrentSpeed)
	a.SetBool(c.params.grounded, c.ctx.IsGrounded)
	a.SetFloat(c.params.verticalSpeed, c.ctx.VerticalVelocity)
	a.SetBool(c.params.climbing, c.ActiveState() == StateWallClimb)
}
