package character

// Handler receives the character's movement events. Events fire synchronously
// within the tick that caused them.
type Handler interface {
	// HandleStateChanged is called after a state transition commits, with the
	// exited and entered state types.
	HandleStateChanged(old, new StateType)
	// HandleLanded is called when the character lands on walkable ground while
	// descending.
	HandleLanded()
	// HandleJumpStarted is called whenever a jump impulse is applied,
	// including mid-air jumps.
	HandleJumpStarted()
}

// NopHandler implements Handler, doing nothing on every event. Embed it to
// handle only the events you care about.
type NopHandler struct{}

// Compile-time check to make sure NopHandler implements Handler.
var _ Handler = NopHandler{}

func (NopHandler) HandleStateChanged(old, new StateType) {}
func (NopHandler) HandleLanded()                         {}
func (NopHandler) HandleJumpStarted()                    {}

// Authority is the external gate consulted before any state transition
// commits. A veto is an expected outcome, not an error.
type Authority interface {
	CanEnterState(target StateType, ctx *Context) bool
	OnStateEntered(t StateType)
	OnStateExited(t StateType)
}

// AllowAll is the default Authority; it permits every transition.
type AllowAll struct{}

var _ Authority = AllowAll{}

func (AllowAll) CanEnterState(StateType, *Context) bool { return true }
func (AllowAll) OnStateEntered(StateType)               {}
func (AllowAll) OnStateExited(StateType)                {}
