package character

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/charmotion/charmotion/anim"
	"github.com/charmotion/charmotion/game"
	"github.com/charmotion/charmotion/scene"
)

// Ground is the result of the most recent ground classification. It is
// recomputed every tick and holds no references past it besides the platform
// body.
type Ground struct {
	// Hit is true if the probe found any surface, walkable or not.
	Hit bool
	// Walkable is true if the surface normal lies within the slope limit.
	Walkable bool
	// Distance is how far below the capsule the surface was found.
	Distance float32
	Normal   mgl32.Vec3
	Point    mgl32.Vec3
	Collider int
	Layer    scene.Mask
	Body     *scene.Body
	// FromRaycast marks results produced by the raycast fallback rather than
	// the capsule sweep.
	FromRaycast bool
}

// Context is the per-character, per-tick mutable state bridging the state
// machine and the collision resolver. It is created once per character and
// lives for the character's lifetime.
type Context struct {
	c *Character

	DeltaTime float32
	// WorldUp is the gravity-opposing reference direction for this character.
	// It is not required to match global +Y.
	WorldUp mgl32.Vec3

	// InputDirection is the world-space movement input. Its magnitude selects
	// between idle and walking; states normalize it for direction.
	InputDirection mgl32.Vec3
	JumpPressed    bool
	RunHeld        bool
	SprintHeld     bool
	CrouchHeld     bool

	UseRootMotion   bool
	RootMotionDelta mgl32.Vec3

	Position mgl32.Vec3
	// Orientation is the character's visual facing, smoothed by the variable
	// rate tick.
	Orientation mgl32.Quat

	// VerticalVelocity is the signed speed along WorldUp. It is the only
	// velocity component states integrate gravity into.
	VerticalVelocity float32
	JumpCount        int
	jumpDelay        int

	// InheritedVelocity is horizontal velocity carried into the air from a
	// moving platform or a wall jump. Cleared on landing.
	InheritedVelocity mgl32.Vec3

	// CurrentSpeed and CurrentVelocity are outputs of the last tick, consumed
	// by animation and rotation smoothing.
	CurrentSpeed    float32
	CurrentVelocity mgl32.Vec3

	IsGrounded            bool
	WasGrounded           bool
	IsOnNonWalkableSlope  bool
	GroundNormal          mgl32.Vec3
	Ground                Ground
	GroundConstraintPause int

	// WallNormal is the wall-climb handoff: the wall detection collaborator
	// stores the discovered wall normal here before requesting the state.
	WallNormal mgl32.Vec3

	PendingImpulse mgl32.Vec3

	Config    *Config
	Animator  anim.Controller
	Authority Authority
	Log       *logrus.Logger
}

// Capsule returns the character's collision capsule at its current position.
func (ctx *Context) Capsule() scene.Capsule {
	return ctx.CapsuleAt(ctx.Position)
}

// CapsuleAt returns the character's collision capsule as if it stood at pos.
func (ctx *Context) CapsuleAt(pos mgl32.Vec3) scene.Capsule {
	return scene.NewCapsule(pos, ctx.WorldUp, ctx.Config.Radius, ctx.Config.Height)
}

// Walkable reports whether a surface with the given normal is within the
// character's slope limit.
func (ctx *Context) Walkable(normal mgl32.Vec3) bool {
	return normal.Dot(ctx.WorldUp) >= ctx.Config.walkableDot()
}

// HorizontalInput returns the input direction with any component along WorldUp
// stripped.
func (ctx *Context) HorizontalInput() mgl32.Vec3 {
	return game.ProjectOnPlane(ctx.InputDirection, ctx.WorldUp)
}

// CanJump reports whether a jump press may produce a jump right now: the
// press window is open and the jump count is under the configured limit.
func (ctx *Context) CanJump() bool {
	return ctx.jumpDelay == 0 && ctx.JumpCount < ctx.Config.MaxJumpCount
}

// ConsumeJumpPress consumes a pending jump press, returning false if none was
// buffered or the press is still within the jump delay window. Consuming
// immediately keeps one press from triggering two jumps within a tick.
func (ctx *Context) ConsumeJumpPress() bool {
	if !ctx.JumpPressed || ctx.jumpDelay > 0 {
		return false
	}
	ctx.JumpPressed = false
	ctx.jumpDelay = game.JumpDelayTicks
	return true
}

// NotifyJumpStarted fires the JumpStarted event and the jump animation
// trigger. Called by states that apply a jump impulse.
func (ctx *Context) NotifyJumpStarted() {
	ctx.c.notifyJumpStarted()
}
