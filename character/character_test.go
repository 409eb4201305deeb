package character_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charmotion/charmotion/anim"
	"github.com/charmotion/charmotion/character"
	"github.com/charmotion/charmotion/character/movement"
	_ "github.com/charmotion/charmotion/character/state"
	"github.com/charmotion/charmotion/scene"
)

const dt = float32(1.0 / 50.0)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func floorScene() *scene.Scene {
	sc := scene.New()
	sc.AddBox(cube.Box(-20, -1, -20, 20, 0, 20), scene.LayerStatic)
	return sc
}

func newTestCharacter(sc *scene.Scene, conf *character.Config, pos mgl32.Vec3) *character.Character {
	c := character.New(testLogger(), conf, sc, pos)
	movement.Register(c)
	return c
}

func TestNilConfigSubstitutesDefaults(t *testing.T) {
	c := character.New(testLogger(), nil, floorScene(), mgl32.Vec3{})
	def := character.DefaultConfig()
	assert.Equal(t, def.WalkSpeed, c.Config().WalkSpeed)
	assert.Equal(t, def.SlopeLimit, c.Config().SlopeLimit)
}

// orderAuthority records the order of exit and enter callbacks.
type orderAuthority struct {
	deny   map[character.StateType]bool
	events []string
}

func (a *orderAuthority) CanEnterState(t character.StateType, _ *character.Context) bool {
	return !a.deny[t]
}

func (a *orderAuthority) OnStateEntered(t character.StateType) {
	a.events = append(a.events, "enter:"+t.String())
}

func (a *orderAuthority) OnStateExited(t character.StateType) {
	a.events = append(a.events, "exit:"+t.String())
}

func TestExitPrecedesEnter(t *testing.T) {
	c := newTestCharacter(floorScene(), nil, mgl32.Vec3{0, 0.05, 0})
	auth := &orderAuthority{}
	c.SetAuthority(auth)

	require.True(t, c.RequestStateChange(character.StateWalk))
	assert.Equal(t, []string{"exit:idle", "enter:walk"}, auth.events)
	assert.Equal(t, character.StateWalk, c.ActiveState())
}

func TestSameStateRequestIsNoop(t *testing.T) {
	c := newTestCharacter(floorScene(), nil, mgl32.Vec3{0, 0.05, 0})
	h := &recordingHandler{}
	c.Handle(h)

	assert.True(t, c.RequestStateChange(character.StateIdle))
	assert.Empty(t, h.changes, "re-entering the active state must not fire events")
}

func TestUnknownStateRejected(t *testing.T) {
	c := newTestCharacter(floorScene(), nil, mgl32.Vec3{0, 0.05, 0})
	assert.False(t, c.RequestStateChange(character.StateType(99)))
	assert.Equal(t, character.StateIdle, c.ActiveState())
}

func TestAuthorityVeto(t *testing.T) {
	c := newTestCharacter(floorScene(), nil, mgl32.Vec3{0, 0.05, 0})
	auth := &orderAuthority{deny: map[character.StateType]bool{character.StateJump: true}}
	c.SetAuthority(auth)
	c.Tick(dt)

	assert.False(t, c.RequestStateChange(character.StateJump))

	c.SetJumpPressed(true)
	c.Tick(dt)
	assert.Equal(t, character.StateIdle, c.ActiveState(), "a vetoed jump leaves the character grounded")
	assert.Zero(t, c.Context().JumpCount)
}

func TestRequestedJumpAppliesNoImpulse(t *testing.T) {
	c := newTestCharacter(floorScene(), nil, mgl32.Vec3{0, 0.05, 0})
	h := &recordingHandler{}
	c.Handle(h)
	c.Tick(dt)
	require.True(t, c.Context().IsGrounded)

	// No press buffered: the transition may commit, but no impulse applies.
	c.RequestStateChange(character.StateJump)
	assert.Zero(t, c.Context().JumpCount)
	assert.LessOrEqual(t, c.Context().VerticalVelocity, float32(0))

	for i := 0; i < 3; i++ {
		c.RequestStateChange(character.StateFall)
		c.RequestStateChange(character.StateJump)
	}
	assert.Zero(t, c.Context().JumpCount, "requested transitions must not forge jumps")
	assert.Zero(t, h.jumps)
	assert.LessOrEqual(t, c.Context().JumpCount, c.Config().MaxJumpCount)
}

func TestRootMotionOverride(t *testing.T) {
	c := newTestCharacter(floorScene(), nil, mgl32.Vec3{0, 0.05, 0})
	c.Tick(dt)

	c.SetUseRootMotion(true)
	c.SetRootMotionDelta(mgl32.Vec3{0, 0, 0.1})

	before := c.Position()
	c.Tick(dt)
	assert.InDelta(t, 0.1, c.Position().Sub(before).Z(), 1e-3)

	// The delta is consumed by the tick that used it.
	before = c.Position()
	c.Tick(dt)
	assert.InDelta(t, 0, c.Position().Sub(before).Z(), 1e-3)
}

func TestSetWorldUpNormalizes(t *testing.T) {
	c := newTestCharacter(floorScene(), nil, mgl32.Vec3{0, 0.05, 0})
	c.SetWorldUp(mgl32.Vec3{0, 2, 0})
	assert.InDelta(t, 1, c.Context().WorldUp.Len(), 1e-5)
}

func TestExplosionForce(t *testing.T) {
	c := newTestCharacter(floorScene(), nil, mgl32.Vec3{0, 0.05, 0})

	c.AddExplosionForce(10, c.Position().Add(mgl32.Vec3{-20, 0, 0}), 5)
	assert.Zero(t, c.Context().PendingImpulse.Len(), "an origin beyond the radius applies nothing")

	c.AddExplosionForce(10, c.Position().Add(mgl32.Vec3{-1, 0, 0}), 5)
	assert.InDelta(t, 8, c.Context().PendingImpulse.X(), 1e-3, "strength falls off linearly with distance")
}

func TestWallClimbAndJumpOff(t *testing.T) {
	sc := floorScene()
	sc.AddBox(cube.Box(-3, 0, 3, 3, 5, 4), scene.LayerStatic)

	c := newTestCharacter(sc, nil, mgl32.Vec3{0, 0.05, 2.5})
	h := &recordingHandler{}
	c.Handle(h)
	c.Tick(dt)

	require.True(t, c.EnterWallClimb(mgl32.Vec3{0, 0, -1}))
	require.Equal(t, character.StateWallClimb, c.ActiveState())

	// Pressing into the wall climbs it.
	c.SetInputDirection(mgl32.Vec3{0, 0, 1})
	for i := 0; i < 60; i++ {
		c.Tick(dt)
	}
	require.Equal(t, character.StateWallClimb, c.ActiveState())
	assert.Greater(t, c.Position().Y(), float32(2), "the climb must gain height")
	assert.Less(t, c.Position().Z(), float32(2.65), "the wall clips the adhesion displacement")
	assert.Empty(t, sc.Overlap(c.Context().Capsule(), scene.MaskAll))

	startZ := c.Position().Z()
	c.SetJumpPressed(true)
	c.Tick(dt)
	require.Equal(t, character.StateFall, c.ActiveState())
	assert.Equal(t, 1, h.jumps)
	assert.InDelta(t, 4.95, c.Context().VerticalVelocity, 0.05, "the wall jump tilts the impulse up along the normal")

	for i := 0; i < 10; i++ {
		c.Tick(dt)
	}
	assert.Less(t, c.Position().Z(), startZ-0.1, "the jump pushes away from the wall")
}

func TestWallSlideAfterClingExpires(t *testing.T) {
	sc := floorScene()
	sc.AddBox(cube.Box(-3, 0, 3, 3, 5, 4), scene.LayerStatic)

	conf := character.DefaultConfig()
	conf.WallClingDuration = 0.3
	c := newTestCharacter(sc, conf, mgl32.Vec3{0, 0.05, 2.5})
	h := &recordingHandler{}
	c.Handle(h)
	c.Tick(dt)

	require.True(t, c.EnterWallClimb(mgl32.Vec3{0, 0, -1}))
	c.SetInputDirection(mgl32.Vec3{0, 0, 1})
	for i := 0; i < 15; i++ {
		c.Tick(dt)
	}
	peak := c.Position().Y()
	require.Greater(t, peak, float32(0.5))

	// Cling expired: without climb input the character slides down and lands.
	c.SetInputDirection(mgl32.Vec3{})
	for i := 0; i < 100; i++ {
		c.Tick(dt)
	}

	assert.Equal(t, character.StateIdle, c.ActiveState())
	assert.Less(t, c.Position().Y(), float32(0.2))
	assert.GreaterOrEqual(t, h.landings, 1)
}

// recordingAnimator captures parameter writes.
type recordingAnimator struct {
	floats   map[anim.Param]float32
	bools    map[anim.Param]bool
	triggers map[anim.Param]int
}

func newRecordingAnimator() *recordingAnimator {
	return &recordingAnimator{
		floats:   map[anim.Param]float32{},
		bools:    map[anim.Param]bool{},
		triggers: map[anim.Param]int{},
	}
}

func (a *recordingAnimator) Valid() bool                      { return true }
func (a *recordingAnimator) SetFloat(p anim.Param, v float32) { a.floats[p] = v }
func (a *recordingAnimator) SetBool(p anim.Param, v bool)     { a.bools[p] = v }
func (a *recordingAnimator) SetTrigger(p anim.Param)          { a.triggers[p]++ }

func TestAnimatorParameterWrites(t *testing.T) {
	c := newTestCharacter(floorScene(), nil, mgl32.Vec3{0, 0.05, 0})
	a := newRecordingAnimator()
	c.SetAnimator(a)

	c.SetInputDirection(mgl32.Vec3{0, 0, 1})
	c.Tick(dt)
	c.Tick(dt)
	c.Tick(dt)

	assert.True(t, a.bools[anim.Hash("grounded")])
	assert.InDelta(t, c.Config().WalkSpeed, a.floats[anim.Hash("speed")], 0.5)

	c.SetJumpPressed(true)
	c.Tick(dt)
	assert.Equal(t, 1, a.triggers[anim.Hash("jump")])
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charmotion.toml")

	require.NoError(t, character.SaveDefault(path))
	assert.Error(t, character.SaveDefault(path), "overwriting an existing config must fail")

	conf, err := character.LoadConfig(path)
	require.NoError(t, err)
	def := character.DefaultConfig()
	assert.Equal(t, def.WalkSpeed, conf.WalkSpeed)
	assert.Equal(t, def.SlopeLimit, conf.SlopeLimit)
	assert.Equal(t, def.Anim.Speed, conf.Anim.Speed)

	_, err = character.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

type recordingHandler struct {
	character.NopHandler
	jumps    int
	landings int
	changes  [][2]character.StateType
}

func (h *recordingHandler) HandleStateChanged(old, new character.StateType) {
	h.changes = append(h.changes, [2]character.StateType{old, new})
}

func (h *recordingHandler) HandleJumpStarted() { h.jumps++ }
func (h *recordingHandler) HandleLanded()      { h.landings++ }
