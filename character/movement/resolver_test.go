package movement_test

import (
	"io"
	"testing"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func testConfig() *character.Config {
	conf := character.DefaultConfig()
	conf.WalkSpeed = 4
	return conf
}

func newTestCharacter(sc *scene.Scene, conf *character.Config, pos mgl32.Vec3) *character.Character {
	c := character.New(testLogger(), conf, sc, pos)
	movement.Register(c)
	return c
}

func floorScene() *scene.Scene {
	sc := scene.New()
	sc.AddBox(cube.Box(-20, -1, -20, 20, 0, 20), scene.LayerStatic)
	return sc
}

// addSlope registers a ramp of the given angle rising towards +Z from baseZ.
func addSlope(sc *scene.Scene, deg, baseZ float32) {
	sin, cos := math32.Sincos(mgl32.DegToRad(deg))
	const run = float32(8)
	sc.AddQuad(
		mgl32.Vec3{-5, 0, baseZ},
		mgl32.Vec3{5, 0, baseZ},
		mgl32.Vec3{5, run * sin, baseZ + run*cos},
		mgl32.Vec3{-5, run * sin, baseZ + run*cos},
		scene.LayerStatic,
	)
}

// slopeStand returns a feet position resting just off the ramp surface at the
// given world Z.
func slopeStand(deg, baseZ, z float32) mgl32.Vec3 {
	sin, cos := math32.Sincos(mgl32.DegToRad(deg))
	surface := mgl32.Vec3{0, (z - baseZ) * sin / cos, z}
	normal := mgl32.Vec3{0, cos, -sin}
	// Rest the capsule's bottom sphere a skin width off the surface.
	offset := 0.365 - 0.35*cos
	return surface.Add(normal.Mul(offset))
}

func TestWalkDisplacement(t *testing.T) {
	c := newTestCharacter(floorScene(), testConfig(), mgl32.Vec3{0, 0.05, 0})
	c.SetInputDirection(mgl32.Vec3{0, 0, 1})

	// First ticks settle the height and transition idle -> walk.
	c.Tick(dt)
	c.Tick(dt)
	require.Equal(t, character.StateWalk, c.ActiveState())

	before := c.Position()
	c.Tick(dt)
	delta := c.Position().Sub(before)

	assert.InDelta(t, 0.08, delta.Z(), 1e-3)
	assert.InDelta(t, 0, delta.X(), 1e-4)
	assert.InDelta(t, 0, delta.Y(), 0.01)
	assert.True(t, c.Context().IsGrounded)
}

func TestRunModifier(t *testing.T) {
	c := newTestCharacter(floorScene(), testConfig(), mgl32.Vec3{0, 0.05, 0})
	c.SetInputDirection(mgl32.Vec3{0, 0, 1})
	c.SetRunHeld(true)

	c.Tick(dt)
	c.Tick(dt)
	require.Equal(t, character.StateRun, c.ActiveState())

	before := c.Position()
	c.Tick(dt)
	assert.InDelta(t, float64(c.Config().RunSpeed*dt), float64(c.Position().Sub(before).Z()), 1e-3)
}

func TestGroundClassificationFlat(t *testing.T) {
	c := newTestCharacter(floorScene(), testConfig(), mgl32.Vec3{0, 0.05, 0})
	c.Tick(dt)

	ctx := c.Context()
	assert.True(t, ctx.IsGrounded)
	assert.False(t, ctx.IsOnNonWalkableSlope)
	assert.True(t, ctx.Ground.Walkable)
	assert.InDelta(t, 1, ctx.GroundNormal.Y(), 1e-3)
	assert.Equal(t, character.StateIdle, c.ActiveState())
}

func TestSlopeAtLimitIsWalkable(t *testing.T) {
	sc := scene.New()
	addSlope(sc, 45, 2)

	conf := testConfig() // SlopeLimit 45
	c := newTestCharacter(sc, conf, slopeStand(45, 2, 3.5))
	c.Tick(dt)

	ctx := c.Context()
	assert.True(t, ctx.IsGrounded, "a slope at exactly the limit is walkable")
	assert.False(t, ctx.IsOnNonWalkableSlope)
	assert.Equal(t, character.StateIdle, c.ActiveState())
}

func TestWalkableSlopeClimbSpeed(t *testing.T) {
	sc := scene.New()
	addSlope(sc, 45, 2)

	c := newTestCharacter(sc, testConfig(), slopeStand(45, 2, 3.5))
	for i := 0; i < 5; i++ {
		c.Tick(dt) // settle
	}
	c.SetInputDirection(mgl32.Vec3{0, 0, 1})
	c.Tick(dt)
	c.Tick(dt)

	before := c.Position()
	c.Tick(dt)
	delta := c.Position().Sub(before)

	assert.InDelta(t, 0.08, delta.Len(), 0.005, "tangent reorientation must preserve speed on walkable slopes")
	assert.Greater(t, delta.Y(), float32(0.04), "walking up the ramp gains height")
	assert.True(t, c.Context().IsGrounded)
}

func TestSteepSlopeClassificationAndSlide(t *testing.T) {
	sc := scene.New()
	addSlope(sc, 50, 2)

	conf := testConfig()
	c := newTestCharacter(sc, conf, slopeStand(50, 2, 3.5))

	before := c.Position()
	c.Tick(dt)

	ctx := c.Context()
	assert.False(t, ctx.IsGrounded)
	assert.True(t, ctx.IsOnNonWalkableSlope)
	assert.True(t, ctx.Ground.Hit)
	assert.False(t, ctx.Ground.Walkable)

	// Slide magnitude scales with (angle-limit)/(90-limit).
	want := conf.Gravity * (50 - conf.SlopeLimit) / (90 - conf.SlopeLimit) * dt
	delta := c.Position().Sub(before)
	assert.InDelta(t, float64(want), float64(delta.Len()), 0.004)
	assert.Less(t, delta.Y(), float32(0), "slide points down the slope")
	assert.Less(t, delta.Z(), float32(0))
}

func TestSlopeSlideScalesWithAngle(t *testing.T) {
	slide := func(deg float32) float32 {
		sc := scene.New()
		addSlope(sc, deg, 2)
		c := newTestCharacter(sc, testConfig(), slopeStand(deg, 2, 3.5))
		before := c.Position()
		c.Tick(dt)
		return c.Position().Sub(before).Len()
	}

	s50 := slide(50)
	s60 := slide(60)
	require.Greater(t, s60, s50)
	// (60-45)/(50-45) = 3.
	assert.InDelta(t, 3, float64(s60/s50), 0.3)
}

func TestSteepSlopeBlocksClimb(t *testing.T) {
	sc := floorScene()
	addSlope(sc, 50, 2)

	c := newTestCharacter(sc, testConfig(), mgl32.Vec3{0, 0.05, 0})
	c.SetInputDirection(mgl32.Vec3{0, 0, 1})
	for i := 0; i < 100; i++ {
		c.Tick(dt)
	}

	pos := c.Position()
	assert.Less(t, pos.Z(), float32(1.9), "the resolver must hold the capsule off the slope")
	assert.Less(t, pos.Y(), float32(0.2), "no height may be gained against a non-walkable slope")
	assert.Empty(t, sc.Overlap(c.Context().Capsule(), scene.MaskAll), "the capsule must never penetrate")
}

func TestStepUpClimb(t *testing.T) {
	sc := floorScene()
	sc.AddBox(cube.Box(-2, 0, 2, 2, 0.3, 6), scene.LayerStatic)

	c := newTestCharacter(sc, testConfig(), mgl32.Vec3{0, 0.05, 0})
	c.SetInputDirection(mgl32.Vec3{0, 0, 1})
	for i := 0; i < 60; i++ {
		c.Tick(dt)
	}

	pos := c.Position()
	assert.InDelta(t, 0.315, pos.Y(), 0.03, "the character must stand on top of the step")
	assert.Greater(t, pos.Z(), float32(4.0), "stepping up must preserve horizontal progress")
	assert.True(t, c.Context().IsGrounded)
	assert.Empty(t, sc.Overlap(c.Context().Capsule(), scene.MaskAll))
}

func TestStepUpRejectsTallObstacle(t *testing.T) {
	sc := floorScene()
	sc.AddBox(cube.Box(-2, 0, 2, 2, 0.45, 6), scene.LayerStatic)

	c := newTestCharacter(sc, testConfig(), mgl32.Vec3{0, 0.05, 0})
	c.SetInputDirection(mgl32.Vec3{0, 0, 1})
	for i := 0; i < 100; i++ {
		c.Tick(dt)
	}

	pos := c.Position()
	assert.Less(t, pos.Y(), float32(0.1), "an obstacle above the step height must not be climbed")
	assert.Less(t, pos.Z(), float32(1.9))
	assert.Empty(t, sc.Overlap(c.Context().Capsule(), scene.MaskAll))
}

func TestJumpAndLand(t *testing.T) {
	c := newTestCharacter(floorScene(), testConfig(), mgl32.Vec3{0, 0.05, 0})
	h := &recordingHandler{}
	c.Handle(h)

	c.Tick(dt)
	require.True(t, c.Context().IsGrounded)

	c.SetJumpPressed(true)
	c.Tick(dt)
	c.SetJumpPressed(false)
	require.Equal(t, character.StateJump, c.ActiveState())
	require.Equal(t, 1, h.jumps)
	require.Equal(t, 1, c.Context().JumpCount)

	peak := c.Position().Y()
	landed := false
	for i := 0; i < 150 && !landed; i++ {
		c.Tick(dt)
		if y := c.Position().Y(); y > peak {
			peak = y
		}
		landed = c.Context().IsGrounded && c.ActiveState() == character.StateIdle
	}

	require.True(t, landed, "the character must come back down")
	assert.InDelta(t, 1.4, peak, 0.2, "jump apex follows jumpForce^2/(2*gravity)")
	assert.InDelta(t, 0.015, c.Position().Y(), 0.01)
	assert.Equal(t, 1, h.landings)
	assert.Equal(t, 0, c.Context().JumpCount, "landing resets the jump count")
}

func TestDoubleJumpLimit(t *testing.T) {
	conf := testConfig()
	conf.MaxJumpCount = 2

	c := newTestCharacter(floorScene(), conf, mgl32.Vec3{0, 0.05, 0})
	h := &recordingHandler{}
	c.Handle(h)
	c.Tick(dt)

	maxCount := 0
	for i := 0; i < 150; i++ {
		if i == 0 || i == 5 || i == 10 {
			c.SetJumpPressed(true)
		}
		c.Tick(dt)
		c.SetJumpPressed(false)
		if n := c.Context().JumpCount; n > maxCount {
			maxCount = n
		}
	}

	assert.Equal(t, 2, h.jumps, "the third press must not produce a jump")
	assert.Equal(t, 2, maxCount, "the jump count must never exceed the configured limit")
	assert.True(t, c.Context().IsGrounded)
	assert.Equal(t, 0, c.Context().JumpCount)
}

func TestDepenetration(t *testing.T) {
	sc := floorScene()
	c := newTestCharacter(sc, testConfig(), mgl32.Vec3{0, -0.1, 0})

	c.Tick(dt)

	assert.Empty(t, sc.Overlap(c.Context().Capsule(), scene.MaskAll))
	assert.InDelta(t, 0.015, c.Position().Y(), 0.01)
}

func TestLaunch(t *testing.T) {
	c := newTestCharacter(floorScene(), testConfig(), mgl32.Vec3{0, 0.05, 0})
	c.Tick(dt)
	require.True(t, c.Context().IsGrounded)

	c.LaunchCharacter(mgl32.Vec3{2, 8, 0})
	require.Equal(t, character.StateFall, c.ActiveState())

	for i := 0; i < 10; i++ {
		c.Tick(dt)
	}
	pos := c.Position()
	assert.Greater(t, pos.Y(), float32(0.5), "launch velocity must not be snapped away")
	assert.Greater(t, pos.X(), float32(0.2), "the horizontal launch component carries as inherited velocity")
}

func TestForceWhileGroundedLiftsOff(t *testing.T) {
	c := newTestCharacter(floorScene(), testConfig(), mgl32.Vec3{0, 0.05, 0})
	c.Tick(dt)
	require.True(t, c.Context().IsGrounded)

	c.AddForce(mgl32.Vec3{0, 6, 0})
	c.Tick(dt)

	assert.Equal(t, character.StateFall, c.ActiveState())
	assert.Greater(t, c.Context().VerticalVelocity, float32(0))
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
