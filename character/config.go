package character

import (
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml"

	"github.com/charmotion/charmotion/cerror"
	"github.com/charmotion/charmotion/game"
	"github.com/charmotion/charmotion/scene"
)

// AnimParams holds the animation parameter names the character writes to.
// Names are hashed once when the character is created.
type AnimParams struct {
	Speed         string
	Grounded      string
	VerticalSpeed string
	Jump          string
	Climbing      string
}

// Config contains every per-character movement tunable. A Config is authored
// once, never mutated at runtime, and shared by pointer across characters that
// move identically.
type Config struct {
	WalkSpeed   float32
	RunSpeed    float32
	SprintSpeed float32
	CrouchSpeed float32

	JumpForce    float32
	MaxJumpCount int
	Gravity      float32
	// AirControl scales how much horizontal input steers the character while
	// airborne, from 0 (none) to 1 (full ground authority).
	AirControl float32

	// SlopeLimit is the steepest walkable surface angle, in degrees. The
	// boundary is inclusive: a surface at exactly SlopeLimit is walkable.
	SlopeLimit float32
	StepHeight float32
	// GroundedCheckDistance is how far below the capsule the ground probe
	// reaches while previously airborne.
	GroundedCheckDistance float32

	// Radius and Height describe the character capsule.
	Radius float32
	Height float32

	// RotationSpeed is the visual turn rate towards the travel direction, in
	// degrees per second.
	RotationSpeed float32

	CollisionMask scene.Mask
	GroundMask    scene.Mask
	PlatformMask  scene.Mask

	InheritPlatformMomentum bool
	InheritPlatformRotation bool

	WallClimbSpeed    float32
	WallClingDuration float32
	WallSlideSpeed    float32
	WallJumpForce     float32
	WallAdhesionForce float32

	Anim AnimParams
}

// DefaultConfig returns the config substituted whenever a character is created
// without one.
func DefaultConfig() *Config {
	return &Config{
		WalkSpeed:   game.DefaultWalkSpeed,
		RunSpeed:    game.DefaultRunSpeed,
		SprintSpeed: game.DefaultSprintSpeed,
		CrouchSpeed: game.DefaultCrouchSpeed,

		JumpForce:    game.DefaultJumpForce,
		MaxJumpCount: 1,
		Gravity:      game.DefaultGravity,
		AirControl:   0.5,

		SlopeLimit:            game.DefaultSlopeLimit,
		StepHeight:            game.DefaultStepHeight,
		GroundedCheckDistance: 0.1,

		Radius: 0.35,
		Height: 1.8,

		RotationSpeed: 540,

		CollisionMask: scene.MaskAll,
		GroundMask:    scene.MaskAll,
		PlatformMask:  scene.LayerPlatform,

		InheritPlatformMomentum: true,

		WallClimbSpeed:    2.5,
		WallClingDuration: 1.5,
		WallSlideSpeed:    1.5,
		WallJumpForce:     7.0,
		WallAdhesionForce: 2.0,

		Anim: AnimParams{
			Speed:         "speed",
			Grounded:      "grounded",
			VerticalSpeed: "vertical_speed",
			Jump:          "jump",
			Climbing:      "climbing",
		},
	}
}

// walkableDot returns the minimum value of normal·WorldUp for a surface to be
// walkable. A small epsilon keeps the SlopeLimit boundary inclusive under
// float rounding.
func (conf *Config) walkableDot() float32 {
	return math32.Cos(mgl32.DegToRad(conf.SlopeLimit)) - 1e-4
}

// SaveDefault will create and save the default config file. If the file
// already exists, it will return an error.
func SaveDefault(path string) error {
	c := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if data, err := toml.Marshal(*c); err != nil {
			return cerror.New("failed encoding default config: %v", err)
		} else if err := os.WriteFile(path, data, 0644); err != nil {
			return cerror.New("failed creating config file: %v", err)
		}
		return nil
	}
	return cerror.New("config file already exists")
}

// LoadConfig will load the config from the given file, and return an error if
// the file does not exist.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, cerror.New("config file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerror.New("error reading config: %v", err)
	}

	conf := DefaultConfig()
	if err = toml.Unmarshal(data, conf); err != nil {
		return nil, cerror.New("error decoding config: %v", err)
	}
	return conf, nil
}
