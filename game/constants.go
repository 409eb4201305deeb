package game

const (
	// SkinWidth is the contact offset kept between the capsule surface and any
	// geometry it rests against. Sweeps stop short of their hit by this much so
	// that the next query never starts in a penetrating configuration.
	SkinWidth = float32(0.015)

	// HemisphereThreshold is the minimum value of normal·WorldUp for a contact
	// to be classified as lying below the capsule rather than on its sides.
	HemisphereThreshold = float32(0.1736) // cos(80°)

	// MaxResolverIterations caps the sweep-and-slide loop of a single
	// resolution pass. Any residual displacement past it is discarded.
	MaxResolverIterations = 4

	// MaxSlideContacts is the number of distinct contact planes a single pass
	// slides along before halting all remaining movement.
	MaxSlideContacts = 3

	DefaultWalkSpeed   = float32(4.0)
	DefaultRunSpeed    = float32(7.0)
	DefaultSprintSpeed = float32(10.0)
	DefaultCrouchSpeed = float32(2.0)
	DefaultJumpForce   = float32(7.5)
	DefaultGravity     = float32(20.0)
	DefaultSlopeLimit  = float32(45.0)
	DefaultStepHeight  = float32(0.4)

	JumpDelayTicks = 2
)
