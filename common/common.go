package common

const (
	BaseWidth  = 1280
	BaseHeight = 720

	// Gravity is the default downward acceleration in pixels/s^2.
	// Screen space, so positive y points down.
	Gravity = 980.0

	// StepDT is the fixed physics step, one step per rendered frame.
	StepDT = 1.0 / 60.0

	// SleepTimeThreshold is how long a body must stay idle before the
	// engine puts it to sleep. Settled projectiles get culled off this.
	SleepTimeThreshold = 0.5
)
