package common

const (
	// TPS is the fixed simulation rate.
	TPS = 60
	Dt  = 1.0 / TPS

	DefaultGravity            = -20.0
	DefaultVelocityIterations = 8
	DefaultPositionIterations = 3
	DefaultPixelsPerMeter     = 32.0

	// BaseWidth and BaseHeight are the logical screen size the game lays
	// out against.
	BaseWidth  = 1280
	BaseHeight = 720
)
