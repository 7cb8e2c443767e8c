package ime

import "hangulkey/internal/config"

// Platform registers the input method with the system's IME framework.
type Platform interface {
	// Name returns the platform name (e.g., "linux").
	Name() string

	// Available returns true if the IME framework is present.
	Available() bool

	// Install registers the IME for the current user.
	Install() error

	// Uninstall removes the IME registration.
	Uninstall() error

	// IsInstalled returns true if the IME is registered.
	IsInstalled() bool

	// IsActive returns true if the IME is the active input method.
	IsActive() bool

	// Activate makes this IME the active input method.
	Activate() error
}

// PlatformConfig contains platform-specific configuration.
type PlatformConfig struct {
	// IBus names the component and engine.
	IBus config.IBusConfig

	// Exec is the absolute path of the engine binary.
	Exec string
}
