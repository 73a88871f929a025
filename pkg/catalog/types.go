package catalog

// Variant identifies one independently buildable firmware configuration
// within a board family.
type Variant struct {
	// Board is the board family directory name under the boards root.
	Board string `json:"board"`

	// Name is the build name declared in the board's config document.
	// It must be prefixed by Board; the orchestrator enforces this
	// before any build is attempted.
	Name string `json:"name"`
}

// BoardConfig is the per-board declarative metadata document
// (config.json by default) describing the target chip and the
// buildable variants of that board.
type BoardConfig struct {
	// Target is the chip identifier passed to the toolchain's
	// set-target step (e.g., "esp32s3").
	Target string `json:"target" validate:"required"`

	// Builds is the ordered list of variant build descriptors.
	Builds []BuildSpec `json:"builds" validate:"dive"`
}

// BuildSpec describes one buildable variant of a board.
type BuildSpec struct {
	// Name is the variant name, used for output artifact naming.
	Name string `json:"name" validate:"required"`

	// SdkconfigAppend is the ordered list of raw KEY=value
	// configuration overrides appended to the live sdkconfig
	// before building this variant.
	SdkconfigAppend []string `json:"sdkconfig_append,omitempty"`
}
