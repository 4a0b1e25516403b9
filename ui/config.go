package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Vocabulary source: file, directory, URL or "-".
	Source string

	// Reload the list when a local source changes.
	Watch bool

	EnableMouse     bool
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE" envDefault:"auto"`

	// Name of the speech engine, shown in the help view.
	EngineName string

	// For debugging the UI
	GlamourEnabled   bool `env:"VOKABEL_ENABLE_GLAMOUR"   envDefault:"true"`
	HighlightEnabled bool `env:"VOKABEL_ENABLE_HIGHLIGHT" envDefault:"true"`
}
