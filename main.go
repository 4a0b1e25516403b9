// Package main provides the entry point for the vokabel CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/vokabel/internal/playback"
	"github.com/dgnsrekt/vokabel/internal/progress"
	"github.com/dgnsrekt/vokabel/internal/tts"
	"github.com/dgnsrekt/vokabel/internal/ttypes"
	"github.com/dgnsrekt/vokabel/internal/vocab"
	"github.com/dgnsrekt/vokabel/ui"
)

const appName = "vokabel"

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	width        uint
	mouse        bool
	watch        bool
	engineFlag   string
	speechEngine ttypes.EngineType

	rootCmd = &cobra.Command{
		Use:   "vokabel [SOURCE]",
		Short: "Read German vocabulary aloud, entry by entry",
		Long: paragraph(
			fmt.Sprintf("\nRead a vocabulary list %s: each word, its example sentence, and on to the next.", keyword("aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") && cmd != configCmd {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	watch = viper.GetBool("watch")

	// engine flag takes precedence over the config file
	engine, err := tts.ValidateEngineSelection(viper.GetString("engine"), tts.Config{
		Engine: ttypes.EngineType(viper.GetString("speech.engine")),
	})
	if err != nil {
		return fmt.Errorf("speech engine: %w", err)
	}
	speechEngine = engine

	if err := validateSpeechConfig(); err != nil {
		return fmt.Errorf("speech config: %w", err)
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

// validateSpeechConfig checks the speech values read from config and flags.
func validateSpeechConfig() error {
	if err := tts.ValidateRate(viper.GetFloat64("speech.rate")); err != nil {
		return fmt.Errorf("rate %.2f: %w", viper.GetFloat64("speech.rate"), err)
	}

	pitch := viper.GetFloat64("speech.pitch")
	if pitch <= 0 || pitch > 2 {
		return fmt.Errorf("pitch must be between 0 and 2, got %.2f", pitch)
	}

	volume := viper.GetFloat64("speech.volume")
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume must be between 0 and 1, got %.2f", volume)
	}

	if pause := viper.GetDuration("speech.pause"); pause < 0 {
		return fmt.Errorf("pause must not be negative, got %s", pause)
	}

	if rpm := viper.GetInt("speech.gtts.requests_per_minute"); rpm < 1 {
		return fmt.Errorf("gtts requests_per_minute must be at least 1, got %d", rpm)
	}

	for locale, model := range localeMap(viper.GetStringMapString("speech.piper.models")) {
		model = expandPath(model)
		if _, err := os.Stat(model); err != nil && speechEngine == ttypes.EnginePiper {
			return fmt.Errorf("piper model for %s: %w", locale, err)
		}
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// sourceFromArgs picks the vocabulary source: the argument, piped stdin,
// the configured source, then the default file.
func sourceFromArgs(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if yes, err := stdinIsPipe(); err != nil {
		return "", err
	} else if yes {
		return "-", nil
	}
	if s := viper.GetString("source"); s != "" {
		return expandPath(s), nil
	}
	return vocab.DefaultSource, nil
}

func execute(_ *cobra.Command, args []string) error {
	source, err := sourceFromArgs(args)
	if err != nil {
		return err
	}
	return runTUI(source)
}

func progressPath() (string, error) {
	if p := viper.GetString("progress.db"); p != "" {
		return expandPath(p), nil
	}
	p, err := gap.NewScope(gap.User, appName).DataPath("progress.db")
	if err != nil {
		return "", fmt.Errorf("unable to find data directory: %w", err)
	}
	return p, nil
}

// openProgress opens the SQLite progress store, falling back to memory so
// the reader still works without a writable data directory.
func openProgress() *progress.Store {
	path, err := progressPath()
	if err == nil {
		var backend *progress.SQLiteBackend
		backend, err = progress.OpenSQLite(path)
		if err == nil {
			log.Debug("progress database", "path", path)
			return progress.New(backend)
		}
	}
	log.Warn("progress will not persist", "error", err)
	return progress.New(progress.NewMemoryBackend())
}

func runTUI(source string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Source = source
	cfg.Watch = watch
	cfg.EnableMouse = mouse
	cfg.GlamourMaxWidth = width
	cfg.EngineName = string(speechEngine)

	speechCfg := speechConfig()
	stack, err := newSpeechStack(speechCfg, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			log.Warn("closing speech", "error", err)
		}
	}()

	store := openProgress()
	defer store.Close() //nolint:errcheck

	prefetch := stack.prefetcher()
	defer prefetch.Close() //nolint:errcheck

	events := ui.NewEvents()
	defer events.Close()

	controller := playback.New(stack.speaker, store, playback.Config{
		Pause:    speechCfg.Pause,
		OnChange: events.Push,
	})
	defer controller.Close()

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, ui.Deps{
		Player:      controller,
		Events:      events,
		Rate:        stack.speaker,
		Progress:    store,
		Prefetch:    prefetch,
		CheckSpeech: stack.check,
	}).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&engineFlag, "engine", "e", "", "speech engine: espeak, piper, gtts or mock")
	rootCmd.PersistentFlags().Float64("rate", 0.9, "speaking rate (0.5 to 2.0)")
	rootCmd.Flags().BoolVarP(&watch, "watch", "W", false, "reload the list when the file changes")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap the detail view at width (set to 0 to use the terminal width)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("speech.rate", rootCmd.PersistentFlags().Lookup("rate"))
	_ = viper.BindPFlag("watch", rootCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	setDefaults()

	rootCmd.AddCommand(configCmd, manCmd, speakCmd, progressCmd)
}

func setDefaults() {
	defaults := tts.DefaultConfig()

	viper.SetDefault("width", 0)
	viper.SetDefault("speech.engine", string(defaults.Engine))
	viper.SetDefault("speech.rate", defaults.Rate)
	viper.SetDefault("speech.pitch", defaults.Pitch)
	viper.SetDefault("speech.volume", defaults.Volume)
	viper.SetDefault("speech.pause", playback.DefaultPause)
	viper.SetDefault("speech.gtts.requests_per_minute", defaults.GTTS.RequestsPerMinute)
	viper.SetDefault("cache.memory_mb", 32)
	viper.SetDefault("cache.disk_mb", 512)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("VOKABEL_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(appName)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], appName+".yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
