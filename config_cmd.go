package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# vocabulary file, directory or URL (default "words_a1.csv")
source: ""
# reload the list when the file changes
watch: false
# mouse wheel support
mouse: false
# word-wrap the entry detail view at width (0 = terminal width)
width: 0

speech:
  # engine: espeak, piper, gtts or mock
  engine: "espeak"
  # 0.5 to 2.0, 1.0 is the engine's normal speed
  rate: 0.9
  pitch: 1.0
  # 0.0 to 1.0
  volume: 1.0
  # silence after the word and after the example
  pause: "500ms"
  # engine voice per locale
  voices:
    de-DE: ""
    en-US: ""
  piper:
    # one .onnx model per locale
    models:
      de-DE: ""
      en-US: ""
    speaker: ""
  gtts:
    requests_per_minute: 50

cache:
  # defaults to the user cache directory
  dir: ""
  memory_mb: 32
  disk_mb: 512

progress:
  # defaults to progress.db in the user data directory
  db: ""
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the vokabel config file",
	Long:    paragraph(fmt.Sprintf("\n%s the vokabel config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("vokabel config\nvokabel config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Vokabel", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
