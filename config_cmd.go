package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# mouse support
mouse: false

# where settings and revision counters are kept
storage:
  # file, sqlite or memory
  driver: "file"
  # path: "~/.local/share/frasi/frasi.json"

# speech
tts:
  # piper, gtts or none (revisions are still counted)
  engine: ""
  # engine tried after repeated failures
  fallback: ""
  language: "it"
  # speaking rate (0.5 to 2.0)
  rate: 0.98
  # how audio is unlocked: none, prime, queue, preload or gesture
  strategy: "prime"

  piper:
    binary: "piper"
    # model_path: "~/.local/share/piper/it_IT-paola-medium.onnx"
    # config_path: "~/.local/share/piper/it_IT-paola-medium.onnx.json"
    # speaker: "0"

  gtts:
    language: "it"
    slow: false
    requests_per_minute: 50

  cache:
    # dir: "~/.cache/frasi/audio"
    max_size_mb: 100
    disabled: false
`

var (
	configPath bool

	configCmd = &cobra.Command{
		Use:     "config",
		Short:   "Edit the frasi config file",
		Long:    paragraph(fmt.Sprintf("\n%s the frasi config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created with the defaults.", keyword("Edit"))),
		Example: paragraph("frasi config\nfrasi config --path\nfrasi config --config path/to/frasi.yml"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ensureConfigFile(); err != nil {
				return err
			}
			if configPath {
				fmt.Fprintln(cmd.OutOrStdout(), configFile)
				return nil
			}

			c, err := editor.Cmd("frasi", configFile)
			if err != nil {
				return fmt.Errorf("unable to set config file: %w", err)
			}
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("unable to run command: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Wrote config file to:", configFile)
			return nil
		},
	}
)

// ensureConfigFile writes the default configuration to configFile unless a
// file is already there.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.ConfigFileUsed()
	}
	if configFile == "" {
		return errors.New("no configuration file path")
	}

	switch ext := filepath.Ext(configFile); ext {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("%q is not a supported configuration type: use .yaml or .yml", ext)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}
	f, err := os.OpenFile(configFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to create config file: %w", err)
	}
	if _, err := f.WriteString(defaultConfig); err != nil {
		_ = f.Close()
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return f.Close()
}

// readConfigFlag loads the file named by --config over the default places.
func readConfigFlag() error {
	if configFile == "" {
		return nil
	}
	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// frasi config creates it
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read %s: %w", configFile, err)
	}
	log.Debug("Using configuration file", "path", configFile)
	return nil
}

func init() {
	configCmd.Flags().BoolVar(&configPath, "path", false, "print the config file path instead of editing it")
}
