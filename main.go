// Package main provides the entry point for the frasi CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/deck"
	"github.com/dgnsrekt/frasi/internal/quiz"
	"github.com/dgnsrekt/frasi/internal/settings"
	"github.com/dgnsrekt/frasi/internal/speech"
	"github.com/dgnsrekt/frasi/internal/store"
	"github.com/dgnsrekt/frasi/internal/tts"
	"github.com/dgnsrekt/frasi/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	mouse      bool
	ttsEngine  string
	strategy   string
	driver     string
	storePath  string
	ephemeral  bool
	page       string

	rootCmd = &cobra.Command{
		Use:   "frasi [DECK]",
		Short: "Learn Italian phrases in your terminal",
		Long: paragraph(
			fmt.Sprintf("\nLearn Italian phrases in your terminal, %s!", keyword("ad alta voce")),
		),
		Example: paragraph("frasi\nfrasi saluti.yaml\nfrasi https://example.com/deck.json --tts piper"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("config") {
				if err := readConfigFlag(); err != nil {
					return err
				}
			}
			return validateOptions()
		},
		RunE: execute,
	}
)

func validateOptions() error {
	// grab config values from Viper
	mouse = viper.GetBool("mouse")
	driver = viper.GetString("storage.driver")
	storePath = viper.GetString("storage.path")
	ephemeral = viper.GetBool("ephemeral")

	// CLI flag takes precedence over config file
	ttsEngine = viper.GetString("tts-engine")
	if ttsEngine == "" {
		ttsEngine = viper.GetString("tts.engine")
	}
	if _, err := tts.ParseEngine(ttsEngine); err != nil {
		return err
	}

	strategy = viper.GetString("strategy")
	if strategy == "" {
		strategy = viper.GetString("tts.strategy")
	}
	if _, err := speech.ParseStrategy(strategy); err != nil {
		return err
	}
	return nil
}

// loadDeck loads the deck named on the command line, or the built-in one.
func loadDeck(ctx context.Context, args []string) (*deck.Deck, error) {
	d := deck.Default()
	if len(args) > 0 {
		var err error
		if d, err = deck.Load(ctx, args[0]); err != nil {
			return nil, err
		}
	}
	if page != "" {
		d.Page = page
	}
	return d, nil
}

func execute(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("frasi needs a terminal, try frasi list to print a deck")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := loadDeck(ctx, args)
	if err != nil {
		return err
	}
	return runTUI(ctx, args, d)
}

func runTUI(ctx context.Context, args []string, d *deck.Deck) error {
	// Read environment to get the UI knobs
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.EnableMouse = mouse
	if len(args) > 0 && !deck.IsURL(args[0]) {
		cfg.Path = args[0]
	}

	sess, err := openSession(ctx, d.Page)
	if err != nil {
		return err
	}
	defer sess.Close()
	cfg.Engine = sess.engineName

	host, err := quiz.New(d.Phrases, quiz.WithRecorder(sess.counter))
	if err != nil {
		return err
	}

	app := ui.App{
		Deck:     d,
		Settings: settings.New(sess.store),
		Counter:  sess.counter,
		Speaker:  sess.speaker,
		Quiz:     host,
	}
	if w, ok := sess.store.(store.Watcher); ok {
		app.Watcher = w
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(ctx, cfg, app).Run(); err != nil && !errors.Is(err, context.Canceled) {
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

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringVar(&ttsEngine, "tts", "", "speech engine: piper, gtts or none")
	flags.StringVar(&strategy, "strategy", "", "audio unlock strategy: none, prime, queue, preload or gesture")
	flags.StringVar(&driver, "storage", "", "storage driver: file, sqlite or memory")
	flags.StringVar(&storePath, "store", "", "storage path (default in the user data directory)")
	flags.BoolVar(&ephemeral, "ephemeral", false, "keep settings and revisions in memory only")
	flags.StringVar(&page, "page", "", "page name revisions are counted under (default from the deck)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support")

	// Config bindings
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("tts-engine", flags.Lookup("tts"))
	_ = viper.BindPFlag("strategy", flags.Lookup("strategy"))
	_ = viper.BindPFlag("storage.driver", flags.Lookup("storage"))
	_ = viper.BindPFlag("storage.path", flags.Lookup("store"))
	_ = viper.BindPFlag("ephemeral", flags.Lookup("ephemeral"))

	viper.SetDefault("mouse", false)
	viper.SetDefault("storage.driver", store.DriverFile)

	// TTS defaults
	def := tts.DefaultConfig()
	viper.SetDefault("tts.engine", "")
	viper.SetDefault("tts.language", def.Language)
	viper.SetDefault("tts.rate", def.Rate)
	viper.SetDefault("tts.strategy", def.Strategy)
	viper.SetDefault("tts.piper.binary", def.Piper.Binary)
	viper.SetDefault("tts.gtts.requests_per_minute", def.GTTS.RequestsPerMinute)
	viper.SetDefault("tts.cache.max_size_mb", def.Cache.MaxSizeMB)

	rootCmd.AddCommand(configCmd, manCmd, listCmd, sayCmd, statsCmd, decksCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "frasi")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "frasi")}, dirs...)
	}

	if c := os.Getenv("FRASI_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("frasi")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("frasi")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "frasi.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
		return
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Warn("Could not parse configuration file", "err", err)
	}
}
