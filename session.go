package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/audio"
	"github.com/dgnsrekt/frasi/internal/cache"
	"github.com/dgnsrekt/frasi/internal/revision"
	"github.com/dgnsrekt/frasi/internal/speech"
	"github.com/dgnsrekt/frasi/internal/store"
	"github.com/dgnsrekt/frasi/internal/tts"
	"github.com/dgnsrekt/frasi/internal/ttypes"
	"github.com/dgnsrekt/frasi/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// session holds what every command that counts revisions needs.
type session struct {
	store      store.Store
	counter    *revision.Counter
	speaker    *speech.Speaker
	engineName string

	closers []func() error
}

// Close stops the speaker, waiting for a running preload, before closing
// the cache and the store.
func (s *session) Close() {
	if s.speaker != nil {
		s.speaker.Close()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn("close failed", "err", err)
		}
	}
}

// storeLocation returns the driver and path of the persistent store.
func storeLocation() (string, string, error) {
	if ephemeral {
		return store.DriverMemory, "", nil
	}
	drv := driver
	if drv == "" {
		drv = store.DriverFile
	}
	if storePath != "" {
		return drv, utils.ExpandPath(storePath), nil
	}

	name := "frasi.json"
	if drv == store.DriverSQLite || drv == "sqlite3" {
		name = "frasi.db"
	}
	p, err := gap.NewScope(gap.User, "frasi").DataPath(name)
	if err != nil {
		return "", "", fmt.Errorf("unable to find data directory: %w", err)
	}
	return drv, p, nil
}

func openStore() (store.Store, error) {
	drv, p, err := storeLocation()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(drv, p)
	if err != nil {
		return nil, err
	}
	log.Debug("opened store", "driver", drv, "path", p)
	return s, nil
}

// ttsConfig reads the tts section and applies the command line overrides.
func ttsConfig() (tts.Config, error) {
	cfg := tts.DefaultConfig()
	if err := viper.UnmarshalKey("tts", &cfg); err != nil {
		return cfg, fmt.Errorf("invalid tts configuration: %w", err)
	}

	engine, err := tts.ValidateEngineSelection(ttsEngine, cfg)
	if err != nil {
		return cfg, err
	}
	cfg.Engine = engine
	if strategy != "" {
		cfg.Strategy = strategy
	}
	return cfg.Normalize(), nil
}

// openSession opens the store and builds the speaker for page.
func openSession(ctx context.Context, page string) (*session, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	sess := &session{store: st, closers: []func() error{st.Close}}
	sess.counter = revision.New(st, page)

	cfg, err := ttsConfig()
	if err != nil {
		sess.Close()
		return nil, err
	}
	if err := sess.initSpeaker(ctx, cfg); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

func (s *session) initSpeaker(ctx context.Context, cfg tts.Config) error {
	strat, err := speech.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}

	backend, err := s.newBackend(ctx, cfg)
	if err != nil {
		return err
	}

	s.speaker = speech.NewSpeaker(backend,
		speech.WithStrategy(strat),
		speech.WithRecorder(s.counter),
		speech.WithRate(cfg.Rate),
	)
	log.Info("speech ready", "engine", s.engineName, "strategy", strat, "rate", tts.RateDisplay(cfg.Rate))
	return nil
}

// newBackend returns the engine backend, or a silent one when no engine is
// configured.
func (s *session) newBackend(ctx context.Context, cfg tts.Config) (speech.Backend, error) {
	engine, err := tts.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if engine == nil {
		s.engineName = ""
		return &speech.Silent{}, nil
	}
	s.closers = append(s.closers, engine.Close)

	if err := engine.Validate(); err != nil {
		res := tts.ValidateEngine(cfg.Engine, cfg)
		if res.Guidance != "" {
			log.Warn("engine unavailable", "engine", cfg.Engine, "guidance", res.Guidance)
		}
		return nil, err
	}

	info := engine.GetInfo()
	s.engineName = info.Name

	pc := audio.DefaultPlayerConfig()
	if info.SampleRate > 0 {
		pc.SampleRate = info.SampleRate
	}
	player, err := audio.NewPlayer(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("unable to open audio output: %w", err)
	}
	s.closers = append(s.closers, player.Close)

	var clips ttypes.AudioCache
	if !cfg.Cache.Disabled {
		cc := cache.DefaultConfig()
		cc.DiskCapacity = int64(cfg.Cache.MaxSizeMB) << 20
		if cfg.Cache.Dir != "" {
			cc.DiskPath = filepath.Clean(utils.ExpandPath(cfg.Cache.Dir))
		}
		m, err := cache.NewManager(cc)
		if err != nil {
			log.Warn("clip cache disabled", "err", err)
		} else {
			s.closers = append(s.closers, m.Close)
			clips = m
		}
	}

	return speech.NewEngineBackend(engine, player, clips), nil
}
