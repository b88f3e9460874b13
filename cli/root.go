package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aguxez/dine/agent"
	"github.com/aguxez/dine/api"
	"github.com/aguxez/dine/config"
	"github.com/aguxez/dine/logger"
	"github.com/aguxez/dine/schedule"
	"github.com/aguxez/dine/session"
)

// app is what every command needs, built once the config is loaded.
type app struct {
	runID      string
	cfg        config.Config
	client     *api.Client
	persistent *session.FileStore
	sessions   *session.Manager
	evaluator  *schedule.Evaluator
}

func newApp(cfg config.Config) (*app, error) {
	ev, err := schedule.NewEvaluator(cfg.TimeZone)
	if err != nil {
		return nil, err
	}
	fs := session.NewFileStore(cfg.Session.Dir)

	return &app{
		runID:      uuid.NewString(),
		cfg:        cfg,
		client:     api.NewClient(cfg.BaseURL, api.WithTimeout(cfg.Timeout)),
		persistent: fs,
		sessions:   session.NewManager(fs, &session.MemoryStore{}, cfg.Session.MaxAge),
		evaluator:  ev,
	}, nil
}

// initLogger builds the global logger writing to file (stderr when empty)
// and tags every entry with the run id so one invocation's lines group together.
func (a *app) initLogger(file string) error {
	if err := logger.Init(a.cfg.Log.Env, a.cfg.Log.Level, file); err != nil {
		return err
	}
	logger.With(zap.String("run_id", a.runID))
	return nil
}

// logToScreenFile moves logging off the terminal before the UI takes it over.
func (a *app) logToScreenFile() (string, error) {
	path := a.cfg.ScreenLogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}
	_ = logger.Sync()
	if err := a.initLogger(path); err != nil {
		return "", err
	}
	return path, nil
}

// current returns the logged in session or a message telling the user to log in.
func (a *app) current() (session.Session, error) {
	s, err := a.sessions.Current()
	switch {
	case errors.Is(err, session.ErrNoSession):
		return s, errors.New("not logged in, run `dine login` first")
	case errors.Is(err, session.ErrExpired):
		return s, errors.New("session expired, run `dine login` again")
	}
	return s, err
}

// advisor is nil when no LLM token is configured.
func (a *app) advisor() (*agent.Advisor, error) {
	if a.cfg.LLM.Token == "" {
		return nil, nil
	}
	llm, err := agent.NewOpenAI(a.cfg.LLM.BaseURL, a.cfg.LLM.Token, a.cfg.LLM.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM client: %w", err)
	}
	return agent.NewAdvisor(llm), nil
}

func NewRootCommand() *cobra.Command {
	var (
		configPath string
		a          *app
	)

	root := &cobra.Command{
		Use:           "dine",
		Short:         "Browse the dining hall menu, rate dishes, and tune your macro targets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if a, err = newApp(cfg); err != nil {
				return err
			}
			if err := a.initLogger(cfg.Log.File); err != nil {
				return err
			}
			for _, w := range cfg.Warnings() {
				logger.Warn("config", zap.Error(w))
			}
			logger.Debug("config loaded", zap.String("base_url", cfg.BaseURL), zap.String("time_zone", cfg.TimeZone))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	get := func() *app { return a }
	root.AddCommand(
		newLoginCommand(get),
		newRegisterCommand(get),
		newLogoutCommand(get),
		newMenuCommand(get),
		newRateCommand(get),
		newNotificationsCommand(get),
		newProfileCommand(get),
		newAdviseCommand(get),
		newTUICommand(get),
	)
	return root
}

func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
