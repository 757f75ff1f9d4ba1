// Package main provides the CLI entrypoint for tuihold.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuihold/internal/audio"
	"github.com/verte-zerg/tuihold/internal/config"
	"github.com/verte-zerg/tuihold/internal/engine"
	"github.com/verte-zerg/tuihold/internal/generator"
	"github.com/verte-zerg/tuihold/internal/logger"
	"github.com/verte-zerg/tuihold/internal/model"
	"github.com/verte-zerg/tuihold/internal/store"
	"github.com/verte-zerg/tuihold/internal/tui"
)

const (
	defaultDuration    = 30
	defaultRadius      = 4.0
	defaultTargets     = 3
	defaultHoldMs      = 500.0
	defaultCurveWindow = 10
	defaultLogLevel    = "info"
	gameType           = "hold"
)

var (
	playDuration int
	playRadius   float64
	playTargets  int
	playHoldMs   float64
	playSeed     int64
	playSound    bool

	dbPath   string
	logLevel string
	logFile  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuihold",
		Short:         "TUI hold-target pointer trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().IntVar(&playDuration, "duration", defaultDuration, "session length in seconds")
	rootCmd.Flags().Float64Var(&playRadius, "radius", defaultRadius, "target radius in columns")
	rootCmd.Flags().IntVar(&playTargets, "targets", defaultTargets, "number of targets on screen")
	rootCmd.Flags().Float64Var(&playHoldMs, "hold-ms", defaultHoldMs, "hold time needed to complete a target (ms)")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed for target placement (0: random)")
	rootCmd.Flags().BoolVar(&playSound, "sound", true, "ring the terminal bell on completion")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (default: XDG state dir while playing)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

// app holds what every command needs: settings, logger, store and user.
type app struct {
	file   config.FileConfig
	log    *logger.Logger
	st     *store.Store
	user   model.User
	closer []io.Closer
}

// openApp resolves settings (flag > env > config file > default), opens
// the log and the store and restores the current user. fileLog sends logs
// to a file even when --log-file is not given.
func openApp(cmd *cobra.Command, fileLog bool) (*app, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-level", &logLevel, env.LogLevel)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "log-file", &logFile, env.LogFile)
	applyStringConfig(cmd, "db", &dbPath, env.DBPath)
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}

	a := &app{file: fileCfg}
	out := io.Writer(os.Stderr)
	path := logFile
	if path == "" && fileLog {
		path = config.DefaultLogPath()
	}
	if path != "" {
		f, err := logger.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		a.closer = append(a.closer, f)
	}
	a.log = logger.New(logger.WithOutput(out), logger.WithLevel(logger.ParseLevel(logLevel)))
	logger.SetDefault(a.log)

	st, err := store.Open(dbPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a.st = st
	a.closer = append([]io.Closer{st}, a.closer...)

	user, err := st.CurrentUser(context.Background())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	a.user = user
	a.log.Debug("using db %s as %s", dbPath, user.Username)
	return a, nil
}

func (a *app) close() {
	for _, c := range a.closer {
		if cerr := c.Close(); cerr != nil {
			logErrf("failed to close: %v\n", cerr)
		}
	}
	a.closer = nil
}

func (a *app) userContext() model.UserContext {
	return model.UserContext{UserID: a.user.ID, Username: a.user.Username, GameType: gameType}
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	game := a.file.Game
	applyIntConfig(cmd, "duration", &playDuration, game.Duration)
	applyFloatConfig(cmd, "radius", &playRadius, game.Radius)
	applyIntConfig(cmd, "targets", &playTargets, game.Targets)
	applyFloatConfig(cmd, "hold-ms", &playHoldMs, game.HoldMs)
	applyInt64Config(cmd, "seed", &playSeed, game.Seed)
	applyBoolConfig(cmd, "sound", &playSound, game.Sound)

	cfg := model.GameConfig{
		DurationSeconds: playDuration,
		Radius:          playRadius,
		MaxTargets:      playTargets,
		HoldDurationMs:  playHoldMs,
	}
	if err := validateGameConfig(cfg); err != nil {
		return err
	}

	gen := generator.New()
	if playSeed != 0 {
		gen = generator.NewSeeded(playSeed)
	}
	a.log.Info("starting %s as %s (seed %d)", gameType, a.user.Username, gen.Seed())

	m := tui.NewModel(tui.Deps{
		Config:  cfg,
		User:    a.userContext(),
		Gateway: store.NewGateway(a.st),
		Audio:   audio.NewBell(os.Stderr, playSound),
		Random:  gen,
		Logger:  a.log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func validateGameConfig(cfg model.GameConfig) error {
	if cfg.DurationSeconds <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if !(cfg.Radius > 0) {
		return fmt.Errorf("--radius must be > 0")
	}
	if cfg.MaxTargets <= 0 {
		return fmt.Errorf("--targets must be > 0")
	}
	if !(cfg.HoldDurationMs > 0) {
		return fmt.Errorf("--hold-ms must be > 0")
	}
	return nil
}

var _ engine.PersistenceGateway = (*store.Gateway)(nil)

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = strings.TrimSpace(*value)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
