// Package main provides the CLI entrypoint for tuireact.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuireact/internal/config"
	"github.com/verte-zerg/tuireact/internal/eventlog"
	"github.com/verte-zerg/tuireact/internal/game"
	"github.com/verte-zerg/tuireact/internal/level"
	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/player"
	"github.com/verte-zerg/tuireact/internal/record"
	"github.com/verte-zerg/tuireact/internal/stats"
	"github.com/verte-zerg/tuireact/internal/statsui"
	"github.com/verte-zerg/tuireact/internal/store"
	"github.com/verte-zerg/tuireact/internal/tui"
)

const (
	defaultCurveWindow      = 10
	defaultLeaderboardLimit = 10
)

var (
	playName   string
	playServer string
	playLevels string
	playSeed   int64

	statsName        string
	statsSince       string
	statsLast        int
	statsCurveWindow int

	leaderboardLimit int
	leaderboardLevel int

	levelsPath string

	nameSet   string
	nameClear bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuireact",
		Short:         "TUI reaction speed game",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playName, "name", "", "player name (skips the name prompt)")
	rootCmd.Flags().StringVar(&playServer, "server", "", "score service URL (default: record locally)")
	rootCmd.Flags().StringVar(&playLevels, "levels", "", "YAML level pack (default: built-in levels)")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "seed for stimulus delays (0: random)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newNameCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "name", &playName, fileCfg.Player.Name)
	applyStringConfig(cmd, "server", &playServer, fileCfg.Player.Server)
	applyStringConfig(cmd, "levels", &playLevels, fileCfg.Game.Levels)

	cfg := model.Config{
		Name:       strings.TrimSpace(playName),
		Server:     strings.TrimSpace(playServer),
		LevelsPath: playLevels,
		Seed:       playSeed,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	levels, err := level.Resolve(cfg.LevelsPath)
	if err != nil {
		return err
	}
	params := fileCfg.Game.Params(game.DefaultParams())
	ctrl, err := game.NewController(levels, params, game.SystemClock(), game.NewDelaySource(cfg.Seed))
	if err != nil {
		return fmt.Errorf("failed to set up game: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	logger, err := eventlog.New(config.DefaultDataDir())
	if err != nil {
		logErrf("event log disabled: %v\n", err)
		logger = nil
	}

	var recorder record.Recorder = st
	if cfg.Server != "" {
		recorder = record.NewClient(cfg.Server, record.DefaultTimeout)
		if logger != nil {
			logErrf("recording to %s, failures are logged to %s\n", cfg.Server, logger.Path())
		}
	}

	if _, err := tui.Run(tui.Options{
		Controller: ctrl,
		Name:       cfg.Name,
		Prefs:      st,
		History:    st,
		Recorder:   recorder,
		Log:        logger,
		Timeout:    record.DefaultTimeout,
	}); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLevelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Show the level table",
		Args:  cobra.NoArgs,
		RunE:  runLevelsCmd,
	}
	cmd.Flags().StringVar(&levelsPath, "levels", "", "YAML level pack (default: built-in levels)")
	return cmd
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "levels", &levelsPath, fileCfg.Game.Levels)
	levels, err := level.Resolve(levelsPath)
	if err != nil {
		return err
	}
	if err := stats.RenderLevels(cmd.OutOrStdout(), levels); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newNameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "name",
		Short: "Show, set or clear the saved player name",
		Args:  cobra.NoArgs,
		RunE:  runNameCmd,
	}
	cmd.Flags().StringVar(&nameSet, "set", "", "save a player name")
	cmd.Flags().BoolVar(&nameClear, "clear", false, "forget the saved player name")
	cmd.MarkFlagsMutuallyExclusive("set", "clear")
	return cmd
}

func runNameCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	out := cmd.OutOrStdout()
	switch {
	case nameClear:
		if err := player.Clear(ctx, st); err != nil {
			return fmt.Errorf("failed to clear name: %w", err)
		}
		_, err = fmt.Fprintln(out, "Saved name cleared.")
	case cmd.Flags().Changed("set"):
		name, serr := player.Save(ctx, st, nameSet)
		if serr != nil {
			return fmt.Errorf("invalid --set value: %w", serr)
		}
		_, err = fmt.Fprintf(out, "Saved name: %s\n", name)
	default:
		name := player.Load(ctx, st)
		if name == "" {
			logErrln("No saved name. Set one with: tuireact name --set <name>")
			return nil
		}
		_, err = fmt.Fprintln(out, name)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsName, "name", "", "player filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N rounds")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Name:        strings.TrimSpace(statsName),
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	model := statsui.NewModel(st, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().IntVar(&leaderboardLimit, "limit", defaultLeaderboardLimit, "number of players")
	cmd.Flags().IntVar(&leaderboardLevel, "level", 0, "only count submissions from this level (0: all)")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	if leaderboardLimit <= 0 {
		return fmt.Errorf("--limit must be > 0")
	}
	if leaderboardLevel < 0 {
		return fmt.Errorf("--level must be >= 0")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	entries, err := st.Leaderboard(context.Background(), leaderboardLimit, leaderboardLevel)
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if err := stats.RenderLeaderboard(cmd.OutOrStdout(), entries); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	p := game.DefaultParams()
	return fmt.Sprintf(`# tuireact configuration
# Uncomment a value to enable it. CLI flags override config values.

[player]
# name = "ada"                          # Skip the name prompt
# server = "http://localhost%s"      # Score service URL (default: record locally)

[game]
# lives = %d                             # Lives per game
# grace-cutoff-ms = %d                 # Reactions faster than this get the grace bonus
# grace-bonus-ms = %d                  # Extra allowance for very fast reactions
# tolerance-ms = %d                     # Allowance over target otherwise
# early-penalty-ticks = %d               # Countdown after clicking too early
# fail-penalty-ticks = %d                # Countdown after a failed round
# advance-delay-ms = %d               # Result display before the level countdown
# advance-ticks = %d                     # Level countdown length
# tick-ms = %d                        # Countdown tick
# levels = "/path/to/levels.yaml"        # Custom level pack

[server]
# addr = %q                         # Score service listen address
# db = "/path/to/server.db"              # Score service database
`,
		defaultServeAddr,
		p.Lives,
		p.GraceCutoff.Milliseconds(),
		p.GraceBonus.Milliseconds(),
		p.Tolerance.Milliseconds(),
		p.EarlyPenaltyTicks,
		p.FailPenaltyTicks,
		p.AdvanceDelay.Milliseconds(),
		p.AdvanceTicks,
		p.Tick.Milliseconds(),
		defaultServeAddr,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Name != "" {
		if _, err := player.Normalize(cfg.Name); err != nil {
			return fmt.Errorf("invalid --name: %w", err)
		}
	}
	if cfg.Server != "" && !strings.HasPrefix(cfg.Server, "http://") && !strings.HasPrefix(cfg.Server, "https://") {
		return errors.New("--server must be an http(s) URL")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
