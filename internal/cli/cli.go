// Package cli implements the netview command-line interface.
//
// Datasets are imported into a store as sessions. Every other command opens
// a view on a stored session, optionally starting from one of its snapshots,
// and applies filters and field bindings from flags before it acts.
//
// # Commands
//
// The main commands are:
//   - import: Read node/edge datasets from files or URLs into sessions
//   - sessions: List, show, rename and delete sessions
//   - snapshot: Save, rename and delete view snapshots
//   - layout: Run the force layout headlessly
//   - render: Draw a view as SVG, DOT, JSON, PDF or PNG
//   - explore: Interactive terminal explorer with a live layout
//   - store, config: Inspect the storage backend and settings
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/buildinfo"
	"github.com/matzehuels/netview/pkg/config"
	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/snapshot"
	"github.com/matzehuels/netview/pkg/store"
	"github.com/matzehuels/netview/pkg/viewstate"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "netview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// settingsPath overrides the settings file location (--config).
	settingsPath string
	// backend overrides the configured store backend (--store).
	backend string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Netview explores networks with a force-directed view",
		Long:          `Netview imports node/edge datasets as sessions, lays them out with a force simulation and saves filtered, styled views as snapshots.`,
		Version:       buildinfo.Current().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.settingsPath, "config", "", "settings file (default "+config.Path()+")")
	root.PersistentFlags().StringVar(&c.backend, "store", "", "storage backend: "+strings.Join(config.Backends, ", ")+" (overrides settings)")
	_ = root.RegisterFlagCompletionFunc("store", cobra.FixedCompletions(config.Backends, cobra.ShellCompDirectiveNoFileComp))

	root.AddCommand(c.importCommand())
	root.AddCommand(c.sessionsCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Settings & Store
// =============================================================================

// settings loads the settings file and applies flag overrides.
func (c *CLI) settings() (*config.Settings, error) {
	path := c.settingsPath
	if path == "" {
		path = config.Path()
	}
	s, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load settings %s: %w", path, err)
	}
	if c.backend != "" {
		s.Store.Backend = c.backend
	}
	return s, nil
}

// openStore opens the configured store. Callers must Close it.
func (c *CLI) openStore(ctx context.Context) (store.Store, *config.Settings, error) {
	s, err := c.settings()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, s.Store, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("store opened", "backend", st.Backend())
	return st, s, nil
}

// =============================================================================
// Views
// =============================================================================

// viewFlags are the flags shared by commands that open a view.
type viewFlags struct {
	snapshot int
	filters  []string
	binds    []string
	ranges   []string
	ticks    int
	profile  string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.snapshot, "snapshot", "s", snapshot.None, "snapshot index to open (-1 for none)")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, `filter to add, e.g. "node.w>=3" or "node.group:a,b" (repeatable)`)
	cmd.Flags().StringArrayVar(&f.binds, "bind", nil, `channel binding, e.g. "nodeColor=node.group" (repeatable)`)
	cmd.Flags().StringArrayVar(&f.ranges, "range", nil, `range preset for a channel, e.g. "nodeColor=greys" (repeatable)`)
	cmd.Flags().IntVar(&f.ticks, "ticks", 0, "maximum layout ticks (default from settings)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "layout profile")
}

// openView loads a session from st and opens a view on it with the flags
// applied. The caller must Close the view.
func (c *CLI) openView(ctx context.Context, st store.Store, s *config.Settings, ref string, f viewFlags) (*viewstate.ViewState, error) {
	sess, err := resolveSession(ctx, st, ref)
	if err != nil {
		return nil, err
	}

	v, err := viewstate.New(sess, f.snapshot, viewstate.Options{
		Store:    st,
		Width:    s.Layout.Width,
		Height:   s.Layout.Height,
		Interval: s.Layout.Interval.Duration,
		Logger:   c.Logger,
	})
	if err != nil {
		return nil, err
	}

	if err := applyViewFlags(v, f); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func applyViewFlags(v *viewstate.ViewState, f viewFlags) error {
	for _, expr := range f.filters {
		flt, err := parseFilter(expr)
		if err != nil {
			return err
		}
		if err := v.AddFilter(flt); err != nil {
			return err
		}
	}
	for _, expr := range f.binds {
		ch, field, err := parseBinding(expr)
		if err != nil {
			return err
		}
		if err := v.BindField(ch, field); err != nil {
			return err
		}
	}
	for _, expr := range f.ranges {
		ch, preset, err := parseRange(expr)
		if err != nil {
			return err
		}
		enc := v.Appearance()[ch]
		enc.RangePreset, enc.Range = preset, nil
		if err := v.SetAppearance(ch, enc); err != nil {
			return err
		}
	}
	if f.profile != "" {
		cfg := v.Config()
		cfg.LayoutProfile = f.profile
		if err := v.SetConfig(cfg); err != nil {
			return err
		}
	}
	return nil
}

// resolveSession finds a session by id, by exact name, or by its position
// in the listing ("1" is the most recently updated).
func resolveSession(ctx context.Context, st store.Store, ref string) (*session.Session, error) {
	sess, err := st.GetSession(ctx, ref)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, errors.ErrCodeStorage) {
		return nil, err
	}

	headers, herr := st.SessionHeaders(ctx)
	if herr != nil {
		return nil, herr
	}
	for _, h := range headers {
		if h.Name == ref {
			return st.GetSession(ctx, h.ID)
		}
	}
	if n, nerr := strconv.Atoi(ref); nerr == nil && n >= 1 && n <= len(headers) {
		return st.GetSession(ctx, headers[n-1].ID)
	}
	return nil, errors.New(errors.ErrCodeSessionNotFound, "no session with id, name or number %q", ref)
}

// converge runs the layout headlessly for up to ticks steps.
func (c *CLI) converge(ctx context.Context, v *viewstate.ViewState, ticks int) (int, error) {
	h := v.Header()
	spin := startSpinner(ctx, os.Stderr, fmt.Sprintf("Laying out %d nodes...", h.FilteredNodes))
	prog := newProgress(c.Logger)
	n, err := v.Converge(ctx, ticks)
	spin.Stop()
	if err != nil {
		return n, err
	}
	prog.done("Layout converged", "ticks", n, "nodes", h.FilteredNodes)
	return n, nil
}
