package cli

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/fileio"
	"github.com/matzehuels/netview/pkg/session"
)

// maxParallelImports bounds concurrent reads and fetches.
const maxParallelImports = 4

type importOpts struct {
	name string
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import <file-or-url>...",
		Short: "Import session files or URLs into the store",
		Long: `Import one or more session documents (JSON, optionally gzipped) from local
files or http(s) URLs. Sources are read concurrently; nothing is stored unless
every source parses.

Examples:
  netview import karate.json
  netview import graphs/*.json.gz
  netview import https://example.org/network.json --name "Example"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.name != "" && len(args) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--name needs a single source, got %d", len(args))
			}
			return c.runImport(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "session name (default: file name)")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, sources []string, opts importOpts) error {
	st, _, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	spin := startSpinner(ctx, os.Stderr, fmt.Sprintf("Reading %d source(s)...", len(sources)))
	sessions, err := readSources(ctx, sources, func(done int) {
		spin.SetLabel(fmt.Sprintf("Read %d of %d source(s)...", done, len(sources)))
	})
	if err != nil {
		spin.Fail("Import failed")
		return err
	}
	spin.Stop()

	for i, sess := range sessions {
		if opts.name != "" {
			sess.Name = opts.name
		}
		sess.ID = ""
		if err := st.PutSession(ctx, sess); err != nil {
			return fmt.Errorf("store %s: %w", sources[i], err)
		}
		printSuccess("Imported %s", StyleHighlight.Render(sess.Name))
		printStats(len(sess.Nodes), len(sess.Edges), len(sess.Snapshots))
		printDetail("id: %s", sess.ID)
		c.Logger.Debug("session imported", "id", sess.ID, "source", sources[i])
	}

	if len(sessions) == 1 {
		printNewline()
		printNextStep("Lay it out", fmt.Sprintf("%s layout %s --save initial", appName, sessions[0].ID))
	}
	return nil
}

// readSources loads every source concurrently and returns the sessions in
// source order. The first failure cancels the rest.
// readSources reads all sources in parallel. progress, if set, is called
// with the number of sources read so far.
func readSources(ctx context.Context, sources []string, progress func(done int)) ([]*session.Session, error) {
	out := make([]*session.Session, len(sources))
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelImports)
	for i, src := range sources {
		g.Go(func() error {
			sess, err := readSource(gctx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
			out[i] = sess
			if progress != nil {
				progress(int(done.Add(1)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func readSource(ctx context.Context, src string) (*session.Session, error) {
	if errors.IsURL(src) {
		return fileio.FetchURL(ctx, src)
	}
	return fileio.ReadFile(src)
}
