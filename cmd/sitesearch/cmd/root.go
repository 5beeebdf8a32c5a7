// Package cmd provides the CLI commands for sitesearch.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	serrors "github.com/cableblog/sitesearch/internal/errors"
	"github.com/cableblog/sitesearch/internal/profiling"
	"github.com/cableblog/sitesearch/pkg/version"
)

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	configDir string
	postsFile string
	logLevel  string
	debug     bool

	profile profiling.Options
	session *profiling.Session
}

// NewRootCmd creates the root command for the sitesearch CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sitesearch",
		Short: "Instant search over a blog's posts",
		Long: `sitesearch indexes a blog's post list (title, excerpt, categories, tags)
and answers as-you-type queries with ranked results.

Every keystroke runs one query cycle: the index returns matching post ids,
each id is looked up in the post store, and the entries are rendered as
the theme's HTML fragment, a text listing, or JSON.

Posts come from --posts, data.posts_file in the configuration, or the
built-in post list.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("sitesearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "Directory holding .sitesearch.yaml (default: current directory)")
	cmd.PersistentFlags().StringVar(&opts.postsFile, "posts", "", "Post list to index (.yaml, .yml or .json)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.sitesearch/logs/")

	cmd.PersistentFlags().StringVar(&opts.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Mem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return opts.startProfiling()
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		return opts.stopProfiling()
	}

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newTUICmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (o *rootOptions) startProfiling() error {
	if !o.profile.Enabled() {
		return nil
	}
	s, err := profiling.Start(o.profile)
	if err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	o.session = s
	return nil
}

func (o *rootOptions) stopProfiling() error {
	s := o.session
	o.session = nil
	if s == nil {
		return nil
	}
	if err := s.Stop(); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	slog.Debug("profiles_written",
		slog.String("cpu", o.profile.CPU),
		slog.String("mem", o.profile.Mem),
		slog.String("trace", o.profile.Trace),
		slog.String("heap_in_use", profiling.FormatBytes(profiling.HeapInUse())))
	return nil
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprint(os.Stderr, serrors.FormatForCLI(err))
	}
	return err
}
