// Package ui provides the terminal search box and status views.
//
// On an interactive terminal the search box is a bubbletea program that
// re-runs the query on every keystroke. When stdin or stdout is not a
// terminal it falls back to line mode: each input line is one query.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/cableblog/sitesearch/internal/search"
)

// Searcher is the part of search.Handler the search box needs.
type Searcher interface {
	Query(ctx context.Context, text string) (*search.Results, error)
	Keystroke(ctx context.Context, text string, r search.Renderer, w io.Writer) error
}

// Config configures the search box.
type Config struct {
	Input      io.Reader
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	Debounce   time.Duration
	Title      string
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithInput sets where keystrokes or query lines are read from.
func WithInput(r io.Reader) ConfigOption {
	return func(c *Config) {
		c.Input = r
	}
}

// WithForcePlain forces line mode.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithDebounce delays the query until typing pauses for d. Zero queries on
// every keystroke.
func WithDebounce(d time.Duration) ConfigOption {
	return func(c *Config) {
		if d > 0 {
			c.Debounce = d
		}
	}
}

// WithTitle sets the header shown above the input.
func WithTitle(title string) ConfigOption {
	return func(c *Config) {
		c.Title = title
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Input:   os.Stdin,
		Output:  output,
		NoColor: DetectNoColor(),
		Title:   "Search",
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// Interactive reports whether cfg allows the full-screen search box.
func (c Config) Interactive() bool {
	if c.ForcePlain || DetectCI() {
		return false
	}
	return IsTTY(c.Output) && IsTTYReader(c.Input)
}

// Run starts the search box appropriate for cfg and blocks until the user
// quits, input ends, or ctx is cancelled.
func Run(ctx context.Context, s Searcher, cfg Config) error {
	if !cfg.Interactive() {
		return RunPlain(ctx, s, cfg)
	}
	return RunTUI(ctx, s, cfg)
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// IsTTYReader checks if input is a terminal.
func IsTTYReader(r io.Reader) bool {
	if r == nil {
		return false
	}
	f, ok := r.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
