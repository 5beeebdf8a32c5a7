package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cableblog/sitesearch/internal/render"
)

// RunPlain reads one query per input line and writes the text rendering of
// its results, separated by a blank line. It returns when input ends or ctx
// is cancelled.
func RunPlain(ctx context.Context, s Searcher, cfg Config) error {
	if cfg.Input == nil {
		return fmt.Errorf("line mode needs an input")
	}

	scanner := bufio.NewScanner(cfg.Input)
	first := true
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := strings.TrimRight(scanner.Text(), "\r")

		if !first {
			if _, err := io.WriteString(cfg.Output, "\n"); err != nil {
				return err
			}
		}
		first = false

		if err := s.Keystroke(ctx, line, render.Text{}, cfg.Output); err != nil {
			return fmt.Errorf("query %q: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	return nil
}
