package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cableblog/sitesearch/internal/search"
)

// RunTUI runs the full-screen search box until the user quits or ctx is
// cancelled.
func RunTUI(ctx context.Context, s Searcher, cfg Config) error {
	m := newSearchModel(ctx, s, cfg)

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(cfg.Input),
		tea.WithOutput(cfg.Output),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("search box: %w", err)
	}
	if fm, ok := final.(*searchModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

// Message types for bubbletea
type (
	// debounceMsg fires when typing has paused; stale ones are dropped.
	debounceMsg struct {
		seq  int
		text string
	}
)

// searchModel is the bubbletea model for the search box. Every change of
// the input text runs one query cycle inside Update, so cycles complete in
// keystroke order on the bubbletea event loop.
type searchModel struct {
	ctx      context.Context
	searcher Searcher
	input    textinput.Model
	styles   Styles
	title    string
	debounce time.Duration

	// seq numbers input changes so only the latest debounce timer fires.
	seq     int
	results *search.Results
	err     error

	width    int
	height   int
	quitting bool
}

func newSearchModel(ctx context.Context, s Searcher, cfg Config) *searchModel {
	styles := GetStyles(cfg.NoColor)

	ti := textinput.New()
	ti.Placeholder = "type to search posts"
	ti.Prompt = "› "
	ti.PromptStyle = styles.Prompt
	ti.CharLimit = 256
	ti.Focus()

	return &searchModel{
		ctx:      ctx,
		searcher: s,
		input:    ti,
		styles:   styles,
		title:    cfg.Title,
		debounce: cfg.Debounce,
		width:    80,
		height:   24,
	}
}

// Init implements tea.Model. The empty box is queried once so the count
// line shows from the start.
func (m *searchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.run(""))
}

// Update implements tea.Model.
func (m *searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() == before {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.changed(m.input.Value()))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case debounceMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.run(msg.text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// changed records a new input text and queries it, at once or after the
// debounce pause.
func (m *searchModel) changed(text string) tea.Cmd {
	m.seq++
	seq := m.seq
	if m.debounce <= 0 {
		return m.run(text)
	}
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq, text: text}
	})
}

// run queries text and puts the results on screen. A failed query ends
// the program.
func (m *searchModel) run(text string) tea.Cmd {
	results, err := m.searcher.Query(m.ctx, text)
	if err != nil {
		m.err = err
		return tea.Quit
	}
	m.results = results
	return nil
}

// View implements tea.Model.
func (m *searchModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.styles.Header.Render(m.title))
	sections = append(sections, m.input.View())
	sections = append(sections, m.styles.Border.Render(strings.Repeat("─", max(m.width-2, 10))))

	if m.err != nil {
		sections = append(sections, m.styles.Error.Render("✗ "+m.err.Error()))
	} else if m.results != nil {
		sections = append(sections, m.renderResults())
	}

	sections = append(sections, m.styles.Dim.Render("esc to quit"))
	return strings.Join(sections, "\n")
}

// renderResults renders the count line and as many entries as fit.
func (m *searchModel) renderResults() string {
	r := m.results
	lines := []string{m.styles.Count.Render(fmt.Sprintf("%d Result(s) found", r.Count()))}

	// header, input, divider, count, footer
	budget := m.height - 5
	for _, e := range r.Entries {
		block := m.renderEntry(e)
		n := len(block) + 1
		if budget-n < 0 {
			if rest := r.Count() - e.Rank + 1; rest > 0 {
				lines = append(lines, m.styles.Dim.Render(fmt.Sprintf("… %d more", rest)))
			}
			break
		}
		budget -= n
		lines = append(lines, "")
		lines = append(lines, block...)
	}
	return strings.Join(lines, "\n")
}

func (m *searchModel) renderEntry(e search.Entry) []string {
	p := e.Post
	width := max(m.width-4, 20)

	block := []string{
		m.styles.Rank.Render(fmt.Sprintf("%2d.", e.Rank)) + " " + m.styles.Title.Render(p.Title),
		"    " + m.styles.URL.Render(p.URL),
	}
	if p.HasTeaser() {
		block = append(block, "    "+m.styles.Teaser.Render("teaser: "+strings.TrimSpace(p.Teaser)))
	}
	if excerpt := strings.Join(strings.Fields(p.Excerpt), " "); excerpt != "" {
		block = append(block, "    "+m.styles.Excerpt.Render(truncate(excerpt, width)))
	}
	if meta := metaLine(p.Categories, p.Tags); meta != "" {
		block = append(block, "    "+m.styles.Label.Render(truncate(meta, width)))
	}
	return block
}

func metaLine(categories, tags []string) string {
	var parts []string
	if len(categories) > 0 {
		parts = append(parts, "in "+strings.Join(categories, ", "))
	}
	if len(tags) > 0 {
		parts = append(parts, "#"+strings.Join(tags, " #"))
	}
	return strings.Join(parts, "  ")
}

// truncate shortens s to at most width cells, marking the cut with an
// ellipsis.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
