// Package progress renders a live terminal view while a scan runs in the
// background, replacing the streaming report output with a spinner until
// the scan completes.
package progress

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dupfind/dupfind/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Result is the outcome of a scan run while the progress model renders.
type Result struct {
	Stats *pipeline.Stats
	Err   error
}

type resultMsg Result

func waitForResult(ch <-chan Result) tea.Cmd {
	return func() tea.Msg {
		return resultMsg(<-ch)
	}
}

// model drives a spinner until a Result arrives on ch, then renders a
// one-line summary and quits.
type model struct {
	spinner spinner.Model
	start   time.Time
	ch      <-chan Result
	done    bool
	result  Result
}

func newModel(ch <-chan Result) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return model{spinner: s, start: time.Now(), ch: ch}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForResult(m.ch))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.done = true
		m.result = Result(msg)
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		if m.result.Err != nil {
			return errStyle.Render(fmt.Sprintf("scan failed: %v\n", m.result.Err))
		}
		elapsed := time.Since(m.start).Round(time.Millisecond)
		s := m.result.Stats
		return doneStyle.Render(fmt.Sprintf(
			"scan complete in %s: %d files visited, %d duplicates, %d hard links\n",
			elapsed, s.FilesVisited, s.DupReports, s.HardLinkReports,
		))
	}
	return fmt.Sprintf("%s %s scanning...\n", m.spinner.View(), titleStyle.Render("dupfind"))
}

// Run starts scan in a background goroutine and drives a spinner until it
// completes, returning scan's result. The duplicate/hard-link report lines
// themselves are not rendered by the TUI; callers write scan's buffered
// output after Run returns, once the alternate screen has been torn down.
func Run(scan func() (*pipeline.Stats, error)) (*pipeline.Stats, error) {
	ch := make(chan Result, 1)
	go func() {
		stats, err := scan()
		ch <- Result{Stats: stats, Err: err}
	}()

	p := tea.NewProgram(newModel(ch))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress: running TUI: %w", err)
	}

	m := finalModel.(model)
	return m.result.Stats, m.result.Err
}
