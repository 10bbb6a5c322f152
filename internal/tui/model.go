package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/answer"
)

// Asker is the session-facing subset used by the TUI.
type Asker interface {
	Ask(query string) (answer.Result, error)
	ClearHistory()
}

// Model is the Bubble Tea model for the interactive QA loop.
type Model struct {
	session Asker
	input   textinput.Model
	vp      viewport.Model
	result  *answer.Result
	status  string
	ready   bool
}

// New creates a new TUI model instance.
func New(session Asker, docCount int) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask about the documents, 'clear' resets the conversation"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		session: session,
		input:   ti,
		vp:      vp,
		status:  fmt.Sprintf("%d document(s) indexed. Type a question and press Enter.", docCount),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + query box + spacer
		vh := msg.Height - reserved - ah
		if vh < 3 {
			vh = 3
		}
		m.vp.Width = max(20, msg.Width)
		m.vp.Height = vh
		m.vp.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			switch {
			case q == "":
			case q == "exit":
				return m, tea.Quit
			case q == "clear":
				m.session.ClearHistory()
				m.result = nil
				m.status = "Conversation history cleared."
				m.input.SetValue("")
				m.vp.SetContent(m.renderResult())
			default:
				res, err := m.session.Ask(q)
				if err != nil {
					m.status = "Error: " + err.Error()
				} else {
					m.result = &res
					m.status = fmt.Sprintf("Answered from %d retrieved chunk(s).", len(res.Retrieved))
				}
				m.input.SetValue("")
				m.vp.SetContent(m.renderResult())
			}
			return m, nil
		case "up":
			m.vp.LineUp(1)
			return m, nil
		case "down":
			m.vp.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Document QA")
	body := answerBoxStyle.Render(m.vp.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderResult() string {
	if m.result == nil {
		return "No answer yet."
	}
	var b strings.Builder
	if m.result.Degraded {
		b.WriteString(degradedStyle.Render("Degraded answer (generation backend unavailable: "+m.result.Reason+")") + "\n\n")
	}
	b.WriteString(m.result.Text)
	if len(m.result.Retrieved) > 0 {
		b.WriteString("\n\n" + sourceHeaderStyle.Render("Sources") + "\n")
		for i, rc := range m.result.Retrieved {
			fmt.Fprintf(&b, "%d. [%s] page %d  score=%.3f\n", i+1, rc.ChunkID, rc.PageNum, rc.SimilarityScore)
		}
	}
	return b.String()
}

var (
	answerBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	degradedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
