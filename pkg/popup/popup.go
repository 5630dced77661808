// Package popup is the settings surface for a running enhancement
// session: a small terminal UI that talks to the session's bridge to
// show and flip the full-height preference.
package popup

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Client is the bridge surface the popup drives. *bridge.Client
// satisfies it.
type Client interface {
	State() (bool, error)
	Toggle(enabled bool) error
	BaseURL() string
}

// Messages produced by bridge commands.
type (
	stateMsg   struct{ enabled bool }
	toggledMsg struct{ enabled bool }
	errMsg     struct{ err error }
	copiedMsg  struct{}
)

// Model is the bubbletea model for the settings popup.
type Model struct {
	client  Client
	spinner spinner.Model

	enabled bool
	loading bool
	copied  bool
	err     error

	width int
}

// New creates the popup model; the initial state is fetched on Init.
func New(client Client) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return Model{
		client:  client,
		spinner: s,
		loading: true,
	}
}

// Init starts the spinner and requests the current state.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchState())
}

func (m Model) fetchState() tea.Cmd {
	return func() tea.Msg {
		enabled, err := m.client.State()
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{enabled}
	}
}

func (m Model) toggle() tea.Cmd {
	target := !m.enabled
	return func() tea.Msg {
		if err := m.client.Toggle(target); err != nil {
			return errMsg{err}
		}
		return toggledMsg{target}
	}
}

func (m Model) copyBridgeURL() tea.Cmd {
	url := m.client.BaseURL()
	return func() tea.Msg {
		if err := clipboard.WriteAll(url); err != nil {
			return errMsg{err}
		}
		return copiedMsg{}
	}
}

// Update handles key input and bridge replies.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var spinnerCmd tea.Cmd
	m.spinner, spinnerCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, spinnerCmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "t", " ", "enter":
			if m.loading {
				return m, spinnerCmd
			}
			m.loading = true
			m.err = nil
			return m, tea.Batch(spinnerCmd, m.toggle())
		case "r":
			m.loading = true
			m.err = nil
			return m, tea.Batch(spinnerCmd, m.fetchState())
		case "c":
			return m, tea.Batch(spinnerCmd, m.copyBridgeURL())
		}
		return m, spinnerCmd

	case stateMsg:
		m.enabled = msg.enabled
		m.loading = false
		return m, nil

	case toggledMsg:
		m.enabled = msg.enabled
		m.loading = false
		return m, nil

	case copiedMsg:
		m.copied = true
		return m, nil

	case errMsg:
		m.err = msg.err
		m.loading = false
		return m, nil
	}

	return m, spinnerCmd
}

// Enabled reports the last state received from the bridge.
func (m Model) Enabled() bool {
	return m.enabled
}

// Err returns the most recent bridge error, if any.
func (m Model) Err() error {
	return m.err
}

// View renders the popup.
func (m Model) View() string {
	title := titleStyle.Render("Observations Map")

	var status string
	switch {
	case m.loading:
		status = fmt.Sprintf("%s contacting session...", m.spinner.View())
	case m.err != nil:
		status = errorStyle.Render(fmt.Sprintf("error: %v", m.err))
	case m.enabled:
		status = fmt.Sprintf("Full-height map  %s", onStyle.Render("● on"))
	default:
		status = fmt.Sprintf("Full-height map  %s", offStyle.Render("○ off"))
	}

	help := helpStyle.Render("t toggle · r refresh · c copy bridge url · q quit")
	if m.copied {
		help = helpStyle.Render("bridge url copied") + "\n" + help
	}

	body := lipgloss.JoinVertical(lipgloss.Left, title, "", status, "", help)
	return boxStyle.Render(body)
}
