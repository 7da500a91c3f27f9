package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/quizforbots/internal/protocol"
)

// Answerer submits answers typed by the player
type Answerer interface {
	Answer(text string) error
}

// EnvelopeMsg carries one envelope from the server into the UI
type EnvelopeMsg struct {
	Envelope protocol.Envelope
}

// DisconnectedMsg is sent once the server connection has gone away
type DisconnectedMsg struct{}

// ScoreLine is one row of the sidebar score table
type ScoreLine struct {
	Name   string
	Points string
}

// TUIModel is the Bubble Tea model of the console client
type TUIModel struct {
	player   string
	answerer Answerer
	inbox    <-chan protocol.Envelope
	logger   *log.Logger

	// UI components
	logViewport viewport.Model
	answerInput textinput.Model

	// State
	gameLog     []string
	quitting    bool
	focusedPane int // 0 = log, 1 = input
	connected   bool

	// Round info for sidebar
	roundGame     string
	roundDuration int
	roundActive   bool
	scores        []ScoreLine
	gameOver      bool

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// NewTUIModel creates the console client model. inbox is the client's
// envelope stream; answers typed into the input go to answerer.
func NewTUIModel(player string, inbox <-chan protocol.Envelope, answerer Answerer, logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(player, inbox, answerer, logger, false)
}

// NewTUIModelWithOptions creates a new TUI model with test mode option
func NewTUIModelWithOptions(player string, inbox <-chan protocol.Envelope, answerer Answerer, logger *log.Logger, testMode bool) *TUIModel {
	// sized properly when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Type your answer and press Enter"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(palette.Focus).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(palette.Text)
	ti.Prompt = "> "

	return &TUIModel{
		player:      player,
		answerer:    answerer,
		inbox:       inbox,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		answerInput: ti,
		gameLog:     []string{},
		focusedPane: 1,
		connected:   true,
		testMode:    testMode,
		capturedLog: []string{},
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEnvelope())
}

// waitForEnvelope returns a command that delivers the next server envelope
func (m *TUIModel) waitForEnvelope() tea.Cmd {
	inbox := m.inbox
	return func() tea.Msg {
		env, ok := <-inbox
		if !ok {
			return DisconnectedMsg{}
		}
		return EnvelopeMsg{Envelope: env}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case EnvelopeMsg:
		m.HandleEnvelope(msg.Envelope)
		return m, m.waitForEnvelope()

	case DisconnectedMsg:
		m.connected = false
		m.roundActive = false
		m.AddLogEntry(WarningStyle.Render("Disconnected from server. Press Ctrl+C to exit."), "Disconnected from server.")
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.answerInput.Focus()
			} else {
				m.focusedPane = 0
				m.answerInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				text := strings.TrimSpace(m.answerInput.Value())
				m.answerInput.SetValue("")
				if text == "quit" {
					m.quitting = true
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
				m.submit(text)
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.answerInput, cmd = m.answerInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit forwards an answer to the server and echoes it in the log
func (m *TUIModel) submit(text string) {
	if text == "" {
		return
	}
	if !m.connected {
		m.AddLogEntry(ErrorStyle.Render("Not connected."), "Not connected.")
		return
	}

	m.AddLogEntry(AnswerStyle.Render("> "+text), "> "+text)
	if err := m.answerer.Answer(text); err != nil {
		m.logger.Error("Failed to send answer", "error", err)
		m.AddLogEntry(ErrorStyle.Render("Failed to send answer: "+err.Error()), "Failed to send answer: "+err.Error())
	}
}

// HandleEnvelope renders one server envelope into the log and sidebar
func (m *TUIModel) HandleEnvelope(env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeRoundStart:
		rs, err := env.RoundStart()
		if err != nil {
			m.logger.Warn("Bad round start", "error", err)
			return
		}
		m.roundGame = rs.Game
		m.roundDuration = rs.DurationSeconds
		m.roundActive = true

		banner := fmt.Sprintf("=== %s (%ds) ===", rs.Game, rs.DurationSeconds)
		m.AddLogEntry(HeaderStyle.Render(banner), banner)
		for _, line := range strings.Split(rs.Prompt, "\n") {
			m.AddLogEntry(PromptStyle.Render(line), line)
		}

	case protocol.TypeRoundEnd:
		re, err := env.RoundEnd()
		if err != nil {
			m.logger.Warn("Bad round end", "error", err)
			return
		}
		m.roundActive = false
		line := fmt.Sprintf("Round over: %s. Correct answer: %s", re.Game, re.CorrectAnswer)
		m.AddLogEntry(WarningStyle.Render(line), line)
		if re.Info != "" {
			m.AddLogEntry(InfoStyle.Render(re.Info), re.Info)
		}

	case protocol.TypeResult:
		style := ScoreStyle
		switch {
		case isSuccess(env.Data):
			style = SuccessStyle
		case isFailure(env.Data):
			style = ErrorStyle
		}
		m.AddLogEntry(style.Render(env.Data), env.Data)

	case protocol.TypeScores:
		header, scores := ParseScores(env.Data)
		m.scores = scores
		if strings.HasPrefix(header, "Game over") {
			m.gameOver = true
			m.AddLogEntry(HeaderStyle.Render(header), header)
			for _, s := range scores {
				line := fmt.Sprintf("  %s: %s", s.Name, s.Points)
				m.AddLogEntry(ScoreStyle.Render(line), line)
			}
		}

	case protocol.TypeError:
		m.AddLogEntry(ErrorStyle.Render("Error: "+env.Data), "Error: "+env.Data)

	default:
		m.AddLogEntry(InfoStyle.Render(env.Data), env.Data)
	}
}

func isSuccess(text string) bool {
	return text == "CORRECT" || strings.HasPrefix(text, "Correct!")
}

func isFailure(text string) bool {
	return text == "INCORRECT" ||
		strings.HasPrefix(text, "Invalid") ||
		strings.HasPrefix(text, "You already") ||
		strings.HasPrefix(text, "You have no")
}

// ParseScores splits a SCORES payload into its header and "name: points" rows
func ParseScores(data string) (string, []ScoreLine) {
	lines := strings.Split(data, "\n")
	var scores []ScoreLine
	for _, line := range lines[1:] {
		i := strings.LastIndex(line, ":")
		if i < 0 {
			continue
		}
		scores = append(scores, ScoreLine{
			Name:   strings.TrimSpace(line[:i]),
			Points: strings.TrimSpace(line[i+1:]),
		})
	}
	return lines[0], scores
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	inputContent := m.renderInputPane()
	inputHeight := lipgloss.Height(inputContent)

	inputPane := paneStyle(m.focusedPane == 1).
		Width(max(m.width-2, 1)).
		Height(max(inputHeight, 1)).
		Render(inputContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-inputHeight-4, 1)

	sidebarPane := paneStyle(false).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := paneStyle(m.focusedPane == 0).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, inputPane)
}

// renderSidebarPane shows the player, the current round and the scores
func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder

	content.WriteString(PromptStyle.Render("Player: " + m.player))
	content.WriteString("\n\n")

	switch {
	case m.gameOver:
		content.WriteString(WarningStyle.Render("Game over"))
	case m.roundActive:
		content.WriteString(WarningStyle.Render(fmt.Sprintf("%s (%ds)", m.roundGame, m.roundDuration)))
	default:
		content.WriteString(InfoStyle.Render("Waiting for round..."))
	}
	content.WriteString("\n\n")

	if len(m.scores) > 0 {
		content.WriteString(InfoStyle.Render("Scores:"))
		content.WriteString("\n")
		for _, s := range m.scores {
			fmt.Fprintf(&content, "  %s: %s\n", s.Name, s.Points)
		}
	}

	return content.String()
}

// renderInputPane renders the answer input and help line
func (m *TUIModel) renderInputPane() string {
	var content strings.Builder

	content.WriteString(m.answerInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to answer • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	content.WriteString(InfoStyle.Render(help))

	return content.String()
}

// AddLogEntry appends a styled entry to the log; plain is what test mode
// captures.
func (m *TUIModel) AddLogEntry(styled, plain string) {
	m.gameLog = append(m.gameLog, styled)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, plain)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Scores returns the latest score table
func (m *TUIModel) Scores() []ScoreLine {
	return append([]ScoreLine(nil), m.scores...)
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}
