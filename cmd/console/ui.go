package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	KeeperName      = "Keeper"
	PlaceHolderText = "What do you do?"
)

// chatEntry is one line of the session transcript.
type chatEntry struct {
	fromPlayer bool
	text       string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	session      *SessionView
	history      []chatEntry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type commandResultMsg struct {
	result *CommandResult
	err    error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // amber
			Bold(true)

	keeperStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")) // orange

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, session *SessionView) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	history := []chatEntry{}
	if session.Message != "" {
		history = append(history, chatEntry{text: session.Message})
	}

	return ConsoleUI{
		config:       cfg,
		client:       client,
		session:      session,
		history:      history,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
}

func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render(strings.ToUpper(m.session.Tavern)) + "\n\n")
	content.WriteString("Order a drink, chat up the regulars, mind your coin.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 10))) + "\n\n")

	for _, entry := range m.history {
		if entry.fromPlayer {
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(entry.text, chatWidth-6) + "\n\n")
		} else {
			wrapped := wordwrap.String(entry.text, chatWidth-len(KeeperName)-2)
			content.WriteString(keeperStyle.Render(KeeperName+": ") + wrapped + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	content.WriteString(m.session.SessionID.String()[:8] + "...\n\n")

	content.WriteString(fmt.Sprintf("Player:\n%s\n\n", m.session.PlayerName))
	content.WriteString(fmt.Sprintf("Room:\n%s\n\n", m.session.Room))
	content.WriteString(fmt.Sprintf("Gold:\n%d\n\n", m.session.Gold))

	day := int(m.session.Hours/24) + 1
	hour := m.session.Hours - float64(day-1)*24
	content.WriteString(fmt.Sprintf("Time:\nday %d, %02d:%02d\n\n", day, int(hour), int(hour*60)%60))

	content.WriteString("Keys:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy last reply\n")
	content.WriteString("• Ctrl+C: Quit\n")

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyCtrlY:
			if text, ok := m.lastReply(); ok {
				_ = clipboard.WriteAll(text)
			}
			return m, nil

		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.history = append(m.history, chatEntry{fromPlayer: true, text: input})
			m.writeChatContent()

			return m, tea.Batch(m.runCommand(input), progressTick())
		}

	case commandResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.history = append(m.history, chatEntry{text: errorStyle.Render("Error: " + msg.err.Error())})
		} else {
			text := msg.result.Message
			if !msg.result.Success {
				text = failStyle.Render(text)
			}
			m.history = append(m.history, chatEntry{text: text})
			m.session = &msg.result.Session

			if exit, ok := msg.result.Session.Data["exit"].(bool); ok && exit {
				_ = endSession(m.client, m.config.APIBaseURL, m.session.SessionID)
				return m, tea.Quit
			}
		}
		m.writeChatContent()
		m.writeMetadata()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// lastReply returns the most recent non-player entry.
func (m ConsoleUI) lastReply() (string, bool) {
	for i := len(m.history) - 1; i >= 0; i-- {
		if !m.history[i].fromPlayer {
			return m.history[i].text, true
		}
	}
	return "", false
}

func (m ConsoleUI) runCommand(input string) tea.Cmd {
	return func() tea.Msg {
		result, err := sendCommand(m.client, m.config.APIBaseURL, m.session.SessionID, input)
		return commandResultMsg{result, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the tavern?"))
	content.WriteString("\n\n")
	content.WriteString("Your session is saved; you can come back later.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to stay"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 10))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
