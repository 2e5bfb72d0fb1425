package tui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coursechat/internal/chat"
)

// ChatPort is the TUI-facing subset of the chat service.
type ChatPort interface {
	Ask(ctx context.Context, question, conversationID string) (chat.Reply, error)
	Translate(ctx context.Context, text, targetLang, conversationID string) (chat.Reply, error)
}

type speaker int

const (
	speakerUser speaker = iota
	speakerAssistant
	speakerTranslation
	speakerError
)

type entry struct {
	who      speaker
	text     string
	question string
}

// replyMsg carries the result of an async service call back into Update.
type replyMsg struct {
	kind     speaker
	question string
	reply    chat.Reply
	err      error
}

// Model is the Bubble Tea model for the chat console.
type Model struct {
	service        ChatPort
	timeout        time.Duration
	input          textinput.Model
	viewport       viewport.Model
	transcript     []entry
	conversationID string
	status         string
	pending        bool
	ready          bool
}

// New creates a chat console. conversationID may be empty; the first reply
// assigns one.
func New(service ChatPort, conversationID string, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about courses, /tr <lang> <text>, /reset"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return Model{
		service:        service,
		timeout:        timeout,
		input:          ti,
		viewport:       vp,
		conversationID: conversationID,
		status:         "Ready. Ask a question.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around transcript and input boxes
		_, rh := transcriptBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + conversation id, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.refresh()
		return m, nil
	case replyMsg:
		m.pending = false
		m.handleReply(msg)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.pending {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.SetValue("")
			cmd := m.submit(line)
			m.refresh()
			return m, cmd
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(line string) tea.Cmd {
	cmd, arg := parseCommand(line)
	service, id := m.service, m.conversationID
	switch cmd {
	case "reset":
		m.conversationID = ""
		m.transcript = nil
		m.status = "Started a new conversation."
		return nil
	case "quit":
		return tea.Quit
	case "tr":
		lang, text, ok := strings.Cut(arg, " ")
		if !ok || strings.TrimSpace(text) == "" {
			m.status = "Usage: /tr <lang> <text>"
			return nil
		}
		m.transcript = append(m.transcript, entry{who: speakerUser, text: fmt.Sprintf("[%s] %s", lang, text)})
		m.pending = true
		m.status = "Translating..."
		return m.call(speakerTranslation, text, func(ctx context.Context) (chat.Reply, error) {
			return service.Translate(ctx, text, lang, id)
		})
	case "":
		m.transcript = append(m.transcript, entry{who: speakerUser, text: line})
		m.pending = true
		m.status = "Thinking..."
		return m.call(speakerAssistant, line, func(ctx context.Context) (chat.Reply, error) {
			return service.Ask(ctx, line, id)
		})
	}
	m.status = fmt.Sprintf("Unknown command /%s", cmd)
	return nil
}

// call runs fn off the update loop and reports back with a replyMsg.
func (m Model) call(kind speaker, question string, fn func(ctx context.Context) (chat.Reply, error)) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reply, err := fn(ctx)
		return replyMsg{kind: kind, question: question, reply: reply, err: err}
	}
}

func (m *Model) handleReply(msg replyMsg) {
	if msg.reply.ConversationID != "" {
		m.conversationID = msg.reply.ConversationID
	}
	if msg.err != nil {
		var chatErr *chat.Error
		text := "Something went wrong. Please try again."
		if errors.As(msg.err, &chatErr) && chatErr.Kind == chat.KindGeneration {
			text = "The assistant could not answer right now. Please try again."
		}
		m.transcript = append(m.transcript, entry{who: speakerError, text: text})
		m.status = "Error: " + msg.err.Error()
		return
	}
	m.transcript = append(m.transcript, entry{who: msg.kind, text: msg.reply.Text, question: msg.question})
	m.status = "Ready."
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Course Chat")
	conv := "new conversation"
	if m.conversationID != "" {
		conv = "conversation " + m.conversationID
	}
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(conv)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + sub + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, e := range m.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch e.who {
		case speakerUser:
			b.WriteString(userStyle.Render("you: "))
			b.WriteString(e.text)
		case speakerAssistant:
			b.WriteString(assistantStyle.Render("assistant: "))
			b.WriteString(highlightBestSentence(e.text, e.question))
		case speakerTranslation:
			b.WriteString(assistantStyle.Render("translation: "))
			b.WriteString(e.text)
		case speakerError:
			b.WriteString(errorStyle.Render(e.text))
		}
	}
	return b.String()
}

// parseCommand splits "/name rest" lines. Plain text yields an empty name.
func parseCommand(line string) (name, arg string) {
	if !strings.HasPrefix(line, "/") {
		return "", line
	}
	name, arg, _ = strings.Cut(strings.TrimPrefix(line, "/"), " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	unicodeWordRe      = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe         = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence emphasises the sentence of an answer sharing the most
// words with the question. Text outside the matched sentences, including
// newlines and a trailing unpunctuated tail, is kept as is.
func highlightBestSentence(text, query string) string {
	spans := sentenceRe.FindAllStringIndex(text, -1)
	if len(spans) <= 1 {
		return text
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return text
	}
	bestIdx, bestScore := 0, 0
	for i, sp := range spans {
		if score := tokenOverlapScore(qTokens, text[sp[0]:sp[1]]); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestScore == 0 {
		return text
	}
	sp := spans[bestIdx]
	// keep leading whitespace (often a newline) outside the styled span
	sent := text[sp[0]:sp[1]]
	lead := len(sent) - len(strings.TrimLeft(sent, " \t\r\n"))
	start := sp[0] + lead
	return text[:start] + highlightStyle.Render(text[start:sp[1]]) + text[sp[1]:]
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
