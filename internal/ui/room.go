package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/session"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/signaling"
)

const chatLogLines = 8

// RoomModel is the Bubble Tea model for a live call: member tiles, a chat
// log with input, and for interviews a shared code pane plus alert banner.
type RoomModel struct {
	sess *session.Session
	kind signaling.RoomKind

	code     string
	selfName string

	camera bool
	mic    bool
	screen bool

	chat   []string
	input  textinput.Model
	typing bool

	alert   string
	spinner spinner.Model

	width  int
	height int

	ended  bool
	reason string
}

// sessionEventMsg wraps one session event for the Bubble Tea loop.
type sessionEventMsg session.Event

// sessionClosedMsg signals the event stream ended.
type sessionClosedMsg struct{}

// actionDoneMsg reports the outcome of a toggle or screen-share action.
type actionDoneMsg struct {
	action string
	on     bool
	err    error
}

// NewRoomModel builds the model for an already-joined session.
func NewRoomModel(sess *session.Session, kind signaling.RoomKind) *RoomModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	ti := textinput.New()
	ti.Placeholder = "press i to chat, c/m/s to toggle, q to leave"
	ti.CharLimit = 280
	ti.Width = 60

	return &RoomModel{
		sess:     sess,
		kind:     kind,
		code:     sess.Room(),
		selfName: sess.SelfName(),
		camera:   true,
		mic:      true,
		input:    ti,
		spinner:  sp,
		width:    100,
		height:   30,
	}
}

func (m *RoomModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m *RoomModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.sess.Events()
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionEventMsg(ev)
	}
}

func (m *RoomModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case sessionEventMsg:
		m.handleEvent(session.Event(msg))
		cmds = append(cmds, m.waitForEvent())

	case sessionClosedMsg:
		m.ended = true
		if m.reason == "" {
			m.reason = "call ended"
		}
		return m, tea.Quit

	case actionDoneMsg:
		if msg.err != nil {
			m.pushChat(MutedStyle.Render(fmt.Sprintf("could not toggle %s: %v", msg.action, msg.err)))
		}
	}

	if m.typing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *RoomModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.typing {
		switch msg.String() {
		case "esc":
			m.typing = false
			m.input.Blur()
			return nil, true
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if text == "" {
				return nil, true
			}
			if lang, ok := strings.CutPrefix(text, "/lang "); ok && m.kind == signaling.RoomInterview {
				m.sess.SetLanguage(strings.TrimSpace(lang))
				return nil, true
			}
			m.sess.SendChat(text)
			m.pushChat(fmt.Sprintf("%s %s: %s", IconChat, BoldStyle.Render(m.selfName), text))
			return nil, true
		}
		return nil, false // let the textinput consume it
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.sess.Leave()
		m.ended = true
		m.reason = "left the room"
		return tea.Quit, true
	case "i", "/":
		m.typing = true
		m.input.Focus()
		return textinput.Blink, true
	case "c":
		m.camera = !m.camera
		return m.action("camera", m.camera, func(ctx context.Context) error {
			return m.sess.ToggleCamera(ctx, m.camera)
		}), true
	case "m":
		m.mic = !m.mic
		return m.action("mic", m.mic, func(ctx context.Context) error {
			return m.sess.ToggleMic(ctx, m.mic)
		}), true
	case "s":
		if m.screen {
			m.screen = false
			return m.action("screen", false, func(ctx context.Context) error {
				m.sess.StopScreenShare(ctx)
				return nil
			}), true
		}
		m.screen = true
		return m.action("screen", true, func(ctx context.Context) error {
			return m.sess.StartScreenShare(ctx)
		}), true
	}
	return nil, false
}

// action runs a media mutation off the UI goroutine; renegotiation can take
// a moment.
func (m *RoomModel) action(name string, on bool, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := fn(context.Background())
		return actionDoneMsg{action: name, on: on, err: err}
	}
}

func (m *RoomModel) handleEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventPeerJoined:
		m.pushChat(MutedStyle.Render(fmt.Sprintf("%s %s joined", IconPeer, ev.PeerName)))
	case session.EventPeerLeft:
		m.pushChat(MutedStyle.Render(fmt.Sprintf("%s %s left", IconPeer, ev.PeerName)))
	case session.EventChat:
		m.pushChat(fmt.Sprintf("%s %s: %s", IconChat, BoldStyle.Render(ev.PeerName), ev.Text))
	case session.EventAnomaly:
		m.alert = fmt.Sprintf("%s %s (%.0f%%): %s", IconAlert, ev.AnomalyType, ev.Confidence*100, ev.Text)
	case session.EventLanguageChanged:
		m.pushChat(MutedStyle.Render(fmt.Sprintf("%s language switched to %s", IconCode, ev.Language)))
	case session.EventError:
		m.pushChat(ErrorStyle.Render(ev.Text))
	case session.EventDisconnected:
		m.ended = true
		m.reason = "connection to server lost"
	}
}

func (m *RoomModel) pushChat(line string) {
	m.chat = append(m.chat, line)
	if len(m.chat) > chatLogLines {
		m.chat = m.chat[len(m.chat)-chatLogLines:]
	}
}

func (m *RoomModel) View() string {
	if m.ended {
		return ""
	}

	var b strings.Builder

	kindLabel := "Meeting"
	if m.kind == signaling.RoomInterview {
		kindLabel = "Interview"
	}
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s %s · %s", IconRoom, kindLabel, m.code)))
	b.WriteString("\n")

	b.WriteString(m.tiles())
	b.WriteString("\n")

	if m.alert != "" {
		b.WriteString(AlertBoxStyle.Render(m.alert))
		b.WriteString("\n")
	}

	if m.kind == signaling.RoomInterview {
		b.WriteString(m.codePane())
		b.WriteString("\n")
	}

	for _, line := range m.chat {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.typing {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(MutedStyle.Render("i chat · c camera · m mic · s screen · q leave"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m *RoomModel) tiles() string {
	tiles := []string{m.tile(m.selfName+" (you)", "", m.camera, m.mic, m.screen)}
	for _, mem := range m.sess.Members() {
		tiles = append(tiles, m.tile(mem.Name, mem.Role, mem.Camera, mem.Mic, mem.Screen))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

func (m *RoomModel) tile(name, role string, camera, mic, screen bool) string {
	cam := IconCamera
	if !camera {
		cam = IconCameraOff + " off"
	}
	mc := IconMic
	if !mic {
		mc = IconMicOff + " off"
	}
	var flags []string
	flags = append(flags, cam, mc)
	if screen {
		flags = append(flags, IconScreen)
	}

	label := name
	if role != "" {
		label += "\n" + MutedStyle.Render(role)
	}
	body := label + "\n" + strings.Join(flags, "  ")

	if !camera {
		return TileOffStyle.Render(body)
	}
	return TileStyle.Render(body)
}

func (m *RoomModel) codePane() string {
	lang, content, version := m.sess.Document().Snapshot()
	if content == "" {
		return MutedStyle.Render(fmt.Sprintf("%s shared editor (%s) is empty", IconCode, lang))
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
		lines = append(lines, MutedStyle.Render("..."))
	}
	header := MutedStyle.Render(fmt.Sprintf("%s %s · v%d", IconCode, lang, version))
	return header + "\n" + strings.Join(lines, "\n")
}

// Reason reports why the model quit, for the post-run summary line.
func (m *RoomModel) Reason() string {
	return m.reason
}
