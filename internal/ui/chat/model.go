// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/araneasec/aranea-tui/internal/backend"
	"github.com/araneasec/aranea-tui/internal/config"
	"github.com/araneasec/aranea-tui/internal/gateway"
	"github.com/araneasec/aranea-tui/internal/history"
	"github.com/araneasec/aranea-tui/internal/session"
	"github.com/araneasec/aranea-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus selects which pane receives key input.
type Focus int

const (
	FocusInput Focus = iota
	FocusSidebar
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Styling
	theme  *styles.Theme
	keyMap KeyMap

	// Dimensions
	width  int
	height int

	// Identity
	username string
	cfg      *config.Config

	// Session plumbing. The reducer owns the transcript state machine;
	// the stream feeds it frames; the client serves the REST surface;
	// cache may be nil when local history is disabled.
	reducer *session.Reducer
	stream  *gateway.Session
	client  *backend.Client
	cache   *history.Store

	// Sidebar state
	chats          []backend.Chat
	chatCursor     int
	activeChatID   string
	sidebarVisible bool
	focus          Focus

	// Rename-in-place state
	renaming    bool
	renameInput textinput.Model

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown rendering for agent entries
	mdRenderer *glamour.TermRenderer

	// cachedEntries counts transcript entries already written through to
	// the local history store.
	cachedEntries int

	// Transient status line notice
	notice    string
	noticeErr bool

	showHelp bool
	quitting bool
}

// Options carries the dependencies the chat view needs.
type Options struct {
	Username string
	Config   *config.Config
	Reducer  *session.Reducer
	Stream   *gateway.Session
	Client   *backend.Client
	Cache    *history.Store
}

// New creates the chat view model.
func New(opts Options) Model {
	input := textinput.New()
	input.Placeholder = "type a query for aranea..."
	input.Prompt = ""
	input.CharLimit = 4000
	input.Focus()

	rename := textinput.New()
	rename.Prompt = ""
	rename.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		theme:          styles.NewTheme(80, 24),
		keyMap:         DefaultKeyMap(),
		username:       opts.Username,
		cfg:            opts.Config,
		reducer:        opts.Reducer,
		stream:         opts.Stream,
		client:         opts.Client,
		cache:          opts.Cache,
		sidebarVisible: true,
		input:          input,
		renameInput:    rename,
		spinner:        sp,
		viewport:       viewport.New(80, 20),
	}

	if opts.Config != nil && opts.Config.UI.RenderMarkdown {
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(78),
		); err == nil {
			m.mdRenderer = r
		}
	}
	return m
}

// Init loads the chat list and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadChatsCmd(m.client, m.cache, m.username),
	)
}

// ActiveChatID returns the chat the view is currently scoped to.
func (m Model) ActiveChatID() string {
	return m.activeChatID
}

// setNotice replaces the transient status-line notice.
func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// layout recomputes component sizes after a resize or sidebar toggle.
func (m *Model) layout() {
	m.theme.Resize(m.width, m.height)

	contentWidth := m.width
	if m.sidebarVisible {
		contentWidth -= sidebarWidth
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	// Header, status bar, and the input row each take one line.
	contentHeight := m.height - 3
	if contentHeight < 3 {
		contentHeight = 3
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	m.input.Width = contentWidth - lipgloss.Width(m.inputPrompt()) - 2

	if m.mdRenderer != nil && m.cfg != nil && m.cfg.UI.RenderMarkdown {
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(contentWidth-2),
		); err == nil {
			m.mdRenderer = r
		}
	}
}

func (m Model) inputPrompt() string {
	return "user@web:~$"
}
