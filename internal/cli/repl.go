// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Line-oriented REPL fallback for terminals where the full
// TUI is unwanted (aranea plain / --plain / ARANEA_PLAIN).
//
// The REPL drives the same exchange reducer as the TUI: a submitted
// line goes out as a query frame, and committed transcript entries are
// printed as they land. The typewriter reveal is not animated here;
// each agent entry prints whole once its reveal commits.
//
// Interactive commands (during the session):
//   /help, /h           Show available commands
//   /chats              List chat threads
//   /new [title]        Create and switch to a new thread
//   /switch N           Switch to thread N from /chats
//   /rename TITLE       Rename the active thread
//   /delete             Delete the active thread
//   /report             Download the engagement report PDF
//   /status             Show exchange status and connection state
//   /quit, /q           Exit
//   Ctrl+C              Interrupt the current reveal
//   Ctrl+D              Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/araneasec/aranea-tui/internal/backend"
	"github.com/araneasec/aranea-tui/internal/config"
	"github.com/araneasec/aranea-tui/internal/gateway"
	"github.com/araneasec/aranea-tui/internal/history"
	"github.com/araneasec/aranea-tui/internal/model"
	"github.com/araneasec/aranea-tui/internal/reveal"
	"github.com/araneasec/aranea-tui/internal/session"
	"github.com/araneasec/aranea-tui/internal/ui/styles"
	"github.com/araneasec/aranea-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	userPromptStyle = lipgloss.NewStyle().
			Foreground(styles.Green).
			Bold(true)

	agentPromptStyle = lipgloss.NewStyle().
				Foreground(styles.Cyan).
				Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	warnStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

const replChatTitle = "New Engagement"

// turnTimeout bounds how long the REPL waits for a turn to settle
// after the last state change.
const turnTimeout = 2 * time.Minute

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ReplInput provides line editing and persistent input history.
type ReplInput struct {
	line        *liner.State
	historyFile string
}

// NewReplInput creates a ReplInput with history loaded from ~/.aranea.
func NewReplInput() *ReplInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	in := &ReplInput{
		line:        line,
		historyFile: filepath.Join(dir, "repl_history"),
	}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

// Read reads one line with the given prompt, recording non-empty lines
// in the history.
func (in *ReplInput) Read(prompt string) (string, error) {
	text, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		in.line.AppendHistory(text)
	}
	return text, nil
}

// Close persists history and releases the terminal.
func (in *ReplInput) Close() {
	if f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		in.line.WriteHistory(f)
		f.Close()
	}
	in.line.Close()
}

// =============================================================================
// REPL SESSION
// =============================================================================

// Repl is the state of one line-mode session.
type Repl struct {
	cfg      *config.Config
	username string

	client  *backend.Client
	cache   *history.Store
	stream  *gateway.Session
	reducer *session.Reducer

	chats  []backend.Chat
	active backend.Chat

	input   *ReplInput
	printed int
	changed chan struct{}
	logger  *log.Logger
}

// RunPlain runs the line-oriented REPL for an authenticated user.
// It blocks until the user exits and returns any setup error.
func RunPlain(args Args, username string, logger *log.Logger) error {
	cfg := config.Global()

	var cache *history.Store
	if cfg.History.Enabled && !args.NoHistory {
		c, err := history.Open(cfg.History.Path)
		if err != nil {
			fmt.Println(warnStyle.Render("history cache unavailable: " + err.Error()))
		} else {
			cache = c
			defer cache.Close()
		}
	}

	stream := gateway.NewSession(cfg.Backend.URL, logger)
	defer stream.Close()

	interval := time.Duration(cfg.UI.TypingIntervalMs) * time.Millisecond
	reducer := session.NewReducer(reveal.NewScheduler(interval), stream, logger)
	stream.OnFrame(reducer.HandleFrame)

	r := &Repl{
		cfg:      cfg,
		username: username,
		client:   backend.NewClient(cfg.Backend.URL),
		cache:    cache,
		stream:   stream,
		reducer:  reducer,
		input:    NewReplInput(),
		changed:  make(chan struct{}, 1),
		logger:   logger,
	}
	defer r.input.Close()

	reducer.SetChangeCallback(func() {
		select {
		case r.changed <- struct{}{}:
		default:
		}
	})

	fmt.Println(infoStyle.Render("aranea " + Version + " (plain mode, /help for commands)"))
	if err := r.selectInitialChat(); err != nil {
		return err
	}
	r.loop()
	return nil
}

func (r *Repl) loop() {
	prompt := userPromptStyle.Render(model.SenderUser.PromptLabel()) + " "
	for {
		line, err := r.input.Read(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Println(errStyle.Render("input error: " + err.Error()))
			}
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if r.handleCommand(line) {
				return
			}
			continue
		}

		if err := r.reducer.Submit(line); err != nil {
			switch {
			case errors.Is(err, session.ErrBusy):
				fmt.Println(warnStyle.Render("aranea is still responding; Ctrl+C to interrupt"))
			case errors.Is(err, session.ErrEmptySubmission):
			default:
				fmt.Println(errStyle.Render(err.Error()))
			}
			continue
		}

		// The submitted line is already on screen; skip echoing the
		// user entry the reducer just appended.
		r.printed = len(r.reducer.Transcript())
		r.waitForTurn()
	}
}

// waitForTurn prints committed entries until the exchange settles back
// to idle. Ctrl+C interrupts the active reveal.
func (r *Repl) waitForTurn() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	timer := time.NewTimer(turnTimeout)
	defer timer.Stop()

	for {
		select {
		case <-r.changed:
			r.flushEntries()
			if r.reducer.Status() == model.StatusIdle {
				r.cacheNewEntries()
				return
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(turnTimeout)
		case <-sig:
			r.reducer.Interrupt()
		case <-timer.C:
			fmt.Println(warnStyle.Render("timed out waiting for aranea"))
			r.flushEntries()
			return
		}
	}
}

// flushEntries prints transcript entries committed since the last flush.
func (r *Repl) flushEntries() {
	entries := r.reducer.Transcript()
	for _, e := range entries[r.printed:] {
		r.printEntry(e)
	}
	r.printed = len(entries)
}

func (r *Repl) printEntry(e model.Entry) {
	label := e.Sender.PromptLabel()
	if e.Sender == model.SenderAranea {
		label = agentPromptStyle.Render(label)
	} else {
		label = userPromptStyle.Render(label)
	}
	if strings.Contains(e.Text, "\n") {
		fmt.Println(label)
		fmt.Println(e.Text)
		return
	}
	fmt.Printf("%s %s\n", label, e.Text)
}

// cacheNewEntries mirrors freshly committed entries into the history
// cache so offline reads see them.
func (r *Repl) cacheNewEntries() {
	if r.cache == nil || r.active.ChatID == "" {
		return
	}
	ctx, cancel := r.requestCtx()
	defer cancel()
	entries := r.reducer.Transcript()
	msgs := make([]history.Message, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, history.Message{
			ChatID: r.active.ChatID,
			Sender: e.Sender.String(),
			Body:   e.Text,
			SentAt: e.Timestamp,
		})
	}
	_ = r.cache.ReplaceMessages(ctx, r.active.ChatID, msgs)
}

// =============================================================================
// CHAT MANAGEMENT
// =============================================================================

func (r *Repl) requestCtx() (context.Context, context.CancelFunc) {
	timeout := time.Duration(r.cfg.Backend.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// selectInitialChat loads the thread list and activates the most
// recent thread, creating one when none exist.
func (r *Repl) selectInitialChat() error {
	if err := r.refreshChats(); err != nil {
		fmt.Println(warnStyle.Render("could not list chats: " + err.Error()))
	}
	if len(r.chats) == 0 {
		return r.createChat(replChatTitle)
	}
	return r.switchChat(r.chats[0])
}

// refreshChats loads threads from the backend, falling back to the
// local cache when the backend is unreachable.
func (r *Repl) refreshChats() error {
	ctx, cancel := r.requestCtx()
	defer cancel()

	chats, err := r.client.ListChats(ctx, r.username)
	if err == nil {
		r.chats = chats
		if r.cache != nil {
			for _, c := range chats {
				_ = r.cache.UpsertChat(ctx, history.Chat{
					ChatID:   c.ChatID,
					Username: r.username,
					Title:    c.Title,
				})
			}
		}
		return nil
	}
	if r.cache == nil {
		return err
	}
	cached, cerr := r.cache.Chats(ctx, r.username)
	if cerr != nil {
		return err
	}
	r.chats = r.chats[:0]
	for _, c := range cached {
		r.chats = append(r.chats, backend.Chat{ChatID: c.ChatID, Title: c.Title})
	}
	fmt.Println(infoStyle.Render("backend unreachable; showing cached chats"))
	return nil
}

func (r *Repl) createChat(title string) error {
	ctx, cancel := r.requestCtx()
	defer cancel()

	chat, err := r.client.CreateChat(ctx, r.username, title)
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	if r.cache != nil {
		_ = r.cache.UpsertChat(ctx, history.Chat{
			ChatID:   chat.ChatID,
			Username: r.username,
			Title:    chat.Title,
		})
	}
	r.chats = append([]backend.Chat{chat}, r.chats...)
	return r.switchChat(chat)
}

// switchChat opens the stream for a thread and replays its history.
func (r *Repl) switchChat(chat backend.Chat) error {
	r.active = chat
	if err := r.stream.Open(r.username, chat.ChatID); err != nil {
		fmt.Println(warnStyle.Render("stream not connected: " + err.Error()))
	}

	entries := r.loadHistory(chat.ChatID)
	if len(entries) == 0 {
		entries = []model.Entry{model.NewRevealedEntry(greetingLine(r.username))}
	}
	r.reducer.Reset(entries)

	title := chat.Title
	if title == "" {
		title = chat.ChatID
	}
	fmt.Println(infoStyle.Render("-- " + title + " --"))
	r.printed = 0
	r.flushEntries()
	return nil
}

func (r *Repl) loadHistory(chatID string) []model.Entry {
	ctx, cancel := r.requestCtx()
	defer cancel()

	msgs, err := r.client.Messages(ctx, chatID)
	if err == nil {
		if r.cache != nil {
			cached := make([]history.Message, 0, len(msgs))
			for _, m := range msgs {
				cached = append(cached, history.Message{
					ChatID: chatID,
					Sender: m.Sender,
					Body:   m.Text,
					SentAt: time.Now(),
				})
			}
			_ = r.cache.ReplaceMessages(ctx, chatID, cached)
		}
		entries := make([]model.Entry, 0, len(msgs))
		for _, m := range msgs {
			entries = append(entries, historyEntry(m.Sender, m.Text))
		}
		return entries
	}
	if r.cache == nil {
		return nil
	}
	cached, cerr := r.cache.Messages(ctx, chatID)
	if cerr != nil || len(cached) == 0 {
		return nil
	}
	fmt.Println(infoStyle.Render("backend unreachable; showing cached history"))
	entries := make([]model.Entry, 0, len(cached))
	for _, m := range cached {
		entries = append(entries, historyEntry(m.Sender, m.Body))
	}
	return entries
}

func historyEntry(sender, text string) model.Entry {
	if sender == string(model.SenderUser) {
		return model.NewUserEntry(text)
	}
	return model.NewRevealedEntry(text)
}

// greetingLine is the first agent line of a fresh thread.
func greetingLine(username string) string {
	return "Hello " + username + "! I am Aranea, your penetration-testing assistant. " +
		"Give me a target in scope and I will get to work."
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

const replHelp = `Commands:
  /help, /h        Show this help
  /chats           List chat threads
  /new [title]     Create and switch to a new thread
  /switch N        Switch to thread N from /chats
  /rename TITLE    Rename the active thread
  /delete          Delete the active thread
  /report          Download the engagement report PDF
  /status          Show exchange status and connection state
  /quit, /q        Exit`

// handleCommand executes a slash command; it returns true when the
// REPL should exit.
func (r *Repl) handleCommand(line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println(infoStyle.Render(replHelp))

	case "/chats":
		if err := r.refreshChats(); err != nil {
			fmt.Println(errStyle.Render(err.Error()))
			return false
		}
		for i, c := range r.chats {
			marker := "  "
			if c.ChatID == r.active.ChatID {
				marker = "* "
			}
			title := c.Title
			if title == "" {
				title = c.ChatID
			}
			fmt.Printf("%s[%d] %s\n", marker, i+1, title)
		}

	case "/new":
		title := rest
		if title == "" {
			title = replChatTitle
		}
		if err := r.createChat(title); err != nil {
			fmt.Println(errStyle.Render(err.Error()))
		}

	case "/switch":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 || n > len(r.chats) {
			fmt.Println(warnStyle.Render("usage: /switch N (see /chats)"))
			return false
		}
		if err := r.switchChat(r.chats[n-1]); err != nil {
			fmt.Println(errStyle.Render(err.Error()))
		}

	case "/rename":
		if rest == "" {
			fmt.Println(warnStyle.Render("usage: /rename TITLE"))
			return false
		}
		ctx, cancel := r.requestCtx()
		defer cancel()
		if err := r.client.RenameChat(ctx, r.active.ChatID, rest); err != nil {
			fmt.Println(errStyle.Render(backendMessage(err)))
			return false
		}
		if r.cache != nil {
			_ = r.cache.RenameChat(ctx, r.active.ChatID, rest)
		}
		r.active.Title = rest
		for i := range r.chats {
			if r.chats[i].ChatID == r.active.ChatID {
				r.chats[i].Title = rest
			}
		}
		fmt.Println(infoStyle.Render("renamed to " + rest))

	case "/delete":
		ctx, cancel := r.requestCtx()
		defer cancel()
		if err := r.client.DeleteChat(ctx, r.active.ChatID); err != nil {
			fmt.Println(errStyle.Render(backendMessage(err)))
			return false
		}
		if r.cache != nil {
			_ = r.cache.DeleteChat(ctx, r.active.ChatID)
		}
		deleted := r.active.ChatID
		kept := r.chats[:0]
		for _, c := range r.chats {
			if c.ChatID != deleted {
				kept = append(kept, c)
			}
		}
		r.chats = kept
		if len(r.chats) == 0 {
			if err := r.createChat(replChatTitle); err != nil {
				fmt.Println(errStyle.Render(err.Error()))
			}
			return false
		}
		if err := r.switchChat(r.chats[0]); err != nil {
			fmt.Println(errStyle.Render(err.Error()))
		}

	case "/report":
		ctx, cancel := r.requestCtx()
		defer cancel()
		name, data, err := r.client.DownloadReport(ctx, r.active.ChatID)
		if err != nil {
			fmt.Println(errStyle.Render(backendMessage(err)))
			return false
		}
		if err := util.AtomicWriteFile(name, data, 0644); err != nil {
			fmt.Println(errStyle.Render("save report: " + err.Error()))
			return false
		}
		fmt.Println(infoStyle.Render("report saved to " + name))

	case "/status":
		conn := "disconnected"
		if r.stream.Connected() {
			conn = "connected"
		}
		fmt.Println(infoStyle.Render(fmt.Sprintf("status: %s, stream %s, chat %s",
			r.reducer.Status(), conn, r.active.ChatID)))

	default:
		fmt.Println(warnStyle.Render("unknown command " + cmd + " (/help)"))
	}
	return false
}

// backendMessage extracts the user-visible detail from backend errors.
func backendMessage(err error) string {
	var be *backend.Error
	if errors.As(err, &be) {
		return be.Detail
	}
	return err.Error()
}
