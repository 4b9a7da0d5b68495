// aranea TUI - A terminal client for the Aranea pentest assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/araneasec/aranea-tui/internal/auth"
	"github.com/araneasec/aranea-tui/internal/backend"
	"github.com/araneasec/aranea-tui/internal/cli"
	"github.com/araneasec/aranea-tui/internal/config"
	"github.com/araneasec/aranea-tui/internal/gateway"
	"github.com/araneasec/aranea-tui/internal/history"
	"github.com/araneasec/aranea-tui/internal/reveal"
	"github.com/araneasec/aranea-tui/internal/session"
	"github.com/araneasec/aranea-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async state pushes
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		cli.PrintUsage()
		os.Exit(2)
	}

	switch args.Command {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	logger := setup(args)

	switch args.Command {
	case cli.CmdSignup:
		if err := runSignup(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdPlain:
		runAuthenticated(args, logger, func(username string) error {
			return cli.RunPlain(args, username, logger)
		})
	default:
		if config.Global().UI.PlainMode {
			runAuthenticated(args, logger, func(username string) error {
				return cli.RunPlain(args, username, logger)
			})
			return
		}
		runAuthenticated(args, logger, func(username string) error {
			return runTUI(args, username, logger)
		})
	}
}

// setup loads configuration, applies overrides, and opens the log file.
func setup(args cli.Args) *log.Logger {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.Default()
		cfg.SetDefaults()
	}
	cfg.ApplyEnvOverrides()
	if args.Backend != "" {
		cfg.Backend.URL = args.Backend
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	config.SetGlobal(cfg)
	return openLogger()
}

// openLogger sends diagnostics to ~/.aranea/aranea.log. The terminal
// belongs to the transcript; logs never go to stdout.
func openLogger() *log.Logger {
	dir, err := config.Dir()
	if err != nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "aranea.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil
	}
	return log.New(f, "", log.LstdFlags)
}

// runAuthenticated resolves a username via login and hands it to run.
func runAuthenticated(args cli.Args, logger *log.Logger, run func(username string) error) {
	username, err := login(args, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := run(username); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

const maxLoginAttempts = 3

// login authenticates against the backend, falling back to the local
// user store when the backend is unreachable.
func login(args cli.Args, logger *log.Logger) (string, error) {
	cfg := config.Global()
	client := backend.NewClient(cfg.Backend.URL)

	username := args.User
	for attempt := 0; attempt < maxLoginAttempts; attempt++ {
		if username == "" {
			u, err := auth.PromptLine("username")
			if err != nil {
				return "", err
			}
			username = u
		}
		password, err := auth.PromptPassword("password")
		if err != nil {
			return "", err
		}

		ctx, cancel := requestCtx(cfg)
		err = client.Login(ctx, backend.Credentials{
			Username: username,
			Password: password,
		})
		cancel()
		if err == nil {
			return username, nil
		}

		var be *backend.Error
		if errors.As(err, &be) {
			fmt.Fprintln(os.Stderr, be.Detail)
			username = ""
			continue
		}

		// Transport failure, not a rejection. Try the local store.
		if !cfg.Auth.OfflineFallback {
			return "", fmt.Errorf("backend unreachable: %w", err)
		}
		if logger != nil {
			logger.Printf("login: backend unreachable, using local store: %v", err)
		}
		store, serr := auth.OpenStore(cfg.Auth.UserFile)
		if serr != nil {
			return "", fmt.Errorf("backend unreachable and local store failed: %w", serr)
		}
		if aerr := store.Authenticate(username, password); aerr != nil {
			fmt.Fprintln(os.Stderr, aerr.Error())
			username = ""
			continue
		}
		fmt.Fprintln(os.Stderr, "backend unreachable; logged in against the local store")
		return username, nil
	}
	return "", errors.New("too many failed login attempts")
}

// runSignup creates an account on the backend and mirrors it into the
// local store so offline logins work immediately.
func runSignup() error {
	cfg := config.Global()

	username, err := auth.PromptLine("username")
	if err != nil {
		return err
	}
	email, err := auth.PromptLine("email (optional)")
	if err != nil {
		return err
	}
	password, err := auth.PromptPassword("password")
	if err != nil {
		return err
	}
	confirm, err := auth.PromptPassword("confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	client := backend.NewClient(cfg.Backend.URL)
	ctx, cancel := requestCtx(cfg)
	defer cancel()
	if err := client.Signup(ctx, backend.Credentials{
		Username: username,
		Email:    email,
		Password: password,
	}); err != nil {
		var be *backend.Error
		if errors.As(err, &be) {
			return errors.New(be.Detail)
		}
		return err
	}

	if cfg.Auth.OfflineFallback {
		if store, serr := auth.OpenStore(cfg.Auth.UserFile); serr == nil {
			if rerr := store.Register(username, email, password); rerr != nil && !errors.Is(rerr, auth.ErrUserExists) {
				fmt.Fprintf(os.Stderr, "Warning: local store mirror failed: %v\n", rerr)
			}
		}
	}

	fmt.Printf("account %s created\n", username)
	return nil
}

func requestCtx(cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := time.Duration(cfg.Backend.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// runTUI wires the stream, reducer, and cache together and runs the
// Bubble Tea program.
func runTUI(args cli.Args, username string, logger *log.Logger) error {
	cfg := config.Global()

	var cache *history.Store
	if cfg.History.Enabled && !args.NoHistory {
		c, err := history.Open(cfg.History.Path)
		if err != nil {
			if logger != nil {
				logger.Printf("history cache unavailable: %v", err)
			}
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

	// Reducer changes arrive from reveal and read-loop goroutines;
	// push them into the program as messages.
	reducer.SetChangeCallback(func() {
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(chat.StateChangedMsg{})
		}
	})

	m := chat.New(chat.Options{
		Username: username,
		Config:   cfg,
		Reducer:  reducer,
		Stream:   stream,
		Client:   backend.NewClient(cfg.Backend.URL),
		Cache:    cache,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	programMu.Lock()
	programRef = p
	programMu.Unlock()
	defer func() {
		programMu.Lock()
		programRef = nil
		programMu.Unlock()
	}()

	// Hot-reload config edits while the TUI runs. The watcher updates
	// the global config; views pick changes up on the next render.
	if watcher, err := config.Watch(logger, nil); err == nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
