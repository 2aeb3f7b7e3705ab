// cortexia - multi-provider AI chat for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonathalimax/cortexia-app/internal/chat"
	"github.com/jonathalimax/cortexia-app/internal/config"
	"github.com/jonathalimax/cortexia-app/internal/history"
	"github.com/jonathalimax/cortexia-app/internal/keychain"
	"github.com/jonathalimax/cortexia-app/internal/model"
	"github.com/jonathalimax/cortexia-app/internal/network"
	"github.com/jonathalimax/cortexia-app/internal/openai"
	"github.com/jonathalimax/cortexia-app/internal/provider"
	"github.com/jonathalimax/cortexia-app/internal/reachability"
	"github.com/jonathalimax/cortexia-app/internal/settings"
	"github.com/jonathalimax/cortexia-app/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// modelCache adapts the SQLite store to the orchestrator's cache
// contract.
type modelCache struct {
	store *storage.ChatStore
}

func (c modelCache) Models(ctx context.Context) ([]openai.Model, error) {
	cached, err := c.store.Models(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]openai.Model, len(cached))
	for i, m := range cached {
		out[i] = openai.Model{ID: m.ID, OwnedBy: m.OwnedBy}
	}
	return out, nil
}

func (c modelCache) SaveModels(ctx context.Context, models []openai.Model) error {
	cached := make([]storage.CachedModel, len(models))
	for i, m := range models {
		cached[i] = storage.CachedModel{ID: m.ID, OwnedBy: m.OwnedBy}
	}
	return c.store.SaveModels(ctx, cached)
}

// app bundles the wired engine for the REPL.
type app struct {
	cfg      *config.Config
	store    *storage.ChatStore
	keys     *keychain.Store
	settings *settings.Manager
	service  *openai.Service
	history  *history.Service
	conv     *chat.Conversation
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cortexia: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Keep call-site logs out of the prompt loop.
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "cortexia.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.Printf("cortexia %s starting (commit=%s built=%s)", Version, GitCommit, BuildDate)

	store, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	manager, err := settings.NewManager(cfg.SettingsPath())
	if err != nil {
		return err
	}
	defer manager.Close()
	if err := manager.Watch(); err != nil {
		log.Printf("settings watch unavailable: %v", err)
	}

	keys := keychain.NewStore(cfg.KeychainDir())

	client := provider.NewClient(network.NewTransport(), keys, provider.BaseURLs{
		OpenAI:     cfg.OpenAIBaseURL,
		OpenRouter: cfg.OpenRouterBaseURL,
		Ollama:     func() string { return manager.Snapshot().OllamaBaseURL },
	})

	service := openai.NewService(client, modelCache{store: store}, reachability.NewChecker())

	a := &app{
		cfg:      cfg,
		store:    store,
		keys:     keys,
		settings: manager,
		service:  service,
		history:  history.NewService(store),
		conv:     chat.NewConversation(store, service, keys, cfg.DeepLinkScheme),
	}
	return a.repl()
}

func (a *app) turnConfig() chat.TurnConfig {
	s := a.settings.Snapshot()
	return chat.TurnConfig{
		API:         provider.ParseAPI(s.SelectedAPI),
		ModelID:     s.SelectedModelID,
		Temperature: s.Temperature,
	}
}

func (a *app) repl() error {
	ctx := context.Background()

	fmt.Println("cortexia — type a message, /help for commands")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()

		if strings.HasPrefix(line, "/") {
			quit, err := a.command(ctx, line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		before := len(a.conv.Messages())
		a.conv.SetInput(line)
		a.conv.Send(ctx, a.turnConfig())
		a.printNewMessages(before)
	}
}

// command dispatches a slash command. Returns true when the REPL
// should exit.
func (a *app) command(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/exit":
		return true, nil

	case "/help":
		a.printHelp()

	case "/new":
		if err := a.conv.Open(ctx, ""); err != nil {
			return false, err
		}
		fmt.Println("started a new chat")

	case "/open":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /open <chat-id>")
		}
		if err := a.conv.Open(ctx, args[0]); err != nil {
			return false, err
		}
		if a.conv.ChatID() == "" {
			fmt.Println("chat not found, started a new one")
		} else {
			a.printNewMessages(0)
		}

	case "/more":
		before := len(a.conv.Messages())
		if err := a.conv.FetchMore(ctx); err != nil {
			return false, err
		}
		fetched := len(a.conv.Messages()) - before
		fmt.Printf("loaded %d older messages\n", fetched)

	case "/edit":
		idx, err := a.messageIndex(args)
		if err != nil {
			return false, err
		}
		msg := a.conv.Messages()[idx]
		a.conv.StartEditing(msg.ID)
		if a.conv.EditingMessageID() == "" {
			return false, fmt.Errorf("only your own messages can be edited")
		}
		fmt.Printf("editing: %s\nsend a new message to replace it, /cancel to abort\n", msg.Preview(60))

	case "/cancel":
		a.conv.CancelEditing()
		fmt.Println("edit cancelled")

	case "/regen":
		idx, err := a.messageIndex(args)
		if err != nil {
			return false, err
		}
		msg := a.conv.Messages()[idx]
		if msg.Sender != model.RoleAssistant {
			return false, fmt.Errorf("only assistant messages can be regenerated")
		}
		before := len(a.conv.Messages())
		a.conv.Regenerate(ctx, a.turnConfig(), msg.ID)
		a.printNewMessages(before)
		fmt.Printf("[%d] %s: %s\n", idx, a.conv.Messages()[idx].Sender.DisplayName(), a.render(a.conv.Messages()[idx].Content))

	case "/history":
		return false, a.printHistory(ctx)

	case "/chats":
		chats, err := a.history.Chats(ctx)
		if err != nil {
			return false, err
		}
		if len(chats) == 0 {
			fmt.Println("no chats yet")
		}
		for _, c := range chats {
			fmt.Printf("  %s  started %s\n", c.ID, c.StartAt.Format("2006-01-02 15:04"))
		}

	case "/delete":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /delete <chat-id>")
		}
		if err := a.history.Delete(ctx, args[0]); err != nil {
			return false, err
		}
		if a.conv.ChatID() == args[0] {
			if err := a.conv.Open(ctx, ""); err != nil {
				return false, err
			}
		}
		fmt.Println("chat deleted")

	case "/clear":
		if err := a.history.Clear(ctx); err != nil {
			return false, err
		}
		if err := a.conv.Open(ctx, ""); err != nil {
			return false, err
		}
		fmt.Println("history cleared")

	case "/models":
		forceRemote := len(args) > 0 && args[0] == "remote"
		models, err := a.service.FetchModels(ctx, forceRemote)
		if err != nil {
			return false, err
		}
		for _, m := range models {
			fmt.Printf("  %s (%s)\n", m.ID, m.OwnedBy)
		}

	case "/model":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /model <model-id>")
		}
		return false, a.settings.Update(func(s *settings.Settings) {
			s.SelectedModelID = args[0]
		})

	case "/api":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /api <openAI|openRouter|ollama>")
		}
		return false, a.settings.Update(func(s *settings.Settings) {
			s.SelectedAPI = string(provider.ParseAPI(args[0]))
		})

	case "/temp":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /temp <0.0-2.0>")
		}
		temp, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, fmt.Errorf("invalid temperature %q", args[0])
		}
		return false, a.settings.Update(func(s *settings.Settings) {
			s.Temperature = temp
		})

	case "/baseurl":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /baseurl <ollama-base-url>")
		}
		return false, a.settings.Update(func(s *settings.Settings) {
			s.OllamaBaseURL = args[0]
		})

	case "/key":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: /key <openAI|openRouter|ollama> <secret>")
		}
		api := provider.ParseAPI(args[0])
		if err := a.keys.Save(args[1], api.SecretKey()); err != nil {
			return false, err
		}
		fmt.Printf("secret key stored for %s\n", api.Name())

	case "/usage":
		fmt.Printf("tokens: %d  cost: $%.6f\n", a.conv.TotalTokens(), a.conv.TotalCosts())

	case "/settings":
		s := a.settings.Snapshot()
		fmt.Printf("api: %s  model: %s  temperature: %.1f  wordWrap: %v\n",
			s.SelectedAPI, s.SelectedModelID, s.Temperature, s.WordWrap)
		if s.OllamaBaseURL != "" {
			fmt.Printf("ollama base url: %s\n", s.OllamaBaseURL)
		}

	default:
		return false, fmt.Errorf("unknown command %s, try /help", cmd)
	}

	return false, nil
}

func (a *app) messageIndex(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s <message-number>", "/edit|/regen")
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 0 || idx >= len(a.conv.Messages()) {
		return 0, fmt.Errorf("no message numbered %q", args[0])
	}
	return idx, nil
}

// printNewMessages prints messages appended since the given length,
// numbered by their position in the loaded window.
func (a *app) printNewMessages(since int) {
	msgs := a.conv.Messages()
	for i := since; i < len(msgs); i++ {
		m := msgs[i]
		fmt.Printf("[%d] %s: %s\n", i, m.Sender.DisplayName(), a.render(m.Content))
	}
}

func (a *app) printHistory(ctx context.Context) error {
	groups, err := a.history.Fetch(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println("no chats yet")
		return nil
	}
	for _, g := range groups {
		fmt.Println(g.Date.Format("Mon, 02 Jan 2006"))
		for _, lead := range g.Entries {
			fmt.Printf("  %s  %s\n", lead.ChatID, lead.Preview(60))
		}
	}
	return nil
}

// render applies the word-wrap preference to outgoing text.
func (a *app) render(content string) string {
	s := a.settings.Snapshot()
	if !s.WordWrap {
		return content
	}
	return wrap(content, 100)
}

// wrap folds text at word boundaries. Lines longer than width with no
// spaces are left alone.
func wrap(s string, width int) string {
	var b strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		col := 0
		for j, word := range strings.Fields(line) {
			if j > 0 {
				if col+1+len(word) > width {
					b.WriteByte('\n')
					col = 0
				} else {
					b.WriteByte(' ')
					col++
				}
			}
			b.WriteString(word)
			col += len(word)
		}
	}
	return b.String()
}

func (a *app) printHelp() {
	fmt.Print(`commands:
  /new                start a new chat
  /open <chat-id>     open an existing chat
  /more               load older messages
  /edit <n>           edit your message n (then send the replacement)
  /cancel             abort an in-progress edit
  /regen <n>          regenerate assistant message n
  /history            list past chats by day
  /chats              list chat ids with their start time
  /delete <chat-id>   delete a chat
  /clear              delete all chats
  /models [remote]    list models (remote forces an API refresh)
  /model <id>         select the model
  /api <name>         select the backend (openAI, openRouter, ollama)
  /temp <t>           set the sampling temperature (0.0-2.0)
  /baseurl <url>      set the Ollama base URL
  /key <api> <secret> store a secret key
  /usage              show the chat's token and cost totals
  /settings           show the current settings
  /quit               exit
`)
}
