package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ragchat/internal/chat"
	"ragchat/internal/config"
	"ragchat/internal/logging"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ragchat-tui: %v\n", err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ragchat-tui: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	client := chat.NewHTTPClient(cfg.APIURL, cfg.Timeout)
	ctrl := chat.NewController(client,
		chat.WithLogger(logger),
		chat.WithGreeting(cfg.Greeting),
	)
	logger.Info("chat client starting",
		zap.String("api_url", client.BaseURL()),
		zap.String("session_id", ctrl.SessionID()),
		zap.Duration("timeout", cfg.Timeout),
	)

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(newModel(cfg, ctrl, client, logger), opts...)
	if _, err := p.Run(); err != nil {
		logger.Error("program exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "ragchat-tui fatal error: %v\n", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}
