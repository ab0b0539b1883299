package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"gin-todo/client"
	"gin-todo/client/ui"
)

func main() {
	apiURL := flag.String("api", envOr("TODO_API_URL", client.DefaultBaseURL), "base URL of the todo API")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "per-request timeout")
	logPath := flag.String("log", "", "write client logs to this file")
	flag.Parse()

	// The TUI owns the terminal, so logs only go to a file when asked.
	var w io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "todo-ui",
	})

	hook := client.NewHook(client.NewHTTPClient(*apiURL, *timeout), logger)
	p := tea.NewProgram(ui.New(context.Background(), hook), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
