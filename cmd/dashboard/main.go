// Package main runs the helpsync terminal dashboard against a running server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"helpsync/config"
	"helpsync/tui"
)

func main() {
	// The config file and HELPSYNC_SERVER_API only change the default
	defaultURL := config.DefaultAPIURL
	if settings, err := config.Load(""); err == nil && settings.Server.API != "" {
		defaultURL = settings.Server.API
	}
	apiURL := flag.String("url", defaultURL, "helpsync server URL")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	program := tea.NewProgram(tui.NewModel(tui.NewAPIClient(*apiURL)))
	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
