// cmd/dashboard is the terminal check-in console. It logs in to the
// server and shows live event and participant timers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/Shivanand-hulikatti/event-checkin/internal/dashboard"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		server    string
		email     string
		password  string
		eventID   string
		exportDir string
		poll      time.Duration
	)
	flagSet := pflag.NewFlagSet("dashboard", pflag.ContinueOnError)
	flagSet.StringVar(&server, "server", "http://localhost:8080", "check-in server base URL")
	flagSet.StringVar(&email, "email", "", "login email")
	flagSet.StringVar(&password, "password", "", "login password (default: $CHECKIN_PASSWORD)")
	flagSet.StringVar(&eventID, "event", "", "event to open (default: first assigned event)")
	flagSet.StringVar(&exportDir, "export-dir", ".", "directory for exported CSV files")
	flagSet.DurationVar(&poll, "poll", 5*time.Second, "server refresh interval")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	if password == "" {
		password = os.Getenv("CHECKIN_PASSWORD")
	}
	if email == "" || password == "" {
		return errors.New("--email and --password are required")
	}

	client := dashboard.NewClient(server, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	model := dashboard.NewModel(dashboard.Options{
		Client:    client,
		Poll:      poll,
		EventID:   eventID,
		ExportDir: exportDir,
	})
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Event check-in dashboard, an interactive terminal console.

Usage: dashboard --email EMAIL --password PASSWORD [flags]

Flags:
%s`, flagSet.FlagUsages())
}
