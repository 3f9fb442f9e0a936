// Command trackboard is a terminal kanban console for the platform's
// task boards.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/arenahub/trackboard/internal/app"
	"github.com/arenahub/trackboard/internal/credential"
	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
	"github.com/arenahub/trackboard/internal/store"
	appsync "github.com/arenahub/trackboard/internal/sync"
	"github.com/arenahub/trackboard/internal/timeline"
	"github.com/arenahub/trackboard/internal/tracker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "trackboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the configuration file")
	boardID := flag.String("board", "", "board id to open at startup")
	setToken := flag.Bool("set-token", false, "store the API token in the system keyring and exit")
	logPath := flag.String("log", "", "write debug logs to this file")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
		log.SetLevel(logrus.DebugLevel)
	} else {
		// The terminal belongs to the UI; keep stderr quiet.
		log.SetLevel(logrus.ErrorLevel)
	}

	if *setToken {
		return storeToken()
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is not configured; edit %s", *configPath)
	}

	token, err := loadToken()
	if err != nil {
		return err
	}

	client := remote.NewClient(cfg.API.BaseURL, token,
		time.Duration(cfg.API.TimeoutSec)*time.Second)

	snapshot, err := store.NewSnapshotStore(cfg.CachePath)
	if err != nil {
		// The console still works without the offline cache.
		log.WithError(err).Warn("opening snapshot cache failed, running without it")
		snapshot = nil
	} else {
		defer snapshot.Close()
	}

	tickets := tracker.NewTicketStore(client, snapshot, log)
	registry := tracker.NewRegistry(client, snapshot, tickets, log)
	tags := tracker.NewTagResolver(client, snapshot, log)

	interval := time.Duration(cfg.Sync.PollIntervalSec) * time.Second
	if !cfg.Sync.Enabled {
		// A paused poller still serves manual refreshes.
		interval = 24 * time.Hour
	}
	poller := appsync.New(tickets, interval, log)

	root := app.New(app.Options{
		Registry:         registry,
		Tickets:          tickets,
		Tags:             tags,
		Poller:           poller,
		Log:              log,
		RequestedBoardID: *boardID,
		TimelineMode:     timeline.ParseMode(cfg.Display.TimelineMode),
	})

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// loadToken reads the API token from the environment, falling back to
// the system keyring.
func loadToken() (string, error) {
	if token := os.Getenv("TRACKBOARD_TOKEN"); token != "" {
		return token, nil
	}
	token, err := credential.Get(credential.TokenKey)
	if err != nil || token == "" {
		return "", fmt.Errorf("no API token: set TRACKBOARD_TOKEN or run with -set-token")
	}
	return token, nil
}

// storeToken reads a token from stdin and saves it to the keyring.
func storeToken() error {
	fmt.Fprint(os.Stderr, "API token: ")
	var token string
	if _, err := fmt.Scanln(&token); err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	if err := credential.Set(credential.TokenKey, token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	fmt.Fprintln(os.Stderr, "token stored")
	return nil
}
