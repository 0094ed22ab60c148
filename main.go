// Command ptzctrl is a terminal control panel for PTZ camera presets. It
// talks to a preset server over a websocket and shows one column of preset
// buttons per camera.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dennis-eisen/ptzctrl/panel"
	"github.com/dennis-eisen/ptzctrl/prefs"
	"github.com/dennis-eisen/ptzctrl/ptz"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ptzctrl:", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "", "preset server address (host or host:port)")
	configPath := flag.String("config", "", "config file (default: search ./ptzctrl.json, ~/.config/ptzctrl/)")
	logPath := flag.String("log", "", "write a JSON log to this file")
	prefsPath := flag.String("prefs", "", "preferences file (default: "+prefs.DefaultPath()+")")
	reconnect := flag.Bool("reconnect", false, "redial with backoff when the connection drops")
	flag.Parse()

	_ = godotenv.Load() // .env is optional

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	// flag > environment > config file
	switch {
	case *addr != "":
		cfg.Addr = *addr
	case os.Getenv("PTZCTRL_ADDR") != "":
		cfg.Addr = os.Getenv("PTZCTRL_ADDR")
	}
	if *reconnect {
		cfg.Reconnect = true
	}
	if cfg.Accent != "" {
		AccentColor = lipgloss.Color(cfg.Accent)
	}

	logs := newLogBuffer(1000)
	log, closeLog, err := newLogger(logs, *logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	if *prefsPath == "" {
		*prefsPath = prefs.DefaultPath()
	}
	store, err := prefs.Open(*prefsPath, log.Named("prefs"))
	if err != nil {
		return err
	}

	var policy ptz.ReconnectPolicy = ptz.NoReconnect{}
	if cfg.Reconnect {
		policy = ptz.Backoff{Initial: 500 * time.Millisecond, Max: 10 * time.Second}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dial := func(ctx context.Context) (ptz.Channel, error) {
		c, err := ptz.Dial(ctx, cfg.Addr, ptz.WithLogger(log.Named("ptz")))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	conn, err := ptz.NewRedialer(ctx, dial, policy, log.Named("redial"))
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Addr, err)
	}
	defer conn.Close()
	log.Info("connected", zap.String("addr", cfg.Addr), zap.Bool("reconnect", cfg.Reconnect))

	ctrl := panel.New(conn, store, log.Named("panel"))
	profile := colorprofile.Detect(os.Stdout, os.Environ())
	m := NewModel(conn, ctrl, logs, cfg, profile, log)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
