package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/tzrikka/xdg"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"

	"github.com/undertow-ws/undertow/internal/config"
	"github.com/undertow-ws/undertow/internal/logger"
	"github.com/undertow-ws/undertow/pkg/metrics"
	"github.com/undertow-ws/undertow/pkg/registry"
	"github.com/undertow-ws/undertow/pkg/websocket"
)

const (
	ConfigDirName  = "undertow"
	ConfigFileName = "config.toml"
)

func main() {
	bi, _ := debug.ReadBuildInfo()

	cmd := &cli.Command{
		Name:    "undertow",
		Usage:   "minimal WebSocket server: accepts connections and echoes messages to every peer",
		Version: bi.Main.Version,
		Flags:   flags(),
		Action:  run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	return config.Flags(configFile())
}

// configFile returns the path to the app's configuration file. It also
// creates an empty file if it doesn't already exist.
func configFile() altsrc.StringSourcer {
	path, err := xdg.CreateFile(xdg.ConfigHome, ConfigDirName, ConfigFileName)
	if err != nil {
		logger.FatalError("failed to create config file", err)
	}
	return altsrc.StringSourcer(path)
}

func run(ctx context.Context, cmd *cli.Command) error {
	l := initLog(cmd.Bool("dev") || cmd.Bool("pretty-log"))
	ctx = logger.InContext(ctx, l)

	addr := cmd.String("listen-addr")
	srv, err := websocket.Bind(addr, l)
	if err != nil {
		return fmt.Errorf("failed to bind WebSocket server: %w", err)
	}
	defer srv.Close()
	l.Info().Str("addr", srv.Addr().String()).Msg("WebSocket server listening")

	cleanupInterval, err := time.ParseDuration(cmd.String("cleanup-interval"))
	if err != nil {
		return fmt.Errorf("invalid --cleanup-interval: %w", err)
	}
	idleTimeout, err := time.ParseDuration(cmd.String("idle-timeout"))
	if err != nil {
		return fmt.Errorf("invalid --idle-timeout: %w", err)
	}

	reg := registry.New(l)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			reg.CleanupClosed()
		}
	}()

	for conn := range srv.Incoming() {
		reg.Add(conn)
		metrics.RecordConnection(l, time.Now(), conn.ID(), "")
		go serveConn(l, reg, conn, idleTimeout)
	}

	return nil
}

// serveConn reads messages from conn until it closes or fails, and
// re-broadcasts every text or binary message it receives to the
// registry — the minimal "echo to everyone" application built on top of
// the message API.
func serveConn(l zerolog.Logger, reg *registry.Registry, conn *websocket.Conn, idleTimeout time.Duration) {
	for {
		if idleTimeout > 0 {
			if err := conn.SetIdleDeadline(idleTimeout); err != nil {
				l.Debug().Err(err).Str("conn_id", conn.ID()).Msg("failed to set idle deadline")
			}
		}

		msg, err := conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.Debug().Err(err).Str("conn_id", conn.ID()).Msg("connection terminated")
			}
			break
		}

		switch msg.Kind {
		case websocket.MessageText, websocket.MessageBinary:
			reg.Broadcast(msg)
		case websocket.MessagePing:
			_ = conn.SendMessage(websocket.Message{Kind: websocket.MessagePong, Data: msg.Data})
		case websocket.MessageClose:
			l.Debug().Str("conn_id", conn.ID()).Msg("client requested to close the connection")
		}

		if conn.IsClosed() {
			break
		}
	}

	reg.CleanupClosed()
}

// initLog initializes the server's logger, based on whether it's running
// in development mode (or --pretty-log) or not.
func initLog(devMode bool) zerolog.Logger {
	var w io.Writer = os.Stderr

	if devMode {
		out := os.Stdout
		if isatty.IsTerminal(out.Fd()) {
			w = zerolog.ConsoleWriter{Out: colorable.NewColorable(out), TimeFormat: time.RFC3339}
		} else {
			w = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
		}
	}

	return zerolog.New(w).With().Timestamp().Logger()
}
