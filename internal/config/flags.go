// Package config defines the undertow server's CLI flags, which can also
// be set via environment variables or the application's TOML
// configuration file, in that order of precedence.
package config

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

const (
	DefaultListenAddr      = ":8080"
	DefaultCleanupInterval = "30s"
	DefaultIdleTimeout     = "5m"
)

// Flags defines CLI flags to configure the undertow server. These flags
// can also be set using environment variables and the application's
// configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "listen-addr",
			Usage: "TCP address to accept WebSocket connections on",
			Value: DefaultListenAddr,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("UNDERTOW_LISTEN_ADDR"),
				toml.TOML("undertow.listen_addr", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "cleanup-interval",
			Usage: "how often to prune closed connections from the registry",
			Value: DefaultCleanupInterval,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("UNDERTOW_CLEANUP_INTERVAL"),
				toml.TOML("undertow.cleanup_interval", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "idle-timeout",
			Usage: "read/write deadline for an idle connection (0 disables it)",
			Value: DefaultIdleTimeout,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("UNDERTOW_IDLE_TIMEOUT"),
				toml.TOML("undertow.idle_timeout", configFilePath),
			),
		},
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "simple setup, but unsafe for production",
		},
		&cli.BoolFlag{
			Name:  "pretty-log",
			Usage: "human-readable console logging, instead of JSON",
		},
	}
}
