package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind            string
	minPlayers      int
	pingInterval    time.Duration
	pongTimeout     time.Duration
	port            int
	prefix          string
	profile         bool
	removalGrace    time.Duration
	roomIdleTimeout time.Duration
	tlsCert         string
	tlsKey          string
	verbose         bool
	version         bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.minPlayers < 3 {
		return fmt.Errorf("invalid minimum player count (a round needs at least 3): %d", c.minPlayers)
	}
	if c.pingInterval >= c.pongTimeout {
		return fmt.Errorf("--ping-interval (%s) must be shorter than --pong-timeout (%s)", c.pingInterval, c.pongTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TIKJOGOS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "tikjogos",
		Short:         "Session server for browser-based social deduction party games.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TIKJOGOS_BIND)")
	fs.IntVar(&cfg.minPlayers, "min-players", 3, "connected players required to start a round (env: TIKJOGOS_MIN_PLAYERS)")
	fs.DurationVar(&cfg.pingInterval, "ping-interval", 5*time.Second, "interval between websocket pings (env: TIKJOGOS_PING_INTERVAL)")
	fs.DurationVar(&cfg.pongTimeout, "pong-timeout", 15*time.Second, "time without a pong before a player is marked disconnected (env: TIKJOGOS_PONG_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: TIKJOGOS_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: TIKJOGOS_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: TIKJOGOS_PROFILE)")
	fs.DurationVar(&cfg.removalGrace, "removal-grace", 15*time.Second, "reconnection window before a disconnected player is removed (env: TIKJOGOS_REMOVAL_GRACE)")
	fs.DurationVar(&cfg.roomIdleTimeout, "room-idle-timeout", 60*time.Minute, "time before idle rooms are ended (env: TIKJOGOS_ROOM_IDLE_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: TIKJOGOS_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: TIKJOGOS_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: TIKJOGOS_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: TIKJOGOS_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("tikjogos v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
