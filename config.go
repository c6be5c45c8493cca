/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/quizroyale/logging"
)

type Config struct {
	bind           string
	logFormat      string
	maxRooms       int
	metrics        bool
	playerTimeout  time.Duration
	port           int
	prefix         string
	profile        bool
	questionSet    string
	questions      string
	redisAddr      string
	redisDB        int
	redisPassword  string
	revealDelay    time.Duration
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxRooms < 0 {
		return fmt.Errorf("invalid --max-rooms (must not be negative): %d", c.maxRooms)
	}

	for name, d := range map[string]time.Duration{
		"player-timeout":  c.playerTimeout,
		"reveal-delay":    c.revealDelay,
		"session-timeout": c.sessionTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("invalid --%s (must not be negative): %s", name, d)
		}
	}

	switch c.logFormat {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid --log-format (must be %q or %q): %q", logging.FormatText, logging.FormatJSON, c.logFormat)
	}

	if c.redisAddr == "" && c.redisDB != 0 {
		return errors.New("--redis-db requires --redis-addr")
	}
	if c.redisAddr != "" && c.questions != "" {
		return errors.New("--questions and --redis-addr are mutually exclusive")
	}
	if c.questionSet == "" {
		return errors.New("--question-set must not be empty")
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
	v.SetEnvPrefix("QUIZROYALE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizroyale",
		Short:         "Real-time team quiz battles, last team standing wins.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: QUIZROYALE_BIND)")
	fs.StringVar(&cfg.logFormat, "log-format", logging.FormatText, "log output format, text or json (env: QUIZROYALE_LOG_FORMAT)")
	fs.IntVar(&cfg.maxRooms, "max-rooms", 100, "maximum concurrent rooms, 0 for unlimited (env: QUIZROYALE_MAX_ROOMS)")
	fs.BoolVar(&cfg.metrics, "metrics", false, "expose prometheus metrics at /metrics (env: QUIZROYALE_METRICS)")
	fs.DurationVar(&cfg.playerTimeout, "player-timeout", 2*time.Minute, "time before disconnected lobby players lose their slot, 0 to keep forever (env: QUIZROYALE_PLAYER_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: QUIZROYALE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: QUIZROYALE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: QUIZROYALE_PROFILE)")
	fs.StringVar(&cfg.questionSet, "question-set", "default", "question set used when a room does not name one (env: QUIZROYALE_QUESTION_SET)")
	fs.StringVarP(&cfg.questions, "questions", "q", "", "path to a JSON question bank, loaded as the default set (env: QUIZROYALE_QUESTIONS)")
	fs.StringVar(&cfg.redisAddr, "redis-addr", "", "redis address for question sets, e.g. localhost:6379 (env: QUIZROYALE_REDIS_ADDR)")
	fs.IntVar(&cfg.redisDB, "redis-db", 0, "redis database number (env: QUIZROYALE_REDIS_DB)")
	fs.StringVar(&cfg.redisPassword, "redis-password", "", "redis password (env: QUIZROYALE_REDIS_PASSWORD)")
	fs.DurationVar(&cfg.revealDelay, "reveal-delay", 5*time.Second, "time results stay on screen before the next question (env: QUIZROYALE_REVEAL_DELAY)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are closed, 0 to never close (env: QUIZROYALE_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: QUIZROYALE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: QUIZROYALE_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: QUIZROYALE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: QUIZROYALE_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quizroyale v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
