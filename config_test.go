/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/quizroyale/logging"
)

func validConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		port:           8080,
		logFormat:      logging.FormatText,
		maxRooms:       10,
		questionSet:    "default",
		playerTimeout:  time.Minute,
		revealDelay:    time.Second,
		sessionTimeout: time.Hour,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"json logs", func(c *Config) { c.logFormat = logging.FormatJSON }, true},
		{"full tls", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, true},
		{"redis", func(c *Config) { c.redisAddr, c.redisDB = "localhost:6379", 2 }, true},
		{"port zero", func(c *Config) { c.port = 0 }, false},
		{"port too high", func(c *Config) { c.port = 70000 }, false},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, false},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, false},
		{"negative rooms", func(c *Config) { c.maxRooms = -1 }, false},
		{"negative reveal", func(c *Config) { c.revealDelay = -time.Second }, false},
		{"negative player timeout", func(c *Config) { c.playerTimeout = -time.Second }, false},
		{"negative session timeout", func(c *Config) { c.sessionTimeout = -time.Second }, false},
		{"unknown log format", func(c *Config) { c.logFormat = "xml" }, false},
		{"redis db without addr", func(c *Config) { c.redisDB = 1 }, false},
		{"file and redis", func(c *Config) { c.questions, c.redisAddr = "q.json", "localhost:6379" }, false},
		{"empty question set", func(c *Config) { c.questionSet = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmdDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, 100, cfg.maxRooms)
	assert.Equal(t, logging.FormatText, cfg.logFormat)
	assert.Equal(t, 5*time.Second, cfg.revealDelay)
	assert.NoError(t, cfg.validate())
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("QUIZROYALE_PORT", "9090")
	t.Setenv("QUIZROYALE_REVEAL_DELAY", "250ms")
	t.Setenv("QUIZROYALE_LOG_FORMAT", "json")

	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 250*time.Millisecond, cfg.revealDelay)
	assert.Equal(t, logging.FormatJSON, cfg.logFormat)
}

func TestNewCmdFlagsWin(t *testing.T) {
	t.Setenv("QUIZROYALE_MAX_ROOMS", "3")

	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"--max-rooms", "7", "--player_timeout", "30s"}))

	assert.Equal(t, 7, cfg.maxRooms)
	assert.Equal(t, 30*time.Second, cfg.playerTimeout)
}
