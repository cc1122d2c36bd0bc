package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		minPlayers:   3,
		pingInterval: 5 * time.Second,
		pongTimeout:  15 * time.Second,
		port:         8080,
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }},
		{"port too low", func(c *Config) { c.port = 0 }},
		{"port too high", func(c *Config) { c.port = 70000 }},
		{"min players below floor", func(c *Config) { c.minPlayers = 2 }},
		{"ping not shorter than pong", func(c *Config) { c.pingInterval = 15 * time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert = "cert.pem"
	cfg.tlsKey = "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}
