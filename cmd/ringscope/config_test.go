package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ringscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigFileThenFlags(t *testing.T) {
	path := writeConfig(t, `
udp_addr: "127.0.0.1:9999"
http_addr: "127.0.0.1:8081"
tftp_addr: ":6969"
capacity: 8
log_level: debug
heartbeat: 2s
`)

	cfg, err := ParseConfig([]string{"-config", path, "-capacity", "16", "-http-addr", ":9090"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.UDPAddr)
	assert.Equal(t, ":9090", cfg.HTTPAddr, "explicit flag beats file")
	assert.Equal(t, ":6969", cfg.TFTPAddr)
	assert.Equal(t, uint16(16), cfg.Capacity, "explicit flag beats file")
	assert.Equal(t, 2*time.Second, cfg.Heartbeat)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseConfigEmptyFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := ParseConfig([]string{"-config", path}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigRejects(t *testing.T) {
	for name, args := range map[string][]string{
		"zero capacity":     {"-capacity", "0"},
		"capacity overflow": {"-capacity", "70000"},
		"bad log level":     {"-log-level", "loud"},
		"no http address":   {"-http-addr", ""},
		"zero heartbeat":    {"-heartbeat", "0s"},
		"unknown flag":      {"-nope"},
		"missing file":      {"-config", filepath.Join(t.TempDir(), "absent.yaml")},
		"unknown key":       {"-config", writeConfig(t, "colour: blue\n")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(args, io.Discard)
			assert.Error(t, err)
		})
	}
}
