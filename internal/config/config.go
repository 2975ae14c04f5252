// Package config loads host settings for the compressor commands from
// COMP_* environment variables. Command-line flags override them.
package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	DefaultLogLevel    = "info"
	DefaultControlAddr = ""
	DefaultBlockSize   = 512
)

type Config struct {
	// LogLevel is a zerolog level name.
	LogLevel string
	// ControlAddr is the listen address of the WebSocket control surface.
	// Empty disables it.
	ControlAddr string
	// BlockSize is the host block size in frames.
	BlockSize int
	// Realtime paces processing to the audio clock.
	Realtime bool
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		switch strings.ToLower(v) {
		case "0", "false", "no", "off":
			return false
		default:
			return true
		}
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func Load() Config {
	return Config{
		LogLevel:    getenv("COMP_LOG_LEVEL", DefaultLogLevel),
		ControlAddr: getenv("COMP_CONTROL_ADDR", DefaultControlAddr),
		BlockSize:   getenvInt("COMP_BLOCK_SIZE", DefaultBlockSize),
		Realtime:    getenvBool("COMP_REALTIME", false),
	}
}
