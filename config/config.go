// Package config provides the functional-options settings layer used
// to construct the core's tunable pieces: block size, the memtable
// size threshold an external engine would seal on, and log level.
package config

import (
	log "github.com/sirupsen/logrus"
)

// Settings holds the tunable knobs for BlockBuilder, SsTableBuilder,
// and MemTable construction.
type Settings struct {
	BlockSizeByte    uint
	MemtableSizeByte uint
	LogLevel         log.Level
}

// Option configures a Settings.
type Option func(*Settings)

// WithBlockSizeByte configures the target size of a data block.
func WithBlockSizeByte(size uint) Option {
	return func(s *Settings) {
		s.BlockSizeByte = size
	}
}

// WithMemtableSizeByte configures the approximate size, in bytes, at
// which a memtable should be sealed into an SST by the engine above
// this core.
func WithMemtableSizeByte(size uint) Option {
	return func(s *Settings) {
		s.MemtableSizeByte = size
	}
}

// WithLogLevel configures the log level components should log at.
func WithLogLevel(level log.Level) Option {
	return func(s *Settings) {
		s.LogLevel = level
	}
}

func defaultSettings() *Settings {
	return &Settings{
		BlockSizeByte:    4 * 1024,        // 4 KB
		MemtableSizeByte: 4 * 1024 * 1024, // 4 MB
		LogLevel:         log.WarnLevel,
	}
}

// New builds a Settings from opts, starting from the package defaults.
func New(opts ...Option) *Settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply sets the process-wide logrus level to s.LogLevel.
func (s *Settings) Apply() {
	log.SetLevel(s.LogLevel)
}
