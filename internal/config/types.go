// Package config resolves, parses, validates, and defaults keywire
// configuration.
package config

// Config is the fully materialized runtime configuration.
type Config struct {
	Sockets SocketConfig
	Matrix  MatrixConfig
	Keys    KeyTimingConfig
	Log     LogConfig
}

// SocketConfig holds the two IPC endpoint paths. The defaults are the
// interface contract with the ZMK native_sim process; both are plain
// configuration so multiple clients with different endpoints coexist.
type SocketConfig struct {
	Kscan  string // client -> firmware key injection
	Events string // firmware -> client event stream
}

// MatrixConfig describes the key-matrix geometry used for linear
// position to row/col conversion on the caller side.
type MatrixConfig struct {
	Columns int
}

// KeyTimingConfig controls the press-hold and inter-key gaps used by
// the send command.
type KeyTimingConfig struct {
	PressMS    int
	IntervalMS int
}

// LogConfig controls log level and rotation of the JSONL log file.
type LogConfig struct {
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
