package config

// Default returns the canonical runtime configuration used when no file
// is present.
func Default() Config {
	return Config{
		Sockets: SocketConfig{
			Kscan:  "/tmp/zmk_kscan_ipc.sock",
			Events: "/tmp/zmk_ipc.sock",
		},
		Matrix: MatrixConfig{Columns: 12},
		Keys: KeyTimingConfig{
			PressMS:    50,
			IntervalMS: 200,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}
