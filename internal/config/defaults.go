package config

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:    "127.0.0.1:4173",
			Templates: "",
			Assets:    "ui",
			RateLimit: RateLimitConfig{
				RPS:        20,
				Burst:      40,
				MaxClients: 10000,
			},
		},
		Log: LogConfig{
			Level: "INFO",
		},
		Event: EventConfig{
			Title: "Launch night",
			Ends:  "2026-02-25T10:00:00+11:00",
			Steps: []StepConfig{
				{Title: "Welcome", Body: "Here is how joining works."},
				{Title: "Pick a seat", Body: "Choose where you want to watch from."},
				{Title: "Bring a friend", Body: "Invite someone along."},
				{Title: "All set", Body: "See you when the countdown hits zero."},
			},
		},
	}
}
