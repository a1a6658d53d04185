package config

// Config is the top-level eventpage configuration, corresponding to eventpage.yml.
type Config struct {
	Server ServerConfig `yaml:"server" koanf:"server"`
	Log    LogConfig    `yaml:"log" koanf:"log"`
	Event  EventConfig  `yaml:"event" koanf:"event"`
}

// ServerConfig controls the page server.
type ServerConfig struct {
	Listen    string          `yaml:"listen" koanf:"listen"`
	Templates string          `yaml:"templates" koanf:"templates"`
	Assets    string          `yaml:"assets" koanf:"assets"`
	Dev       bool            `yaml:"dev" koanf:"dev"`
	RateLimit RateLimitConfig `yaml:"rate_limit" koanf:"rate_limit"`
}

// RateLimitConfig is the per-client token bucket. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS        float64 `yaml:"rps" koanf:"rps"`
	Burst      int     `yaml:"burst" koanf:"burst"`
	MaxClients int     `yaml:"max_clients" koanf:"max_clients"`
}

// LogConfig holds logging settings. An empty Dir logs to stdout only.
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
	Dir   string `yaml:"dir" koanf:"dir"`
}

// EventConfig is the content rendered into the landing page.
type EventConfig struct {
	Title string       `yaml:"title" koanf:"title"`
	Ends  string       `yaml:"ends" koanf:"ends"`
	Steps []StepConfig `yaml:"steps" koanf:"steps"`
}

// StepConfig is one popup step.
type StepConfig struct {
	Title string `yaml:"title" koanf:"title"`
	Body  string `yaml:"body" koanf:"body"`
}
