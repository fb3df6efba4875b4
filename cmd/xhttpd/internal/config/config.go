package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Mode selects what the connection handler does with the bytes it reads
type Mode string

const (
	ModeEcho    Mode = "echo"
	ModeInspect Mode = "inspect"
)

// LogFormat selects the slog handler
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

const maxReadBufferSize = 1 << 20

// Config holds all application configuration
type Config struct {
	// Core
	Debug     bool
	LogFormat LogFormat
	Mode      Mode

	// Server
	BindAddress      string
	Port             int
	HealthServerPort string // empty disables the health server
	ReuseAddr        bool
	MaxConnections   int // 0 means unlimited

	// Connection handling
	ReadBufferSize int
	ReverseLookup  bool
	LookupTimeout  time.Duration
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogFormat:        LogFormatText,
		Mode:             ModeEcho,
		BindAddress:      "0.0.0.0",
		Port:             8080,
		HealthServerPort: "8081",
		ReuseAddr:        true,
		ReadBufferSize:   4096,
		ReverseLookup:    true,
		LookupTimeout:    2 * time.Second,
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE or --config), environment variables and command-line flags,
// in increasing order of precedence.
func Load(args []string) (*Config, error) {
	cfg := Default()

	if path := configPath(args); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.applyFlags(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from defaults and environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load(nil)
}

func (c *Config) applyEnv() {
	c.Debug = getEnvBool("DEBUG", c.Debug)
	c.LogFormat = LogFormat(getEnv("LOG_FORMAT", string(c.LogFormat)))
	c.Mode = Mode(getEnv("HANDLER_MODE", string(c.Mode)))

	c.BindAddress = getEnv("BIND_ADDRESS", c.BindAddress)
	c.Port = getEnvInt("PORT", c.Port)
	c.HealthServerPort = getEnv("HEALTH_SERVER_PORT", c.HealthServerPort)
	c.ReuseAddr = getEnvBool("REUSE_ADDR", c.ReuseAddr)
	c.MaxConnections = getEnvInt("MAX_CONNECTIONS", c.MaxConnections)

	c.ReadBufferSize = getEnvInt("READ_BUFFER_SIZE", c.ReadBufferSize)
	c.ReverseLookup = getEnvBool("REVERSE_LOOKUP", c.ReverseLookup)
	c.LookupTimeout = getEnvDuration("LOOKUP_TIMEOUT", c.LookupTimeout)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("xhttpd", pflag.ContinueOnError)
	fs.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML configuration file")
	return fs
}

// configPath extracts --config ahead of the full parse so the file can be
// applied below environment and flags.
func configPath(args []string) string {
	fs := newFlagSet()
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	_ = fs.Parse(args)
	path, _ := fs.GetString("config")
	return path
}

// applyFlags binds every flag to its field, using the current value as the
// default so only flags given on the command line change anything.
func (c *Config) applyFlags(args []string) error {
	fs := newFlagSet()
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
	fs.StringVar((*string)(&c.LogFormat), "log-format", string(c.LogFormat), "log format: text or json")
	fs.StringVar((*string)(&c.Mode), "mode", string(c.Mode), "handler mode: echo or inspect")
	fs.StringVar(&c.BindAddress, "address", c.BindAddress, "IPv4 address to listen on")
	fs.IntVar(&c.Port, "port", c.Port, "TCP port to listen on")
	fs.StringVar(&c.HealthServerPort, "health-port", c.HealthServerPort, "health server port, empty to disable")
	fs.BoolVar(&c.ReuseAddr, "reuse-addr", c.ReuseAddr, "set SO_REUSEADDR on the listening socket")
	fs.IntVar(&c.MaxConnections, "max-connections", c.MaxConnections, "cap on concurrent connections, 0 for unlimited")
	fs.IntVar(&c.ReadBufferSize, "read-buffer-size", c.ReadBufferSize, "bytes read per connection read")
	fs.BoolVar(&c.ReverseLookup, "reverse-lookup", c.ReverseLookup, "resolve peer host names")
	fs.DurationVar(&c.LookupTimeout, "lookup-timeout", c.LookupTimeout, "timeout for peer host name lookups")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}

// validate ensures configuration is coherent
func (c *Config) validate() error {
	var errs field.ErrorList

	errs = append(errs, validation.IsValidIPv4Address(field.NewPath("bindAddress"), c.BindAddress)...)

	for _, msg := range validation.IsValidPortNum(c.Port) {
		errs = append(errs, field.Invalid(field.NewPath("port"), c.Port, msg))
	}

	if c.HealthServerPort != "" {
		port, err := strconv.Atoi(c.HealthServerPort)
		if err != nil {
			errs = append(errs, field.Invalid(field.NewPath("healthServerPort"), c.HealthServerPort, "must be a number"))
		} else {
			for _, msg := range validation.IsValidPortNum(port) {
				errs = append(errs, field.Invalid(field.NewPath("healthServerPort"), c.HealthServerPort, msg))
			}
			if port == c.Port {
				errs = append(errs, field.Duplicate(field.NewPath("healthServerPort"), c.HealthServerPort))
			}
		}
	}

	for _, msg := range validation.IsInRange(c.ReadBufferSize, 1, maxReadBufferSize) {
		errs = append(errs, field.Invalid(field.NewPath("readBufferSize"), c.ReadBufferSize, msg))
	}

	if c.MaxConnections < 0 {
		errs = append(errs, field.Invalid(field.NewPath("maxConnections"), c.MaxConnections, "must be non-negative"))
	}

	if c.LookupTimeout <= 0 {
		errs = append(errs, field.Invalid(field.NewPath("lookupTimeout"), c.LookupTimeout.String(), "must be positive"))
	}

	switch c.Mode {
	case ModeEcho, ModeInspect:
	default:
		errs = append(errs, field.NotSupported(field.NewPath("mode"), c.Mode, []Mode{ModeEcho, ModeInspect}))
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, field.NotSupported(field.NewPath("logFormat"), c.LogFormat, []LogFormat{LogFormatText, LogFormatJSON}))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errs.ToAggregate())
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
