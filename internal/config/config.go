// Package config handles loading and validating the voicegate configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the root configuration for the voicegate server.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Model   ModelConfig   `mapstructure:"model"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Codec   CodecConfig   `mapstructure:"codec"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Port        int        `mapstructure:"port"`
	HealthPort  int        `mapstructure:"health_port"`
	GRPC        GRPCConfig `mapstructure:"grpc"`
	ShowDetails bool       `mapstructure:"show_details"`
	Compress    bool       `mapstructure:"compress"` // gzip text responses
}

// GRPCConfig configures the gRPC health listener.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// ModelConfig describes the single active model.
type ModelConfig struct {
	// Name is <type>/<language>/<dataset>/<model>; the MaryTTS surface derives
	// its locale and voice name from it.
	Name            string `mapstructure:"name"`
	DefaultSpeaker  string `mapstructure:"default_speaker"`
	DefaultLanguage string `mapstructure:"default_language"`
}

// EngineConfig selects and configures the synthesis backend.
type EngineConfig struct {
	Backend string        `mapstructure:"backend"` // "wyoming" or "openai"
	Timeout time.Duration `mapstructure:"timeout"` // max wait for the engine; 0 = unbounded
	Wyoming WyomingConfig `mapstructure:"wyoming"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
}

// WyomingConfig holds Piper settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps ISO-639-1 codes to
// individual Wyoming TCP endpoints. If both are set, Endpoints takes
// precedence and Endpoint is the fallback.
type WyomingConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`  // Default Wyoming TCP endpoint (host:port)
	Endpoints map[string]string `mapstructure:"endpoints"` // ISO-639-1 language code -> Wyoming TCP endpoint
	Voices    map[string]string `mapstructure:"voices"`    // ISO-639-1 language code -> Piper voice model name
	Speakers  []string          `mapstructure:"speakers"`  // speaker names of a multi-speaker voice
}

// OpenAIConfig holds hosted speech API settings.
type OpenAIConfig struct {
	APIKey  string   `mapstructure:"api_key"`
	BaseURL string   `mapstructure:"base_url"`
	Model   string   `mapstructure:"model"`
	Voices  []string `mapstructure:"voices"`
}

// CodecConfig configures the external ffmpeg transcoder.
type CodecConfig struct {
	FFmpegPath string        `mapstructure:"ffmpeg_path"`
	TempDir    string        `mapstructure:"temp_dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text, console
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"port":         "server.port",
	"model_name":   "model.name",
	"speaker_idx":  "model.default_speaker",
	"language_idx": "model.default_language",
	"show_details": "server.show_details",
	"backend":      "engine.backend",
}

// Load reads the configuration from flags, environment variables, an
// optional file, and defaults, in that order of precedence. If configFile is
// non-empty it is used directly; otherwise the standard search order applies:
// ./voicegate.yaml, ./configs/voicegate.yaml, /etc/voicegate/voicegate.yaml.
// flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 5002)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.grpc.enabled", false)
	v.SetDefault("server.grpc.port", 50051)
	v.SetDefault("server.show_details", false)
	v.SetDefault("server.compress", true)
	v.SetDefault("model.name", "tts_models/en/ljspeech/tacotron2-DDC")
	v.SetDefault("model.default_speaker", "")
	v.SetDefault("model.default_language", "en")
	v.SetDefault("engine.backend", "wyoming")
	v.SetDefault("engine.timeout", 0)
	v.SetDefault("engine.wyoming.endpoint", "localhost:10200")
	v.SetDefault("engine.openai.base_url", "")
	v.SetDefault("engine.openai.model", "tts-1")
	v.SetDefault("codec.ffmpeg_path", "ffmpeg")
	v.SetDefault("codec.temp_dir", "")
	v.SetDefault("codec.timeout", 30*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("voicegate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/voicegate")
	}

	// Environment variables: VOICEGATE_SERVER_PORT, VOICEGATE_ENGINE_BACKEND, etc.
	v.SetEnvPrefix("VOICEGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
		if debug, err := flags.GetBool("debug"); err == nil && debug {
			v.Set("logging.level", "debug")
		}
	}

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.Engine.OpenAI.APIKey = resolveEnvRef(cfg.Engine.OpenAI.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Engine.Backend {
	case "wyoming", "openai":
	default:
		return fmt.Errorf("unknown engine backend %q", c.Engine.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.HealthPort < 0 || c.Server.HealthPort > 65535 {
		return fmt.Errorf("invalid health port %d", c.Server.HealthPort)
	}
	if c.Engine.Timeout < 0 {
		return fmt.Errorf("engine timeout must not be negative")
	}
	return nil
}

// Redacted returns a copy with secrets masked, safe to render or log.
func (c Config) Redacted() Config {
	if c.Engine.OpenAI.APIKey != "" {
		c.Engine.OpenAI.APIKey = "********"
	}
	return c
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// Summary flattens the settings shown on the /details page. Secrets are
// masked.
func (c Config) Summary() map[string]string {
	r := c.Redacted()
	s := map[string]string{
		"server.port":            fmt.Sprint(r.Server.Port),
		"server.health_port":     fmt.Sprint(r.Server.HealthPort),
		"server.compress":        fmt.Sprint(r.Server.Compress),
		"model.name":             r.Model.Name,
		"model.default_speaker":  r.Model.DefaultSpeaker,
		"model.default_language": r.Model.DefaultLanguage,
		"engine.backend":         r.Engine.Backend,
		"engine.timeout":         r.Engine.Timeout.String(),
		"codec.ffmpeg_path":      r.Codec.FFmpegPath,
		"codec.timeout":          r.Codec.Timeout.String(),
		"logging.level":          r.Logging.Level,
		"logging.format":         r.Logging.Format,
	}
	if r.Server.GRPC.Enabled {
		s["server.grpc.port"] = fmt.Sprint(r.Server.GRPC.Port)
	}
	switch r.Engine.Backend {
	case "wyoming":
		s["engine.wyoming.endpoint"] = r.Engine.Wyoming.Endpoint
	case "openai":
		s["engine.openai.model"] = r.Engine.OpenAI.Model
		s["engine.openai.api_key"] = r.Engine.OpenAI.APIKey
		if r.Engine.OpenAI.BaseURL != "" {
			s["engine.openai.base_url"] = r.Engine.OpenAI.BaseURL
		}
	}
	return s
}
