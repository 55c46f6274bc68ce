// Package config handles loading and validating the maestro configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the maestro controller.
type Config struct {
	Spotify     SpotifyConfig     `mapstructure:"spotify"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Capture     CaptureConfig     `mapstructure:"capture"`
	TTS         TTSConfig         `mapstructure:"tts"`
	UI          UIConfig          `mapstructure:"ui"`
	Remote      RemoteConfig      `mapstructure:"remote"`
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// SpotifyConfig holds the OAuth client and Web API settings.
type SpotifyConfig struct {
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	RedirectURI  string        `mapstructure:"redirect_uri"`
	ListenAddr   string        `mapstructure:"listen_addr"` // loopback address of the redirect listener
	AuthURL      string        `mapstructure:"auth_url"`
	TokenURL     string        `mapstructure:"token_url"`
	APIBaseURL   string        `mapstructure:"api_base_url"`
	Market       string        `mapstructure:"market"` // ISO 3166-1 country code for artist top tracks
	AuthTimeout  time.Duration `mapstructure:"auth_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// CredentialsConfig points at the persisted token pair.
type CredentialsConfig struct {
	Path string `mapstructure:"path"`
}

// InterpreterConfig selects and configures the LLM backend.
type InterpreterConfig struct {
	Backend string       `mapstructure:"backend"` // "openai" or "local"
	OpenAI  OpenAIConfig `mapstructure:"openai"`
	Local   LocalConfig  `mapstructure:"local"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey             string `mapstructure:"api_key"`
	BaseURL            string `mapstructure:"base_url"`
	TranscriptionModel string `mapstructure:"transcription_model"`
	CompletionModel    string `mapstructure:"completion_model"`
}

// LocalConfig holds self-hosted LLM settings.
type LocalConfig struct {
	WhisperEndpoint string `mapstructure:"whisper_endpoint"`
	WhisperType     string `mapstructure:"whisper_type"` // "openai" (default) or "asr"
	LLMEndpoint     string `mapstructure:"llm_endpoint"`
	LLMModel        string `mapstructure:"llm_model"`
	VADFilter       bool   `mapstructure:"vad_filter"`
	Language        string `mapstructure:"language"`
}

// CaptureConfig controls the single-shot speech capture window.
type CaptureConfig struct {
	RecorderCommand string        `mapstructure:"recorder_command"`
	RecorderArgs    []string      `mapstructure:"recorder_args"`
	Calibration     time.Duration `mapstructure:"calibration"`
	Timeout         time.Duration `mapstructure:"timeout"`
	PhraseLimit     time.Duration `mapstructure:"phrase_limit"`
	Language        string        `mapstructure:"language"` // ISO-639-1 hint for transcription
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Enabled       bool               `mapstructure:"enabled"`
	Backend       string             `mapstructure:"backend"` // "openai" or "piper"
	Language      string             `mapstructure:"language"`
	LeadSilence   time.Duration      `mapstructure:"lead_silence"`
	PlayerCommand string             `mapstructure:"player_command"`
	PlayerArgs    []string           `mapstructure:"player_args"`
	OpenAI        OpenAISpeechConfig `mapstructure:"openai"`
	Piper         PiperConfig        `mapstructure:"piper"`
}

// OpenAISpeechConfig holds OpenAI speech synthesis settings.
type OpenAISpeechConfig struct {
	Model        string  `mapstructure:"model"`
	Voice        string  `mapstructure:"voice"`
	Speed        float64 `mapstructure:"speed"`
	Instructions string  `mapstructure:"instructions"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// Endpoints maps ISO-639-1 codes to per-language Wyoming TCP endpoints and
// takes precedence over Endpoint when both are set.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"`
}

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	Spinner bool `mapstructure:"spinner"`
}

// RemoteConfig configures the optional remote command surface.
type RemoteConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
}

// HTTPConfig configures the HTTP command transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// ServerConfig holds the health check server settings. A zero port disables
// the corresponding server.
type ServerConfig struct {
	HealthPort     int `mapstructure:"health_port"`
	GRPCHealthPort int `mapstructure:"grpc_health_port"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// defaultInstructions steers the speech model towards a calm radio-host delivery.
const defaultInstructions = "Speak like an enthusiastic yet calm radio presenter. " +
	"Sound friendly and natural, with a light smile in your voice. " +
	"Keep a fluent rhythm and clear diction, like a host on a music station. " +
	"Do not overdo the emotions, but stay engaged. " +
	"You are leading a musical conversation with the listener."

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./maestro.yaml, ./configs/maestro.yaml,
// $XDG_CONFIG_HOME/maestro/maestro.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	configDir := defaultConfigDir()

	v.SetDefault("spotify.redirect_uri", "http://127.0.0.1:8888/callback")
	v.SetDefault("spotify.listen_addr", "127.0.0.1:8888")
	v.SetDefault("spotify.auth_url", "https://accounts.spotify.com/authorize")
	v.SetDefault("spotify.token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("spotify.api_base_url", "https://api.spotify.com/v1/")
	v.SetDefault("spotify.market", "US")
	v.SetDefault("spotify.auth_timeout", 120*time.Second)
	v.SetDefault("spotify.poll_interval", 500*time.Millisecond)
	v.SetDefault("credentials.path", filepath.Join(configDir, "spotify_tokens.json"))
	v.SetDefault("interpreter.backend", "openai")
	v.SetDefault("interpreter.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("interpreter.openai.transcription_model", "gpt-4o-transcribe")
	v.SetDefault("interpreter.openai.completion_model", "gpt-4o")
	v.SetDefault("interpreter.local.whisper_endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("interpreter.local.whisper_type", "openai")
	v.SetDefault("interpreter.local.llm_endpoint", "http://localhost:11434/v1/chat/completions")
	v.SetDefault("interpreter.local.llm_model", "llama3")
	v.SetDefault("interpreter.local.language", "pl")
	v.SetDefault("capture.recorder_command", "rec")
	v.SetDefault("capture.calibration", 500*time.Millisecond)
	v.SetDefault("capture.timeout", 10*time.Second)
	v.SetDefault("capture.phrase_limit", 10*time.Second)
	v.SetDefault("capture.language", "pl")
	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.backend", "openai")
	v.SetDefault("tts.language", "pl")
	v.SetDefault("tts.lead_silence", 500*time.Millisecond)
	v.SetDefault("tts.player_command", "aplay")
	v.SetDefault("tts.player_args", []string{"-q", "-"})
	v.SetDefault("tts.openai.model", "gpt-4o-mini-tts")
	v.SetDefault("tts.openai.voice", "shimmer")
	v.SetDefault("tts.openai.speed", 1.3)
	v.SetDefault("tts.openai.instructions", defaultInstructions)
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("ui.spinner", true)
	v.SetDefault("remote.http.enabled", false)
	v.SetDefault("remote.http.port", 8080)
	v.SetDefault("server.health_port", 0)
	v.SetDefault("server.grpc_health_port", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("maestro")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath(configDir)
	}

	// Environment variables: MAESTRO_SPOTIFY_CLIENT_ID, MAESTRO_TTS_ENABLED, etc.
	v.SetEnvPrefix("MAESTRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The conventional variable names are honoured as well.
	_ = v.BindEnv("spotify.client_id", "MAESTRO_SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_ID")
	_ = v.BindEnv("spotify.client_secret", "MAESTRO_SPOTIFY_CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET")
	_ = v.BindEnv("spotify.redirect_uri", "MAESTRO_SPOTIFY_REDIRECT_URI", "SPOTIFY_REDIRECT_URI")
	_ = v.BindEnv("interpreter.openai.api_key", "MAESTRO_INTERPRETER_OPENAI_API_KEY", "OPENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.Spotify.ClientID = resolveEnvRef(cfg.Spotify.ClientID)
	cfg.Spotify.ClientSecret = resolveEnvRef(cfg.Spotify.ClientSecret)
	cfg.Interpreter.OpenAI.APIKey = resolveEnvRef(cfg.Interpreter.OpenAI.APIKey)

	if len(cfg.Capture.RecorderArgs) == 0 {
		cfg.Capture.RecorderArgs = DefaultRecorderArgs(cfg.Capture)
	}

	return &cfg, nil
}

// Validate reports configuration that makes a session impossible to start.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" {
		return fmt.Errorf("spotify.client_id is required (set SPOTIFY_CLIENT_ID)")
	}
	if c.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify.client_secret is required (set SPOTIFY_CLIENT_SECRET)")
	}
	switch c.Interpreter.Backend {
	case "openai":
		if c.Interpreter.OpenAI.APIKey == "" {
			return fmt.Errorf("interpreter.openai.api_key is required for the openai backend (set OPENAI_API_KEY)")
		}
	case "local":
	default:
		return fmt.Errorf("unknown interpreter backend %q", c.Interpreter.Backend)
	}
	if c.TTS.Enabled {
		switch c.TTS.Backend {
		case "openai", "piper":
		default:
			return fmt.Errorf("unknown tts backend %q", c.TTS.Backend)
		}
	}
	return nil
}

// DefaultRecorderArgs builds sox "rec" arguments that write one WAV utterance
// to stdout: the calibration lead-in is discarded, recording starts on speech
// and stops after a pause or at the phrase limit.
func DefaultRecorderArgs(c CaptureConfig) []string {
	return []string{
		"-q", "-c", "1", "-r", "16000", "-b", "16", "-t", "wav", "-",
		"trim", seconds(c.Calibration),
		"silence", "1", "0.1", "3%", "1", "1.5", "3%",
		"trim", "0", seconds(c.PhraseLimit),
	}
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.1f", d.Seconds())
}

// defaultConfigDir returns $XDG_CONFIG_HOME/maestro, or ./.maestro when the
// user config directory cannot be resolved.
func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".maestro"
	}
	return filepath.Join(dir, "maestro")
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

// SetupLogging configures the global slog logger based on config. Logs go to
// w so the interactive prompt on stdout stays readable.
func SetupLogging(cfg LoggingConfig, w io.Writer) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
