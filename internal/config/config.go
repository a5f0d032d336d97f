package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Paths      PathsConfig      `yaml:"paths"`
	Tools      ToolsConfig      `yaml:"tools"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Clips      ClipsConfig      `yaml:"clips"`
	Tunnel     TunnelConfig     `yaml:"tunnel"`
	Redis      RedisConfig      `yaml:"redis"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
}

type ToolsConfig struct {
	YtDlpPath    string `yaml:"ytdlp_path"`
	FFmpegPath   string `yaml:"ffmpeg_path"`
	WhisperBin   string `yaml:"whisper_bin"`
	WhisperModel string `yaml:"whisper_model"`
}

type TranscriptConfig struct {
	Languages []string `yaml:"languages"`
}

// Bounds accepted for a POST /clips submission. Clip defaults must fall inside them so a
// request that omits a field still binds.
const (
	MinClipLength = 15
	MaxClipLength = 120
	MinMaxClips   = 1
	MaxMaxClips   = 10
	MinStep       = 1
	MaxStep       = 30
)

// ClipsConfig holds request defaults used when a submission leaves a field out.
type ClipsConfig struct {
	Length   int `yaml:"length"`
	MaxClips int `yaml:"max_clips"`
	Step     int `yaml:"step"`
}

type TunnelConfig struct {
	Enabled   bool   `yaml:"enabled"`
	AuthToken string `yaml:"auth_token"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	RunTTL   time.Duration `yaml:"run_ttl"`
}

type OpenRouterConfig struct {
	APIKey       string   `yaml:"api_key"`
	Model        string   `yaml:"model"`
	BaseURL      string   `yaml:"base_url"`
	AllowedHosts []string `yaml:"allowed_hosts"`
}

type LoggingConfig struct {
	Mode string `yaml:"mode"`
}

// Load reads the optional YAML file at path, overlays environment variables and validates
// the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = envInt("PORT", c.Server.Port)
	c.Server.Host = env("HOST", c.Server.Host)
	c.Paths.Output = env("OUTPUT_DIR", c.Paths.Output)

	c.Tools.YtDlpPath = env("YTDLP_PATH", c.Tools.YtDlpPath)
	c.Tools.FFmpegPath = env("FFMPEG_PATH", c.Tools.FFmpegPath)
	c.Tools.WhisperBin = env("WHISPER_BIN", c.Tools.WhisperBin)
	c.Tools.WhisperModel = env("WHISPER_MODEL", c.Tools.WhisperModel)

	if v := envList("TRANSCRIPT_LANGUAGES"); len(v) > 0 {
		c.Transcript.Languages = v
	}

	c.Clips.Length = envInt("CLIP_LENGTH", c.Clips.Length)
	c.Clips.MaxClips = envInt("MAX_CLIPS", c.Clips.MaxClips)
	c.Clips.Step = envInt("STEP", c.Clips.Step)

	if v, ok := os.LookupEnv("ENABLE_NGROK"); ok {
		c.Tunnel.Enabled = truthy(v)
	}
	c.Tunnel.AuthToken = env("NGROK_AUTHTOKEN", c.Tunnel.AuthToken)

	c.Redis.Addr = env("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = env("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = envInt("REDIS_DB", c.Redis.DB)
	if h := envInt("RUN_TTL_HOURS", 0); h > 0 {
		c.Redis.RunTTL = time.Duration(h) * time.Hour
	}

	c.OpenRouter.APIKey = env("OPENROUTER_API_KEY", c.OpenRouter.APIKey)
	c.OpenRouter.Model = env("OPENROUTER_MODEL", c.OpenRouter.Model)
	c.OpenRouter.BaseURL = env("OPENROUTER_BASE_URL", c.OpenRouter.BaseURL)
	if v := envList("OPENROUTER_ALLOWED_HOSTS"); len(v) > 0 {
		c.OpenRouter.AllowedHosts = v
	}

	c.Logging.Mode = env("LOG_MODE", c.Logging.Mode)
}

// Validate fills defaults for unset fields and rejects values the pipeline cannot use.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Tools.YtDlpPath == "" {
		c.Tools.YtDlpPath = "yt-dlp"
	}
	if c.Tools.FFmpegPath == "" {
		c.Tools.FFmpegPath = "ffmpeg"
	}
	if c.Tools.WhisperModel != "" && c.Tools.WhisperBin == "" {
		c.Tools.WhisperBin = "whisper-cli"
	}
	if len(c.Transcript.Languages) == 0 {
		c.Transcript.Languages = []string{"pt-BR", "pt", "en"}
	}

	if c.Clips.Length == 0 {
		c.Clips.Length = 60
	}
	if c.Clips.MaxClips == 0 {
		c.Clips.MaxClips = 3
	}
	if c.Clips.Step == 0 {
		c.Clips.Step = 5
	}
	if c.Clips.Length < 0 || c.Clips.MaxClips < 0 || c.Clips.Step < 0 {
		return errors.New("clips defaults must be positive")
	}
	for _, b := range []struct {
		name     string
		v        int
		min, max int
	}{
		{"clips.length", c.Clips.Length, MinClipLength, MaxClipLength},
		{"clips.max_clips", c.Clips.MaxClips, MinMaxClips, MaxMaxClips},
		{"clips.step", c.Clips.Step, MinStep, MaxStep},
	} {
		if b.v < b.min || b.v > b.max {
			return fmt.Errorf("%s %d must be within [%d, %d]", b.name, b.v, b.min, b.max)
		}
	}

	if c.Redis.RunTTL == 0 {
		c.Redis.RunTTL = 24 * time.Hour
	}
	if c.OpenRouter.Model == "" {
		c.OpenRouter.Model = "z-ai/glm-4.5-air:free"
	}
	if c.Logging.Mode == "" {
		c.Logging.Mode = "dev"
	}
	return nil
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) WhisperEnabled() bool { return c.Tools.WhisperModel != "" }

func (c *Config) CopywriterEnabled() bool { return c.OpenRouter.APIKey != "" }

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
