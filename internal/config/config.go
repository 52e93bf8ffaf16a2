package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ontypehq/qtts/internal/device"
	"github.com/ontypehq/qtts/internal/logging"
	"gopkg.in/yaml.v3"
)

const (
	appDir         = ".qtts"
	configFileName = "config.yaml"

	BackendDashScope = "dashscope"
	BackendLocal     = "local"
	BackendOpenAI    = "openai"
)

type Config struct {
	Reference   ReferenceConfig   `yaml:"reference"`
	Output      OutputConfig      `yaml:"output"`
	Environment EnvironmentConfig `yaml:"environment"`
	Backend     string            `yaml:"backend"`
	Models      ModelsConfig      `yaml:"models"`
	Design      DesignConfig      `yaml:"design"`
	Script      ScriptConfig      `yaml:"script"`
	DashScope   DashScopeConfig   `yaml:"dashscope"`
	Local       LocalConfig       `yaml:"local"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ReferenceConfig struct {
	Audio string `yaml:"audio"`
	Text  string `yaml:"text"`
}

type OutputConfig struct {
	DefaultDir string `yaml:"default_dir"`
	SampleRate int    `yaml:"sample_rate"`
}

type EnvironmentConfig struct {
	Device string `yaml:"device"`
}

type ModelsConfig struct {
	Clone  string `yaml:"clone"`
	Design string `yaml:"design"`
}

type DesignConfig struct {
	Language string `yaml:"language"`
	Instruct string `yaml:"instruct"`
}

type ScriptConfig struct {
	Pause    float64 `yaml:"pause"`
	Speed    float64 `yaml:"speed"`
	MaxChars int     `yaml:"max_chars"`
}

type DashScopeConfig struct {
	APIKey      string `yaml:"api_key"`
	HTTPBaseURL string `yaml:"http_base_url"`
	WSBaseURL   string `yaml:"ws_base_url"`
}

type LocalConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	CloneModel  string `yaml:"clone_model"`
	DesignModel string `yaml:"design_model"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig bundles the loaded defaults with the mutable state kept under Dir.
type AppConfig struct {
	Config Config
	State  State
	Dir    string
	// Path is the config file that was read, empty when only defaults apply.
	Path string

	// target is where Save writes: the requested path even if it did not exist yet.
	target string
	// file is Config as read from disk, before the environment overlay.
	file Config
}

func DefaultConfig() Config {
	return Config{
		Output: OutputConfig{
			DefaultDir: "output",
			SampleRate: 24000,
		},
		Environment: EnvironmentConfig{
			Device: "auto",
		},
		Backend: BackendDashScope,
		Models: ModelsConfig{
			Clone:  "Qwen/Qwen3-TTS-12Hz-1.7B-Base",
			Design: "Qwen/Qwen3-TTS-12Hz-1.7B-VoiceDesign",
		},
		Design: DesignConfig{
			Language: "Korean",
			Instruct: "温暖、友好的年轻男性声音",
		},
		Script: ScriptConfig{
			Pause:    0.8,
			Speed:    1.0,
			MaxChars: 300,
		},
	}
}

// Dir returns the per-user state directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, appDir)
}

// Load reads the config file at path over the defaults. An empty path
// falls back to ~/.qtts/config.yaml; a path that does not exist leaves
// the defaults untouched.
func Load(path string) (*AppConfig, error) {
	return LoadFrom(Dir(), path)
}

// LoadFrom is Load with an explicit state directory.
func LoadFrom(dir, path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warnf("ignoring .env: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "cache"), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	ac := &AppConfig{Config: DefaultConfig(), Dir: dir}

	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join(dir, configFileName)
	}
	path = ExpandHome(path)
	ac.target = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &ac.Config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		ac.Path = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := ac.loadState(); err != nil {
		return nil, err
	}

	ac.file = ac.Config
	ac.Config.ApplyEnv()
	return ac, ac.Config.Validate()
}

// envFields lists the settings an environment variable may override.
var envFields = []struct {
	name  string
	field func(c *Config) *string
}{
	{"LOG_LEVEL", func(c *Config) *string { return &c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) *string { return &c.Logging.Format }},
	{"QTTS_DEVICE", func(c *Config) *string { return &c.Environment.Device }},
	{"QTTS_BACKEND", func(c *Config) *string { return &c.Backend }},
	{"DASHSCOPE_API_KEY", func(c *Config) *string { return &c.DashScope.APIKey }},
	{"OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{"OPENAI_BASE_URL", func(c *Config) *string { return &c.OpenAI.BaseURL }},
}

func envValue(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func (c *Config) ApplyEnv() {
	for _, f := range envFields {
		if v := envValue(f.name); v != "" {
			*f.field(c) = v
		}
	}
}

func (c *Config) Validate() error {
	if c.Output.SampleRate <= 0 {
		return errors.New("output.sample_rate must be positive")
	}
	if strings.TrimSpace(c.Output.DefaultDir) == "" {
		return errors.New("output.default_dir must not be empty")
	}
	if err := device.Validate(c.Environment.Device); err != nil {
		return fmt.Errorf("environment.device: %w", err)
	}
	switch c.Backend {
	case BackendDashScope, BackendLocal, BackendOpenAI:
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	if c.Script.Pause < 0 {
		return errors.New("script.pause must be non-negative")
	}
	if c.Script.Speed <= 0 {
		return errors.New("script.speed must be positive")
	}
	if c.Script.MaxChars <= 0 {
		return errors.New("script.max_chars must be positive")
	}
	return nil
}

// Save writes the config as YAML to the file Load was asked for, or to
// the default location. Settings that came from the environment are
// written with their file values.
func (ac *AppConfig) Save() error {
	path := ac.target
	if path == "" {
		path = filepath.Join(ac.Dir, configFileName)
	}
	out := ac.Config
	for _, f := range envFields {
		if envValue(f.name) != "" {
			*f.field(&out) = *f.field(&ac.file)
		}
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	ac.Path = path
	ac.target = path
	return nil
}

func (ac *AppConfig) CacheDir() string {
	return filepath.Join(ac.Dir, "cache")
}

// RequireAPIKey returns the DashScope key from env, config file or saved login.
func (ac *AppConfig) RequireAPIKey() (string, error) {
	if k := strings.TrimSpace(ac.Config.DashScope.APIKey); k != "" {
		return k, nil
	}
	if k := strings.TrimSpace(ac.State.APIKey); k != "" {
		return k, nil
	}
	return "", errors.New("not authenticated: set DASHSCOPE_API_KEY or run: qtts auth login --token <key>")
}

// ExpandHome resolves a leading ~ to the user's home directory.
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
