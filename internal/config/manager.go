// Package config handles configuration management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/diogo/nexus-go/internal/geo"
	"github.com/diogo/nexus-go/internal/storage"
	"github.com/diogo/nexus-go/pkg/models"
)

const (
	configDirName  = ".nexus-cli"
	configFileName = "config"
	configFileType = "json"
	envPrefix      = "NEXUS"
)

// Config holds all configuration options.
type Config struct {
	DefaultMode     models.Mode     `mapstructure:"default_mode"`
	DefaultTone     models.Tone     `mapstructure:"default_tone"`
	DefaultLanguage string          `mapstructure:"default_language"`
	Incognito       bool            `mapstructure:"incognito"`
	StorageBackend  storage.Backend `mapstructure:"storage_backend"`
	DataDir         string          `mapstructure:"data_dir"`
	KeyFile         string          `mapstructure:"key_file"`
	Geolocation     bool            `mapstructure:"geolocation"`
	GeolocationURL  string          `mapstructure:"geolocation_url"`
	Location        string          `mapstructure:"location"`
	ModelDefault    string          `mapstructure:"model_default"`
	ModelPro        string          `mapstructure:"model_pro"`
	ModelImage      string          `mapstructure:"model_image"`
	ModelLive       string          `mapstructure:"model_live"`
	LiveVoice       string          `mapstructure:"live_voice"`
	RenderWidth     int             `mapstructure:"render_width"`
}

// Keys lists the configuration keys in display order.
var Keys = []string{
	"default_mode",
	"default_tone",
	"default_language",
	"incognito",
	"storage_backend",
	"data_dir",
	"key_file",
	"geolocation",
	"geolocation_url",
	"location",
	"model_default",
	"model_pro",
	"model_image",
	"model_live",
	"live_voice",
	"render_width",
}

// Manager handles configuration loading and saving.
type Manager struct {
	v        *viper.Viper
	cfgDir   string
	cfgFile  string
	envFiles []string
}

// NewManager creates a configuration manager rooted at ~/.nexus-cli.
func NewManager() (*Manager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewManagerWithDir(filepath.Join(home, configDirName)), nil
}

// NewManagerWithDir creates a configuration manager rooted at cfgDir.
func NewManagerWithDir(cfgDir string) *Manager {
	m := &Manager{
		v:        viper.New(),
		cfgDir:   cfgDir,
		cfgFile:  filepath.Join(cfgDir, configFileName+"."+configFileType),
		envFiles: []string{".env"},
	}

	// Set defaults
	m.setDefaults()

	// Setup viper
	m.v.SetConfigName(configFileName)
	m.v.SetConfigType(configFileType)
	m.v.AddConfigPath(cfgDir)

	// Environment variable support
	m.v.SetEnvPrefix(envPrefix)
	m.v.AutomaticEnv()
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return m
}

// SetEnvFiles sets the dotenv files loaded before reading the environment.
func (m *Manager) SetEnvFiles(files ...string) {
	m.envFiles = files
}

// Defaults returns the default configuration for cfgDir.
func Defaults(cfgDir string) *Config {
	return &Config{
		DefaultMode:     models.ModeAll,
		DefaultTone:     models.ToneStandard,
		DefaultLanguage: "en-US",
		Incognito:       false,
		StorageBackend:  storage.BackendFile,
		DataDir:         cfgDir,
		KeyFile:         filepath.Join(cfgDir, "api_key"),
		Geolocation:     true,
		GeolocationURL:  geo.DefaultURL,
		Location:        "",
		ModelDefault:    models.ModelDefault,
		ModelPro:        models.ModelPro,
		ModelImage:      models.ModelImage,
		ModelLive:       models.ModelLive,
		LiveVoice:       "Zephyr",
		RenderWidth:     100,
	}
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	d := Defaults(m.cfgDir)
	for key, value := range d.values() {
		m.v.SetDefault(key, value)
	}
}

// values maps every key to its value in the form written to the config file.
func (cfg *Config) values() map[string]any {
	return map[string]any{
		"default_mode":     string(cfg.DefaultMode),
		"default_tone":     string(cfg.DefaultTone),
		"default_language": cfg.DefaultLanguage,
		"incognito":        cfg.Incognito,
		"storage_backend":  string(cfg.StorageBackend),
		"data_dir":         cfg.DataDir,
		"key_file":         cfg.KeyFile,
		"geolocation":      cfg.Geolocation,
		"geolocation_url":  cfg.GeolocationURL,
		"location":         cfg.Location,
		"model_default":    cfg.ModelDefault,
		"model_pro":        cfg.ModelPro,
		"model_image":      cfg.ModelImage,
		"model_live":       cfg.ModelLive,
		"live_voice":       cfg.LiveVoice,
		"render_width":     cfg.RenderWidth,
	}
}

// loadEnvFiles loads dotenv files. Missing files are skipped and existing
// environment variables win.
func (m *Manager) loadEnvFiles() error {
	for _, f := range m.envFiles {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from file and environment.
func (m *Manager) Load() (*Config, error) {
	// Create config directory if not exists
	if err := os.MkdirAll(m.cfgDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.loadEnvFiles(); err != nil {
		return nil, err
	}

	// Try to read config file (ignore if not exists)
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error if it's not "file not found"
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}

	// Manual parsing to handle type conversions
	cfg.DefaultMode = models.Mode(m.v.GetString("default_mode"))
	cfg.DefaultTone = models.Tone(m.v.GetString("default_tone"))
	cfg.DefaultLanguage = m.v.GetString("default_language")
	cfg.Incognito = m.v.GetBool("incognito")
	cfg.StorageBackend = storage.Backend(m.v.GetString("storage_backend"))
	cfg.DataDir = expandHome(m.v.GetString("data_dir"))
	cfg.KeyFile = expandHome(m.v.GetString("key_file"))
	cfg.Geolocation = m.v.GetBool("geolocation")
	cfg.GeolocationURL = m.v.GetString("geolocation_url")
	cfg.Location = strings.TrimSpace(m.v.GetString("location"))
	cfg.ModelDefault = m.v.GetString("model_default")
	cfg.ModelPro = m.v.GetString("model_pro")
	cfg.ModelImage = m.v.GetString("model_image")
	cfg.ModelLive = m.v.GetString("model_live")
	cfg.LiveVoice = m.v.GetString("live_voice")
	cfg.RenderWidth = m.v.GetInt("render_width")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file.
func (m *Manager) Save(cfg *Config) error {
	// Create config directory if not exists
	if err := os.MkdirAll(m.cfgDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	for key, value := range cfg.values() {
		m.v.Set(key, value)
	}

	return m.v.WriteConfigAs(m.cfgFile)
}

// Validate checks configuration values.
func (cfg *Config) Validate() error {
	// Validate mode
	if cfg.DefaultMode != "" && !models.IsValidMode(cfg.DefaultMode) {
		return fmt.Errorf("invalid mode: %s", cfg.DefaultMode)
	}
	if cfg.DefaultMode == models.ModeLive {
		return fmt.Errorf("invalid mode: %s (use the live command)", cfg.DefaultMode)
	}

	// Validate tone
	if cfg.DefaultTone != "" && !models.IsValidTone(cfg.DefaultTone) {
		return fmt.Errorf("invalid tone: %s", cfg.DefaultTone)
	}

	// Validate language format (xx-XX)
	if cfg.DefaultLanguage != "" && !isValidLanguage(cfg.DefaultLanguage) {
		return fmt.Errorf("invalid language format: %s (expected xx-XX)", cfg.DefaultLanguage)
	}

	if cfg.StorageBackend != "" && !storage.IsValidBackend(cfg.StorageBackend) {
		return fmt.Errorf("invalid storage backend: %s", cfg.StorageBackend)
	}

	if cfg.Location != "" {
		if _, err := models.ParseLocation(cfg.Location); err != nil {
			return err
		}
	}

	if cfg.RenderWidth < 0 {
		return fmt.Errorf("invalid render width: %d", cfg.RenderWidth)
	}

	return nil
}

// FixedLocation returns the configured location, nil when unset.
func (cfg *Config) FixedLocation() *models.Location {
	if cfg.Location == "" {
		return nil
	}
	loc, err := models.ParseLocation(cfg.Location)
	if err != nil {
		return nil
	}
	return loc
}

// Get returns the string form of a key's value.
func (cfg *Config) Get(key string) (string, error) {
	value, ok := cfg.values()[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	return fmt.Sprint(value), nil
}

// Set parses value and assigns it to key.
func (cfg *Config) Set(key, value string) error {
	switch key {
	case "default_mode":
		mode := models.Mode(value)
		if !models.IsValidMode(mode) || mode == models.ModeLive {
			return fmt.Errorf("invalid mode: %s", value)
		}
		cfg.DefaultMode = mode

	case "default_tone":
		tone := models.Tone(value)
		if !models.IsValidTone(tone) {
			return fmt.Errorf("invalid tone: %s", value)
		}
		cfg.DefaultTone = tone

	case "default_language":
		if !isValidLanguage(value) {
			return fmt.Errorf("invalid language format: %s (expected xx-XX)", value)
		}
		cfg.DefaultLanguage = value

	case "incognito":
		cfg.Incognito = ParseBoolean(value, cfg.Incognito)

	case "storage_backend":
		backend := storage.Backend(value)
		if !storage.IsValidBackend(backend) {
			return fmt.Errorf("invalid storage backend: %s", value)
		}
		cfg.StorageBackend = backend

	case "data_dir":
		cfg.DataDir = expandHome(value)

	case "key_file":
		cfg.KeyFile = expandHome(value)

	case "geolocation":
		cfg.Geolocation = ParseBoolean(value, cfg.Geolocation)

	case "geolocation_url":
		cfg.GeolocationURL = value

	case "location":
		if value != "" {
			if _, err := models.ParseLocation(value); err != nil {
				return err
			}
		}
		cfg.Location = value

	case "model_default":
		cfg.ModelDefault = value
	case "model_pro":
		cfg.ModelPro = value
	case "model_image":
		cfg.ModelImage = value
	case "model_live":
		cfg.ModelLive = value
	case "live_voice":
		cfg.LiveVoice = value

	case "render_width":
		width, err := strconv.Atoi(value)
		if err != nil || width < 0 {
			return fmt.Errorf("invalid render width: %s", value)
		}
		cfg.RenderWidth = width

	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// GetConfigDir returns the configuration directory path.
func (m *Manager) GetConfigDir() string {
	return m.cfgDir
}

// GetConfigFile returns the configuration file path.
func (m *Manager) GetConfigFile() string {
	return m.cfgFile
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// isValidLanguage checks if the language format is valid (xx-XX).
var languageRegex = regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}$`)

func isValidLanguage(lang string) bool {
	return languageRegex.MatchString(lang)
}

// ParseBoolean parses boolean strings (true, false, 1, 0, yes, no, on, off).
func ParseBoolean(value string, defaultValue bool) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	switch value {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}
