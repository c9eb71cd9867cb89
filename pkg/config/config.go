package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"stm/pkg/database"
	"stm/pkg/keymaps"
	"stm/pkg/store"
	"stm/pkg/timer"
)

// EnvPrefix is prepended to every environment override, e.g. STM_DATABASE_DSN
const EnvPrefix = "STM"

// Config holds the application configuration
type Config struct {
	Database   DatabaseConfig    `mapstructure:"database"`
	StorageKey string            `mapstructure:"storage_key"`
	Timer      TimerConfig       `mapstructure:"timer"`
	KeyMap     map[string]string `mapstructure:"keymap"`
	StylesFile string            `mapstructure:"styles_file"`
}

// DatabaseConfig selects where the snapshot lives
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// TimerConfig configures focus sessions, all durations in minutes
type TimerConfig struct {
	TotalMinutes      int  `mapstructure:"total_minutes"`
	FocusMinutes      int  `mapstructure:"focus_minutes"`
	ShortBreakMinutes int  `mapstructure:"short_break_minutes"`
	LongBreakMinutes  int  `mapstructure:"long_break_minutes"`
	LongBreakEvery    int  `mapstructure:"long_break_every"`
	Segmented         bool `mapstructure:"segmented"`
}

// Plan converts the timer settings into a segment plan.
// Non-positive values fall back to the defaults.
func (t TimerConfig) Plan() timer.Plan {
	if !t.Segmented {
		return timer.SinglePlan()
	}
	plan := timer.DefaultPlan()
	if t.FocusMinutes > 0 {
		plan.Focus = time.Duration(t.FocusMinutes) * time.Minute
	}
	if t.ShortBreakMinutes > 0 {
		plan.ShortBreak = time.Duration(t.ShortBreakMinutes) * time.Minute
	}
	if t.LongBreakMinutes > 0 {
		plan.LongBreak = time.Duration(t.LongBreakMinutes) * time.Minute
	}
	if t.LongBreakEvery > 0 {
		plan.LongBreakEvery = t.LongBreakEvery
	}
	return plan
}

// Styles holds the application colors and styling information
type Styles struct {
	// UI element colors
	BorderColor string `mapstructure:"border_color"`
	AccentColor string `mapstructure:"accent_color"`

	// Text colors
	NormalTextColor   string `mapstructure:"normal_text_color"`
	SelectedTextColor string `mapstructure:"selected_text_color"`
	SelectedBgColor   string `mapstructure:"selected_bg_color"`
	ErrorColor        string `mapstructure:"error_color"`
	MutedColor        string `mapstructure:"muted_color"`

	// Task colors
	HighPriorityColor   string `mapstructure:"high_priority_color"`
	MediumPriorityColor string `mapstructure:"medium_priority_color"`
	LowPriorityColor    string `mapstructure:"low_priority_color"`
	OverdueColor        string `mapstructure:"overdue_color"`
	TagColor            string `mapstructure:"tag_color"`

	// Timer colors
	FocusColor string `mapstructure:"focus_color"`
	BreakColor string `mapstructure:"break_color"`
}

// DefaultStyles returns the built-in color scheme
func DefaultStyles() Styles {
	return Styles{
		BorderColor:         "240",
		AccentColor:         "205",
		NormalTextColor:     "86",
		SelectedTextColor:   "229",
		SelectedBgColor:     "57",
		ErrorColor:          "9",
		MutedColor:          "241",
		HighPriorityColor:   "196",
		MediumPriorityColor: "214",
		LowPriorityColor:    "42",
		OverdueColor:        "160",
		TagColor:            "4",
		FocusColor:          "205",
		BreakColor:          "36",
	}
}

// DefaultDir returns ~/.config/stm
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "stm"), nil
}

// Load loads the application configuration from the specified path.
// An empty path means ~/.config/stm/config.json. Missing config and styles
// files are created with default values. Values from a .env file in the
// working directory and STM_ environment variables override the file.
func Load(configPath string) (Config, Styles, error) {
	if configPath == "" {
		dir, err := DefaultDir()
		if err != nil {
			return Config{}, Styles{}, err
		}
		configPath = filepath.Join(dir, "config.json")
	}
	configDir := filepath.Dir(configPath)

	// A missing .env is the normal case
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v, configDir)
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return Config{}, Styles{}, err
		}
		if err := v.WriteConfigAs(configPath); err != nil {
			return Config{}, Styles{}, fmt.Errorf("writing default config: %w", err)
		}
	} else if err != nil {
		return Config{}, Styles{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, Styles{}, fmt.Errorf("reading config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, Styles{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = store.StorageKey
	}

	styles, err := loadStyles(cfg.StylesFile)
	if err != nil {
		return cfg, styles, fmt.Errorf("error loading styles: %w", err)
	}

	return cfg, styles, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.dsn", filepath.Join(configDir, "stm.db"))
	v.SetDefault("storage_key", store.StorageKey)
	v.SetDefault("timer.total_minutes", 25)
	v.SetDefault("timer.focus_minutes", 25)
	v.SetDefault("timer.short_break_minutes", 5)
	v.SetDefault("timer.long_break_minutes", 15)
	v.SetDefault("timer.long_break_every", 3)
	v.SetDefault("timer.segmented", true)
	v.SetDefault("keymap", keymaps.GetDefaultKeyMappings())
	v.SetDefault("styles_file", filepath.Join(configDir, "styles.json"))
}

// loadStyles loads the application styles from the specified path
func loadStyles(stylesPath string) (Styles, error) {
	defaultStyles := DefaultStyles()

	v := viper.New()
	v.SetConfigFile(stylesPath)
	v.SetConfigType("json")
	for key, value := range stylesMap(defaultStyles) {
		v.SetDefault(key, value)
	}

	if _, err := os.Stat(stylesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(stylesPath), 0755); err != nil {
			return defaultStyles, err
		}
		if err := v.WriteConfigAs(stylesPath); err != nil {
			return defaultStyles, err
		}
		return defaultStyles, nil
	} else if err != nil {
		return defaultStyles, err
	}

	if err := v.ReadInConfig(); err != nil {
		return defaultStyles, err
	}

	var loaded Styles
	if err := v.Unmarshal(&loaded); err != nil {
		return defaultStyles, err
	}
	return loaded, nil
}

func stylesMap(s Styles) map[string]string {
	return map[string]string{
		"border_color":          s.BorderColor,
		"accent_color":          s.AccentColor,
		"normal_text_color":     s.NormalTextColor,
		"selected_text_color":   s.SelectedTextColor,
		"selected_bg_color":     s.SelectedBgColor,
		"error_color":           s.ErrorColor,
		"muted_color":           s.MutedColor,
		"high_priority_color":   s.HighPriorityColor,
		"medium_priority_color": s.MediumPriorityColor,
		"low_priority_color":    s.LowPriorityColor,
		"overdue_color":         s.OverdueColor,
		"tag_color":             s.TagColor,
		"focus_color":           s.FocusColor,
		"break_color":           s.BreakColor,
	}
}
