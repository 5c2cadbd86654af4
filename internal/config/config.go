package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// ShiftType defines one entry of the facility's fixed shift catalog
type ShiftType struct {
	Code          string  `yaml:"code" validate:"required"`
	Name          string  `yaml:"name" validate:"required"`
	StartTime     string  `yaml:"startTime" validate:"required"`
	EndTime       string  `yaml:"endTime" validate:"required"`
	DurationHours float64 `yaml:"durationHours" validate:"required,gt=0"`
}

// WeeklyRule defines a recurring override of the base headcount template
type WeeklyRule struct {
	RRule         string `yaml:"rrule" validate:"required"`
	ShiftTypeCode string `yaml:"shiftTypeCode" validate:"required"`
	RequiredCount int    `yaml:"requiredCount" validate:"min=0"`
}

// DateOverride pins the headcount for a single date and shift type
type DateOverride struct {
	Date          string `yaml:"date" validate:"required,datetime=2006-01-02"`
	ShiftTypeCode string `yaml:"shiftTypeCode" validate:"required"`
	RequiredCount int    `yaml:"requiredCount" validate:"min=0"`
}

// Generation tunes schedule generation runs
type Generation struct {
	Seed           int64  `yaml:"seed,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty" validate:"omitempty,min=1"`
	MaxProposals   int    `yaml:"maxProposals,omitempty" validate:"omitempty,min=1"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL   string         `yaml:"databaseURL" validate:"required"`
	ShiftTypes    []ShiftType    `yaml:"shiftTypes,omitempty" validate:"dive"`
	BaseTemplate  map[string]int `yaml:"baseTemplate,omitempty"`
	WeeklyRules   []WeeklyRule   `yaml:"weeklyRules,omitempty" validate:"dive"`
	DateOverrides []DateOverride `yaml:"dateOverrides,omitempty" validate:"dive"`
	Generation    Generation     `yaml:"generation,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from careshift_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for code, count := range cfg.BaseTemplate {
		if count < 0 {
			return fmt.Errorf("baseTemplate[%s] must not be negative", code)
		}
	}

	// Validate rrule syntax up front so resolution never hits a parse error
	for i, rule := range cfg.WeeklyRules {
		if _, err := rrule.StrToRRule(rule.RRule); err != nil {
			return fmt.Errorf("invalid rrule in weeklyRules[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for careshift_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "careshift_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
