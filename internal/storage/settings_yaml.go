package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"odyssey/internal/platform"
	"odyssey/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	TypingSpeed          float64 `yaml:"typing_speed"`
	TimingScale          float64 `yaml:"timing_scale"`
	Fullscreen           bool    `yaml:"fullscreen"`
	IdleAutoPause        *bool   `yaml:"idle_auto_pause"`
	IdleThresholdMinutes int     `yaml:"idle_threshold_minutes"`
	ScriptPath           string  `yaml:"script_path,omitempty"`
}

// LoadSettings reads player preferences from the user config dir.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads player preferences from configPath.
func LoadSettingsFile(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes player preferences to the user config dir.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes player preferences to configPath.
func SaveSettingsFile(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	idleAutoPause := settings.IdleAutoPause
	fileData := yamlSettings{
		TypingSpeed:          settings.TypingSpeed,
		TimingScale:          settings.TimingScale,
		Fullscreen:           settings.Fullscreen,
		IdleAutoPause:        &idleAutoPause,
		IdleThresholdMinutes: int(settings.IdleThreshold / time.Minute),
		ScriptPath:           settings.ScriptPath,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := platform.ConfigDir(appName)
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.TypingSpeed >= preferences.MinTypingSpeed && fileData.TypingSpeed <= preferences.MaxTypingSpeed {
		settings.TypingSpeed = fileData.TypingSpeed
	}
	if fileData.TimingScale >= preferences.MinTimingScale && fileData.TimingScale <= preferences.MaxTimingScale {
		settings.TimingScale = fileData.TimingScale
	}
	if fileData.IdleThresholdMinutes > 0 {
		settings.IdleThreshold = time.Duration(fileData.IdleThresholdMinutes) * time.Minute
	}
	if fileData.IdleAutoPause != nil {
		settings.IdleAutoPause = *fileData.IdleAutoPause
	}

	settings.Fullscreen = fileData.Fullscreen
	settings.ScriptPath = fileData.ScriptPath
}
