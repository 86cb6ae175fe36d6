package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *GameConfig {
	return &GameConfig{
		Name:         "Test Config",
		Description:  "A valid test configuration",
		Rows:         20,
		Columns:      10,
		InitialSpeed: 500,
		MinSpeed:     100,
		SpeedStep:    20,
	}
}

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*GameConfig)
		wantError string
	}{
		{"valid", func(c *GameConfig) {}, ""},
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"too few rows", func(c *GameConfig) { c.Rows = MinRows - 1 }, "rows must be between"},
		{"too many rows", func(c *GameConfig) { c.Rows = MaxRows + 1 }, "rows must be between"},
		{"too few columns", func(c *GameConfig) { c.Columns = MinColumns - 1 }, "columns must be between"},
		{"too many columns", func(c *GameConfig) { c.Columns = MaxColumns + 1 }, "columns must be between"},
		{"min speed below floor", func(c *GameConfig) { c.MinSpeed = MinSpeedFloor - 1 }, "min_speed_ms must be at least"},
		{"initial below min", func(c *GameConfig) { c.InitialSpeed = 50 }, "initial_speed_ms must be between"},
		{"initial too slow", func(c *GameConfig) { c.InitialSpeed = MaxInitialSpeed + 1 }, "initial_speed_ms must be between"},
		{"negative step", func(c *GameConfig) { c.SpeedStep = -5 }, "speed_step_ms must not be negative"},
		{"smallest board", func(c *GameConfig) { c.Rows, c.Columns = MinRows, MinColumns }, ""},
		{"constant speed", func(c *GameConfig) { c.SpeedStep = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.modify(config)
			err := ValidateGameConfig(config)
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantError)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Expected error containing %q, got %q", tt.wantError, err.Error())
			}
		})
	}

	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := ValidateGameConfig(DefaultConfig()); err != nil {
		t.Errorf("Default config is invalid: %v", err)
	}
}

func TestSpeedForLevel(t *testing.T) {
	config := createValidConfig()
	tests := []struct {
		level    int
		expected int
	}{
		{0, 500},
		{1, 480},
		{2, 460},
		{4, 420},
		{20, 100},
		{21, 100},
		{100, 100},
	}
	for _, tt := range tests {
		if got := config.SpeedForLevel(tt.level); got != tt.expected {
			t.Errorf("Level %d: expected %d, got %d", tt.level, tt.expected, got)
		}
	}
}

func TestFloorLevel(t *testing.T) {
	tests := []struct {
		name     string
		initial  int
		min      int
		step     int
		expected int
	}{
		{"classic", 500, 100, 20, 20},
		{"uneven step", 500, 100, 30, 14},
		{"constant above floor", 500, 100, 0, 0},
		{"starts at floor", 100, 100, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := createValidConfig()
			c.InitialSpeed, c.MinSpeed, c.SpeedStep = tt.initial, tt.min, tt.step
			if got := c.FloorLevel(); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestLoadGameConfig(t *testing.T) {
	tempDir := t.TempDir()

	validJSON := `{
		"name": "Loaded",
		"description": "Loaded from disk",
		"rows": 16,
		"columns": 8,
		"initial_speed_ms": 400,
		"min_speed_ms": 80,
		"speed_step_ms": 25,
		"seed": 7
	}`
	validPath := filepath.Join(tempDir, "valid.json")
	if err := os.WriteFile(validPath, []byte(validJSON), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadGameConfig(validPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "Loaded" || config.Rows != 16 || config.Columns != 8 {
		t.Errorf("Unexpected config %+v", config)
	}
	if config.InitialSpeed != 400 || config.MinSpeed != 80 || config.SpeedStep != 25 || config.Seed != 7 {
		t.Errorf("Unexpected speed fields %+v", config)
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadGameConfig(filepath.Join(tempDir, "nope.json")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(tempDir, "broken.json")
		os.WriteFile(path, []byte("{not json"), 0644)
		_, err := LoadGameConfig(path)
		if !errors.Is(err, ErrMalformedConfig) {
			t.Errorf("Expected ErrMalformedConfig, got %v", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		path := filepath.Join(tempDir, "extra.json")
		os.WriteFile(path, []byte(strings.Replace(validJSON, `"rows"`, `"gravity": 2, "rows"`, 1)), 0644)
		_, err := LoadGameConfig(path)
		if !errors.Is(err, ErrMalformedConfig) || !strings.Contains(err.Error(), "gravity") {
			t.Errorf("Expected unknown field error naming gravity, got %v", err)
		}
	})

	t.Run("fails validation", func(t *testing.T) {
		path := filepath.Join(tempDir, "invalid.json")
		os.WriteFile(path, []byte(`{"name":"x","description":"y","rows":2,"columns":8,"initial_speed_ms":400,"min_speed_ms":80}`), 0644)
		_, err := LoadGameConfig(path)
		if err == nil || errors.Is(err, ErrMalformedConfig) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}
