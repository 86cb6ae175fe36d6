package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.Rows < MinRows || config.Rows > MaxRows {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinRows, MaxRows, config.Rows)
	}
	if config.Columns < MinColumns || config.Columns > MaxColumns {
		return fmt.Errorf("config validation: columns must be between %d and %d, got %d", MinColumns, MaxColumns, config.Columns)
	}

	// Validate speed curve
	if config.MinSpeed < MinSpeedFloor {
		return fmt.Errorf("config validation: min_speed_ms must be at least %d, got %d", MinSpeedFloor, config.MinSpeed)
	}
	if config.InitialSpeed < config.MinSpeed || config.InitialSpeed > MaxInitialSpeed {
		return fmt.Errorf("config validation: initial_speed_ms must be between min_speed_ms (%d) and %d, got %d",
			config.MinSpeed, MaxInitialSpeed, config.InitialSpeed)
	}
	if config.SpeedStep < 0 {
		return fmt.Errorf("config validation: speed_step_ms must not be negative, got %d", config.SpeedStep)
	}

	return nil
}

// DefaultConfig returns the classic 20x10 configuration
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:         "Classic",
		Description:  "Classic 20x10 board, 500ms start speed, 20ms faster per level",
		Rows:         DefaultRows,
		Columns:      DefaultColumns,
		InitialSpeed: DefaultInitialSpeed,
		MinSpeed:     DefaultMinSpeed,
		SpeedStep:    DefaultSpeedStep,
	}
}

// SpeedForLevel returns the tick interval in milliseconds at a level
func (c *GameConfig) SpeedForLevel(level int) int {
	return max(c.MinSpeed, c.InitialSpeed-level*c.SpeedStep)
}

// FloorLevel returns the first level at which the speed reaches MinSpeed,
// or 0 when it never does.
func (c *GameConfig) FloorLevel() int {
	if c.SpeedStep <= 0 {
		if c.InitialSpeed <= c.MinSpeed {
			return 1
		}
		return 0
	}
	level := (c.InitialSpeed - c.MinSpeed + c.SpeedStep - 1) / c.SpeedStep
	return max(level, 1)
}

// DecodeGameConfig parses a JSON game configuration, rejecting unknown
// fields, and validates it. Parse failures wrap ErrMalformedConfig.
func DecodeGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig reads and decodes a game configuration file
func LoadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeGameConfig(data)
}
