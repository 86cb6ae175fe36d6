// Command validate checks the game configuration JSON files in a directory
// (../configs by default, or the first argument). It checks:
//   - JSON structure, rejecting unknown fields
//   - the rules enforced by engine.ValidateGameConfig
//   - that the speed curve actually accelerates and where it bottoms out
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/blockfall/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors holds validation errors when Valid is false. Info holds the
// summary lines of a valid file and any warnings.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	config, err := engine.LoadGameConfig(filePath)
	var pathErr *fs.PathError
	switch {
	case err == nil:
	case errors.As(err, &pathErr):
		result.fail("Failed to read file: %v", err)
		return result
	case errors.Is(err, engine.ErrMalformedConfig):
		result.fail("Invalid JSON: %s", strings.TrimPrefix(err.Error(), engine.ErrMalformedConfig.Error()+": "))
		return result
	default:
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	result.Warnings = speedWarnings(config)

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Board: %d rows x %d columns", config.Rows, config.Columns),
		fmt.Sprintf("✓ Speed: %dms → %dms, %dms per level", config.InitialSpeed, config.MinSpeed, config.SpeedStep),
	)
	if floor := config.FloorLevel(); floor > 0 {
		result.Info = append(result.Info, fmt.Sprintf("✓ Floor speed reached at level %d", floor))
	}
	if config.Seed != 0 {
		result.Info = append(result.Info, fmt.Sprintf("✓ Fixed piece order, seed %d", config.Seed))
	}

	return result
}

// speedWarnings flags curves that are legal but never change pace
func speedWarnings(config *engine.GameConfig) []string {
	var warnings []string
	if config.SpeedStep == 0 && config.InitialSpeed > config.MinSpeed {
		warnings = append(warnings, fmt.Sprintf("speed_step_ms is 0: speed stays at %dms and min_speed_ms is never used", config.InitialSpeed))
	}
	if config.InitialSpeed == config.MinSpeed {
		warnings = append(warnings, "initial_speed_ms equals min_speed_ms: levels do not change speed")
	}
	return warnings
}

// validateDir validates every *.json file in dir
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(file))
	}
	return results, nil
}

func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDir(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
			for _, warning := range result.Warnings {
				fmt.Println("  ⚠ " + warning)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
