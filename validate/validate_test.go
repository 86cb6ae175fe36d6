package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `{
	"name": "Test Config",
	"description": "Test configuration",
	"rows": 20,
	"columns": 10,
	"initial_speed_ms": 500,
	"min_speed_ms": 100,
	"speed_step_ms": 20
}`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func hasLine(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "test.json", validConfig)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "test.json" {
		t.Errorf("Expected file name test.json, got %s", result.File)
	}

	for _, want := range []string{
		"Name: Test Config",
		"Board: 20 rows x 10 columns",
		"Floor speed reached at level 20",
	} {
		if !hasLine(result.Info, want) {
			t.Errorf("Expected info %q, got %v", want, result.Info)
		}
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "malformed json",
			content: `{"name": "Broken",`,
			want:    "Invalid JSON",
		},
		{
			name:    "unknown field",
			content: strings.Replace(validConfig, `"rows"`, `"grid_size": 5, "rows"`, 1),
			want:    "grid_size",
		},
		{
			name:    "missing name",
			content: strings.Replace(validConfig, `"Test Config"`, `""`, 1),
			want:    "name is required",
		},
		{
			name:    "too few rows",
			content: strings.Replace(validConfig, `"rows": 20`, `"rows": 3`, 1),
			want:    "rows must be between 4 and 40",
		},
		{
			name:    "too many columns",
			content: strings.Replace(validConfig, `"columns": 10`, `"columns": 31`, 1),
			want:    "columns must be between 4 and 30",
		},
		{
			name:    "initial below min",
			content: strings.Replace(validConfig, `"initial_speed_ms": 500`, `"initial_speed_ms": 50`, 1),
			want:    "initial_speed_ms",
		},
		{
			name:    "negative step",
			content: strings.Replace(validConfig, `"speed_step_ms": 20`, `"speed_step_ms": -5`, 1),
			want:    "speed_step_ms must not be negative",
		},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".json", tt.content)

			result := validateConfig(path)
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !hasLine(result.Errors, tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "nonexistent.json"))
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasLine(result.Errors, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateConfig_SpeedWarnings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "no step",
			content: strings.Replace(validConfig, `"speed_step_ms": 20`, `"speed_step_ms": 0`, 1),
			want:    "speed stays at 500ms",
		},
		{
			name:    "flat curve",
			content: strings.Replace(validConfig, `"min_speed_ms": 100`, `"min_speed_ms": 500`, 1),
			want:    "levels do not change speed",
		},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".json", tt.content)

			result := validateConfig(path)
			if !result.Valid {
				t.Fatalf("Expected valid config, got %v", result.Errors)
			}
			if !hasLine(result.Warnings, tt.want) {
				t.Errorf("Expected warning %q, got %v", tt.want, result.Warnings)
			}
		})
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.json", validConfig)
	writeConfig(t, dir, "b.json", `not json`)
	writeConfig(t, dir, "notes.txt", "ignored")

	results, err := validateDir(dir)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if !results[0].Valid || results[1].Valid {
		t.Errorf("Expected a.json valid and b.json invalid, got %v / %v", results[0].Valid, results[1].Valid)
	}
}

func TestShippedConfigsAreValid(t *testing.T) {
	results, err := validateDir("../configs")
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if len(results) == 0 {
		t.Skip("no configs directory")
	}
	for _, result := range results {
		if !result.Valid {
			t.Errorf("%s is invalid: %v", result.File, result.Errors)
		}
	}
}
