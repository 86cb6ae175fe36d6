package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/blockfall/game/engine"
)

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:         "Test Config",
		Description:  "Test configuration",
		Rows:         20,
		Columns:      10,
		InitialSpeed: 500,
		MinSpeed:     100,
		SpeedStep:    20,
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.DefaultID() != "classic" {
			t.Errorf("Expected default id 'classic', got '%s'", manager.DefaultID())
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to minimal config", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without config files, got error: %v", err)
		}

		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected default config to be available")
		}
		if defaultConfig.Rows != 20 || defaultConfig.Columns != 10 {
			t.Errorf("Expected 20x10 minimal config, got %dx%d", defaultConfig.Rows, defaultConfig.Columns)
		}
		if manager.DefaultID() != "default" {
			t.Errorf("Expected default id 'default', got '%s'", manager.DefaultID())
		}
		if err := engine.ValidateGameConfig(defaultConfig); err != nil {
			t.Errorf("Minimal config should be valid: %v", err)
		}
	})

	t.Run("first config used when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		sprint := createValidConfig()
		sprint.Name = "Sprint"
		writeConfigFile(t, dir, "sprint", sprint)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.DefaultID() != "sprint" {
			t.Errorf("Expected default id 'sprint', got '%s'", manager.DefaultID())
		}
		if manager.GetDefault().Name != "Sprint" {
			t.Errorf("Expected default name 'Sprint', got '%s'", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", createValidConfig())

	small := createValidConfig()
	small.Name = "Small"
	small.Rows = 12
	small.Columns = 6
	writeConfigFile(t, dir, "small", small)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("small")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Small" {
			t.Errorf("Expected config name 'Small', got '%s'", config.Name)
		}
		if config.Rows != 12 || config.Columns != 6 {
			t.Errorf("Expected 12x6, got %dx%d", config.Rows, config.Columns)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("small.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Small" {
			t.Errorf("Expected config name 'Small', got '%s'", config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("small")
		config2, err := manager.LoadConfig("small")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("reject path traversal", func(t *testing.T) {
		for _, name := range []string{"../classic", "a/b", `a\b`, ""} {
			if _, err := manager.LoadConfig(name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("LoadConfig(%q): expected ErrInvalidName, got %v", name, err)
			}
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": ""}`), 0644); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644); err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		if _, err := manager.LoadConfig("malformed"); !errors.Is(err, engine.ErrMalformedConfig) {
			t.Errorf("Expected ErrMalformedConfig, got %v", err)
		}
	})

	t.Run("reject unknown fields", func(t *testing.T) {
		data := []byte(`{"name": "Extra", "description": "x", "rows": 20, "columns": 10,
			"initial_speed_ms": 500, "min_speed_ms": 100, "speed_step_ms": 20, "hold": true}`)
		if err := os.WriteFile(filepath.Join(dir, "extra.json"), data, 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		if _, err := manager.LoadConfig("extra"); !errors.Is(err, engine.ErrMalformedConfig) {
			t.Errorf("Expected ErrMalformedConfig, got %v", err)
		}
	})
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", createValidConfig())
	sprint := createValidConfig()
	sprint.Name = "Sprint"
	writeConfigFile(t, dir, "sprint", sprint)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("sprint.json"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.DefaultID() != "sprint" {
		t.Errorf("Expected default id 'sprint', got '%s'", manager.DefaultID())
	}
	if manager.GetDefault().Name != "Sprint" {
		t.Errorf("Expected default name 'Sprint', got '%s'", manager.GetDefault().Name)
	}

	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	configs := []struct {
		filename string
		name     string
		rows     int
	}{
		{"classic", "Classic", 20},
		{"small", "Small", 12},
		{"tall", "Tall", 30},
	}

	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		config.Rows = cfg.rows
		writeConfigFile(t, dir, cfg.filename, config)
	}

	// Ignored: not JSON, and invalid JSON config
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"rows": 2}`), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != 3 {
		t.Fatalf("Expected 3 configs, got %d", len(configList))
	}

	found := make(map[string]*struct{ rows, cols int })
	for _, info := range configList {
		found[info.ConfigID] = &struct{ rows, cols int }{info.Rows, info.Columns}
		if info.Filename != info.ConfigID+".json" {
			t.Errorf("Filename %s does not match id %s", info.Filename, info.ConfigID)
		}
		if info.InitialSpeed != 500 || info.MinSpeed != 100 {
			t.Errorf("Unexpected speeds %d/%d for %s", info.InitialSpeed, info.MinSpeed, info.ConfigID)
		}
	}

	for _, cfg := range configs {
		got, ok := found[cfg.filename]
		if !ok {
			t.Errorf("Config '%s' not found in list", cfg.filename)
			continue
		}
		if got.rows != cfg.rows || got.cols != 10 {
			t.Errorf("Config '%s': expected %dx10, got %dx%d", cfg.filename, cfg.rows, got.rows, got.cols)
		}
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("valid config is written and cached", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "Saved"
		if err := manager.SaveConfig("saved", config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "saved.json"))
		if err != nil {
			t.Fatalf("Saved file missing: %v", err)
		}
		var onDisk engine.GameConfig
		if err := json.Unmarshal(data, &onDisk); err != nil {
			t.Fatalf("Saved file is not JSON: %v", err)
		}
		if onDisk.Name != "Saved" || onDisk.InitialSpeed != 500 {
			t.Errorf("Unexpected saved content: %+v", onDisk)
		}

		loaded, err := manager.LoadConfig("saved")
		if err != nil {
			t.Fatalf("LoadConfig after save failed: %v", err)
		}
		if loaded != config {
			t.Error("Expected saved config to be cached")
		}
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		config := createValidConfig()
		config.Rows = 2
		if err := manager.SaveConfig("bad", config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(err) {
			t.Error("Invalid config should not be written")
		}
	})

	t.Run("unsafe name is rejected", func(t *testing.T) {
		if err := manager.SaveConfig("../escape", createValidConfig()); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Expected ErrInvalidName, got %v", err)
		}
	})
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	config := createValidConfig()
	config.Name = "Changeable"
	writeConfigFile(t, dir, "classic", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config.InitialSpeed = 800
	writeConfigFile(t, dir, "classic", config)

	loaded, _ := manager.LoadConfig("classic")
	if loaded.InitialSpeed != 500 {
		t.Errorf("Expected cached initial speed 500, got %d", loaded.InitialSpeed)
	}

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}

	if manager.GetDefault().InitialSpeed != 800 {
		t.Errorf("Expected refreshed initial speed 800, got %d", manager.GetDefault().InitialSpeed)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", createValidConfig())

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + string(rune('0'+i))
		writeConfigFile(t, dir, "config"+string(rune('0'+i)), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			configName := "config" + string(rune('0'+((id%5)+1)))
			if _, err := manager.LoadConfig(configName); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	// classic plus the five loaded configs
	if manager.Count() != 6 {
		t.Errorf("Expected 6 configs in cache, got %d", manager.Count())
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
