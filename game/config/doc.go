// Package config loads board configurations for the falling-block game.
//
// Configurations are JSON files in a directory, one per file, addressed by
// their base name ("classic" for classic.json):
//
//	{
//	  "name": "Classic",
//	  "description": "Standard 20x10 board",
//	  "rows": 20,
//	  "columns": 10,
//	  "initial_speed_ms": 500,
//	  "min_speed_ms": 100,
//	  "speed_step_ms": 20
//	}
//
// Loaded configurations are validated with engine.ValidateGameConfig and
// cached. The default is classic.json, then the first valid file in the
// directory, then a built-in 20x10 configuration.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	small, err := manager.LoadConfig("small")
package config
