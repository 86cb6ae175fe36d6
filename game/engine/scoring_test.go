package engine

import "testing"

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		fullLines int
		expected  int
	}{
		{"no lines", 1, 0, 0},
		{"single", 1, 1, 200},
		{"double", 1, 2, 400},
		{"triple", 1, 3, 600},
		{"tetris", 1, 4, 900},
		{"single at level 3", 3, 1, 400},
		{"tetris at level 5", 5, 4, 1300},
		{"negative count", 2, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, createTestConfig())
			state := engine.GetState()
			state.Level = tt.level
			state.Score = 50

			engine.CalculateScore(tt.fullLines)

			if got := state.Score - 50; got != tt.expected {
				t.Errorf("Expected +%d, got +%d", tt.expected, got)
			}
		})
	}
}

func TestLineClearPointsClampsToFour(t *testing.T) {
	if LineClearPoints(6, 1) != LineClearPoints(4, 1) {
		t.Errorf("Expected counts above four to score as four")
	}
}

func TestUpdateCompletedRows(t *testing.T) {
	engine := newTestEngine(t, createTestConfig())
	state := engine.GetState()

	engine.UpdateCompletedRows(3)
	engine.UpdateCompletedRows(0)
	if state.CompletedRows != 3 {
		t.Errorf("Expected 3 completed rows, got %d", state.CompletedRows)
	}

	state.CompletedRows = 8
	engine.UpdateCompletedRows(-2)
	if state.CompletedRows != 0 {
		t.Errorf("Expected negative input to reset to 0, got %d", state.CompletedRows)
	}
}

func TestUpdateLevel(t *testing.T) {
	tests := []struct {
		name          string
		level         int
		completedRows int
		fullLines     int
		wantLevel     int
		wantCompleted int
	}{
		{"exactly ten", 1, 0, 10, 2, 0},
		{"carries remainder", 2, 3, 15, 3, 5},
		{"below threshold", 3, 7, 7, 3, 7},
		{"zero", 1, 4, 0, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, createTestConfig())
			state := engine.GetState()
			state.Level = tt.level
			state.CompletedRows = tt.completedRows

			engine.UpdateLevel(tt.fullLines)

			if state.Level != tt.wantLevel {
				t.Errorf("Expected level %d, got %d", tt.wantLevel, state.Level)
			}
			if state.CompletedRows != tt.wantCompleted {
				t.Errorf("Expected completed rows %d, got %d", tt.wantCompleted, state.CompletedRows)
			}
		})
	}
}

func TestUpdateScore(t *testing.T) {
	tests := []struct {
		name          string
		level         int
		speed         int
		completedRows int
		wantLevel     int
		wantSpeed     int
	}{
		{"level up", 1, 500, 10, 2, 460},
		{"below threshold", 4, 420, 9, 4, 420},
		{"floored at minimum", 30, 100, 0, 30, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := newRecordingRenderer()
			engine := newTestEngine(t, createTestConfig(), WithRenderer(renderer))
			state := engine.GetState()
			state.Level = tt.level
			state.GameSpeed = tt.speed
			state.CompletedRows = tt.completedRows
			state.Score = 1500

			engine.UpdateScore()

			if state.Level != tt.wantLevel {
				t.Errorf("Expected level %d, got %d", tt.wantLevel, state.Level)
			}
			if state.GameSpeed != tt.wantSpeed {
				t.Errorf("Expected speed %d, got %d", tt.wantSpeed, state.GameSpeed)
			}
			if renderer.labels[LabelScore] != 1500 {
				t.Errorf("Expected score label 1500, got %d", renderer.labels[LabelScore])
			}
		})
	}
}

func TestSpeedNeverIncreasesWithLevel(t *testing.T) {
	config := createTestConfig()
	prev := config.SpeedForLevel(1)
	for level := 2; level <= 50; level++ {
		speed := config.SpeedForLevel(level)
		if speed > prev {
			t.Fatalf("Speed rose from %d to %d at level %d", prev, speed, level)
		}
		if speed < config.MinSpeed {
			t.Fatalf("Speed %d below floor %d at level %d", speed, config.MinSpeed, level)
		}
		prev = speed
	}
}
