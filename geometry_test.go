package purrview

import "testing"

func TestClampFontSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{5, MinFontSize},
		{10, 10},
		{14.5, 14.5},
		{40, 40},
		{100, MaxFontSize},
	}
	for _, tt := range tests {
		if got := ClampFontSize(tt.in); got != tt.want {
			t.Errorf("ClampFontSize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEstimateCellMetrics(t *testing.T) {
	t.Parallel()

	advance, height, ascent := EstimateCellMetrics(20)
	if advance != 12 {
		t.Errorf("advance = %v, want 12", advance)
	}
	if height != 24 {
		t.Errorf("height = %v, want 24", height)
	}
	if ascent != 20 {
		t.Errorf("ascent = %v, want 20", ascent)
	}

	// Out-of-range sizes measure at the clamped size.
	clampedAdvance, _, _ := EstimateCellMetrics(1)
	minAdvance, _, _ := EstimateCellMetrics(MinFontSize)
	if clampedAdvance != minAdvance {
		t.Errorf("advance below range = %v, want %v", clampedAdvance, minAdvance)
	}
}

func TestGeometryRecompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		width, height float64
		advance, line float64
		wantCols      int
		wantRows      int
	}{
		{"exact fit", 800, 480, 10, 20, 80, 24},
		{"floor division", 805, 489, 10, 20, 80, 24},
		{"tiny surface clamps to one", 5, 5, 10, 20, 1, 1},
		{"zero metrics clamp", 800, 480, 0, 0, 1, 1},
		{"unit metrics count cells directly", 132, 43, 1, 1, 132, 43},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewGeometry(nil)
			cols, rows, changed := g.Recompute(tt.width, tt.height, tt.advance, tt.line)
			if cols != tt.wantCols || rows != tt.wantRows {
				t.Errorf("Recompute = (%d, %d), want (%d, %d)", cols, rows, tt.wantCols, tt.wantRows)
			}
			if !changed {
				t.Error("first Recompute reported no change")
			}
			if gotCols, gotRows := g.Size(); gotCols != cols || gotRows != rows {
				t.Errorf("Size = (%d, %d), want (%d, %d)", gotCols, gotRows, cols, rows)
			}
		})
	}
}

func TestGeometryNotifiesEngineOncePerChange(t *testing.T) {
	t.Parallel()

	engine := newStubEngine()
	session := NewSession(engine)
	g := NewGeometry(session)

	g.Recompute(800, 480, 10, 20)
	if len(engine.resizes) != 1 {
		t.Fatalf("engine saw %d resizes, want 1", len(engine.resizes))
	}
	if engine.resizes[0] != [2]int{80, 24} {
		t.Errorf("resize = %v, want [80 24]", engine.resizes[0])
	}

	// Same result, different inputs: no notification.
	g.Recompute(809, 489, 10, 20)
	if len(engine.resizes) != 1 {
		t.Errorf("engine saw %d resizes after no-op recompute, want 1", len(engine.resizes))
	}

	// Different grid: exactly one more.
	g.Recompute(400, 480, 10, 20)
	if len(engine.resizes) != 2 {
		t.Fatalf("engine saw %d resizes, want 2", len(engine.resizes))
	}
	if engine.resizes[1] != [2]int{40, 24} {
		t.Errorf("resize = %v, want [40 24]", engine.resizes[1])
	}
}

func TestGeometryCellSizeTracksMetrics(t *testing.T) {
	t.Parallel()

	g := NewGeometry(nil)
	g.Recompute(800, 480, 8.4, 16.8)
	w, h := g.CellSize()
	if w != 8.4 || h != 16.8 {
		t.Errorf("CellSize = (%v, %v), want (8.4, 16.8)", w, h)
	}

	// Metrics update even when the grid lands on the same size.
	g.Recompute(800, 480, 8.42, 16.9)
	w, h = g.CellSize()
	if w != 8.42 || h != 16.9 {
		t.Errorf("CellSize after metric change = (%v, %v), want (8.42, 16.9)", w, h)
	}
}
