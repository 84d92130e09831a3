package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/pinnviz/internal/config"
	"github.com/san-kum/pinnviz/internal/field"
	"github.com/san-kum/pinnviz/internal/render"
)

func testReport() *render.Report {
	return &render.Report{
		Prefix:        "out/heart",
		Shape:         field.Shape{NX: 10, NY: 8, NT: 200},
		CellX:         7,
		CellY:         6,
		SnapshotFrame: 130,
		PredMin:       -80,
		PredMax:       20,
		Observed:      40,
		Metrics:       map[string]float64{"rmse": 1.5},
		Artifacts:     []string{"out/heart_Action_Potential.tiff", "out/heart_Snapshot_2.tiff"},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := NewRunMetadata("run.json", config.DefaultConfig(), testReport())
	runID, err := st.Save(meta)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("expected uuid run id, got %q", runID)
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got.Input != "run.json" {
		t.Errorf("expected input 'run.json', got '%s'", got.Input)
	}
	if got.CellX != 7 || got.CellY != 6 {
		t.Errorf("expected cell (7, 6), got (%d, %d)", got.CellX, got.CellY)
	}
	if got.SnapshotFrame != 130 {
		t.Errorf("expected snapshot frame 130, got %d", got.SnapshotFrame)
	}
	if got.Format != "tiff" || got.DPI != 500 {
		t.Errorf("expected tiff at 500 dpi, got %s at %d", got.Format, got.DPI)
	}
	if got.Metrics["rmse"] != 1.5 {
		t.Errorf("expected rmse 1.5, got %f", got.Metrics["rmse"])
	}
	if len(got.Shape) != 3 || got.Shape[2] != 200 {
		t.Errorf("expected shape [10 8 200], got %v", got.Shape)
	}
	if len(got.Artifacts) != 2 {
		t.Errorf("expected 2 artifacts, got %d", len(got.Artifacts))
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{2, 0, 1} {
		meta := NewRunMetadata("run.json", config.DefaultConfig(), testReport())
		meta.Timestamp = base.Add(time.Duration(offset) * time.Hour)
		meta.Frames = offset
		if _, err := st.Save(meta); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	if err := os.MkdirAll(filepath.Join(tmpDir, "stray"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, run := range runs {
		if run.Frames != i {
			t.Errorf("run %d: expected oldest first, got frames=%d", i, run.Frames)
		}
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(NewRunMetadata("run.json", config.DefaultConfig(), testReport()))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	metaPath := filepath.Join(tmpDir, runID, "metadata.json")
	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())

	for _, id := range []string{uuid.NewString(), "../etc", ""} {
		if _, err := st.Load(id); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("Load(%q): expected ErrRunNotFound, got %v", id, err)
		}
	}
}
