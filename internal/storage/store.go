package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/pinnviz/internal/config"
	"github.com/san-kum/pinnviz/internal/render"
)

const metadataFile = "metadata.json"

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata records one render invocation.
type RunMetadata struct {
	ID            string             `json:"id"`
	Input         string             `json:"input"`
	Prefix        string             `json:"prefix"`
	Timestamp     time.Time          `json:"timestamp"`
	Shape         []int              `json:"shape"`
	CellX         int                `json:"cell_x"`
	CellY         int                `json:"cell_y"`
	SnapshotFrame int                `json:"snapshot_frame"`
	PredMin       float64            `json:"pred_min"`
	PredMax       float64            `json:"pred_max"`
	Observed      int                `json:"observed"`
	Frames        int                `json:"frames"`
	Format        string             `json:"format"`
	DPI           int                `json:"dpi"`
	Metrics       map[string]float64 `json:"metrics"`
	Artifacts     []string           `json:"artifacts"`
}

func NewRunMetadata(input string, cfg *config.Config, rep *render.Report) RunMetadata {
	return RunMetadata{
		ID:            uuid.NewString(),
		Input:         input,
		Prefix:        rep.Prefix,
		Timestamp:     time.Now(),
		Shape:         []int{rep.Shape.NX, rep.Shape.NY, rep.Shape.NT},
		CellX:         rep.CellX,
		CellY:         rep.CellY,
		SnapshotFrame: rep.SnapshotFrame,
		PredMin:       rep.PredMin,
		PredMax:       rep.PredMax,
		Observed:      rep.Observed,
		Frames:        rep.Frames,
		Format:        cfg.Format,
		DPI:           cfg.DPI,
		Metrics:       rep.Metrics,
		Artifacts:     rep.Artifacts,
	}
}

func (s *Store) Save(meta RunMetadata) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return meta.ID, metaFile.Close()
}

// List returns every readable run, oldest first. Directories without
// valid metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("%q: %w", runID, ErrRunNotFound)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}
