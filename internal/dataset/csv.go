package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/pinnviz/internal/field"
)

// File names inside a CSV dataset directory. Each file starts with a header row.
const (
	VsavFile         = "vsav.csv"
	ObserveTrainFile = "observe_train.csv"
	TrainValuesFile  = "v_train.csv"
	ObserveTestFile  = "observe_test.csv"
	PredValuesFile   = "v_pred.csv"
	TimeFile         = "all_t.csv"
)

var ErrBadRecord = errors.New("dataset: malformed csv record")

// readRecords parses every row after the header as floats with exactly cols columns.
func readRecords(path string, cols int) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) < 2 {
		return [][]float64{}, nil
	}

	rows := make([][]float64, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 1 && record[0] == "" {
			continue
		}
		if len(record) != cols {
			return nil, fmt.Errorf("%s line %d: want %d columns, got %d: %w", path, i+1, cols, len(record), ErrBadRecord)
		}
		row := make([]float64, cols)
		for j, s := range record {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", path, i+1, ErrBadRecord)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readColumn(path string) ([]float64, error) {
	rows, err := readRecords(path, 1)
	if err != nil {
		return nil, err
	}
	col := make([]float64, len(rows))
	for i, row := range rows {
		col[i] = row[0]
	}
	return col, nil
}

// readVsav builds the ground truth grid from x,y,t,v rows. The shape is the
// largest index on each axis plus one, and every cell must be present.
func readVsav(path string) (*field.Grid, error) {
	rows, err := readRecords(path, 4)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no rows: %w", path, ErrBadShape)
	}

	idx := make([][3]int, len(rows))
	dims := []int{0, 0, 0}
	for i, row := range rows {
		for j := 0; j < 3; j++ {
			v := row[j]
			if v < 0 || v != math.Trunc(v) {
				return nil, fmt.Errorf("%s line %d: index %v: %w", path, i+2, v, ErrBadRecord)
			}
			idx[i][j] = int(v)
			dims[j] = max(dims[j], int(v)+1)
		}
	}

	shape, err := shapeOf(dims)
	if err != nil {
		return nil, err
	}
	if len(rows) != shape.Size() {
		return nil, fmt.Errorf("%s: %w", path, &field.ReshapeError{Shape: shape, Got: len(rows)})
	}

	// with the row count equal to the grid size, no repeats means no gaps
	seen := make([]bool, shape.Size())
	g := field.NewGrid(shape)
	for i, row := range rows {
		x, y, t := idx[i][0], idx[i][1], idx[i][2]
		flat := (x*shape.NY+y)*shape.NT + t
		if seen[flat] {
			return nil, fmt.Errorf("%s line %d: cell (%d, %d, %d) repeated: %w", path, i+2, x, y, t, ErrBadRecord)
		}
		seen[flat] = true
		g.Set(x, y, t, row[3])
	}
	return g, nil
}

// LoadCSVDir reads a dataset laid out as one CSV file per array. all_t.csv is optional.
func LoadCSVDir(dir string) (*Dataset, error) {
	vsav, err := readVsav(filepath.Join(dir, VsavFile))
	if err != nil {
		return nil, err
	}

	d := &Dataset{Vsav: vsav}
	if d.Train.Coords, err = readRecords(filepath.Join(dir, ObserveTrainFile), 3); err != nil {
		return nil, err
	}
	if d.Train.Values, err = readColumn(filepath.Join(dir, TrainValuesFile)); err != nil {
		return nil, err
	}
	if d.Test.Coords, err = readRecords(filepath.Join(dir, ObserveTestFile), 3); err != nil {
		return nil, err
	}
	if d.Test.Values, err = readColumn(filepath.Join(dir, PredValuesFile)); err != nil {
		return nil, err
	}

	d.AllT, err = readColumn(filepath.Join(dir, TimeFile))
	if errors.Is(err, fs.ErrNotExist) {
		d.AllT = nil
	} else if err != nil {
		return nil, err
	}
	return d, nil
}

func writeRecords(path string, header []string, rows [][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

func column(values []float64) [][]float64 {
	rows := make([][]float64, len(values))
	for i, v := range values {
		rows[i] = []float64{v}
	}
	return rows
}

type csvFile struct {
	name   string
	header []string
	rows   [][]float64
}

// WriteCSVDir writes d in the layout LoadCSVDir reads.
func WriteCSVDir(dir string, d *Dataset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	s := d.Vsav.Shape()
	vsav := make([][]float64, 0, s.Size())
	for x := 0; x < s.NX; x++ {
		for y := 0; y < s.NY; y++ {
			for t := 0; t < s.NT; t++ {
				vsav = append(vsav, []float64{float64(x), float64(y), float64(t), d.Vsav.At(x, y, t)})
			}
		}
	}

	coords := []string{"c0", "c1", "c2"}
	files := []csvFile{
		{VsavFile, []string{"x", "y", "t", "v"}, vsav},
		{ObserveTrainFile, coords, d.Train.Coords},
		{TrainValuesFile, []string{"v"}, column(d.Train.Values)},
		{ObserveTestFile, coords, d.Test.Coords},
		{PredValuesFile, []string{"v"}, column(d.Test.Values)},
	}
	if d.AllT != nil {
		files = append(files, csvFile{TimeFile, []string{"t"}, column(d.AllT)})
	}

	for _, f := range files {
		if err := writeRecords(filepath.Join(dir, f.name), f.header, f.rows); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}
