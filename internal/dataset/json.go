package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/pinnviz/internal/field"
)

// Bundle is the on-disk JSON form of a Dataset. Vsav is flattened in
// row-major order with t varying fastest.
type Bundle struct {
	Shape        []int       `json:"shape"`
	Vsav         []float64   `json:"vsav"`
	ObserveTrain [][]float64 `json:"observe_train"`
	VTrain       []float64   `json:"v_train"`
	ObserveTest  [][]float64 `json:"observe_test"`
	VPred        []float64   `json:"v_pred"`
	AllT         []float64   `json:"all_t,omitempty"`
}

func (b *Bundle) Dataset() (*Dataset, error) {
	shape, err := shapeOf(b.Shape)
	if err != nil {
		return nil, err
	}
	vsav, err := field.FromValues(shape, b.Vsav)
	if err != nil {
		return nil, fmt.Errorf("vsav: %w", err)
	}
	return &Dataset{
		Vsav:  vsav,
		Train: field.Split{Coords: b.ObserveTrain, Values: b.VTrain},
		Test:  field.Split{Coords: b.ObserveTest, Values: b.VPred},
		AllT:  b.AllT,
	}, nil
}

func NewBundle(d *Dataset) *Bundle {
	s := d.Vsav.Shape()
	return &Bundle{
		Shape:        []int{s.NX, s.NY, s.NT},
		Vsav:         d.Vsav.Data,
		ObserveTrain: d.Train.Coords,
		VTrain:       d.Train.Values,
		ObserveTest:  d.Test.Coords,
		VPred:        d.Test.Values,
		AllT:         d.AllT,
	}
}

func Decode(r io.Reader) (*Dataset, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return b.Dataset()
}

func LoadJSON(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func Encode(w io.Writer, d *Dataset) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewBundle(d))
}

func WriteJSON(path string, d *Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(file, d); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
