package likelihood

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// CaseRecord is one observed case as read from a case file.
type CaseRecord struct {
	// ID is the external label of the case. Labels are NFC-normalized and
	// must be unique; the case number is the record's position (1-based).
	ID string `yaml:"id"`

	// Date is the sampling (or onset) date in integer time units.
	Date int `yaml:"date"`

	// Sequence is an optional aligned genome. All sequences in a file must
	// have the same length.
	Sequence string `yaml:"sequence,omitempty"`
}

// CaseFile is the on-disk layout of observed case data.
type CaseFile struct {
	Cases []CaseRecord `yaml:"cases"`
}

// Data is the observed data used by the reference Model.
// It implements chain.Data.
type Data struct {
	Labels []string
	Dates  []int

	// GenomeLength is the number of comparable sites, 0 without sequences.
	GenomeLength int

	// Distances[i][j] is the number of differing sites between cases i+1
	// and j+1. Nil without sequences.
	Distances [][]int

	// IncubationMode is the most likely infection-to-sampling delay.
	IncubationMode int

	logW []float64
	logF []float64
}

// NumCases implements chain.Data.
func (d *Data) NumCases() int {
	return len(d.Dates)
}

// NewData builds Data from case records and two delay distributions:
// w, the generation time pmf, and f, the infection-to-sampling pmf. Both are
// indexed by delay-1 (w[0] is the probability of a delay of one time unit).
func NewData(records []CaseRecord, w, f []float64) (*Data, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no cases")
	}
	if err := checkPMF("generation time", w); err != nil {
		return nil, err
	}
	if err := checkPMF("incubation", f); err != nil {
		return nil, err
	}

	d := &Data{
		Labels: make([]string, len(records)),
		Dates:  make([]int, len(records)),
		logW:   logs(w),
		logF:   logs(f),

		IncubationMode: Mode(f),
	}

	seen := make(map[string]int, len(records))
	seqs := make([]string, len(records))
	hasSeq := 0
	for i, r := range records {
		label := norm.NFC.String(strings.TrimSpace(r.ID))
		if label == "" {
			label = fmt.Sprintf("%d", i+1)
		}
		if prev, ok := seen[label]; ok {
			return nil, fmt.Errorf("case %d: duplicate id %q (first used by case %d)", i+1, label, prev)
		}
		seen[label] = i + 1
		d.Labels[i] = label
		d.Dates[i] = r.Date

		seqs[i] = strings.ToUpper(strings.TrimSpace(r.Sequence))
		if seqs[i] != "" {
			hasSeq++
		}
	}

	switch {
	case hasSeq == 0:
		return d, nil
	case hasSeq != len(records):
		return nil, fmt.Errorf("sequences given for %d of %d cases", hasSeq, len(records))
	}

	length := len(seqs[0])
	for i, s := range seqs {
		if len(s) != length {
			return nil, fmt.Errorf("case %d: sequence length %d, want %d", i+1, len(s), length)
		}
	}
	d.GenomeLength = length
	d.Distances = distances(seqs)
	return d, nil
}

// LoadCases reads a YAML case file. Unknown fields are rejected.
func LoadCases(path string) ([]CaseRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}

	var file CaseFile
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse case file: %w", err)
	}
	if len(file.Cases) == 0 {
		return nil, fmt.Errorf("case file %s lists no cases", path)
	}
	return file.Cases, nil
}

// LoadData reads a case file and builds Data with the given delay pmfs.
func LoadData(path string, w, f []float64) (*Data, error) {
	records, err := LoadCases(path)
	if err != nil {
		return nil, err
	}
	d, err := NewData(records, w, f)
	if err != nil {
		return nil, fmt.Errorf("case file %s: %w", path, err)
	}
	return d, nil
}

// distances counts pairwise differences over unambiguous nucleotides.
func distances(seqs []string) [][]int {
	n := len(seqs)
	out := make([][]int, n)
	for i := range out {
		out[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			diff := 0
			for k := 0; k < len(seqs[i]); k++ {
				a, b := seqs[i][k], seqs[j][k]
				if isBase(a) && isBase(b) && a != b {
					diff++
				}
			}
			out[i][j] = diff
			out[j][i] = diff
		}
	}
	return out
}

func isBase(c byte) bool {
	switch c {
	case 'A', 'C', 'G', 'T':
		return true
	}
	return false
}

func checkPMF(name string, p []float64) error {
	if len(p) == 0 {
		return fmt.Errorf("%s distribution is empty", name)
	}
	for i, v := range p {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s distribution: invalid mass %v at delay %d", name, v, i+1)
		}
	}
	return nil
}

func logs(p []float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = math.Log(v)
	}
	return out
}
