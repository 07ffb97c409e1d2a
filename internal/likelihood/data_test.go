package likelihood

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewData_Distances(t *testing.T) {
	d := newTestData(t)
	assert.Equal(t, 3, d.NumCases())
	assert.Equal(t, 4, d.GenomeLength)
	assert.Equal(t, [][]int{{0, 1, 2}, {1, 0, 1}, {2, 1, 0}}, d.Distances)
	assert.Equal(t, []string{"a", "b", "c"}, d.Labels)
	assert.Equal(t, []int{2, 3, 4}, d.Dates)
}

func TestNewData_IgnoresAmbiguousSites(t *testing.T) {
	d, err := NewData([]CaseRecord{
		{ID: "x", Date: 1, Sequence: "AN-T"},
		{ID: "y", Date: 2, Sequence: "acgg"},
	}, []float64{1}, []float64{1})
	require.NoError(t, err)
	// A/A same, N and - skipped, T/G differ.
	assert.Equal(t, 1, d.Distances[0][1])
}

func TestNewData_NormalizesLabels(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	d, err := NewData([]CaseRecord{{ID: "cafe\u0301", Date: 1}, {ID: " ", Date: 2}}, []float64{1}, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", d.Labels[0])
	assert.Equal(t, "2", d.Labels[1])
}

func TestNewData_Errors(t *testing.T) {
	w := []float64{1}
	tests := []struct {
		name    string
		records []CaseRecord
		w, f    []float64
		errMsg  string
	}{
		{"no cases", nil, w, w, "no cases"},
		{"empty pmf", []CaseRecord{{ID: "a"}}, nil, w, "generation time distribution is empty"},
		{"negative mass", []CaseRecord{{ID: "a"}}, w, []float64{-1}, "invalid mass"},
		{"duplicate ids", []CaseRecord{{ID: "a"}, {ID: "a"}}, w, w, "duplicate id"},
		{"partial sequences", []CaseRecord{{ID: "a", Sequence: "AC"}, {ID: "b"}}, w, w, "sequences given for 1 of 2"},
		{"ragged sequences", []CaseRecord{{ID: "a", Sequence: "AC"}, {ID: "b", Sequence: "A"}}, w, w, "sequence length 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewData(tt.records, tt.w, tt.f)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadCases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.yaml")
	content := `cases:
  - id: a
    date: 3
    sequence: ACGT
  - id: b
    date: 5
    sequence: ACGA
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := LoadCases(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, CaseRecord{ID: "b", Date: 5, Sequence: "ACGA"}, records[1])
}

func TestLoadCases_UnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cases:\n  - id: a\n    dat: 3\n"), 0o644))

	_, err := LoadCases(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse case file")
}

func TestLoadCases_Missing(t *testing.T) {
	_, err := LoadCases(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read case file")
}

func TestLoadData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.yaml")
	content := "cases:\n  - id: a\n    date: 3\n  - id: a\n    date: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadData(path, []float64{1}, []float64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")

	content = "cases:\n  - id: a\n    date: 3\n  - id: b\n    date: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	d, err := LoadData(path, []float64{1}, []float64{0.2, 0.8})
	require.NoError(t, err)
	assert.Equal(t, 2, d.NumCases())
	assert.Equal(t, 2, d.IncubationMode)
}

func TestDiscretize(t *testing.T) {
	p, err := Discretize(2, 0.5, 20)
	require.NoError(t, err)
	require.Len(t, p, 20)

	sum := 0.0
	for _, v := range p {
		require.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	// gamma(2, 0.5) has mode 2; the (1,2] and (2,3] bins dominate.
	mode := Mode(p)
	assert.True(t, mode == 2 || mode == 3, "mode=%d", mode)
}

func TestDiscretize_Errors(t *testing.T) {
	_, err := Discretize(0, 1, 5)
	assert.Error(t, err)
	_, err = Discretize(1, 1, 0)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	p, err := Normalize([]float64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, p)

	_, err = Normalize([]float64{0, 0})
	assert.Error(t, err)
}

func TestMode(t *testing.T) {
	assert.Equal(t, 2, Mode([]float64{0.2, 0.5, 0.3}))
	assert.Equal(t, 1, Mode([]float64{0.5, 0.5}))
	assert.Equal(t, 0, Mode(nil))
}
