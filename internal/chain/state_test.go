package chain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCase_Index(t *testing.T) {
	assert.Equal(t, 0, Case(1).Index())
	assert.Equal(t, 4, Case(5).Index())
	assert.Equal(t, -1, None.Index())
	assert.Equal(t, Case(3), CaseAt(2))
}

func TestCase_String(t *testing.T) {
	assert.Equal(t, "-", None.String())
	assert.Equal(t, "7", Case(7).String())
	assert.True(t, None.IsNone())
	assert.False(t, Case(1).IsNone())
}

func TestState_CloneIsIndependent(t *testing.T) {
	s := State{Mu: 0.1, TInf: []int{0, 1, 2}, Alpha: []Case{None, 1, 2}}
	c := s.Clone()

	c.TInf[0] = 99
	c.Alpha[2] = 1
	c.Mu = 0.5

	assert.Equal(t, []int{0, 1, 2}, s.TInf)
	assert.Equal(t, []Case{None, 1, 2}, s.Alpha)
	assert.Equal(t, 0.1, s.Mu)
}

func TestState_CloneNil(t *testing.T) {
	c := State{Mu: 1}.Clone()
	assert.Nil(t, c.TInf)
	assert.Nil(t, c.Alpha)
}

func TestState_Accessors(t *testing.T) {
	s := State{TInf: []int{3, 5}, Alpha: []Case{None, 1}}
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 5, s.InfectionTime(2))
	assert.Equal(t, Case(1), s.Infector(2))
	assert.Equal(t, None, s.Infector(1))
}

func TestEqual(t *testing.T) {
	a := State{Mu: 0.25, TInf: []int{0, 1}, Alpha: []Case{None, 1}}
	assert.True(t, Equal(a, a.Clone()))

	b := a.Clone()
	b.TInf[1] = 2
	assert.False(t, Equal(a, b))

	c := a.Clone()
	c.Alpha[1] = None
	assert.False(t, Equal(a, c))

	d := a.Clone()
	d.Mu = 0.2500000001
	assert.False(t, Equal(a, d))

	assert.False(t, Equal(a, State{Mu: 0.25, TInf: []int{0}, Alpha: []Case{None}}))
}

func TestState_Validate(t *testing.T) {
	tests := []struct {
		name  string
		state State
		n     int
		code  StructuralErrorCode
	}{
		{"t_inf too short", State{TInf: []int{0}, Alpha: []Case{None, 1}}, 2, ErrCodeLengthMismatch},
		{"alpha too long", State{TInf: []int{0, 1}, Alpha: []Case{None, 1, 1}}, 2, ErrCodeLengthMismatch},
		{"infector above n", State{TInf: []int{0, 1}, Alpha: []Case{None, 3}}, 2, ErrCodeCaseOutOfRange},
		{"negative infector", State{TInf: []int{0, 1}, Alpha: []Case{None, -1}}, 2, ErrCodeCaseOutOfRange},
		{"self infection", State{TInf: []int{0, 1}, Alpha: []Case{None, 2}}, 2, ErrCodeSelfInfection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate(tt.n)
			require.Error(t, err)
			assert.True(t, IsStructural(err))
			assert.True(t, HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestState_ValidateAcceptsOrderViolation(t *testing.T) {
	// Infector later than infectee is a scoring problem, not a structural one.
	s := State{TInf: []int{5, 1}, Alpha: []Case{None, 1}}
	require.NoError(t, s.Validate(2))
	assert.Equal(t, []Case{2}, s.OrderViolations())
}

func TestState_ValidateEmpty(t *testing.T) {
	require.NoError(t, State{TInf: []int{}, Alpha: []Case{}}.Validate(0))
}

func TestState_OrderViolations(t *testing.T) {
	s := State{TInf: []int{0, 1, 1, 3}, Alpha: []Case{None, 1, 2, 3}}
	// case 3 shares its infector's time.
	assert.Equal(t, []Case{3}, s.OrderViolations())

	ok := State{TInf: []int{0, 1, 2}, Alpha: []Case{None, 1, 1}}
	assert.Empty(t, ok.OrderViolations())
}

func TestStructuralError_Error(t *testing.T) {
	err := NewSelfInfectionError(4)
	assert.Equal(t, "SELF_INFECTION: case is its own infector (case=4)", err.Error())

	err2 := NewLengthError("t_inf", 1, 2)
	assert.Equal(t, "LENGTH_MISMATCH: t_inf has length 1, want 2", err2.Error())

	wrapped := fmt.Errorf("move t_inf: %w", NewScaleError("sd_mu", -1))
	assert.True(t, HasCode(wrapped, ErrCodeNegativeScale))
	assert.False(t, HasCode(wrapped, ErrCodeSelfInfection))
	assert.False(t, IsStructural(fmt.Errorf("plain")))
}
