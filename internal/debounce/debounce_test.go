package debounce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func steps(d *Debouncer, flags ...bool) []bool {
	out := make([]bool, len(flags))
	for i, f := range flags {
		out[i] = d.Step(f)
	}
	return out
}

func TestDebouncer_ThreeTrueConfirmsOnce(t *testing.T) {
	d := New(DefaultWindow)

	got := steps(d, true, true, true)

	assert.Equal(t, []bool{false, false, true}, got)
	assert.Equal(t, 0, d.Len(), "confirmation should clear the window")
	assert.False(t, d.Confirmed())
}

func TestDebouncer_ConfirmsAtFinalElementAfterReset(t *testing.T) {
	d := New(DefaultWindow)
	steps(d, true, true, true)

	got := steps(d, true, true, false, true, true, true)

	assert.Equal(t, []bool{false, false, false, false, false, true}, got)
}

func TestDebouncer_FewerThanWindowNeverConfirms(t *testing.T) {
	d := New(DefaultWindow)

	d.Observe(true)
	assert.False(t, d.Confirmed())
	d.Observe(true)
	assert.False(t, d.Confirmed())
}

func TestDebouncer_FalseShiftsWithoutClearing(t *testing.T) {
	d := New(DefaultWindow)

	for _, f := range []bool{true, false, true, true} {
		d.Observe(f)
	}

	assert.Equal(t, 3, d.Len())
	assert.False(t, d.Confirmed(), "last three are false,true,true")

	d.Observe(true)
	assert.True(t, d.Confirmed())
}

func TestDebouncer_WindowBounded(t *testing.T) {
	d := New(DefaultWindow)
	for i := 0; i < 10; i++ {
		d.Observe(false)
	}
	assert.Equal(t, DefaultWindow, d.Len())
}

func TestDebouncer_Reset(t *testing.T) {
	d := New(DefaultWindow)
	d.Observe(true)
	d.Observe(true)
	d.Reset()
	d.Observe(true)

	assert.False(t, d.Confirmed())
	assert.Equal(t, 1, d.Len())
}

func TestNew_ClampsSize(t *testing.T) {
	d := New(0)
	assert.True(t, d.Step(true))
}
