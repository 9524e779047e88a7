package smoothing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEMA_FirstUpdateInitializes(t *testing.T) {
	e := NewEMA(DefaultAlpha)
	assert.False(t, e.Initialized())

	yaw, pitch, roll := e.Update(12, -4, 3)

	assert.True(t, e.Initialized())
	assert.Equal(t, 12.0, yaw)
	assert.Equal(t, -4.0, pitch)
	assert.Equal(t, 3.0, roll)
}

func TestEMA_SingleStepWeights(t *testing.T) {
	e := NewEMA(DefaultAlpha)
	e.Update(10, 20, 30)

	yaw, pitch, roll := e.Update(40, -10, 0)

	assert.InDelta(t, 0.3*40+0.7*10, yaw, 1e-9)
	assert.InDelta(t, 0.3*-10+0.7*20, pitch, 1e-9)
	assert.InDelta(t, 0.3*0+0.7*30, roll, 1e-9)
}

func TestEMA_ConvergesMonotonically(t *testing.T) {
	e := NewEMA(DefaultAlpha)
	e.Update(0, 0, 0)

	const target = 25.0
	prevGap := math.Inf(1)
	for i := 0; i < 60; i++ {
		yaw, _, _ := e.Update(target, target, target)
		gap := target - yaw
		assert.GreaterOrEqual(t, gap, 0.0, "estimate overshot at step %d", i)
		assert.Less(t, gap, prevGap, "gap did not shrink at step %d", i)
		prevGap = gap
	}
	assert.InDelta(t, target, target-prevGap, 1e-6)
}

func TestEMA_OrderMatters(t *testing.T) {
	a := NewEMA(DefaultAlpha)
	b := NewEMA(DefaultAlpha)

	a.Update(0, 0, 0)
	a.Update(30, 0, 0)
	ya, _, _ := a.Update(-30, 0, 0)

	b.Update(0, 0, 0)
	b.Update(-30, 0, 0)
	yb, _, _ := b.Update(30, 0, 0)

	assert.NotEqual(t, ya, yb)
}
