package clockface

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAngleForTime(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"00:00", 0},
		{"06:00", 90},
		{"09:00", 135},
		{"10:30", 157.5},
		{"12:00", 180},
		{"18:00", 270},
		{"23:59", 359.75},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, AngleForTime(MustTimeOfDay(tt.in)), 1e-9)
		})
	}
}

func TestAngleForTime_RangeAndMonotonic(t *testing.T) {
	prev := -1.0
	for m := 0; m < 24*60; m++ {
		a := AngleForTime(TimeOfDay{Hour: m / 60, Minute: m % 60})
		require.GreaterOrEqual(t, a, 0.0)
		require.Less(t, a, 360.0)
		require.Greater(t, a, prev)
		prev = a
	}
}

func TestAngleForClock_IgnoresSeconds(t *testing.T) {
	a := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := a.Add(59 * time.Second)
	assert.Equal(t, AngleForClock(a), AngleForClock(b))
	assert.InDelta(t, 135, AngleForClock(a), 1e-9)
}

func TestPointForAngle_OnCircle(t *testing.T) {
	f := NewFace(DefaultSize)
	for a := 0.0; a < 360; a += 7.5 {
		for _, r := range []float64{f.FaceRadius, f.ArcRadius, 17} {
			p := f.PointForAngle(a, r)
			dx, dy := p.X-f.Center.X, p.Y-f.Center.Y
			assert.InDelta(t, r*r, dx*dx+dy*dy, 1e-6)
		}
	}
}

func TestPointForAngle_Orientation(t *testing.T) {
	f := NewFace(600)

	top := f.PointForAngle(0, 100)
	assert.InDelta(t, 300, top.X, 1e-9)
	assert.InDelta(t, 200, top.Y, 1e-9)

	right := f.PointForAngle(90, 100)
	assert.InDelta(t, 400, right.X, 1e-9)
	assert.InDelta(t, 300, right.Y, 1e-9)
}

func TestNewFace(t *testing.T) {
	f := NewFace(600)
	assert.Equal(t, Point{X: 300, Y: 300}, f.Center)
	assert.Equal(t, 270.0, f.FaceRadius)
	assert.Equal(t, 280.0, f.ArcRadius)
	assert.Equal(t, 305.0, f.LabelRadius)
	assert.Equal(t, "0 0 600 625", f.ViewBox())

	assert.Equal(t, DefaultSize, NewFace(0).Size)
	assert.Equal(t, DefaultSize, NewFace(math.NaN()).Size)
}

func TestHourMarks(t *testing.T) {
	f := NewFace(600)
	marks := f.HourMarks()
	require.Len(t, marks, 24)

	assert.Equal(t, "12AM", marks[0].Label)
	assert.True(t, marks[0].Main)
	assert.InDelta(t, 300-305+15, marks[0].LabelAt.Y, 1e-9)

	assert.Equal(t, "1AM", marks[1].Label)
	assert.False(t, marks[1].Main)
	assert.Equal(t, "11AM", marks[11].Label)
	assert.Equal(t, "12PM", marks[12].Label)
	assert.True(t, marks[12].Main)
	assert.Equal(t, "1PM", marks[13].Label)
	assert.Equal(t, "11PM", marks[23].Label)

	assert.Equal(t, 90.0, marks[6].Angle)
	assert.InDelta(t, 570, marks[6].GuideEnd.X, 1e-9)
}

func TestNum(t *testing.T) {
	assert.Equal(t, "300", Num(300))
	assert.Equal(t, "12.35", Num(12.345678))
	assert.Equal(t, "0", Num(-0.0000001))
	assert.Equal(t, "1200000", Num(1.2e6))
}
