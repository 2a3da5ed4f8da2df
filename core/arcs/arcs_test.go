package arcs

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/taskclock/core/clockface"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
)

func task(id int64, text, start, end, color string) tasksrepo.Task {
	return tasksrepo.Task{
		ID:        id,
		Text:      text,
		StartTime: clockface.MustTimeOfDay(start),
		EndTime:   clockface.MustTimeOfDay(end),
		Color:     color,
	}
}

func TestLargeArcFlag(t *testing.T) {
	tests := []struct {
		start, end float64
		want       int
	}{
		{0, 90, 0},
		{0, 270, 1},
		{0, 180, 0},
		{0, 180.25, 1},
		{270, 90, 0},
		{300, 30, 0},
		{30, 300, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LargeArcFlag(tt.start, tt.end), "%v -> %v", tt.start, tt.end)
	}
}

func TestArcFor(t *testing.T) {
	face := clockface.NewFace(600)
	a := ArcFor(face, task(1, "Write report", "09:00", "10:30", "#ff0000"))

	assert.Equal(t, 135.0, a.StartAngle)
	assert.Equal(t, 157.5, a.EndAngle)
	assert.Equal(t, 280.0, a.Radius)
	assert.Equal(t, 0, a.LargeArc)
	assert.InDelta(t, 497.99, a.Start.X, 0.01)
	assert.InDelta(t, 497.99, a.Start.Y, 0.01)
	assert.InDelta(t, 407.15, a.End.X, 0.01)
	assert.InDelta(t, 558.69, a.End.Y, 0.01)
	assert.Equal(t, "M 497.99 497.99 A 280 280 0 0 1 407.15 558.69", a.Path)
}

func TestArcFor_MajorArc(t *testing.T) {
	face := clockface.NewFace(600)
	a := ArcFor(face, task(1, "Long day", "00:00", "18:00", "#ff0000"))
	assert.Equal(t, 1, a.LargeArc)
	assert.Equal(t, "M 300 20 A 280 280 0 1 1 20 300", a.Path)
	assert.Equal(t, 135.0, a.MidAngle())
}

func TestWedgePath(t *testing.T) {
	face := clockface.NewFace(600)
	a := ArcFor(face, task(1, "Sleep", "00:00", "06:00", "#0000ff"))

	d := WedgePath(face, a, 10)
	assert.True(t, strings.HasPrefix(d, "M 300 15 A 285 285 0 0 1 585 300 L 575 300 A 275 275 0 0 0 300 25"), d)
	assert.True(t, strings.HasSuffix(d, " Z"))
}

func TestProgressPath(t *testing.T) {
	face := clockface.NewFace(600)
	a := ArcFor(face, task(1, "Sleep", "00:00", "06:00", "#0000ff"))

	assert.Empty(t, ProgressPath(face, a, a.Radius, 0))
	assert.Equal(t, a.Path, ProgressPath(face, a, a.Radius, 1))
	assert.Equal(t, a.Path, ProgressPath(face, a, a.Radius, 3))

	half := ProgressPath(face, a, 100, 0.5)
	assert.Equal(t, "M 300 200 A 100 100 0 0 1 370.71 229.29", half)
}

func TestHand(t *testing.T) {
	face := clockface.NewFace(600)
	h := Hand(face, time.Date(2026, 10, 18, 6, 0, 59, 0, time.UTC))
	assert.Equal(t, face.Center, h.From)
	assert.InDelta(t, 570, h.To.X, 1e-9)
	assert.InDelta(t, 300, h.To.Y, 1e-9)
}

func TestSideFor(t *testing.T) {
	assert.Equal(t, Below, SideFor(0))
	assert.Equal(t, Below, SideFor(44.9))
	assert.Equal(t, Below, SideFor(350))
	assert.Equal(t, LeftOf, SideFor(45))
	assert.Equal(t, LeftOf, SideFor(90))
	assert.Equal(t, Above, SideFor(180))
	assert.Equal(t, RightOf, SideFor(270))
}

func TestTooltipFor_AvoidsArc(t *testing.T) {
	face := clockface.NewFace(600)

	tests := []struct {
		start, end string
		side       Side
	}{
		{"23:00", "01:00", Below},
		{"05:00", "07:00", LeftOf},
		{"11:00", "13:00", Above},
		{"17:00", "19:00", RightOf},
	}
	for _, tt := range tests {
		a := ArcFor(face, task(1, "x", tt.start, tt.end, "#000000"))
		tip := TooltipFor(face, a)
		assert.Equal(t, tt.side, tip.Side, tt.start)

		// the box never crosses to the arc's side of the center
		switch tt.side {
		case Below:
			assert.Greater(t, tip.Y, face.Center.Y)
		case Above:
			assert.Less(t, tip.Y+tip.Height, face.Center.Y)
		case LeftOf:
			assert.Less(t, tip.X+tip.Width, face.Center.X)
		case RightOf:
			assert.Greater(t, tip.X, face.Center.X)
		}
	}

	tip := TooltipFor(face, ArcFor(face, task(1, "Write report", "09:00", "10:30", "#ff0000")))
	assert.Equal(t, "Write report", tip.Title)
	assert.Equal(t, "09:00 AM - 10:30 AM", tip.Subtitle)
}

func TestTooltipFor_InsideArcRingAtAnySize(t *testing.T) {
	for _, size := range []float64{100, 150, 300, 600, 1200} {
		face := clockface.NewFace(size)
		inner := face.ArcRadius - HoveredStrokeWidth/2

		for _, span := range [][2]string{{"23:00", "01:00"}, {"05:00", "07:00"}, {"11:00", "13:00"}, {"17:00", "19:00"}} {
			tip := TooltipFor(face, ArcFor(face, task(1, "x", span[0], span[1], "#000000")))

			for _, c := range []clockface.Point{
				{X: tip.X, Y: tip.Y},
				{X: tip.X + tip.Width, Y: tip.Y},
				{X: tip.X, Y: tip.Y + tip.Height},
				{X: tip.X + tip.Width, Y: tip.Y + tip.Height},
			} {
				d := math.Hypot(c.X-face.Center.X, c.Y-face.Center.Y)
				assert.Less(t, d, inner, "size %v span %v", size, span)
			}
		}
	}

	assert.Equal(t, 1.0, TooltipScale(clockface.NewFace(1200)))
	assert.Equal(t, TooltipWidth, TooltipFor(clockface.NewFace(600), ArcFor(clockface.NewFace(600), task(1, "x", "09:00", "10:00", "#000000"))).Width)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, Stroke, v)

	v, err = ParseVariant("Wedge")
	require.NoError(t, err)
	assert.Equal(t, Wedge, v)

	_, err = ParseVariant("pie")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	face := clockface.NewFace(600)
	tasks := []tasksrepo.Task{
		task(1, "Write report", "09:00", "10:30", "#ff0000"),
		task(2, "<b>Gym</b>", "18:00", "19:00", "#00ff00"),
	}
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	scene := NewScene(face, Stroke, tasks, now, View{HoveredID: 1, PressedID: 1, Progress: 0.5})

	require.Len(t, scene.Arcs, 2)
	assert.Equal(t, HoveredStrokeWidth, scene.Arcs[0].StrokeWidth)
	assert.Equal(t, StrokeWidth, scene.Arcs[1].StrokeWidth)
	require.NotNil(t, scene.Tooltip)
	assert.NotEmpty(t, scene.Progress)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, scene))
	svg := buf.String()

	assert.Contains(t, svg, `viewBox="0 0 600 625"`)
	assert.Equal(t, 24, strings.Count(svg, `class="hour"`))
	assert.Contains(t, svg, ">12AM<")
	assert.Contains(t, svg, ">11PM<")
	assert.Contains(t, svg, `class="arc hovered" data-task-id="1"`)
	assert.Contains(t, svg, `d="M 497.99 497.99 A 280 280 0 0 1 407.15 558.69"`)
	assert.Contains(t, svg, `class="arc" data-task-id="2"`)
	assert.Contains(t, svg, `class="hold-progress"`)
	assert.Contains(t, svg, `class="hand"`)
	assert.Contains(t, svg, `stroke="teal"`)
	assert.Contains(t, svg, `data-side="above"`)
	assert.Contains(t, svg, "09:00 AM - 10:30 AM")
	assert.NotContains(t, svg, "<b>Gym</b>")
	assert.Contains(t, svg, "&lt;b&gt;Gym&lt;/b&gt;")
}

func TestRender_WedgeNoInteraction(t *testing.T) {
	face := clockface.NewFace(400)
	scene := NewScene(face, Wedge, []tasksrepo.Task{task(3, "Nap", "13:00", "14:00", "#abcdef")}, time.Now(), View{})
	assert.Nil(t, scene.Tooltip)
	assert.Empty(t, scene.Progress)
	assert.True(t, strings.HasSuffix(scene.Arcs[0].D, "Z"))
	assert.Equal(t, "#abcdef", scene.Arcs[0].Fill)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, scene))
	assert.Contains(t, buf.String(), `data-variant="wedge"`)
	assert.NotContains(t, buf.String(), `class="tooltip"`)
	assert.NotContains(t, buf.String(), `class="hold-progress"`)
}
