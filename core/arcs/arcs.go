// Package arcs turns tasks into SVG arcs on a clockface.Face and renders the
// complete clock scene.
package arcs

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jrazmi/taskclock/core/clockface"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
)

// Variant selects how arcs are drawn. One render uses one variant.
type Variant string

const (
	Stroke Variant = "stroke"
	Wedge  Variant = "wedge"
)

// ParseVariant accepts "", "stroke" or "wedge".
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", Stroke:
		return Stroke, nil
	case Wedge:
		return Wedge, nil
	}
	return "", fmt.Errorf("unknown arc variant %q", s)
}

const (
	StrokeWidth        = 10.0
	HoveredStrokeWidth = 12.0
)

// Span is the clockwise angular distance from start to end, in [0, 360).
func Span(start, end float64) float64 {
	return math.Mod(math.Mod(end-start, 360)+360, 360)
}

// LargeArcFlag is 0 when the clockwise span is at most 180°, else 1.
func LargeArcFlag(start, end float64) int {
	if Span(start, end) <= 180 {
		return 0
	}
	return 1
}

// Arc is the drawable form of one task.
type Arc struct {
	Task       tasksrepo.Task
	StartAngle float64
	EndAngle   float64
	Start      clockface.Point
	End        clockface.Point
	Radius     float64
	LargeArc   int
	Path       string
}

// ArcFor computes the clockwise arc of task at the face's arc radius.
func ArcFor(face clockface.Face, task tasksrepo.Task) Arc {
	startAngle := clockface.AngleForTime(task.StartTime)
	endAngle := clockface.AngleForTime(task.EndTime)
	r := face.ArcRadius

	a := Arc{
		Task:       task,
		StartAngle: startAngle,
		EndAngle:   endAngle,
		Start:      face.PointForAngle(startAngle, r),
		End:        face.PointForAngle(endAngle, r),
		Radius:     r,
		LargeArc:   LargeArcFlag(startAngle, endAngle),
	}
	a.Path = arcPath(a.Start, a.End, r, a.LargeArc)
	return a
}

// MidAngle is the angle halfway along the arc.
func (a Arc) MidAngle() float64 {
	return math.Mod(a.StartAngle+Span(a.StartAngle, a.EndAngle)/2, 360)
}

func arcPath(start, end clockface.Point, r float64, largeArc int) string {
	return fmt.Sprintf("M %s %s A %s %s 0 %d 1 %s %s",
		clockface.Num(start.X), clockface.Num(start.Y),
		clockface.Num(r), clockface.Num(r),
		largeArc,
		clockface.Num(end.X), clockface.Num(end.Y))
}

// WedgePath is the closed band of width thickness centred on the arc: the
// outer edge clockwise, then the inner edge back.
func WedgePath(face clockface.Face, a Arc, thickness float64) string {
	outer := a.Radius + thickness/2
	inner := a.Radius - thickness/2

	oStart := face.PointForAngle(a.StartAngle, outer)
	oEnd := face.PointForAngle(a.EndAngle, outer)
	iStart := face.PointForAngle(a.StartAngle, inner)
	iEnd := face.PointForAngle(a.EndAngle, inner)

	return fmt.Sprintf("M %s %s A %s %s 0 %d 1 %s %s L %s %s A %s %s 0 %d 0 %s %s Z",
		clockface.Num(oStart.X), clockface.Num(oStart.Y),
		clockface.Num(outer), clockface.Num(outer), a.LargeArc,
		clockface.Num(oEnd.X), clockface.Num(oEnd.Y),
		clockface.Num(iEnd.X), clockface.Num(iEnd.Y),
		clockface.Num(inner), clockface.Num(inner), a.LargeArc,
		clockface.Num(iStart.X), clockface.Num(iStart.Y))
}

// ProgressPath follows the arc from its start for the given fraction (0..1)
// at radius r. It is empty for a zero fraction.
func ProgressPath(face clockface.Face, a Arc, r, fraction float64) string {
	fraction = min(max(fraction, 0), 1)
	if fraction == 0 {
		return ""
	}

	span := Span(a.StartAngle, a.EndAngle) * fraction
	end := a.StartAngle + span
	return arcPath(face.PointForAngle(a.StartAngle, r), face.PointForAngle(end, r), r, LargeArcFlag(a.StartAngle, end))
}

// Line is a straight segment.
type Line struct {
	From clockface.Point
	To   clockface.Point
}

// Hand is the current time indicator from the center to the face edge.
func Hand(face clockface.Face, now time.Time) Line {
	return Line{
		From: face.Center,
		To:   face.PointForAngle(clockface.AngleForClock(now), face.FaceRadius),
	}
}
