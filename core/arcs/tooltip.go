package arcs

import (
	"fmt"

	"github.com/jrazmi/taskclock/core/clockface"
)

// Side is where the tooltip sits relative to the face center.
type Side string

const (
	Below   Side = "below"
	LeftOf  Side = "left"
	Above   Side = "above"
	RightOf Side = "right"
)

// Tooltip dimensions on a DefaultSize face. Smaller faces shrink them with
// the arc radius so the box stays inside the ring of arcs.
const (
	TooltipWidth  = 180.0
	TooltipHeight = 60.0
	tooltipGap    = 12.0
	titleFont     = 14.0
	subtitleFont  = 12.0
)

// Tooltip is the hover box for one arc.
type Tooltip struct {
	Side     Side
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Title    string
	Subtitle string
	Scale    float64
}

// TooltipScale is 1 on faces of DefaultSize and up, and follows the arc
// radius below that.
func TooltipScale(face clockface.Face) float64 {
	full := clockface.NewFace(clockface.DefaultSize).ArcRadius
	return min(1, face.ArcRadius/full)
}

// SideFor picks the side opposite the arc: an arc in the top quadrant gets
// its tooltip below the center, a right arc gets it on the left, and so on.
func SideFor(angle float64) Side {
	switch {
	case angle >= 315 || angle < 45:
		return Below
	case angle < 135:
		return LeftOf
	case angle < 225:
		return Above
	default:
		return RightOf
	}
}

// TooltipFor places the tooltip of a near the face center, on the side away
// from the arc.
func TooltipFor(face clockface.Face, a Arc) Tooltip {
	side := SideFor(a.MidAngle())
	cx, cy := face.Center.X, face.Center.Y
	k := TooltipScale(face)
	w, h, gap := TooltipWidth*k, TooltipHeight*k, tooltipGap*k

	t := Tooltip{
		Side:     side,
		Width:    w,
		Height:   h,
		Title:    a.Task.Text,
		Subtitle: fmt.Sprintf("%s - %s", a.Task.StartTime.Format("03:04 PM"), a.Task.EndTime.Format("03:04 PM")),
		Scale:    k,
	}

	switch side {
	case Below:
		t.X, t.Y = cx-w/2, cy+gap
	case Above:
		t.X, t.Y = cx-w/2, cy-gap-h
	case LeftOf:
		t.X, t.Y = cx-gap-w, cy-h/2
	case RightOf:
		t.X, t.Y = cx+gap, cy-h/2
	}
	return t
}

// TitleAt is the anchor of the first text line.
func (t Tooltip) TitleAt() clockface.Point {
	return clockface.Point{X: t.X + t.Width/2, Y: t.Y + 20*t.Scale}
}

// SubtitleAt is the anchor of the time range line.
func (t Tooltip) SubtitleAt() clockface.Point {
	return clockface.Point{X: t.X + t.Width/2, Y: t.Y + 50*t.Scale}
}

func (t Tooltip) TitleFont() float64 {
	return titleFont * t.Scale
}

func (t Tooltip) SubtitleFont() float64 {
	return subtitleFont * t.Scale
}
