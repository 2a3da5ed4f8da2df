// Package clockface maps wall clock times onto a 24 hour dial: one full
// revolution per day, 0° at the top, angles growing clockwise.
package clockface

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const (
	// DefaultSize is the rendered face size in pixels.
	DefaultSize = 600.0

	// Sectors is the number of hour sectors around the dial.
	Sectors = 24

	// SectorDegrees is the angular width of one hour.
	SectorDegrees = 360.0 / Sectors
)

// AngleForTime returns ((hours + minutes/60) / 24) * 360, always in [0, 360).
func AngleForTime(t TimeOfDay) float64 {
	return (float64(t.Hour) + float64(t.Minute)/60) / 24 * 360
}

// AngleForClock is AngleForTime for a timestamp in its own location.
// Seconds are ignored.
func AngleForClock(t time.Time) float64 {
	return AngleForTime(FromTime(t))
}

// Point is a position in SVG user space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Face is the layout of one rendered dial.
type Face struct {
	Size        float64
	Center      Point
	FaceRadius  float64
	ArcRadius   float64
	LabelRadius float64
}

// NewFace lays out a dial of size pixels. Non positive sizes use DefaultSize.
func NewFace(size float64) Face {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		size = DefaultSize
	}
	half := size / 2
	return Face{
		Size:        size,
		Center:      Point{X: half, Y: half},
		FaceRadius:  half - 30,
		ArcRadius:   half - 20,
		LabelRadius: half + 5,
	}
}

// PointForAngle converts a dial angle and radius into coordinates around the
// face center.
func (f Face) PointForAngle(angle, radius float64) Point {
	rad := (angle - 90) * math.Pi / 180
	return Point{
		X: f.Center.X + radius*math.Cos(rad),
		Y: f.Center.Y + radius*math.Sin(rad),
	}
}

// ViewBox leaves room below the dial for the bottom label.
func (f Face) ViewBox() string {
	return fmt.Sprintf("0 0 %s %s", Num(f.Size), Num(f.Size+25))
}

// HourMark is one of the 24 labelled sectors.
type HourMark struct {
	Index    int
	Angle    float64
	Label    string
	LabelAt  Point
	GuideEnd Point
	Main     bool
}

// HourMarks returns the 24 sector marks, midnight first.
func (f Face) HourMarks() []HourMark {
	marks := make([]HourMark, 0, Sectors)
	for i := range Sectors {
		angle := float64(i) * SectorDegrees
		at := f.PointForAngle(angle, f.LabelRadius)
		if i == 0 {
			at.Y += 15
		}
		marks = append(marks, HourMark{
			Index:    i,
			Angle:    angle,
			Label:    HourLabel(i),
			LabelAt:  at,
			GuideEnd: f.PointForAngle(angle, f.FaceRadius),
			Main:     i == 0 || i == 12,
		})
	}
	return marks
}

// HourLabel formats a 24 hour index as "12AM", "1AM" ... "11PM".
func HourLabel(i int) string {
	hour := i
	switch {
	case i == 0:
		hour = 12
	case i > 12:
		hour = i - 12
	}
	suffix := "PM"
	if i < 12 {
		suffix = "AM"
	}
	return fmt.Sprintf("%d%s", hour, suffix)
}

// Num formats a coordinate with at most two decimals.
func Num(f float64) string {
	r := math.Round(f*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
