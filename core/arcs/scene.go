package arcs

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/jrazmi/taskclock/core/clockface"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
)

// View is the interaction state a scene is rendered with.
type View struct {
	HoveredID int64
	PressedID int64
	Progress  float64
}

// SceneArc is an arc with its presentation resolved.
type SceneArc struct {
	Arc
	D           string
	Fill        string
	Stroke      string
	StrokeWidth float64
	Hovered     bool
}

// Scene is everything one SVG render needs.
type Scene struct {
	Face     clockface.Face
	Variant  Variant
	Marks    []clockface.HourMark
	Arcs     []SceneArc
	Hand     Line
	Progress string
	Tooltip  *Tooltip
}

// NewScene lays out tasks for one render at now.
func NewScene(face clockface.Face, variant Variant, tasks []tasksrepo.Task, now time.Time, view View) Scene {
	s := Scene{
		Face:    face,
		Variant: variant,
		Marks:   face.HourMarks(),
		Arcs:    make([]SceneArc, 0, len(tasks)),
		Hand:    Hand(face, now),
	}

	for _, task := range tasks {
		a := ArcFor(face, task)
		hovered := task.ID == view.HoveredID && view.HoveredID != 0

		width := StrokeWidth
		if hovered {
			width = HoveredStrokeWidth
		}

		sa := SceneArc{Arc: a, Hovered: hovered, Stroke: task.Color}
		switch variant {
		case Wedge:
			sa.D = WedgePath(face, a, width)
			sa.Fill = task.Color
			sa.StrokeWidth = 1
		default:
			sa.D = a.Path
			sa.Fill = "none"
			sa.StrokeWidth = width
		}
		s.Arcs = append(s.Arcs, sa)

		if hovered {
			tip := TooltipFor(face, a)
			s.Tooltip = &tip
		}
		if task.ID == view.PressedID && view.PressedID != 0 {
			s.Progress = ProgressPath(face, a, face.ArcRadius+9, view.Progress)
		}
	}

	return s
}

var funcs = template.FuncMap{
	"num":    clockface.Num,
	"height": func(f clockface.Face) float64 { return f.Size + 25 },
	"mul":    func(a, b float64) float64 { return a * b },
}

var sceneTemplate = template.Must(template.New("clock").Funcs(funcs).Parse(`<svg xmlns="http://www.w3.org/2000/svg" class="taskclock" data-variant="{{.Variant}}" width="{{num .Face.Size}}" height="{{num (height .Face)}}" viewBox="{{.Face.ViewBox}}">
<circle cx="{{num .Face.Center.X}}" cy="{{num .Face.Center.Y}}" r="{{num .Face.FaceRadius}}" fill="#1a1a1a" stroke="#646464" stroke-width="2" stroke-linejoin="round"/>
{{- range .Marks}}
<g class="hour">
<line x1="{{num $.Face.Center.X}}" y1="{{num $.Face.Center.Y}}" x2="{{num .GuideEnd.X}}" y2="{{num .GuideEnd.Y}}" stroke="#888888" stroke-width="0.05" stroke-dasharray="5"/>
<text x="{{num .LabelAt.X}}" y="{{num .LabelAt.Y}}" text-anchor="middle" dominant-baseline="middle"{{if .Main}} fill="#ffffff" font-size="14"{{else}} fill="#888888" font-size="10"{{end}}>{{.Label}}</text>
</g>
{{- end}}
{{- range .Arcs}}
<path class="arc{{if .Hovered}} hovered{{end}}" data-task-id="{{.Task.ID}}" d="{{.D}}" fill="{{.Fill}}" stroke="{{.Stroke}}" stroke-width="{{num .StrokeWidth}}" cursor="{{if .Hovered}}pointer{{else}}default{{end}}"><title>{{.Task.Text}}</title></path>
{{- end}}
{{- with .Progress}}
<path class="hold-progress" d="{{.}}" fill="none" stroke="#ffffff" stroke-width="3" stroke-linecap="round"/>
{{- end}}
<line class="hand" x1="{{num .Hand.From.X}}" y1="{{num .Hand.From.Y}}" x2="{{num .Hand.To.X}}" y2="{{num .Hand.To.Y}}" stroke="teal" stroke-width="0.5"/>
<circle cx="{{num .Face.Center.X}}" cy="{{num .Face.Center.Y}}" r="0.25" fill="white"/>
{{- with .Tooltip}}
<g class="tooltip" data-side="{{.Side}}">
<rect x="{{num .X}}" y="{{num .Y}}" width="{{num .Width}}" height="{{num .Height}}" fill="#222" stroke="#888" rx="{{num (mul 8.0 .Scale)}}" ry="{{num (mul 8.0 .Scale)}}"/>
<text x="{{num .TitleAt.X}}" y="{{num .TitleAt.Y}}" text-anchor="middle" dominant-baseline="middle" fill="#fff" font-size="{{num .TitleFont}}">{{.Title}}</text>
<text x="{{num .SubtitleAt.X}}" y="{{num .SubtitleAt.Y}}" text-anchor="middle" dominant-baseline="middle" fill="#ccc" font-size="{{num .SubtitleFont}}">{{.Subtitle}}</text>
</g>
{{- end}}
</svg>
`))

// Render writes the scene as a standalone SVG document.
func Render(w io.Writer, s Scene) error {
	if err := sceneTemplate.Execute(w, s); err != nil {
		return fmt.Errorf("render clock: %w", err)
	}
	return nil
}
