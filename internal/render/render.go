// Package render turns reports into standalone HTML pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"intentional/internal/types"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown converts markdown to HTML. Raw HTML in the source is dropped.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

type dimensionView struct {
	Title string
	types.DimensionAnalysis
}

type phaseView struct {
	Name  string
	Steps []types.ImplementationStep
}

type reportView struct {
	Report          *types.OverallReport
	Dimensions      []dimensionView
	Phases          []phaseView
	Recommendations template.HTML
}

// ReportHTML renders a full report page.
func ReportHTML(r *types.OverallReport) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("render: nil report")
	}
	recs, err := Markdown(r.Recommendations)
	if err != nil {
		return nil, err
	}
	view := reportView{Report: r, Recommendations: recs}
	set := r.Dimensions()
	for _, d := range types.Dimensions {
		view.Dimensions = append(view.Dimensions, dimensionView{Title: d.Title(), DimensionAnalysis: set.Get(d)})
	}
	names := make([]string, 0, len(r.ImplementationPlan.Phases))
	for name := range r.ImplementationPlan.Phases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		view.Phases = append(view.Phases, phaseView{Name: name, Steps: r.ImplementationPlan.Phases[name]})
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"score": func(f float64) string { return fmt.Sprintf("%.1f", f) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>DEEP Free Model Analysis</title>
</head>
<body>
<h1>DEEP Free Model Analysis</h1>
<p class="overall">Overall score: <strong>{{score .Report.Score}}</strong> / 10</p>
<h2>Recommended model: {{.Report.RecommendedModel}}</h2>
<p>{{.Report.ModelExplanation}}</p>
<h2>Key findings</h2>
<ul>
{{- range .Report.KeyFindings}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- range .Dimensions}}
<section class="dimension">
<h3>{{.Title}}: {{score .Score}}</h3>
<p>{{.Analysis}}</p>
{{- if .Strengths}}<h4>Strengths</h4><ul>{{range .Strengths}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{- if .Weaknesses}}<h4>Weaknesses</h4><ul>{{range .Weaknesses}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{- if .Opportunities}}<h4>Opportunities</h4><ul>{{range .Opportunities}}<li>{{.}}</li>{{end}}</ul>{{end}}
</section>
{{- end}}
<h2>Implementation plan</h2>
<p>{{.Report.ImplementationPlan.Timeline}}</p>
{{- range .Phases}}
<h3>{{.Name}}</h3>
<ol>
{{- range .Steps}}
<li><strong>{{.Title}}</strong> ({{.Priority}} priority, {{.EstimatedEffort}} effort, {{.ExpectedImpact}} impact): {{.Description}}</li>
{{- end}}
</ol>
{{- end}}
<h2>Recommendations</h2>
<div class="recommendations">
{{.Recommendations}}
</div>
</body>
</html>
`))
