package uitest

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// Report collects results and screen snapshots of one run
type Report struct {
	Title     string
	Timestamp string
	Tests     []TestResult
	Snapshots []Snapshot
	OutputDir string
}

// TestResult is one named check
type TestResult struct {
	Name   string
	Passed bool
}

// Snapshot is a captured screen
type Snapshot struct {
	Label   string
	Content string
}

func NewReport(title, outputDir string) *Report {
	return &Report{
		Title:     title,
		Timestamp: time.Now().Format("20060102-150405"),
		OutputDir: outputDir,
	}
}

func (r *Report) AddResult(name string, passed bool) {
	r.Tests = append(r.Tests, TestResult{Name: name, Passed: passed})
}

func (r *Report) AddSnapshot(label string, content string) {
	r.Snapshots = append(r.Snapshots, Snapshot{Label: label, Content: content})
}

// Passed returns count of passed tests
func (r *Report) Passed() int {
	n := 0
	for _, t := range r.Tests {
		if t.Passed {
			n++
		}
	}
	return n
}

// Failed returns count of failed tests
func (r *Report) Failed() int {
	return len(r.Tests) - r.Passed()
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Timestamp}}</title>
<style>
body { font-family: monospace; max-width: 1100px; margin: 0 auto; padding: 20px; background: #161622; color: #ddd; }
.pass { color: #3ddc84; }
.fail { color: #ff5555; }
pre { background: #0b0b12; padding: 12px; overflow-x: auto; line-height: 1.2; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Timestamp}}: {{.Passed}} passed, {{.Failed}} failed</p>
<ul>
{{range .Tests}}<li class="{{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}✓{{else}}✗{{end}} {{.Name}}</li>
{{end}}</ul>
{{range .Snapshots}}<h3>{{.Label}}</h3>
<pre>{{.Content}}</pre>
{{end}}
</body>
</html>
`))

// Generate writes the HTML report to disk
func (r *Report) Generate() (string, error) {
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := filepath.Join(r.OutputDir, fmt.Sprintf("test-%s.html", r.Timestamp))
	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := reportTmpl.Execute(f, r); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return filename, nil
}
