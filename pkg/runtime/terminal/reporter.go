package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
)

const reportTemplate = `{{.Title}}{{if .Subtitle}} - {{.Subtitle}}{{end}}
{{if .Period.Weeks}}Period: {{.Period.Start.Format "2006-01-02"}} to {{.Period.End.Format "2006-01-02"}} ({{.Period.Weeks}} weeks)
{{else}}Period: no dated rows
{{end}}{{range .Sections}}
=== {{.Title}} ===
{{if .Sentence}}{{.Sentence}}
{{end}}{{range $key, $value := .Summary}}{{$key}}: {{$value}}
{{end}}{{range .Details}}- {{.Name}}: {{value .Value}}{{.Unit}}{{if .Description}} ({{.Description}}){{end}}
{{end}}{{end}}`

// Reporter outputs reports to the console in a formatted text form
type Reporter struct {
	writer io.Writer
	tmpl   *template.Template
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	tmpl := template.Must(template.New("report").Funcs(template.FuncMap{
		"value": formatValue,
	}).Parse(reportTemplate))
	return &Reporter{writer: writer, tmpl: tmpl}
}

func (c *Reporter) Handle(report *domain.Report) error {
	if err := c.tmpl.Execute(c.writer, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func formatValue(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%.1f", n)
	case nil:
		return "-"
	default:
		return fmt.Sprint(n)
	}
}
