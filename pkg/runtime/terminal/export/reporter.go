package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/de-tools/fin-health/pkg/services/projector"
	"github.com/de-tools/fin-health/pkg/services/theme"
	"github.com/de-tools/fin-health/pkg/views"
)

type TableConfig struct {
	NameWidth   int
	ValueWidth  int
	IDWidth     int
	DateWidth   int
	StatusWidth int
	BarWidth    int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:   16,
		ValueWidth:  24,
		IDWidth:     6,
		DateWidth:   24,
		StatusWidth: 12,
		BarWidth:    20,
	}
}

const pageTemplate = `
{{.Title}} [{{.State}}] theme: {{.Theme}}
{{range .Tabs}}{{tab .}} {{end}}
{{range .Notices}}! #{{.ID}} {{.Level}}: {{.Message}}
{{end}}{{with .Dashboard}}
=== {{.Heading}} ===
{{with .Upload}}
Files: {{if .Files}}{{join .Files ", "}}{{else}}(none selected){{end}}
Accepted: {{.Accept}}
[ {{.ButtonLabel}} ]{{if .SubmitDisabled}} (disabled){{end}}
{{end}}{{with .Result}}
{{.Fields.Title}}{{if .Fields.CreatedAt}} ({{.Fields.CreatedAt}}){{end}}
{{separator}}
{{formatRow "Revenue" .Fields.Revenue}}
{{formatRow "Expenses" .Fields.Expenses}}
{{formatRow "Net Profit" .Fields.NetProfit}}
{{formatRow "Margin" .Fields.Margin}}
{{formatRow "Health" .Fields.HealthStatus}}
{{separator}}

Cash Flow
{{range .Slices}}  {{bar .}} {{.Label}}
{{end}}
AI Analysis
{{.Fields.Analysis}}

[ {{uploadNew}} ]
{{end}}{{end}}{{with .History}}
=== {{.Heading}} ===
{{.Subtitle}}
{{if .Failed}}(last refresh failed, showing previous results)
{{end}}{{if .Message}}{{.Message}}
{{end}}{{if .Entries}}{{entrySeparator}}
{{formatEntry "ID" "Created" "Health" "Margin"}}
{{entrySeparator}}
{{range .Entries}}{{formatEntry (printf "%d" .ID) .CreatedAt .HealthStatus .Margin}}
{{end}}{{entrySeparator}}
{{end}}{{end}}`

// Reporter renders the page for a coordinator snapshot as plain text. All
// rendering goes through a views.Guard, so a failed render prints the
// fallback message instead of partial output.
type Reporter struct {
	writer io.Writer
	config TableConfig
	guard  *views.Guard
	tmpl   *template.Template
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	r := &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
		guard:  views.NewGuard(views.Fallback + "\n"),
	}
	r.tmpl = template.Must(template.New("page").Funcs(r.funcMap()).Parse(pageTemplate))
	return r
}

// Handle renders the snapshot with the current theme.
func (r *Reporter) Handle(snapshot domain.Snapshot) error {
	return r.guard.Render(r.writer, func(w io.Writer) error {
		page, err := views.Build(snapshot, theme.Current())
		if err != nil {
			return err
		}
		return r.tmpl.Execute(w, page)
	})
}

// Faulted reports whether an earlier render failed.
func (r *Reporter) Faulted() error {
	return r.guard.Faulted()
}

func (r *Reporter) funcMap() template.FuncMap {
	c := r.config
	return template.FuncMap{
		"join": strings.Join,
		"tab": func(t views.Tab) string {
			label := t.Label
			if t.Active {
				label = "[" + label + "]"
			}
			if t.Disabled {
				label += " (disabled)"
			}
			return label
		},
		"uploadNew": func() string { return views.ButtonUploadNew },
		"formatRow": func(name string, value string) string {
			return fmt.Sprintf("| %-*s | %*s |", c.NameWidth, name, c.ValueWidth, value)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.NameWidth+2),
				strings.Repeat("-", c.ValueWidth+2))
		},
		"formatEntry": func(id, created, health, margin string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %*s |",
				c.IDWidth, id,
				c.DateWidth, created,
				c.StatusWidth, health,
				c.NameWidth, margin)
		},
		"entrySeparator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.IDWidth+2),
				strings.Repeat("-", c.DateWidth+2),
				strings.Repeat("-", c.StatusWidth+2),
				strings.Repeat("-", c.NameWidth+2))
		},
		"bar": func(s projector.Slice) string {
			filled := int(s.Percent / 100 * float64(c.BarWidth))
			return strings.Repeat("#", filled) + strings.Repeat(".", c.BarWidth-filled)
		},
	}
}
