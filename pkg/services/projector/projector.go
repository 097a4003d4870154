// Package projector turns reports into chart series and display fields.
package projector

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/de-tools/fin-health/pkg/models/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	SeriesNetProfit = "Net Profit"
	SeriesExpenses  = "Expenses"

	ColorPositive = "#10b981"
	ColorNegative = "#ef4444"
	ColorWarning  = "#f59e0b"

	NoAnalysis     = "No AI analysis available."
	createdAtShape = "1/2/2006, 3:04:05 PM"
)

// Palette colors pie slices by index.
var Palette = []string{ColorPositive, ColorNegative, ColorWarning}

var ErrNoReport = errors.New("no report to project")

type Point struct {
	Name  string
	Value float64
}

type Slice struct {
	Name    string
	Value   float64
	Percent float64 // share of the total magnitude, 0..100
	Label   string
	Color   string
}

type Fields struct {
	Title        string
	Revenue      string
	Expenses     string
	NetProfit    string
	Margin       string
	HealthStatus string
	HealthColor  string
	Healthy      bool
	Analysis     string
	CreatedAt    string
}

type Projection struct {
	Series    []Point
	Slices    []Slice
	Formatted Fields
}

type SummaryFields struct {
	ID           int64
	Title        string
	CreatedAt    string
	HealthStatus string
	HealthColor  string
	Margin       string
}

// Projector formats numbers for one locale.
type Projector struct {
	printer *message.Printer
	loc     *time.Location
}

func New(tag language.Tag, loc *time.Location) *Projector {
	if loc == nil {
		loc = time.UTC
	}
	return &Projector{printer: message.NewPrinter(tag), loc: loc}
}

var defaultProjector = New(language.AmericanEnglish, time.UTC)

func Project(report *domain.Report) (*Projection, error) {
	return defaultProjector.Project(report)
}

func ProjectSummary(summary domain.ReportSummary) SummaryFields {
	return defaultProjector.ProjectSummary(summary)
}

func (p *Projector) Project(report *domain.Report) (*Projection, error) {
	if report == nil {
		return nil, ErrNoReport
	}

	netProfit := finite(report.NetProfit.InexactFloat64())
	expenses := finite(report.Expenses.InexactFloat64())

	series := []Point{
		{Name: SeriesNetProfit, Value: netProfit},
		{Name: SeriesExpenses, Value: expenses},
	}

	fields := Fields{
		Title:        title(report.ID),
		Revenue:      p.Currency(report.Revenue.InexactFloat64()),
		Expenses:     p.Currency(expenses),
		NetProfit:    p.Currency(netProfit),
		Margin:       Percent(report.Margin),
		HealthStatus: string(report.HealthStatus),
		HealthColor:  HealthColor(report.HealthStatus),
		Healthy:      report.HealthStatus.IsHealthy(),
		Analysis:     report.AIAnalysis,
	}
	if fields.Analysis == "" {
		fields.Analysis = NoAnalysis
	}
	if report.CreatedAt != nil {
		fields.CreatedAt = report.CreatedAt.In(p.loc).Format(createdAtShape)
	}

	return &Projection{
		Series:    series,
		Slices:    Slices(series),
		Formatted: fields,
	}, nil
}

func (p *Projector) ProjectSummary(summary domain.ReportSummary) SummaryFields {
	fields := SummaryFields{
		ID:           summary.ID,
		Title:        title(&summary.ID),
		HealthStatus: string(summary.HealthStatus),
		HealthColor:  HealthColor(summary.HealthStatus),
		Margin:       Percent(summary.Margin),
	}
	if !summary.CreatedAt.IsZero() {
		fields.CreatedAt = summary.CreatedAt.In(p.loc).Format(createdAtShape)
	}
	return fields
}

// Currency renders v as a dollar amount with locale grouping and at most two
// fraction digits.
func (p *Projector) Currency(v float64) string {
	v = finite(v)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + p.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2)))
}

func Percent(v float64) string {
	return strconv.FormatFloat(finite(v), 'f', -1, 64) + "%"
}

func HealthColor(status domain.HealthStatus) string {
	if status.IsHealthy() {
		return ColorPositive
	}
	return ColorNegative
}

// Slices computes pie slices sized by magnitude.
func Slices(series []Point) []Slice {
	total := 0.0
	for _, s := range series {
		total += math.Abs(s.Value)
	}

	slices := make([]Slice, 0, len(series))
	for i, s := range series {
		pct := 0.0
		if total > 0 {
			pct = math.Abs(s.Value) / total * 100
		}
		slices = append(slices, Slice{
			Name:    s.Name,
			Value:   s.Value,
			Percent: pct,
			Label:   fmt.Sprintf("%s %.0f%%", s.Name, pct),
			Color:   Palette[i%len(Palette)],
		})
	}
	return slices
}

func title(id *int64) string {
	if id == nil {
		return "New report"
	}
	return fmt.Sprintf("Report #%d", *id)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
