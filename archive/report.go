package archive

import (
	"io"
	"text/template"
	"time"

	"github.com/rustyeddy/traderdash/analytics"
	"github.com/shopspring/decimal"
)

// Report is the Org summary of a journal at one point in time.
type Report struct {
	Created time.Time
	Backend string
	View    analytics.StatsView
	Buckets []analytics.BucketStats
}

var reportFuncs = template.FuncMap{
	"pct": func(d decimal.NullDecimal) string {
		if !d.Valid {
			return "n/a"
		}
		return d.Decimal.Mul(decimal.NewFromInt(100)).StringFixed(2)
	},
	"num": func(d decimal.NullDecimal) string {
		if !d.Valid {
			return "n/a"
		}
		return d.Decimal.StringFixed(2)
	},
	"fixed": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(ReportOrgTemplate))

// WriteReportOrg renders r as an Org document.
func WriteReportOrg(w io.Writer, r Report) error {
	return reportTemplate.Execute(w, r)
}

const ReportOrgTemplate = `* JOURNAL: {{if .Backend}}{{.Backend}}{{else}}(backend?){{end}}
:PROPERTIES:
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:TRADES:      {{.View.Trades}}
:WINS:        {{.View.Derived.Wins}}
:LOSSES:      {{.View.Derived.Losses}}
:WIN_RATE:    {{pct .View.WinRate.Value}}
:WIN_SRC:     {{.View.WinRate.Source}}
:TOTAL_PL:    {{num .View.TotalPnL.Value}}
:PL_SRC:      {{.View.TotalPnL.Source}}
:MAX_DD:      {{fixed .View.Derived.MaxDrawdown}}
:END:

** Performance Summary
- Win Rate:         *{{pct .View.WinRate.Value}}%*
- Total P/L:        *{{num .View.TotalPnL.Value}}*
- Avg Win:          *{{num .View.Derived.AvgWin}}*
- Avg Loss:         *{{num .View.Derived.AvgLoss}}*
- Reward/Risk:      *{{num .View.Derived.RewardRisk}}*
- Profit Factor:    *{{num .View.Derived.ProfitFactor}}*
- Avg R:            *{{num .View.AvgR}}*
- Kelly:            *{{pct .View.Derived.Kelly}}%*
{{- if .View.Diverged }}

** Reconciliation
The backend aggregate disagrees with the journal.
| Figure    | Backend | Journal |
|-----------+---------+---------|
| Win rate  | {{pct .View.WinRate.Value}} | {{pct .View.WinRate.Derived}} |
| Total P/L | {{num .View.TotalPnL.Value}} | {{num .View.TotalPnL.Derived}} |
{{- end }}
{{- if .Buckets }}

** Buckets
| Bucket | Trades | Win % | P/L |
|--------+--------+-------+-----|
{{- range .Buckets }}
| {{.Bucket.Name}} | {{.Stats.Trades}} | {{pct .Stats.WinRate}} | {{fixed .Stats.TotalPnL}} |
{{- end }}
{{- end }}
`
