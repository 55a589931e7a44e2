// Package render draws dashboard snapshots for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rustyeddy/traderdash/analytics"
	"github.com/rustyeddy/traderdash/backend"
	"github.com/rustyeddy/traderdash/risk"
	"github.com/rustyeddy/traderdash/view"
	"github.com/shopspring/decimal"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	warnCardStyle = cardStyle.
			BorderForeground(lipgloss.Color("#F59E0B"))

	headStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#6B7280"))

	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// Dashboard renders everything the snapshot carries, honouring which
// resources were fetched.
func Dashboard(s view.Snapshot, positions []backend.Position, state view.ListState, notices []view.Notice) string {
	var parts []string
	parts = append(parts, titleStyle.Render("traderdash")+dimStyle.Render(" "+stamp(s)))

	if s.Resources.Has(view.ResHealth) {
		parts = append(parts, Health(s.Health))
	}
	if s.Resources.Has(view.ResPositions) {
		parts = append(parts, Portfolio(analytics.Summarize(positions)), Positions(positions, state))
	}
	if s.Resources.Has(view.ResStats) || s.Resources.Has(view.ResJournal) {
		parts = append(parts, Stats(s.StatsView))
	}
	if s.Resources.Has(view.ResJournal) {
		parts = append(parts, Curve(s.Curve), Buckets(s.Buckets))
	}
	if s.Resources.Has(view.ResUploads) {
		parts = append(parts, Uploads(s.Uploads))
	}
	if len(notices) > 0 {
		parts = append(parts, Notices(notices))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func stamp(s view.Snapshot) string {
	if s.At.IsZero() {
		return "waiting for first poll"
	}
	return "updated " + s.At.Format("15:04:05")
}

// Health renders the system status card.
func Health(h backend.HealthSnapshot) string {
	style := cardStyle
	status := gainStyle.Render(strings.ToUpper(string(h.Status)))
	if !h.Online() {
		style = warnCardStyle
		status = lossStyle.Render(strings.ToUpper(h.RawStatus))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "System   %s   Mode %s\n", status, h.Mode)
	fmt.Fprintf(&b, "Equity   %s\n", money(h.Equity))
	fmt.Fprintf(&b, "Day P/L  %s (%s)\n", signed(h.DailyPnL), pct(h.DailyPnLPct))
	fmt.Fprintf(&b, "Risk     %s per trade", pct(h.RiskLimit))
	if h.BrokerStatus != "" {
		fmt.Fprintf(&b, "\nBroker   %s", h.BrokerStatus)
	}
	return style.Render(b.String())
}

// Portfolio renders the position totals card.
func Portfolio(p analytics.PortfolioSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Positions %d (%d equity, %d option; %d long, %d short)\n",
		p.Positions, p.Equities, p.Options, p.Long, p.Short)
	fmt.Fprintf(&b, "Value     %s   Cost %s\n", p.MarketValue.StringFixed(2), p.CostBasis.StringFixed(2))
	fmt.Fprintf(&b, "Open P/L  %s (%s)", signedDec(p.UnrealizedPL), pct(p.UnrealizedPLPct))
	return cardStyle.Render(b.String())
}

// Positions renders the positions table. A pending list is marked as
// waiting on the backend.
func Positions(ps []backend.Position, state view.ListState) string {
	title := "Positions"
	if state == view.PendingMutation {
		title += dimStyle.Render(" (syncing)")
	}
	if len(ps) == 0 {
		return title + "\n" + dimStyle.Render("  no open positions")
	}

	rows := [][]string{{"SYMBOL", "CLASS", "QTY", "PRICE", "VALUE", "P/L", "P/L %"}}
	for _, p := range ps {
		rows = append(rows, []string{
			p.Symbol,
			string(p.AssetClass),
			p.Qty.String(),
			p.CurrentPrice.StringFixed(2),
			p.MarketValue.StringFixed(2),
			signedDec(p.UnrealizedPL),
			p.UnrealizedPLPct.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%",
		})
	}
	return title + "\n" + table(rows)
}

// Journal renders the most recent n entries, newest first. n <= 0 means all.
func Journal(entries []backend.JournalEntry, n int) string {
	if len(entries) == 0 {
		return "Journal\n" + dimStyle.Render("  no trades recorded")
	}
	rows := [][]string{{"ID", "SYMBOL", "BUCKET", "SIDE", "ENTRY", "QTY", "P/L", "RET", "R", "STATUS"}}
	count := 0
	for i := len(entries) - 1; i >= 0; i-- {
		if n > 0 && count == n {
			break
		}
		e := entries[i]
		rows = append(rows, []string{
			shortID(e.ID),
			e.Symbol,
			analytics.Classify(e.Bucket).Name,
			e.Side,
			fixed(e.EntryPrice),
			e.Qty.String(),
			signed(e.PnL),
			pct(analytics.ReturnPct(e)),
			fixed(e.RMultiple),
			string(e.Status),
		})
		count++
	}
	return "Journal\n" + table(rows)
}

// Stats renders the reconciled statistics card. Diverging figures show
// the journal value alongside.
func Stats(v analytics.StatsView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trades    %d\n", v.Trades)
	fmt.Fprintf(&b, "Win rate  %s%s\n", pct(v.WinRate.Value), divergence(v.WinRate, pct))
	fmt.Fprintf(&b, "Total P/L %s%s\n", signed(v.TotalPnL.Value), divergence(v.TotalPnL, signed))
	fmt.Fprintf(&b, "Avg R     %s   Max DD %s", fixed(v.AvgR), v.Derived.MaxDrawdown.StringFixed(2))

	style := cardStyle
	if v.Diverged() {
		style = warnCardStyle
	}
	return style.Render(b.String())
}

func divergence(f analytics.Figure, format func(decimal.NullDecimal) string) string {
	if !f.Diverged {
		return dimStyle.Render(" [" + string(f.Source) + "]")
	}
	return lossStyle.Render(" [" + string(f.Source) + "; journal " + format(f.Derived) + "]")
}

// Curve renders the equity curve as a compact list of labelled points.
func Curve(points []analytics.EquityPoint) string {
	if len(points) == 0 {
		return "Equity\n" + dimStyle.Render("  no closed trades")
	}
	rows := [][]string{{"DAY", "SYMBOL", "P/L", "EQUITY"}}
	for _, p := range points {
		pnl := signedDec(p.PnL)
		if p.NoPnL {
			pnl = dimStyle.Render("n/a")
		}
		rows = append(rows, []string{p.Label, p.Symbol, pnl, p.Equity.StringFixed(2)})
	}
	return "Equity\n" + table(rows)
}

// Buckets renders per-strategy performance.
func Buckets(bs []analytics.BucketStats) string {
	if len(bs) == 0 {
		return ""
	}
	rows := [][]string{{"BUCKET", "TRADES", "WIN %", "P/L"}}
	for _, b := range bs {
		rows = append(rows, []string{
			b.Bucket.Name,
			fmt.Sprintf("%d", b.Stats.Trades),
			pct(b.Stats.WinRate),
			signedDec(b.Stats.TotalPnL),
		})
	}
	return "Buckets\n" + table(rows)
}

// Uploads renders the per-source file counts.
func Uploads(u backend.UploadInventory) string {
	names := u.Names()
	if len(names) == 0 {
		return "Uploads\n" + dimStyle.Render("  none")
	}
	rows := [][]string{{"SOURCE", "FILES"}}
	for _, n := range names {
		rows = append(rows, []string{n, fmt.Sprintf("%d", u.Count(n))})
	}
	return "Uploads\n" + table(rows)
}

// Scan renders scan candidates grouped by section.
func Scan(res backend.ScanResults) string {
	if res.Total() == 0 {
		return dimStyle.Render("scan found no candidates")
	}
	var parts []string
	for _, section := range res.Sections() {
		rows := [][]string{{"SYMBOL", "DIR", "SETUP", "WIN %", "ENTRY", "STOP", "TARGET"}}
		for _, c := range res[section] {
			rows = append(rows, []string{
				c.Symbol,
				c.Direction,
				c.SetupName,
				fixed(c.WinProbability),
				fixed(c.Plan.Entry),
				fixed(c.Plan.StopLoss),
				fixed(c.Plan.TakeProfit),
			})
		}
		parts = append(parts, headStyle.Render(section)+"\n"+table(rows))
	}
	return strings.Join(parts, "\n\n")
}

// Sizing renders one sizing decision per candidate, in order.
func Sizing(cands []backend.ScanCandidate, ds []risk.Decision) string {
	if len(cands) == 0 {
		return ""
	}
	rows := [][]string{{"SYMBOL", "SHARES", "RISK", "RISK %", "R:R", "CHECK"}}
	for i, c := range cands {
		d := ds[i]
		check := gainStyle.Render("ok")
		if !d.Allowed {
			check = lossStyle.Render(strings.Join(d.Codes(), ","))
		}
		rows = append(rows, []string{
			c.Symbol,
			d.Shares.String(),
			d.PlannedRisk.StringFixed(2),
			pct(d.PlannedRiskPct),
			d.PlannedRR.StringFixed(2),
			check,
		})
	}
	return "Sizing\n" + table(rows)
}

// Notices renders command outcomes, newest last.
func Notices(ns []view.Notice) string {
	lines := make([]string, 0, len(ns))
	for _, n := range ns {
		line := n.At.Format("15:04:05") + " " + n.String()
		if n.Level == view.LevelError {
			line = errorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// table lays rows out in left-aligned columns; the first row is the header.
func table(rows [][]string) string {
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, c := range r {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for ri, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		line := "  " + strings.TrimRight(strings.Join(cells, "  "), " ")
		if ri == 0 {
			line = headStyle.Render(line)
		}
		b.WriteString(line)
		if ri < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func pct(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return d.Decimal.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func money(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return d.Decimal.StringFixed(2)
}

func fixed(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}

func signed(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return signedDec(d.Decimal)
}

func signedDec(d decimal.Decimal) string {
	s := d.StringFixed(2)
	switch d.Sign() {
	case 1:
		return gainStyle.Render("+" + s)
	case -1:
		return lossStyle.Render(s)
	}
	return s
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
