package analytics

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

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

// PrintReport writes a plain-text journal report.
func PrintReport(w io.Writer, v StatsView, buckets []BucketStats) {
	st := v.Derived

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Journal Performance")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Trades:        %d\n", v.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", st.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", st.Losses)
	fmt.Fprintf(w, "Win Rate:      %s (%s)\n", pct(v.WinRate.Value), v.WinRate.Source)
	fmt.Fprintf(w, "Total P/L:     %s (%s)\n", money(v.TotalPnL.Value), v.TotalPnL.Source)

	if v.Diverged() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Backend and journal disagree")
		fmt.Fprintln(w, "--------------------------------------------------")
		fmt.Fprintf(w, "Win Rate:      backend %s, journal %s\n", pct(v.WinRate.Value), pct(v.WinRate.Derived))
		fmt.Fprintf(w, "Total P/L:     backend %s, journal %s\n", money(v.TotalPnL.Value), money(v.TotalPnL.Derived))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Avg Win:       %s\n", money(st.AvgWin))
	fmt.Fprintf(w, "Avg Loss:      %s\n", money(st.AvgLoss))
	fmt.Fprintf(w, "Reward/Risk:   %s\n", money(st.RewardRisk))
	fmt.Fprintf(w, "Profit Factor: %s\n", money(st.ProfitFactor))
	fmt.Fprintf(w, "Avg R:         %s\n", money(v.AvgR))
	fmt.Fprintf(w, "Avg Hold:      %s min\n", money(st.AvgHoldMinutes))
	fmt.Fprintf(w, "Max Drawdown:  %s\n", st.MaxDrawdown.StringFixed(2))

	if st.Kelly.Valid {
		half := decimal.NewNullDecimal(st.Kelly.Decimal.Div(decimal.NewFromInt(2)))
		fmt.Fprintf(w, "Kelly (full):  %s\n", pct(st.Kelly))
		fmt.Fprintf(w, "Kelly (half):  %s\n", pct(half))
	}

	if len(buckets) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Buckets")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, b := range buckets {
			fmt.Fprintf(w, "%-14s %3d trades  win %-8s  P/L %s\n",
				b.Bucket.Name, b.Stats.Trades, pct(b.Stats.WinRate), b.Stats.TotalPnL.StringFixed(2))
		}
	}

	fmt.Fprintln(w)
}
