package archive

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/traderdash/analytics"
	"github.com/rustyeddy/traderdash/backend"
)

// FormatTradeOrg renders a journal entry as an Org-mode block for a
// personal trading journal: facts in a PROPERTIES drawer, then empty
// Thesis/Execution/Review headings to fill in.
func FormatTradeOrg(e backend.JournalEntry) string {
	bucket := analytics.Classify(e.Bucket)

	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s (%s)", e.Symbol, shortID(e.ID))
	if e.Closed() {
		b.WriteString(" :closed:")
	}
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", e.ID)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", e.Symbol)
	fmt.Fprintf(&b, ":BUCKET: %s\n", bucket.Name)
	fmt.Fprintf(&b, ":RAW_BUCKET: %s\n", e.Bucket)
	fmt.Fprintf(&b, ":SIDE: %s\n", e.Side)
	fmt.Fprintf(&b, ":QTY: %s\n", e.Qty.String())
	fmt.Fprintf(&b, ":ENTRY_PRICE: %s\n", orNA(e.EntryPrice.Valid, e.EntryPrice.Decimal.StringFixed(2)))
	fmt.Fprintf(&b, ":EXIT_PRICE: %s\n", orNA(e.ExitPrice.Valid, e.ExitPrice.Decimal.StringFixed(2)))
	fmt.Fprintf(&b, ":ENTRY_TIME: %s\n", orNA(!e.EntryTime.IsZero(), ts(e.EntryTime)))
	fmt.Fprintf(&b, ":EXIT_TIME: %s\n", orNA(!e.ExitTime.IsZero(), ts(e.ExitTime)))
	fmt.Fprintf(&b, ":PNL: %s\n", orNA(e.PnL.Valid, e.PnL.Decimal.StringFixed(2)))
	fmt.Fprintf(&b, ":R_MULTIPLE: %s\n", orNA(e.RMultiple.Valid, e.RMultiple.Decimal.StringFixed(2)))
	fmt.Fprintf(&b, ":STATUS: %s\n", e.Status)
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- ")
	b.WriteString(e.Notes)
	b.WriteString("\n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple entries separated by blank lines.
func FormatTradesOrg(entries []backend.JournalEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(e))
	}
	return b.String()
}

func orNA(ok bool, s string) string {
	if !ok {
		return "n/a"
	}
	return s
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
