package writer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

// TableWriter prints scan results as aligned columns for the terminal.
type TableWriter struct {
	IncludeDebug bool
}

func (w *TableWriter) Write(out io.Writer, result *models.ScanResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "DATE\tMERCHANT\tTYPE\tAMOUNT\tCATEGORY")
	for _, txn := range result.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			dash(txn.Date), txn.Merchant, txn.Type, txn.Amount.StringFixed(2), dash(txn.SuggestedCategory))
	}

	totals := result.Totals()
	fmt.Fprintln(tw)
	for _, t := range []models.TransactionType{models.TypeIncome, models.TypeExpense, models.TypeSavings} {
		fmt.Fprintf(tw, "\t%s total\t\t%s\t\n", t, totals[t].StringFixed(2))
	}

	if w.IncludeDebug && len(result.DebugLines) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "LINE\tRESULT\tMETHOD\tTEXT")
		for _, d := range result.DebugLines {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", d.LineNum, d.Result, dash(d.Method), d.Text)
		}
	}

	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
