package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

// csvRow is one transaction as it appears in the CSV output.
type csvRow struct {
	Date     string `csv:"Date"`
	Merchant string `csv:"Merchant"`
	Type     string `csv:"Type"`
	Amount   string `csv:"Amount"`
	Category string `csv:"Category"`
}

// CSVWriter writes scan results to CSV format.
type CSVWriter struct {
	IncludeHeader bool
	Comma         rune // defaults to ','
}

// WriteToFile writes the result to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, result *models.ScanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, result); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the result in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, result *models.ScanResult) error {
	writer := csv.NewWriter(out)
	if w.Comma != 0 {
		writer.Comma = w.Comma
	}

	// Metadata goes first as comment rows
	if w.IncludeHeader {
		totals := result.Totals()
		meta := [][]string{
			{"# Locale", string(result.Locale)},
			{"# Transactions", strconv.Itoa(len(result.Transactions))},
			{"# Income", totals[models.TypeIncome].StringFixed(2)},
			{"# Expense", totals[models.TypeExpense].StringFixed(2)},
			{"# Savings", totals[models.TypeSavings].StringFixed(2)},
		}
		if err := writer.WriteAll(meta); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	rows := make([]*csvRow, 0, len(result.Transactions))
	for _, txn := range result.Transactions {
		rows = append(rows, &csvRow{
			Date:     txn.Date,
			Merchant: txn.Merchant,
			Type:     string(txn.Type),
			Amount:   txn.Amount.StringFixed(2),
			Category: txn.SuggestedCategory,
		})
	}

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
