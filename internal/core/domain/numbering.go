package domain

import (
	"fmt"
	"time"
)

// DocumentSeries is the prefix of a human-facing document number.
type DocumentSeries string

const (
	SeriesInvoice DocumentSeries = "INV"
	SeriesReceipt DocumentSeries = "OR"
	SeriesExpense DocumentSeries = "EXP"
)

// SequencePeriod returns the YYYYMM bucket a document dated t is numbered in.
func SequencePeriod(t time.Time) string {
	return t.UTC().Format("200601")
}

// FormatDocumentNumber renders e.g. INV-202610-0001.
func FormatDocumentNumber(series DocumentSeries, period string, value int64) string {
	return fmt.Sprintf("%s-%s-%04d", series, period, value)
}
