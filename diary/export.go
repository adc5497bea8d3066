package diary

import (
	"io"
	"strings"
	"time"

	"github.com/linesmerrill/case-diary-api/models"
)

// ExportHeader is the first line of every export
const ExportHeader = "ID,Previous Date,Next Date,Status,Case Details,Created,Updated"

const (
	exportDateLayout      = "2006-01-02"
	exportTimestampLayout = "2006-01-02 15:04:05"
)

// FormatCSV renders cases as the export document. Case details are always quoted.
// Lines are separated by "\n" and the document has no trailing newline.
func FormatCSV(cases []models.CaseEntry, loc *time.Location) string {
	loc = orUTC(loc)
	lines := make([]string, 0, len(cases)+1)
	lines = append(lines, ExportHeader)
	for _, c := range cases {
		lines = append(lines, strings.Join([]string{
			c.ID,
			c.PreviousDate.In(loc).Format(exportDateLayout),
			c.NextDate.In(loc).Format(exportDateLayout),
			string(c.Status),
			quoteField(c.CaseDetails),
			c.CreatedAt.In(loc).Format(exportTimestampLayout),
			c.UpdatedAt.In(loc).Format(exportTimestampLayout),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// WriteCSV writes the export document for cases to w
func WriteCSV(w io.Writer, cases []models.CaseEntry, loc *time.Location) error {
	_, err := io.WriteString(w, FormatCSV(cases, loc))
	return err
}

// ExportFilename names the export file after the day it was produced
func ExportFilename(now time.Time, loc *time.Location) string {
	return "legal-cases-" + now.In(orUTC(loc)).Format(exportDateLayout) + ".csv"
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
