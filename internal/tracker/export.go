package tracker

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"internhunt-engine/internal/store"
)

type ExportRecord struct {
	Company        string    `json:"company"`
	Role           string    `json:"role"`
	Location       string    `json:"location"`
	Category       string    `json:"category"`
	ApplicationURL string    `json:"applicationUrl"`
	AppliedAt      time.Time `json:"appliedAt"`
	Age            string    `json:"age"`
	Notes          string    `json:"notes,omitempty"`
}

func exportRecords(list []store.AppliedJob) []ExportRecord {
	out := make([]ExportRecord, 0, len(list))
	for _, a := range list {
		out = append(out, ExportRecord{
			Company:        a.Company,
			Role:           a.Role,
			Location:       a.Location,
			Category:       a.Category,
			ApplicationURL: a.ApplicationURL,
			AppliedAt:      a.AppliedAt,
			Age:            a.Age,
			Notes:          a.Notes,
		})
	}
	return out
}

// ExportFilename is applied-jobs-YYYY-MM-DD.<ext> for the given day.
func ExportFilename(now time.Time, ext string) string {
	return fmt.Sprintf("applied-jobs-%s.%s", now.UTC().Format("2006-01-02"), ext)
}

func ExportJSON(w io.Writer, list []store.AppliedJob) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportRecords(list))
}

var csvHeader = []string{"company", "role", "location", "category", "application_url", "applied_at", "age", "notes"}

func ExportCSV(w io.Writer, list []store.AppliedJob) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range exportRecords(list) {
		if err := cw.Write([]string{
			r.Company,
			r.Role,
			r.Location,
			r.Category,
			r.ApplicationURL,
			r.AppliedAt.UTC().Format(time.RFC3339),
			r.Age,
			r.Notes,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
