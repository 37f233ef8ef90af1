// Package report builds the per-date presence report and its CSV export.
package report

import (
	"strings"

	"pastoralpass/internal/directory"
	"pastoralpass/internal/ledger"
)

// Row is one student's presence status for the selected date.
type Row struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Pastoral string `json:"pastoral"`
	Present  bool   `json:"present"`
}

// Status filter values for Filter.
const (
	StatusAll     = "all"
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// Build computes presence for every student on the given date. A student is
// present when any record matches both their id and the date.
func Build(students []directory.Student, records []ledger.Record, date string) []Row {
	rows := make([]Row, 0, len(students))
	for _, s := range students {
		present := false
		for _, r := range records {
			if r.StudentID == s.ID && r.DateString == date {
				present = true
				break
			}
		}
		rows = append(rows, Row{ID: s.ID, Name: s.Name, Pastoral: s.Pastoral, Present: present})
	}
	return rows
}

// Filter narrows rows by pastoral ("all" or empty keeps everything) and by
// presence status.
func Filter(rows []Row, pastoral, status string) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if pastoral != "" && pastoral != "all" && row.Pastoral != pastoral {
			continue
		}
		if status == StatusPresent && !row.Present {
			continue
		}
		if status == StatusAbsent && row.Present {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Tally counts present and absent rows.
func Tally(rows []Row) (present, absent int) {
	for _, row := range rows {
		if row.Present {
			present++
		} else {
			absent++
		}
	}
	return present, absent
}

// CSV renders the filtered rows. Always exactly one header row, one data row
// per input row, Status PRESENTE or FALTA. Fields are comma-joined without
// quoting; a name containing a comma breaks the row. Known defect, kept for
// compatibility with the sheets people already built on the old export.
func CSV(rows []Row, date string) string {
	var b strings.Builder
	b.WriteString("ID,Nome,Pastoral,Data,Status\n")
	for _, row := range rows {
		status := "FALTA"
		if row.Present {
			status = "PRESENTE"
		}
		b.WriteString(row.ID)
		b.WriteByte(',')
		b.WriteString(row.Name)
		b.WriteByte(',')
		b.WriteString(row.Pastoral)
		b.WriteByte(',')
		b.WriteString(date)
		b.WriteByte(',')
		b.WriteString(status)
		b.WriteByte('\n')
	}
	return b.String()
}
