// Package stats computes dashboard figures from full directory and ledger
// snapshots. Everything here is pure and recomputed on every call; with the
// data volumes of a parish program there is nothing worth caching.
package stats

import (
	"time"

	"pastoralpass/internal/directory"
	"pastoralpass/internal/ledger"
)

// Overview is the set of headline numbers on the dashboard.
type Overview struct {
	TotalStudents int `json:"totalStudents"`
	PresentToday  int `json:"presentToday"`
	AbsentToday   int `json:"absentToday"`
	TotalRecords  int `json:"totalRecords"`
}

// DayCount is one bar of the weekly chart.
type DayCount struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	Present int    `json:"present"`
	Total   int    `json:"total"`
}

// pt-BR short weekday names, indexed by time.Weekday.
var weekdayShort = [7]string{"dom.", "seg.", "ter.", "qua.", "qui.", "sex.", "sáb."}

// Compute builds the overview for the calendar day containing now (UTC).
// AbsentToday is simply total minus present; inconsistent data (students
// deleted after being marked) can push it negative and is not guarded.
func Compute(students []directory.Student, records []ledger.Record, now time.Time) Overview {
	today := now.UTC().Format(ledger.DateLayout)
	present := 0
	for _, r := range records {
		if r.DateString == today {
			present++
		}
	}
	return Overview{
		TotalStudents: len(students),
		PresentToday:  present,
		AbsentToday:   len(students) - present,
		TotalRecords:  len(records),
	}
}

// WeeklySeries counts presences for each of the last seven calendar days,
// oldest first, today last. Labels are localized short weekday names.
func WeeklySeries(students []directory.Student, records []ledger.Record, now time.Time) []DayCount {
	perDay := make(map[string]int, len(records))
	for _, r := range records {
		perDay[r.DateString]++
	}

	series := make([]DayCount, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.UTC().AddDate(0, 0, -i)
		key := d.Format(ledger.DateLayout)
		series = append(series, DayCount{
			Date:    key,
			Label:   weekdayShort[d.Weekday()],
			Present: perDay[key],
			Total:   len(students),
		})
	}
	return series
}

// Recent returns up to limit records, newest first. The ledger is append-only,
// so newest-first is just the reverse of storage order.
func Recent(records []ledger.Record, limit int) []ledger.Record {
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}
	out := make([]ledger.Record, 0, limit)
	for i := len(records) - 1; i >= len(records)-limit; i-- {
		out = append(out, records[i])
	}
	return out
}
