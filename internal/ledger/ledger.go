// Package ledger keeps the append-only log of attendance events.
package ledger

import (
	"context"
	"fmt"
	"time"

	"pastoralpass/internal/directory"
	"pastoralpass/internal/ident"
	"pastoralpass/internal/store"
)

// DateLayout is the calendar-date form records are keyed by.
const DateLayout = "2006-01-02"

// Record is one presence event. StudentName and Pastoral are snapshots taken at
// write time so the record stays accurate after the student changes or is
// deleted. Records are immutable; nothing in the system updates or removes them.
type Record struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Pastoral    string `json:"pastoral"`
	Timestamp   int64  `json:"timestamp"`
	DateString  string `json:"dateString"`
}

// DuplicateError reports a second presence attempt for the same student on the
// same calendar day. The message is shown to the user verbatim.
type DuplicateError struct {
	StudentName string
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("%s já registrou presença hoje!", e.StudentName)
}

// Ledger appends records to the persisted attendance collection. There is one
// writer in the process; the check-then-append in Mark is the whole transaction.
type Ledger struct {
	store store.Store
	now   func() time.Time
}

// New creates a ledger backed by the given store.
func New(s store.Store) *Ledger {
	return &Ledger{store: s, now: time.Now}
}

// List returns all persisted records, empty when none exist. Attendance is
// never seeded.
func (l *Ledger) List(ctx context.Context) ([]Record, error) {
	var records []Record
	if _, err := l.store.Load(ctx, store.AttendanceKey, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Mark records presence for the student today. The calendar day is taken in UTC
// from the current instant, never chosen by the caller. A record already
// present for (student, today) fails with DuplicateError and mutates nothing.
//
// Invariant: never two records with the same (studentId, dateString).
func (l *Ledger) Mark(ctx context.Context, student directory.Student) (Record, error) {
	records, err := l.List(ctx)
	if err != nil {
		return Record{}, err
	}

	now := l.now().UTC()
	today := now.Format(DateLayout)

	for _, r := range records {
		if r.StudentID == student.ID && r.DateString == today {
			return Record{}, DuplicateError{StudentName: student.Name}
		}
	}

	rec := Record{
		ID:          ident.New(),
		StudentID:   student.ID,
		StudentName: student.Name,
		Pastoral:    student.Pastoral,
		Timestamp:   now.UnixMilli(),
		DateString:  today,
	}
	records = append(records, rec)
	if err := l.store.Save(ctx, store.AttendanceKey, records); err != nil {
		return Record{}, err
	}
	return rec, nil
}
