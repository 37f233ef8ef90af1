package stats

import (
	"testing"
	"time"

	"pastoralpass/internal/directory"
	"pastoralpass/internal/ledger"
)

func rosterOf(n int) []directory.Student {
	students := make([]directory.Student, n)
	for i := range students {
		students[i] = directory.Student{ID: string(rune('a' + i)), Name: "Aluno", Pastoral: directory.Crisma}
	}
	return students
}

func recordOn(studentID, date string) ledger.Record {
	return ledger.Record{ID: "r-" + studentID + date, StudentID: studentID, DateString: date}
}

func TestCompute(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	students := rosterOf(5)
	records := []ledger.Record{
		recordOn("a", "2026-08-27"),
		recordOn("b", "2026-08-27"),
		recordOn("a", "2026-08-20"),
	}

	o := Compute(students, records, now)
	if o.TotalStudents != 5 {
		t.Fatalf("total %d, want 5", o.TotalStudents)
	}
	if o.PresentToday != 2 {
		t.Fatalf("present %d, want 2", o.PresentToday)
	}
	if o.AbsentToday != 3 {
		t.Fatalf("absent %d, want 3", o.AbsentToday)
	}
	if o.TotalRecords != 3 {
		t.Fatalf("records %d, want 3", o.TotalRecords)
	}
}

func TestCompute_NegativeAbsentNotGuarded(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	records := []ledger.Record{
		recordOn("a", "2026-08-27"),
		recordOn("b", "2026-08-27"),
	}

	// Students deleted after being marked present: absent goes negative and
	// the computation does not paper over it.
	o := Compute(nil, records, now)
	if o.AbsentToday != -2 {
		t.Fatalf("absent %d, want -2", o.AbsentToday)
	}
}

func TestWeeklySeries(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) // a Thursday
	students := rosterOf(3)
	records := []ledger.Record{
		recordOn("a", "2026-08-25"), // D-2
		recordOn("b", "2026-08-25"), // D-2
		recordOn("a", "2026-08-21"), // D-6
		recordOn("c", "2026-08-10"), // outside the window
	}

	series := WeeklySeries(students, records, now)
	if len(series) != 7 {
		t.Fatalf("series length %d, want 7", len(series))
	}
	if series[0].Date != "2026-08-21" || series[6].Date != "2026-08-27" {
		t.Fatalf("series must run oldest to newest, got %s .. %s", series[0].Date, series[6].Date)
	}

	wantCounts := []int{1, 0, 0, 0, 2, 0, 0} // D-6 .. D
	for i, want := range wantCounts {
		if series[i].Present != want {
			t.Fatalf("day %s: present %d, want %d", series[i].Date, series[i].Present, want)
		}
		if series[i].Total != 3 {
			t.Fatalf("day %s: total %d, want 3", series[i].Date, series[i].Total)
		}
	}

	// 2026-08-21 is a Friday, 2026-08-27 a Thursday.
	if series[0].Label != "sex." {
		t.Fatalf("label %q, want sex.", series[0].Label)
	}
	if series[6].Label != "qui." {
		t.Fatalf("label %q, want qui.", series[6].Label)
	}
}

func TestRecent(t *testing.T) {
	records := []ledger.Record{
		recordOn("a", "2026-08-25"),
		recordOn("b", "2026-08-26"),
		recordOn("c", "2026-08-27"),
	}

	out := Recent(records, 2)
	if len(out) != 2 {
		t.Fatalf("length %d, want 2", len(out))
	}
	if out[0].StudentID != "c" || out[1].StudentID != "b" {
		t.Fatalf("expected newest first, got %s then %s", out[0].StudentID, out[1].StudentID)
	}

	if got := Recent(records, 10); len(got) != 3 {
		t.Fatalf("limit beyond length should return everything, got %d", len(got))
	}
	if got := Recent(nil, 5); len(got) != 0 {
		t.Fatalf("empty ledger should produce empty activity, got %d", len(got))
	}
}
