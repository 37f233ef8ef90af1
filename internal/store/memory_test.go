package store

import (
	"context"
	"testing"
)

func TestMemory_AbsentVsEmpty(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var out []string
	found, err := m.Load(ctx, StudentsKey, &out)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatal("expected found=false for a never-written key")
	}

	// A stored empty list must be distinguishable from absence: the seeding
	// step depends on it.
	if err := m.Save(ctx, StudentsKey, []string{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	found, err = m.Load(ctx, StudentsKey, &out)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatal("expected found=true after saving an empty list")
	}
	if len(out) != 0 {
		t.Fatalf("expected empty list, got %v", out)
	}
}

func TestMemory_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Save(ctx, AttendanceKey, []int{1, 2, 3}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.Save(ctx, AttendanceKey, []int{4}); err != nil {
		t.Fatalf("save: %v", err)
	}

	var out []int
	if _, err := m.Load(ctx, AttendanceKey, &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || out[0] != 4 {
		t.Fatalf("expected [4], got %v", out)
	}
}
