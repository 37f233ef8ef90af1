package directory

import (
	"context"
	"testing"

	"pastoralpass/internal/store"
)

func seededDirectory(t *testing.T) *Directory {
	t.Helper()
	d := New(store.NewMemory())
	if err := d.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return d
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	d := seededDirectory(t)

	tests := []struct {
		name   string
		code   string
		wantID string
		wantOK bool
	}{
		{
			name:   "exact_qr_value",
			code:   "101-Maria Silva-Crisma",
			wantID: "101",
			wantOK: true,
		},
		{
			name:   "bare_id",
			code:   "104",
			wantID: "104",
			wantOK: true,
		},
		{
			name:   "compound_first_segment",
			code:   "102-nome errado-pastoral errada",
			wantID: "102",
			wantOK: true,
		},
		{
			name:   "compound_unknown_id",
			code:   "999-Nonexistent-Crisma",
			wantOK: false,
		},
		{
			name:   "no_separator_no_id",
			code:   "999",
			wantOK: false,
		},
		{
			name:   "empty_code",
			code:   "",
			wantOK: false,
		},
		{
			name:   "no_case_folding",
			code:   "101-maria silva-crisma",
			wantID: "101", // still hits stage 3 via the id segment
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok, err := d.Resolve(ctx, tt.code)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok=%v, want %v", ok, tt.wantOK)
			}
			if ok && s.ID != tt.wantID {
				t.Fatalf("resolved id %s, want %s", s.ID, tt.wantID)
			}
		})
	}
}

// A code equal to both a qrCodeValue and an id must hit the exact-value stage
// first. The result is the same student either way, but the tried-in-order
// contract has to hold for ambiguous future formats.
func TestResolve_StageOrder(t *testing.T) {
	ctx := context.Background()
	d := New(store.NewMemory())

	students := []Student{
		{ID: "103", Name: "Pedro Costa", Pastoral: Crisma, QRCodeValue: "103"},
		{ID: "104", Name: "Ana Oliveira", Pastoral: Eucaristia, QRCodeValue: "103-Ana Oliveira-Eucaristia"},
	}
	if err := d.store.Save(ctx, store.StudentsKey, students); err != nil {
		t.Fatalf("save: %v", err)
	}

	// "103" is both a qrCodeValue and an id; stage 1 answers first.
	s, ok, err := d.Resolve(ctx, "103")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !ok || s.ID != "103" {
		t.Fatalf("expected student 103 via exact qr match, got ok=%v id=%s", ok, s.ID)
	}

	// Stage 1 also beats stage 3: this code is 104's exact qrCodeValue, even
	// though its first segment is 103's id.
	s, ok, err = d.Resolve(ctx, "103-Ana Oliveira-Eucaristia")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !ok || s.ID != "104" {
		t.Fatalf("expected student 104 via exact qr match, got ok=%v id=%s", ok, s.ID)
	}
}

func TestResolve_SingleSegmentSkipsCompoundStage(t *testing.T) {
	ctx := context.Background()
	d := New(store.NewMemory())

	// No student has id or qr equal to "105x"; splitting "105x" on "-"
	// yields one segment, so the compound stage must not run at all.
	students := []Student{{ID: "105x", Name: "Lucas", Pastoral: Juventude, QRCodeValue: "tok-Lucas-Grupo de Jovens"}}
	if err := d.store.Save(ctx, store.StudentsKey, students); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, ok, err := d.Resolve(ctx, "105y")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown single-segment code")
	}
}
