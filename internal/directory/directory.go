// Package directory manages the roster of registered students.
package directory

import (
	"context"
	"fmt"

	"pastoralpass/internal/ident"
	"pastoralpass/internal/store"
)

// Student is a registered participant. The system assigns id and qrCodeValue;
// they are never user-supplied.
type Student struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Pastoral    string `json:"pastoral"`
	QRCodeValue string `json:"qrCodeValue"`
}

// Recognized pastoral categories. Outros is the explicit catch-all; anything
// outside this set is rejected at the boundary.
const (
	CatequeseInfantil = "Catequese Infantil"
	Crisma            = "Crisma"
	Eucaristia        = "Eucaristia"
	Juventude         = "Grupo de Jovens"
	Outros            = "Outros"
)

// Categories returns the recognized category set in display order.
func Categories() []string {
	return []string{CatequeseInfantil, Crisma, Eucaristia, Juventude, Outros}
}

// ErrUnknownCategory rejects a pastoral value outside the recognized set.
type ErrUnknownCategory struct {
	Pastoral string
}

func (e ErrUnknownCategory) Error() string {
	return fmt.Sprintf("pastoral desconhecida: %q", e.Pastoral)
}

// ValidCategory reports whether pastoral is one of the recognized values.
func ValidCategory(pastoral string) bool {
	for _, c := range Categories() {
		if c == pastoral {
			return true
		}
	}
	return false
}

// Directory reads and rewrites the whole persisted roster on every call.
type Directory struct {
	store store.Store
}

// New creates a directory backed by the given store.
func New(s store.Store) *Directory {
	return &Directory{store: s}
}

// List returns all students in insertion order. Empty when nothing is stored.
func (d *Directory) List(ctx context.Context) ([]Student, error) {
	var students []Student
	if _, err := d.store.Load(ctx, store.StudentsKey, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Seed writes the demo roster once, at startup, when no student collection has
// ever been persisted. A stored value — even an empty list — is never reseeded.
func (d *Directory) Seed(ctx context.Context) error {
	var students []Student
	found, err := d.store.Load(ctx, store.StudentsKey, &students)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	seed := []Student{
		{ID: "101", Name: "Maria Silva", Pastoral: Crisma, QRCodeValue: "101-Maria Silva-Crisma"},
		{ID: "102", Name: "João Santos", Pastoral: CatequeseInfantil, QRCodeValue: "102-João Santos-Catequese"},
		{ID: "103", Name: "Pedro Costa", Pastoral: Crisma, QRCodeValue: "103-Pedro Costa-Crisma"},
		{ID: "104", Name: "Ana Oliveira", Pastoral: Eucaristia, QRCodeValue: "104-Ana Oliveira-Eucaristia"},
		{ID: "105", Name: "Lucas Pereira", Pastoral: Juventude, QRCodeValue: "105-Lucas Pereira-Juventude"},
	}
	return d.store.Save(ctx, store.StudentsKey, seed)
}

// Add registers a student. The pastoral must be a recognized category; name
// emptiness is the caller's concern. The new student is appended to the full
// persisted list and saved synchronously.
func (d *Directory) Add(ctx context.Context, name, pastoral string) (Student, error) {
	if !ValidCategory(pastoral) {
		return Student{}, ErrUnknownCategory{Pastoral: pastoral}
	}
	students, err := d.List(ctx)
	if err != nil {
		return Student{}, err
	}
	s := Student{
		ID:          ident.New(),
		Name:        name,
		Pastoral:    pastoral,
		QRCodeValue: fmt.Sprintf("%s-%s-%s", ident.New(), name, pastoral),
	}
	students = append(students, s)
	if err := d.store.Save(ctx, store.StudentsKey, students); err != nil {
		return Student{}, err
	}
	return s, nil
}

// Delete removes the student with the given id and rewrites the list. A missing
// id is not an error. Attendance history referencing the id is left untouched;
// past records carry their own name/pastoral snapshots and stay valid.
func (d *Directory) Delete(ctx context.Context, id string) error {
	students, err := d.List(ctx)
	if err != nil {
		return err
	}
	kept := make([]Student, 0, len(students))
	for _, s := range students {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	return d.store.Save(ctx, store.StudentsKey, kept)
}
