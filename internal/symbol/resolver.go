// Package symbol builds the id-to-name lookup tables consumed by rung
// decoding. Resolution is a pure function over decoded records; the
// resulting table is never mutated afterwards.
package symbol

import (
	"errors"
	"fmt"

	"acdex/internal/recdb"
)

// ConflictError indicates two records claimed the same object id. This is
// fatal: it means the encoding schema table is wrong for this file
// version, and every downstream resolution would be suspect.
type ConflictError struct {
	ObjectID uint32
	First    string
	Second   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("symbol conflict: object id %d claimed by %q and %q", e.ObjectID, e.First, e.Second)
}

// IsConflictError reports whether err is a symbol conflict.
func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// Table maps object ids to component names, with name-indexed sub-tables
// per component kind.
type Table struct {
	names    map[uint32]string
	tags     map[string]uint32
	programs map[string]uint32
	routines map[string]uint32
	modules  map[string]uint32
}

// Resolve builds a Table from the Comps record list. Malformed markers and
// unnamed records are skipped; a duplicate object id among named records
// raises *ConflictError.
func Resolve(records []recdb.Record) (*Table, error) {
	t := &Table{
		names:    make(map[uint32]string, len(records)),
		tags:     make(map[string]uint32),
		programs: make(map[string]uint32),
		routines: make(map[string]uint32),
		modules:  make(map[string]uint32),
	}

	for i := range records {
		rec := &records[i]
		if rec.Kind == recdb.KindMalformed || rec.Name == "" {
			continue
		}
		if prev, ok := t.names[rec.ObjectID]; ok {
			return nil, &ConflictError{ObjectID: rec.ObjectID, First: prev, Second: rec.Name}
		}
		t.names[rec.ObjectID] = rec.Name

		switch rec.Kind {
		case recdb.KindTag:
			t.tags[rec.Name] = rec.ObjectID
		case recdb.KindProgram:
			t.programs[rec.Name] = rec.ObjectID
		case recdb.KindRoutine:
			t.routines[rec.Name] = rec.ObjectID
		case recdb.KindModule:
			t.modules[rec.Name] = rec.ObjectID
		}
	}
	return t, nil
}

// Lookup returns the name registered for an object id.
func (t *Table) Lookup(id uint32) (string, bool) {
	name, ok := t.names[id]
	return name, ok
}

// TagID returns the object id registered for a tag name.
func (t *Table) TagID(name string) (uint32, bool) {
	id, ok := t.tags[name]
	return id, ok
}

// ProgramID returns the object id registered for a program name.
func (t *Table) ProgramID(name string) (uint32, bool) {
	id, ok := t.programs[name]
	return id, ok
}

// RoutineID returns the object id registered for a routine name.
func (t *Table) RoutineID(name string) (uint32, bool) {
	id, ok := t.routines[name]
	return id, ok
}

// ModuleID returns the object id registered for a module name.
func (t *Table) ModuleID(name string) (uint32, bool) {
	id, ok := t.modules[name]
	return id, ok
}

// Len returns the number of registered object ids.
func (t *Table) Len() int {
	return len(t.names)
}
