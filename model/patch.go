package model

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// RawJSON is one undecoded value of a request body object.
type RawJSON = json.RawMessage

// Assignment is one "column = ?" pair of a partial update.
type Assignment struct {
	Column string
	Value  any // nil writes SQL NULL
}

// Patch is an ordered list of column assignments.
type Patch []Assignment

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p) == 0
}

// Has reports whether the patch touches column.
func (p Patch) Has(column string) bool {
	for _, a := range p {
		if a.Column == column {
			return true
		}
	}
	return false
}

// SetClause renders "a = ?, b = ?" and the matching argument list.
func (p Patch) SetClause() (string, []any) {
	parts := make([]string, 0, len(p))
	args := make([]any, 0, len(p))
	for _, a := range p {
		parts = append(parts, a.Column+" = ?")
		args = append(args, a.Value)
	}
	return strings.Join(parts, ", "), args
}

type columnKind int

const (
	kindString columnKind = iota
	kindInt
)

type patchColumn struct {
	name     string
	kind     columnKind
	required bool // NOT NULL column, null is rejected
}

func parsePatch(body map[string]RawJSON, columns []patchColumn) (Patch, error) {
	var patch Patch
	for _, col := range columns {
		raw, ok := body[col.name]
		if !ok {
			continue
		}
		value, err := decodeValue(raw, col)
		if err != nil {
			return nil, err
		}
		patch = append(patch, Assignment{Column: col.name, Value: value})
	}
	return patch, nil
}

func decodeValue(raw RawJSON, col patchColumn) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if col.required {
			return nil, &ValidationError{Field: col.name, Reason: "não pode ser nulo"}
		}
		return nil, nil
	}

	switch col.kind {
	case kindInt:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, &ValidationError{Field: col.name, Reason: "deve ser um número inteiro"}
		}
		if n < 0 {
			return nil, &ValidationError{Field: col.name, Reason: "não pode ser negativo"}
		}
		return n, nil
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &ValidationError{Field: col.name, Reason: "deve ser um texto"}
		}
		if col.required && strings.TrimSpace(s) == "" {
			return nil, &ValidationError{Field: col.name, Reason: "não pode ser vazio"}
		}
		return s, nil
	}
}
