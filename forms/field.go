package forms

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

// FieldType enumerates the input kinds an admin can put on a registration form.
type FieldType string

const (
	FieldText       FieldType = "text"
	FieldNumber     FieldType = "number"
	FieldEmail      FieldType = "email"
	FieldFile       FieldType = "file"
	FieldScreenshot FieldType = "screenshot"
)

// IsFile reports whether the field expects a binary upload instead of a scalar value.
func (t FieldType) IsFile() bool {
	return t == FieldFile || t == FieldScreenshot
}

func (t FieldType) known() bool {
	switch t {
	case FieldText, FieldNumber, FieldEmail, FieldFile, FieldScreenshot:
		return true
	}
	return false
}

// FieldDefinition is one admin-authored input on a tournament registration form.
// The full list is replaced wholesale on every save; there is no per-field lifecycle.
type FieldDefinition struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// FieldList is the JSON column type used to store a tournament's registration fields.
type FieldList = datatypes.JSONSlice[FieldDefinition]

// ValidateFieldList enforces the invariants a saved field list must hold:
// non-empty names, names unique within the list, and a known field type.
// Legacy data with unknown types is still *validated* permissively by the
// compiled schema — this check only guards the editing path.
func ValidateFieldList(fields []FieldDefinition) error {
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("field %d has an empty name", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate field name %q", name)
		}
		seen[name] = struct{}{}
		if !f.Type.known() {
			return fmt.Errorf("field %q has unsupported type %q", name, f.Type)
		}
	}
	return nil
}

// HashFieldList returns a stable fingerprint of a field list, used to key
// compiled schemas so edits to the form invalidate the cached validator.
func HashFieldList(fields []FieldDefinition) string {
	raw, err := json.Marshal(fields)
	if err != nil {
		// Marshalling a slice of plain structs cannot fail; keep the signature simple.
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
