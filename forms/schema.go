package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for name, msg := range e {
		parts = append(parts, name+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// First returns an arbitrary single message, for responses that carry one error.
func (e FieldErrors) First() string {
	for _, msg := range e {
		return msg
	}
	return ""
}

// Schema is an immutable validator compiled from a tournament's field list.
// Build one with Compile (or through a SchemaCache) and share it freely.
type Schema struct {
	fields []FieldDefinition
	byName map[string]FieldDefinition
}

// Compile derives one validation rule per field definition. Unknown field
// types compile to a permissive rule: the value is accepted as-is and
// optional, since old documents may carry types this build does not know.
func Compile(fields []FieldDefinition) *Schema {
	s := &Schema{
		fields: make([]FieldDefinition, len(fields)),
		byName: make(map[string]FieldDefinition, len(fields)),
	}
	copy(s.fields, fields)
	for _, f := range fields {
		s.byName[f.Name] = f
	}
	return s
}

// Fields returns the definitions this schema was compiled from, in form order.
func (s *Schema) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a definition by name.
func (s *Schema) Field(name string) (FieldDefinition, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Validate checks a customData mapping against the compiled rules and returns
// a normalized copy (number fields coerced to float64) plus any per-field
// errors. File presence is answered by hasFile because binary parts never
// travel inside the scalar mapping — the caller owning the multipart body is
// the authority on which files actually arrived.
func (s *Schema) Validate(values map[string]any, hasFile func(name string) bool) (map[string]any, FieldErrors) {
	errs := FieldErrors{}
	cleaned := make(map[string]any, len(values))
	for k, v := range values {
		cleaned[k] = v
	}

	for _, f := range s.fields {
		value, present := values[f.Name]

		switch f.Type {
		case FieldText:
			str, ok := value.(string)
			if !present || (ok && str == "") {
				if f.Required {
					errs[f.Name] = fmt.Sprintf("%s is required.", f.Name)
				}
				continue
			}
			if !ok {
				errs[f.Name] = fmt.Sprintf("%s must be text.", f.Name)
			}

		case FieldNumber:
			if !present || value == "" || value == nil {
				if f.Required {
					errs[f.Name] = fmt.Sprintf("%s is required.", f.Name)
				}
				continue
			}
			n, ok := coerceNumber(value)
			if !ok {
				errs[f.Name] = fmt.Sprintf("%s must be a number.", f.Name)
				continue
			}
			cleaned[f.Name] = n

		case FieldEmail:
			str, _ := value.(string)
			if !present || str == "" {
				if f.Required {
					errs[f.Name] = fmt.Sprintf("%s is required.", f.Name)
				}
				continue
			}
			if validate.Var(str, "email") != nil {
				errs[f.Name] = "Invalid email address."
			}

		case FieldFile, FieldScreenshot:
			if f.Required && (hasFile == nil || !hasFile(f.Name)) {
				errs[f.Name] = fmt.Sprintf("Required file for %s is missing.", f.Name)
			}

		default:
			// Permissive for unknown types; the server-side required-file
			// check above is the only hard gate.
		}
	}

	if len(errs) > 0 {
		return cleaned, errs
	}
	return cleaned, nil
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
