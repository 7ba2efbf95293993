package forms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
)

// ErrNoIdentity is returned when a submission is encoded without a signed-in
// user — the registration endpoint would reject it anyway, so no payload is
// built and no network call should be made.
var ErrNoIdentity = errors.New("submission has no user identity")

// FilePart is a single selected file for a file/screenshot field.
type FilePart struct {
	Filename string
	Content  io.Reader
}

// Submission is a completed registration form ready for transport.
// Values holds the full customData mapping; entries for file-typed fields are
// ignored in favor of Files, which carries the actual binary content.
type Submission struct {
	TournamentID string
	UserID       string
	Fields       []FieldDefinition
	Values       map[string]any
	Files        map[string]FilePart
}

// Encode builds the multipart payload the registration endpoint accepts:
// tournamentId, userId, a JSON copy of the field definitions (so the server
// can re-check required files without another tournament fetch), the non-file
// values as a single JSON customData part, and one binary part per file field
// named after the field.
func Encode(sub Submission) (*bytes.Buffer, string, error) {
	if sub.UserID == "" {
		return nil, "", ErrNoIdentity
	}
	if sub.TournamentID == "" {
		return nil, "", errors.New("submission has no tournament id")
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField("tournamentId", sub.TournamentID); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("userId", sub.UserID); err != nil {
		return nil, "", err
	}

	fieldsJSON, err := json.Marshal(sub.Fields)
	if err != nil {
		return nil, "", fmt.Errorf("marshal registration fields: %w", err)
	}
	if err := w.WriteField("registrationFields", string(fieldsJSON)); err != nil {
		return nil, "", err
	}

	// Partition: scalar values travel together as one JSON object, file
	// selections become individual binary parts.
	scalars := make(map[string]any, len(sub.Values))
	for name, value := range sub.Values {
		if def, ok := fieldByName(sub.Fields, name); ok && def.Type.IsFile() {
			continue
		}
		scalars[name] = value
	}
	scalarJSON, err := json.Marshal(scalars)
	if err != nil {
		return nil, "", fmt.Errorf("marshal customData: %w", err)
	}
	if err := w.WriteField("customData", string(scalarJSON)); err != nil {
		return nil, "", err
	}

	for name, file := range sub.Files {
		def, ok := fieldByName(sub.Fields, name)
		if !ok || !def.Type.IsFile() {
			continue
		}
		part, err := w.CreateFormFile(name, file.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copy file for %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func fieldByName(fields []FieldDefinition, name string) (FieldDefinition, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}
