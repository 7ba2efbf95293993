package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamFields() []FieldDefinition {
	return []FieldDefinition{
		{Name: "Team Name", Type: FieldText, Required: true},
		{Name: "Player Count", Type: FieldNumber, Required: false},
		{Name: "Contact Email", Type: FieldEmail, Required: true},
		{Name: "Roster Photo", Type: FieldFile, Required: true},
		{Name: "Rank Screenshot", Type: FieldScreenshot, Required: false},
	}
}

func TestSchemaValidate(t *testing.T) {
	noFiles := func(string) bool { return false }
	allFiles := func(string) bool { return true }

	tests := []struct {
		name     string
		fields   []FieldDefinition
		values   map[string]any
		hasFile  func(string) bool
		wantErrs []string
	}{
		{
			name:    "complete submission passes",
			fields:  teamFields(),
			values:  map[string]any{"Team Name": "Ghost Squad", "Contact Email": "cap@ghost.gg"},
			hasFile: allFiles,
		},
		{
			name:     "missing required text",
			fields:   teamFields(),
			values:   map[string]any{"Contact Email": "cap@ghost.gg"},
			hasFile:  allFiles,
			wantErrs: []string{"Team Name"},
		},
		{
			name:     "empty required text",
			fields:   teamFields(),
			values:   map[string]any{"Team Name": "", "Contact Email": "cap@ghost.gg"},
			hasFile:  allFiles,
			wantErrs: []string{"Team Name"},
		},
		{
			name:     "invalid email",
			fields:   teamFields(),
			values:   map[string]any{"Team Name": "Ghost Squad", "Contact Email": "not-an-email"},
			hasFile:  allFiles,
			wantErrs: []string{"Contact Email"},
		},
		{
			name:    "optional email may be empty",
			fields:  []FieldDefinition{{Name: "Backup Email", Type: FieldEmail}},
			values:  map[string]any{"Backup Email": ""},
			hasFile: noFiles,
		},
		{
			name:     "required file missing",
			fields:   teamFields(),
			values:   map[string]any{"Team Name": "Ghost Squad", "Contact Email": "cap@ghost.gg"},
			hasFile:  noFiles,
			wantErrs: []string{"Roster Photo"},
		},
		{
			name:    "optional file missing is fine",
			fields:  []FieldDefinition{{Name: "Rank Screenshot", Type: FieldScreenshot}},
			values:  map[string]any{},
			hasFile: noFiles,
		},
		{
			name:     "non-numeric number field",
			fields:   teamFields(),
			values:   map[string]any{"Team Name": "Ghost Squad", "Contact Email": "cap@ghost.gg", "Player Count": "five"},
			hasFile:  allFiles,
			wantErrs: []string{"Player Count"},
		},
		{
			name:     "required number missing",
			fields:   []FieldDefinition{{Name: "Age", Type: FieldNumber, Required: true}},
			values:   map[string]any{},
			hasFile:  noFiles,
			wantErrs: []string{"Age"},
		},
		{
			name:    "unknown type accepts anything",
			fields:  []FieldDefinition{{Name: "Mystery", Type: FieldType("color"), Required: true}},
			values:  map[string]any{"Mystery": []any{"weird"}},
			hasFile: noFiles,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Compile(tt.fields).Validate(tt.values, tt.hasFile)
			if len(tt.wantErrs) == 0 {
				assert.Nil(t, errs)
				return
			}
			require.NotNil(t, errs)
			for _, field := range tt.wantErrs {
				assert.Contains(t, errs, field)
			}
			assert.Len(t, errs, len(tt.wantErrs))
		})
	}
}

func TestSchemaValidateRejectsThenAccepts(t *testing.T) {
	// The core property: a submission omitting a required value fails, and
	// the same submission passes once the value is filled in.
	schema := Compile([]FieldDefinition{{Name: "Team Name", Type: FieldText, Required: true}})

	values := map[string]any{}
	_, errs := schema.Validate(values, nil)
	require.NotNil(t, errs)
	assert.Equal(t, "Team Name is required.", errs["Team Name"])

	values["Team Name"] = "Ghost Squad"
	_, errs = schema.Validate(values, nil)
	assert.Nil(t, errs)
}

func TestSchemaValidateCoercesNumbers(t *testing.T) {
	schema := Compile([]FieldDefinition{{Name: "Player Count", Type: FieldNumber, Required: true}})

	cleaned, errs := schema.Validate(map[string]any{"Player Count": "5"}, nil)
	require.Nil(t, errs)
	assert.Equal(t, 5.0, cleaned["Player Count"])

	cleaned, errs = schema.Validate(map[string]any{"Player Count": 7.0}, nil)
	require.Nil(t, errs)
	assert.Equal(t, 7.0, cleaned["Player Count"])
}

func TestRequiredFileMessageNamesField(t *testing.T) {
	schema := Compile([]FieldDefinition{{Name: "Roster Photo", Type: FieldFile, Required: true}})
	_, errs := schema.Validate(map[string]any{}, func(string) bool { return false })
	require.NotNil(t, errs)
	assert.Equal(t, "Required file for Roster Photo is missing.", errs["Roster Photo"])
}

func TestValidateFieldList(t *testing.T) {
	tests := []struct {
		name    string
		fields  []FieldDefinition
		wantErr string
	}{
		{
			name:   "valid list",
			fields: teamFields(),
		},
		{
			name: "duplicate names",
			fields: []FieldDefinition{
				{Name: "Team Name", Type: FieldText},
				{Name: "Team Name", Type: FieldEmail},
			},
			wantErr: "duplicate field name",
		},
		{
			name:    "empty name",
			fields:  []FieldDefinition{{Name: "  ", Type: FieldText}},
			wantErr: "empty name",
		},
		{
			name:    "unknown type",
			fields:  []FieldDefinition{{Name: "Mood", Type: FieldType("color")}},
			wantErr: "unsupported type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFieldList(tt.fields)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSchemaCacheReusesUntilFieldsChange(t *testing.T) {
	cache := NewSchemaCache()
	fields := teamFields()

	first := cache.Get("t1", fields)
	second := cache.Get("t1", fields)
	assert.Same(t, first, second)

	// A different tournament gets its own entry.
	other := cache.Get("t2", fields)
	assert.NotSame(t, first, other)

	// Editing the form evicts the stale validator.
	edited := append(teamFields(), FieldDefinition{Name: "Discord Tag", Type: FieldText})
	third := cache.Get("t1", edited)
	assert.NotSame(t, first, third)
	_, ok := third.Field("Discord Tag")
	assert.True(t, ok)
}
