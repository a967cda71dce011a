package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointer(t *testing.T) {
	tests := []struct {
		input    string
		wantType string
		wantID   string
		wantOK   bool
	}{
		{"Patient/P1", "Patient", "P1", true},
		{"Observation/abc-123", "Observation", "abc-123", true},
		{"Patient/P1/_history/2", "Patient", "P1", true},
		{"Patient/P 1", "", "", false},
		{"Patient/P1 ", "", "", false},
		{"Patient/", "", "", false},
		{"/P1", "", "", false},
		{"Patient", "", "", false},
		{"urn:uuid:0c3151bd-1cbf-4d64-b04d-cd9187a4c6e0", "", "", false},
		{"https://example.org/fhir/Patient/P1", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			typeName, id, ok := ParsePointer(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantType, typeName)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParse_TopLevelReference(t *testing.T) {
	rec, err := Parse([]byte(`{"id":"O1","subject":{"reference":"Patient/P1"}}`), DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, "O1", rec.ID)
	assert.Equal(t, []Ref{{Path: "subject", Type: "Patient", ID: "P1"}}, rec.Refs)
	assert.Empty(t, rec.Names)
}

func TestParse_DeeplyNestedReferences(t *testing.T) {
	line := `{
		"id": "E1",
		"participant": [
			{"individual": {"reference": "Practitioner/PR1"}},
			{"individual": {"reference": "Practitioner/PR2"}}
		],
		"diagnosis": [
			{"condition": {"reference": "Condition/C1"}, "use": {"coding": [{"code": "AD"}]}}
		],
		"extension": [
			{"extension": [{"valueReference": {"reference": "Location/L1"}}]}
		]
	}`

	rec, err := Parse([]byte(line), DefaultSchema())
	require.NoError(t, err)

	assert.ElementsMatch(t, []Ref{
		{Path: "participant.individual", Type: "Practitioner", ID: "PR1"},
		{Path: "participant.individual", Type: "Practitioner", ID: "PR2"},
		{Path: "diagnosis.condition", Type: "Condition", ID: "C1"},
		{Path: "extension.extension.valueReference", Type: "Location", ID: "L1"},
	}, rec.Refs)
}

func TestParse_FieldNameGating(t *testing.T) {
	// "Type/Id"-shaped values under other field names are not references
	line := `{
		"id": "D1",
		"note": "Patient/P9",
		"identifier": [{"value": "Encounter/E9"}],
		"content": {"url": "Binary/B1"},
		"subject": {"reference": "Patient/P1", "display": "Patient/P2"}
	}`

	rec, err := Parse([]byte(line), DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, []Ref{{Path: "subject", Type: "Patient", ID: "P1"}}, rec.Refs)
}

func TestParse_CustomReferenceField(t *testing.T) {
	schema := DefaultSchema()
	schema.ReferenceField = "ref"

	rec, err := Parse([]byte(`{"id":"X","a":{"ref":"Patient/P1"},"b":{"reference":"Patient/P2"}}`), schema)
	require.NoError(t, err)

	assert.Equal(t, []Ref{{Path: "a", Type: "Patient", ID: "P1"}}, rec.Refs)
}

func TestParse_RootPointer(t *testing.T) {
	rec, err := Parse([]byte(`{"id":"R1","reference":"Patient/P1"}`), DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, []Ref{{Path: "", Type: "Patient", ID: "P1"}}, rec.Refs)
}

func TestParse_NonStringReferenceIgnored(t *testing.T) {
	rec, err := Parse([]byte(`{"id":"R1","subject":{"reference":{"nested":"Patient/P1"}}}`), DefaultSchema())
	require.NoError(t, err)

	assert.Empty(t, rec.Refs)
}

func TestParse_Names(t *testing.T) {
	line := `{
		"id": "P1",
		"name": [
			{"use": "official", "family": "Doe", "given": ["John", "Q"]},
			{"use": "nickname", "given": ["Johnny"]},
			{"family": "Smith", "given": "Jack"}
		],
		"contact": [{"name": {"family": "Roe", "given": ["Jane"]}}]
	}`

	rec, err := Parse([]byte(line), DefaultSchema())
	require.NoError(t, err)

	require.Len(t, rec.Names, 2, "contact names and entries without family are not patient names")
	assert.Equal(t, "Doe", rec.Names[0].Family)
	assert.Equal(t, "John", rec.Names[0].First())
	assert.Equal(t, "Smith", rec.Names[1].Family)
	assert.Equal(t, "Jack", rec.Names[1].First())
}

func TestParse_SingleNameObject(t *testing.T) {
	rec, err := Parse([]byte(`{"id":"P1","name":{"family":"Doe","given":["John"]}}`), DefaultSchema())
	require.NoError(t, err)

	require.Len(t, rec.Names, 1)
	assert.Equal(t, "John", rec.Names[0].First())
}

func TestParse_NumericID(t *testing.T) {
	rec, err := Parse([]byte(`{"id":12345678901234567890}`), DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, "12345678901234567890", rec.ID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"missing id", `{"subject":{"reference":"Patient/P1"}}`, ErrMissingID},
		{"empty id", `{"id":""}`, ErrMissingID},
		{"object id", `{"id":{"value":"x"}}`, ErrMissingID},
		{"array line", `[{"id":"x"}]`, ErrNotObject},
		{"scalar line", `"Patient/P1"`, ErrNotObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), DefaultSchema())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"id":"x"`), DefaultSchema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestParse_TrailingData(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"second object", `{"id":"a"} {"id":"b","subject":{"reference":"Patient/P1"}}`},
		{"garbage", `{"id":"a"} garbage`},
		{"second value", `{"id":"a"}1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse([]byte(tt.line), DefaultSchema())
			assert.Nil(t, rec)
			require.ErrorIs(t, err, ErrTrailingData)
			assert.Contains(t, err.Error(), "invalid JSON: trailing data")
		})
	}

	rec, err := Parse([]byte("{\"id\":\"a\"}  \t\r"), DefaultSchema())
	require.NoError(t, err)
	assert.Equal(t, "a", rec.ID)
}

func TestParseError(t *testing.T) {
	err := &ParseError{Line: 7, Err: ErrMissingID}

	assert.Equal(t, "line 7: record has no identifier", err.Error())
	assert.True(t, errors.Is(err, ErrMissingID))
}

func TestParse_IsPure(t *testing.T) {
	line := []byte(`{"id":"O1","subject":{"reference":"Patient/P1"}}`)

	first, err := Parse(line, DefaultSchema())
	require.NoError(t, err)
	second, err := Parse(line, DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, first.Refs, second.Refs)
	assert.Len(t, second.Refs, 1, "parsing must not accumulate references across calls")
}
