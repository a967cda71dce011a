package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandStructure(t *testing.T) {
	for _, name := range []string{"count", "refs", "list-types", "validate", "version"} {
		t.Run(name, func(t *testing.T) {
			c, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())
			assert.NotEmpty(t, c.Short)
			assert.NotEmpty(t, c.Long)
		})
	}
}

func TestRefs(t *testing.T) {
	files := scenarioFiles()
	files["Encounter"] = `{"id":"E1","basedOn":{"reference":"Observation/O1"},"location":[{"location":{"reference":"Location/L1"}}]}` + "\n"
	dir := writeDataDir(t, files)

	out, err := executeCommand(t, "refs", "--data-dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Reference Fields: 4 types, 3 links")
	assert.Contains(t, out, "[Encounter]")
	assert.Contains(t, out, "  basedOn -> Observation\n")
	assert.Contains(t, out, "  location.location -> Location (missing)\n")
	assert.Contains(t, out, "[Patient]\n---------\n  (no references)\n")
	assert.Contains(t, out, "[Record Links]\n"+
		"--------------\n"+
		"  Encounter -> Location: 1 link(s) from 1 record(s)\n"+
		"  Encounter -> Observation: 1 link(s) from 1 record(s)\n"+
		"  Observation -> Patient: 2 link(s) from 2 record(s)\n")
	assert.Contains(t, out, "  • Location (referenced by Encounter)\n")
	assert.Contains(t, out, "  [1] Encounter, Location, Observation, Patient\n")
}

func TestListTypes(t *testing.T) {
	dir := writeDataDir(t, scenarioFiles())

	out, err := executeCommand(t, "list-types", "--data-dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "1. Encounter\n")
	assert.Contains(t, out, "2. Observation\n   Records:       3\n   References:    2 in 1 field(s)\n")
	assert.Contains(t, out, "   Linked from:   Encounter\n")
	assert.Contains(t, out, "Total: 3 type(s), 5 record(s)")
	assert.NotContains(t, out, "Referenced but missing")
}

func TestListTypes_Empty(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, "list-types", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No collections found in "+dir)
}

func TestValidate(t *testing.T) {
	dir := writeDataDir(t, scenarioFiles())

	out, err := executeCommand(t, "validate", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Configuration is valid")
	assert.Contains(t, out, "Records: 5")
	assert.Contains(t, out, "✅ All records loaded successfully")
}

func TestValidate_MissingStartType(t *testing.T) {
	files := scenarioFiles()
	delete(files, "Patient")
	dir := writeDataDir(t, files)

	out, err := executeCommand(t, "validate", "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "❌ Start type Patient has no collection")
}

func TestValidate_MissingDirectory(t *testing.T) {
	_, err := executeCommand(t, "validate", "--data-dir", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitInput, ExitCode(err))
}

func TestValidate_BadConfigValue(t *testing.T) {
	_, err := executeCommand(t, "validate", "-o", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestRefs_Mermaid(t *testing.T) {
	files := scenarioFiles()
	files["Encounter"] = `{"id":"E1","basedOn":{"reference":"Observation/O1"},"location":[{"location":{"reference":"Location/L1"}}]}` + "\n"
	files["Device"] = `{"id":"D1"}` + "\n"
	dir := writeDataDir(t, files)

	out, err := executeCommand(t, "refs", "--data-dir", dir, "--mermaid")
	require.NoError(t, err)
	assert.Equal(t, ""+
		"graph LR\n"+
		"    Encounter -->|location.location| Location\n"+
		"    Encounter -->|basedOn| Observation\n"+
		"    Observation -->|subject| Patient\n"+
		"    Device\n"+
		"    style Location stroke-dasharray: 5 5\n", out)
}
