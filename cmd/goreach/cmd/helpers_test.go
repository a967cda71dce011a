package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags() {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	reset(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		reset(c.Flags())
	}
}

// executeCommand runs the root command with args and returns what it printed.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	setOutputWriter(&buf)
	defer resetOutputWriter()

	resetFlags()
	defer resetFlags()

	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)

	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return buf.String(), err
}

// writeDataDir writes one NDJSON file per type into a temp directory.
func writeDataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for typeName, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, typeName+".ndjson"), []byte(content), 0o644))
	}
	return dir
}

func scenarioFiles() map[string]string {
	return map[string]string{
		"Patient": `{"id":"P1","name":[{"family":"Doe","given":["John"]}]}` + "\n",
		"Observation": `{"id":"O1","subject":{"reference":"Patient/P1"}}` + "\n" +
			`{"id":"O2","subject":{"reference":"Patient/P1"}}` + "\n" +
			"\n" +
			`{"id":"O3"}` + "\n",
		"Encounter": `{"id":"E1","basedOn":{"reference":"Observation/O1"}}` + "\n",
	}
}
