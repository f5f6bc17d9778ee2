package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acdex/internal/recdb"
	"acdex/internal/testutil"
)

// writeTestContainer creates a small but complete container on disk.
func writeTestContainer(t *testing.T, dir, name string) string {
	t.Helper()
	var comps []byte
	for _, rec := range [][]byte{
		testutil.PascalRecord(1, 0, recdb.TypeController, 0, "Ctrl",
			testutil.ControllerPayload("1756-L83E", 35, 11)),
		testutil.PascalRecord(2, 1, recdb.TypeProgram, 0, "Main",
			testutil.ProgramPayload("Cycle", false)),
		testutil.PascalRecord(3, 2, recdb.TypeRoutine, 0, "Cycle",
			testutil.RoutinePayload(0)),
		testutil.PascalRecord(4, 1, recdb.TypeTag, 1, "Motor",
			testutil.TagPayload("BOOL", 0, 0, false, false)),
		testutil.PascalRecord(5, 3, recdb.TypeRung, 0, "",
			[]byte("XIC(@00000004@)OTE(Lamp);")),
	} {
		comps = append(comps, rec...)
	}
	data := testutil.Container([]byte("project header"), testutil.GzipSegment(comps))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeTestContainer(t, dir, "plant.acd")
	out := filepath.Join(dir, "plant.L5X")

	buf := &bytes.Buffer{}
	cmd := NewConvertCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{in, out, "--export-date", "Mon Aug 25 10:00:00 2025"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "converted")

	xmlData, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(xmlData), "<RSLogix5000Content")
	assert.Contains(t, string(xmlData), `Name="Ctrl"`)
	assert.Contains(t, string(xmlData), "XIC(Motor)OTE(Lamp);")

	reportData, err := os.ReadFile(out + ".report.json")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(reportData, &decoded))
	assert.Contains(t, decoded, "score")
	assert.Contains(t, decoded, "counts")
}

func TestConvertCommandJSON(t *testing.T) {
	dir := t.TempDir()
	in := writeTestContainer(t, dir, "plant.acd")
	out := filepath.Join(dir, "plant.L5X")

	buf := &bytes.Buffer{}
	cmd := NewConvertCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{in, out})
	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestConvertCommandReproducibleOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeTestContainer(t, dir, "plant.acd")
	outA := filepath.Join(dir, "a.L5X")
	outB := filepath.Join(dir, "b.L5X")

	for _, out := range []string{outA, outB} {
		cmd := NewConvertCommand(&RootOptions{Format: "text"})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{in, out, "--export-date", "Mon Aug 25 10:00:00 2025"})
		require.NoError(t, cmd.Execute())
	}

	a, err := os.ReadFile(outA)
	require.NoError(t, err)
	b, err := os.ReadFile(outB)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConvertCommandMissingInput(t *testing.T) {
	dir := t.TempDir()
	cmd := NewConvertCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(dir, "nope.acd"), filepath.Join(dir, "out.L5X")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConvertCommandUnreadableContainer(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "junk.acd")
	require.NoError(t, os.WriteFile(in, []byte("not a container at all"), 0o644))

	cmd := NewConvertCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{in, filepath.Join(dir, "out.L5X")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFatal, GetExitCode(err))
}

func TestConvertCommandConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := writeTestContainer(t, dir, "plant.acd")
	out := filepath.Join(dir, "plant.L5X")
	cfg := filepath.Join(dir, "acdex.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("software_revision: \"36.00\"\n"), 0o644))

	cmd := NewConvertCommand(&RootOptions{Format: "text", ConfigPath: cfg})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{in, out})
	require.NoError(t, cmd.Execute())

	xmlData, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(xmlData), `SoftwareRevision="36.00"`)
}
