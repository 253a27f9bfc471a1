package tracefile_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/accball/internal/motion"
	"github.com/verte-zerg/accball/internal/tracefile"
)

var samples = []motion.Sample{
	{AX: 0.125, AY: -9.80665, TimestampNanos: 1_000_000_000},
	{AX: -1.5, AY: 0, TimestampNanos: 1_016_666_667},
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, tracefile.FormatYAML, tracefile.FormatForPath("run.YML"))
	assert.Equal(t, tracefile.FormatYAML, tracefile.FormatForPath("/tmp/run.yaml"))
	assert.Equal(t, tracefile.FormatCSV, tracefile.FormatForPath("run.csv"))
	assert.Equal(t, tracefile.FormatCSV, tracefile.FormatForPath("run"))
}

func TestLoadCSVSkipsCommentsAndBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	body := "# recorded on a phone\n\n1000000000, 0.125, -9.80665\n1016666667,-1.5,0\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	loaded, err := tracefile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, samples, loaded)
}

func TestLoadErrors(t *testing.T) {
	type testCase struct {
		name    string
		file    string
		body    string
		wantErr string
	}

	testCases := []testCase{
		{name: "empty csv", file: "a.csv", body: "# nothing\n", wantErr: "trace file is empty"},
		{name: "short line", file: "b.csv", body: "1,2,3\n4,5\n", wantErr: "line 2: expected 3 fields"},
		{name: "bad timestamp", file: "c.csv", body: "x,1,2\n", wantErr: "line 1: invalid timestamp"},
		{name: "bad ay", file: "d.csv", body: "1,1,y\n", wantErr: "line 1: invalid ay"},
		{name: "empty yaml", file: "e.yaml", body: "", wantErr: "trace file is empty"},
		{name: "unknown yaml field", file: "f.yaml", body: "samples:\n  - t: 1\n    az: 2\n", wantErr: "failed to decode yaml"},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o644))
			_, err := tracefile.Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestWriteThenLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.csv", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "exports", name)
			require.NoError(t, tracefile.Write(path, samples, tracefile.FormatForPath(path)))
			loaded, err := tracefile.Load(path)
			require.NoError(t, err)
			assert.Equal(t, samples, loaded)
		})
	}

	entries, err := os.ReadDir(filepath.Join(dir, "exports"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestEncodeYAMLLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tracefile.Encode(&buf, samples[:1], tracefile.FormatYAML))
	out := buf.String()
	assert.Contains(t, out, "samples:")
	assert.Contains(t, out, "t: 1000000000")
	assert.Contains(t, out, "ax: 0.125")
	assert.Contains(t, out, "ay: -9.80665")
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	err := tracefile.Encode(&bytes.Buffer{}, samples, "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
