package firms

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReader() *Reader {
	return NewReader(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("standard FIRMS columns", func(t *testing.T) {
		path := writeCSV(t, t.TempDir(), "firms.csv",
			"latitude,longitude,brightness,acq_date,confidence,frp\n"+
				"3.4151,-76.5202,330.5,2024-01-14,82,12.5\n"+
				"3.4102,-76.5155,312.1,2024-01-15,n,8.2\n")

		detections, err := testReader().LoadFile(path)
		require.NoError(t, err)
		require.Len(t, detections, 2)

		d := detections[0]
		assert.Equal(t, 3.4151, d.Latitude)
		assert.Equal(t, -76.5202, d.Longitude)
		assert.Equal(t, 330.5, d.Brightness)
		assert.Equal(t, 12.5, d.FRP)
		assert.Equal(t, "82", d.Confidence)
		assert.Equal(t, "2024-01-14", d.Timestamp.Format("2006-01-02"))
		assert.Equal(t, "firms.csv", d.SourceFile)
	})

	t.Run("synonym and case-insensitive headers", func(t *testing.T) {
		path := writeCSV(t, t.TempDir(), "legacy.csv",
			"Lat,Longitud,Date\n3.42,-76.51,2023-08-07\n")

		detections, err := testReader().LoadFile(path)
		require.NoError(t, err)
		require.Len(t, detections, 1)
		assert.Equal(t, 3.42, detections[0].Latitude)
		assert.Equal(t, -76.51, detections[0].Longitude)
		assert.Equal(t, "2023-08-07", detections[0].Timestamp.Format("2006-01-02"))
	})

	t.Run("missing required columns", func(t *testing.T) {
		path := writeCSV(t, t.TempDir(), "broken.csv",
			"latitude,brightness\n3.42,330.0\n")

		_, err := testReader().LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "longitude")
		assert.Contains(t, err.Error(), "acq_date")
	})

	t.Run("unparsable values are coerced, not fatal", func(t *testing.T) {
		path := writeCSV(t, t.TempDir(), "dirty.csv",
			"latitude,longitude,acq_date\nnot-a-number,-76.51,bad-date\n")

		detections, err := testReader().LoadFile(path)
		require.NoError(t, err)
		require.Len(t, detections, 1)
		assert.True(t, math.IsNaN(detections[0].Latitude))
		assert.True(t, detections[0].Timestamp.IsZero())
		assert.False(t, detections[0].Valid(), "aggregator will drop and count it")
	})

	t.Run("optional columns absent", func(t *testing.T) {
		path := writeCSV(t, t.TempDir(), "minimal.csv",
			"latitude,longitude,acq_date\n3.42,-76.51,2024-01-14\n")

		detections, err := testReader().LoadFile(path)
		require.NoError(t, err)
		require.Len(t, detections, 1)
		assert.Zero(t, detections[0].Brightness)
		assert.Empty(t, detections[0].Confidence)
	})
}

func TestLoadDir(t *testing.T) {
	t.Run("concatenates files, skipping unusable ones", func(t *testing.T) {
		dir := t.TempDir()
		writeCSV(t, dir, "a.csv", "latitude,longitude,acq_date\n3.41,-76.52,2024-01-14\n")
		writeCSV(t, dir, "b.csv", "latitude,longitude,acq_date\n3.42,-76.51,2024-01-15\n3.40,-76.50,2024-01-16\n")
		writeCSV(t, dir, "skip-me.csv", "brightness\n330.0\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

		detections, err := testReader().LoadDir(dir)
		require.NoError(t, err)
		assert.Len(t, detections, 3)

		// Sorted file order keeps runs reproducible.
		assert.Equal(t, "a.csv", detections[0].SourceFile)
		assert.Equal(t, "b.csv", detections[1].SourceFile)
	})

	t.Run("empty directory is an error", func(t *testing.T) {
		_, err := testReader().LoadDir(t.TempDir())
		require.Error(t, err)
	})

	t.Run("missing directory is an error", func(t *testing.T) {
		_, err := testReader().LoadDir(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
	})
}
