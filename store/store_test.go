package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir)
	require.NoError(t, err)

	rows := []Row{
		{GameID: "g1", PieceIndex: 0, Piece: "T", Rotation: 2, X: 3, Y: 0, LinesCleared: 1, Combo: 1, Source: "test", FieldJSON: []byte(`[]`)},
		{GameID: "g1", PieceIndex: 1, Piece: "I", Hold: true, X: 0, Y: 0, Source: "test", FieldJSON: []byte(`[]`)},
	}
	require.NoError(t, w.Write(rows...))
	require.Equal(t, 2, w.Rows())
	require.NoError(t, w.Close())

	// The archive is published atomically into the output directory.
	require.FileExists(t, w.Path())
	matches, err := filepath.Glob(filepath.Join(dir, "tmp", "*.parquet"))
	require.NoError(t, err)
	require.Empty(t, matches)

	f, err := os.Open(w.Path())
	require.NoError(t, err)
	defer f.Close()
	stat, err := f.Stat()
	require.NoError(t, err)

	read, err := parquet.Read[Row](f, stat.Size())
	require.NoError(t, err)
	require.Equal(t, rows, read)
}

func TestWriterRequiresOutDir(t *testing.T) {
	_, err := NewWriter("")
	require.Error(t, err)
}
