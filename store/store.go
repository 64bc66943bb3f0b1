// Package store archives self-play sessions as parquet files for later
// analysis.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// Row is a single placed piece of a self-play session.
type Row struct {
	GameID       string `parquet:"game_id,dict"`
	PieceIndex   int32  `parquet:"piece_index"`
	Piece        string `parquet:"piece,dict"`
	Hold         bool   `parquet:"hold"`
	Rotation     int32  `parquet:"rotation"`
	X            int32  `parquet:"x"`
	Y            int32  `parquet:"y"`
	InputCount   int32  `parquet:"input_count"`
	LinesCleared int32  `parquet:"lines_cleared"`
	B2B          bool   `parquet:"b2b"`
	Combo        int32  `parquet:"combo"`
	Source       string `parquet:"source,dict"`
	FieldJSON    []byte `parquet:"field_json,optional,zstd"`
}

// Writer buffers rows into a temp file and renames it into place on Close, so
// readers never observe a partially written archive.
type Writer struct {
	tmpPath string
	outPath string
	file    *os.File
	writer  *parquet.GenericWriter[Row]
	rows    int
}

func NewWriter(outDir string) (*Writer, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("session_%d.parquet", time.Now().UnixNano())
	tmpPath := filepath.Join(tmpDir, name)
	outPath := filepath.Join(outDir, name)

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[Row](f, parquet.Compression(&zstd.Codec{}))
	return &Writer{tmpPath: tmpPath, outPath: outPath, file: f, writer: w}, nil
}

func (w *Writer) Write(rows ...Row) error {
	n, err := w.writer.Write(rows)
	w.rows += n
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func (w *Writer) Rows() int {
	return w.rows
}

// Close flushes the parquet footer and moves the file into the output
// directory.
func (w *Writer) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close parquet file: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.outPath); err != nil {
		return fmt.Errorf("publish parquet file: %w", err)
	}
	return nil
}

// Path returns the final location of the archive.
func (w *Writer) Path() string {
	return w.outPath
}
