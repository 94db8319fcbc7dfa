package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// ResultRow is one benchmark request attempt as persisted to parquet.
type ResultRow struct {
	TimestampMs int64   `parquet:"name=ts, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Benchmark   string  `parquet:"name=benchmark, type=BYTE_ARRAY, convertedtype=UTF8"`
	RequestID   int32   `parquet:"name=request_id, type=INT32"`
	LatencyMs   float64 `parquet:"name=latency_ms, type=DOUBLE"`
	Tokens      int32   `parquet:"name=tokens, type=INT32"`
	Success     bool    `parquet:"name=success, type=BOOLEAN"`
	ErrMsg      string  `parquet:"name=err_msg, type=BYTE_ARRAY, convertedtype=UTF8"`
	Model       string  `parquet:"name=model, type=BYTE_ARRAY, convertedtype=UTF8"`
	Concurrency int32   `parquet:"name=concurrency, type=INT32"`
}

// ParquetWriter handles writing per-request results to a parquet file.
type ParquetWriter struct {
	writer    *writer.ParquetWriter
	file      source.ParquetFile
	mutex     sync.Mutex
	filePath  string
	batchSize int
	rows      []ResultRow
}

// NewParquetWriter creates a parquet writer under outputDir, batching rows
// in memory until batchSize is reached.
func NewParquetWriter(outputDir string, batchSize int) (*ParquetWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	fileName := fmt.Sprintf("llm-bench-%s.parquet", timestamp)
	filePath := filepath.Join(outputDir, fileName)

	file, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet file: %w", err)
	}

	pw, err := writer.NewParquetWriter(file, new(ResultRow), 4)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	return &ParquetWriter{
		writer:    pw,
		file:      file,
		filePath:  filePath,
		batchSize: batchSize,
		rows:      make([]ResultRow, 0, batchSize),
	}, nil
}

// WriteRow adds a row to the batch and flushes if the batch is full.
func (pw *ParquetWriter) WriteRow(row ResultRow) error {
	pw.mutex.Lock()
	defer pw.mutex.Unlock()

	pw.rows = append(pw.rows, row)

	if len(pw.rows) >= pw.batchSize {
		return pw.flush()
	}

	return nil
}

// flush writes the current batch to the parquet file.
func (pw *ParquetWriter) flush() error {
	if len(pw.rows) == 0 {
		return nil
	}

	for _, row := range pw.rows {
		if err := pw.writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	pw.rows = pw.rows[:0]
	return nil
}

// Close flushes any remaining rows and closes the writer.
func (pw *ParquetWriter) Close() error {
	pw.mutex.Lock()
	defer pw.mutex.Unlock()

	if err := pw.flush(); err != nil {
		return err
	}

	if err := pw.writer.WriteStop(); err != nil {
		return fmt.Errorf("failed to stop parquet writer: %w", err)
	}

	if err := pw.file.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %w", err)
	}

	return nil
}

// FilePath returns the path of the written file.
func (pw *ParquetWriter) FilePath() string {
	return pw.filePath
}
