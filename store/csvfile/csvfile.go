/*
Package csvfile provides a flat CSV file implementation of ledger.Store.

FILE LAYOUT:
  One record per row, five fields, empty string for absent values:

    user_id,day,arrival_time,departure_time,worked_duration
    42,2024-01-01,08:00:00,12:30:00,4h 30m
    42,2024-01-02,08:10:00,,

  No header row. Row order is write order.

READING:
  A missing file is an empty store. Rows with the wrong field count, an
  unparsable day or broken quoting are skipped and logged; they never fail
  the whole load.

WRITING:
  RewriteAll writes a temporary file next to the target, fsyncs it, renames
  it over the target and fsyncs the directory. A failure at any step leaves
  the previous file intact. Append opens the file with O_APPEND.

LEGACY LOG:
  ReadLegacyLog parses the older three-field IN/OUT append log for import
  via ledger.Replay.
*/
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/warp/attendance-ledger/ledger"
)

const fieldsPerRecord = 5

// Store is a ledger.Store backed by one CSV file.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// New returns a store for path. The file is created on first write.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Exists reports whether the backing file exists.
func (s *Store) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// =============================================================================
// LOAD
// =============================================================================

// LoadAll reads every well-formed row in file order.
func (s *Store) LoadAll(_ context.Context) ([]ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	return s.decode(f)
}

func (s *Store) decode(r io.Reader) ([]ledger.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var records []ledger.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				s.logger.Warn("skipping malformed row", "path", s.path, "line", parseErr.Line, "error", err)
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", s.path, err)
		}

		rec, ok := parseRow(row)
		if !ok {
			line, _ := reader.FieldPos(0)
			s.logger.Warn("skipping malformed row", "path", s.path, "line", line, "fields", len(row))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (ledger.Record, bool) {
	if len(row) != fieldsPerRecord {
		return ledger.Record{}, false
	}
	if _, err := ledger.ParseDay(row[1]); err != nil {
		return ledger.Record{}, false
	}
	return ledger.Record{
		UserID:         ledger.UserID(row[0]),
		Day:            row[1],
		ArrivalTime:    row[2],
		DepartureTime:  row[3],
		WorkedDuration: row[4],
	}, true
}

func formatRow(r ledger.Record) []string {
	return []string{string(r.UserID), r.Day, r.ArrivalTime, r.DepartureTime, r.WorkedDuration}
}

// =============================================================================
// WRITE
// =============================================================================

// RewriteAll atomically replaces the file contents with records.
func (s *Store) RewriteAll(_ context.Context, records []ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary store file: %w", err)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	for _, r := range records {
		if err := w.Write(formatRow(r)); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing temporary store file: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing temporary store file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temporary store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary store file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming store file into place: %w", err)
	}

	// Sync the parent directory so the rename survives a crash.
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}

// Append adds one row at the end of the file, creating it if needed. A
// hand-edited file missing its final newline gets one first, so the new row
// starts on its own line.
func (s *Store) Append(_ context.Context, record ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", s.path, err)
	}

	unterminated, err := lacksFinalNewline(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("reading %s: %w", s.path, err)
	}
	if unterminated {
		if _, err := f.WriteString("\n"); err != nil {
			f.Close()
			return fmt.Errorf("appending to %s: %w", s.path, err)
		}
	}

	w := csv.NewWriter(f)
	if err := w.Write(formatRow(record)); err != nil {
		f.Close()
		return fmt.Errorf("appending to %s: %w", s.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("appending to %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", s.path, err)
	}
	return f.Close()
}

// lacksFinalNewline reports whether f is non-empty and does not end in '\n'.
func lacksFinalNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

var (
	_ ledger.Store  = (*Store)(nil)
	_ ledger.Prober = (*Store)(nil)
)
