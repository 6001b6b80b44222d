package qa

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadJSONL decodes every non-blank line of a JSONL file into T. A missing
// file is not an error; it returns an empty slice so callers can treat a
// fresh output path and a resumed one uniformly.
func ReadJSONL[T any](path string) ([]T, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("qa: empty jsonl path")
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return DecodeJSONL[T](f)
}

// DecodeJSONL reads JSONL records from r. Lines that fail to decode abort
// the read; a truncated trailing line from an interrupted run is surfaced
// rather than silently dropped.
func DecodeJSONL[T any](r io.Reader) ([]T, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	var out []T
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return out, fmt.Errorf("qa: parse jsonl line %d: %w", line, err)
		}
		out = append(out, item)
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// Writer appends JSON lines to a file, syncing after every record so a
// killed run loses at most the line being written.
type Writer struct {
	f *os.File
}

// OpenWriter opens path for appending, creating parent directories.
func OpenWriter(path string) (*Writer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("qa: empty output path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("qa: create output dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("qa: open output: %w", err)
	}
	return &Writer{f: f}, nil
}

// Append marshals v and writes it as one line.
func (w *Writer) Append(v any) error {
	if w == nil || w.f == nil {
		return errors.New("qa: writer not open")
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("qa: marshal record: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.f.Write(b); err != nil {
		return fmt.Errorf("qa: write record: %w", err)
	}
	return w.f.Sync()
}

func (w *Writer) Close() error {
	if w == nil || w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}
