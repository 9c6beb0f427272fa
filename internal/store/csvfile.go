package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/iwvelando/str-forecast/pkg/snapshot"
	"go.uber.org/zap"
)

// CSV keeps every snapshot as one row of a single CSV file. The header is
// the union of all snapshot keys, property_name first.
type CSV struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewCSV returns a store backed by the CSV file at path. The file is
// created on the first save.
func NewCSV(path string, logger *zap.Logger) (*CSV, error) {
	if path == "" {
		return nil, fmt.Errorf("csv store requires a path")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSV{path: path, logger: logger}, nil
}

// Save implements Store.
func (c *CSV) Save(_ context.Context, name string, s snapshot.Snapshot) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.read()
	if err != nil {
		return err
	}
	rows[name] = prepare(name, s)
	if err := c.write(rows); err != nil {
		return err
	}
	c.logger.Debug("saved property",
		zap.String("op", "store.CSV.Save"),
		zap.String("property", name),
		zap.String("path", c.path),
	)
	return nil
}

// LoadAll implements Store.
func (c *CSV) LoadAll(_ context.Context) ([]snapshot.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.read()
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.Snapshot, 0, len(rows))
	for _, s := range rows {
		out = append(out, s)
	}
	sortByName(out)
	return out, nil
}

// Delete implements Store.
func (c *CSV) Delete(_ context.Context, name string) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.read()
	if err != nil {
		return err
	}
	if _, ok := rows[name]; !ok {
		return nil
	}
	delete(rows, name)
	return c.write(rows)
}

// Close implements Store.
func (c *CSV) Close(_ context.Context) error {
	return nil
}

func (c *CSV) read() (map[string]snapshot.Snapshot, error) {
	rows := make(map[string]snapshot.Snapshot)

	f, err := os.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return rows, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return rows, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", c.path, err)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", c.path, err)
		}
		s := make(snapshot.Snapshot, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			// Empty cells are values too: a room type may have an empty name.
			s[key] = ""
			if i < len(record) {
				s[key] = record[i]
			}
		}
		if name := s.Name(); name != "" {
			rows[name] = s
		}
	}
	return rows, nil
}

// write replaces the file atomically through a temporary file in the same
// directory.
func (c *CSV) write(rows map[string]snapshot.Snapshot) error {
	snapshots := make([]snapshot.Snapshot, 0, len(rows))
	for _, s := range rows {
		snapshots = append(snapshots, s)
	}
	sortByName(snapshots)
	header := headerFor(snapshots)

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		return err
	}
	for _, s := range snapshots {
		record := make([]string, len(header))
		for i, key := range header {
			record[i] = s[key]
		}
		if err := writer.Write(record); err != nil {
			tmp.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replace %s: %w", c.path, err)
	}
	return nil
}

func headerFor(snapshots []snapshot.Snapshot) []string {
	seen := map[string]bool{snapshot.KeyPropertyName: true}
	var keys []string
	for _, s := range snapshots {
		for key := range s {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return append([]string{snapshot.KeyPropertyName}, keys...)
}
