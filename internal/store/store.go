// Package store persists property snapshots by name. Every backend keeps
// the flat snapshot produced by pkg/snapshot and nothing else.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/snapshot"
	"go.uber.org/zap"
)

// ErrInvalidName is returned when a property name is empty.
var ErrInvalidName = errors.New("property name must not be empty")

// Store saves, lists and deletes property snapshots.
type Store interface {
	// Save overwrites any snapshot already stored under name.
	Save(ctx context.Context, name string, s snapshot.Snapshot) error
	// LoadAll returns every stored snapshot sorted by name.
	LoadAll(ctx context.Context) ([]snapshot.Snapshot, error)
	// Delete removes the snapshot stored under name. A missing name is not
	// an error.
	Delete(ctx context.Context, name string) error
	Close(ctx context.Context) error
}

// Config selects and configures a backend.
type Config struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn,omitempty"`             // sqlite/postgres DSN, redis address, mongodb URI
	Path            string `yaml:"path,omitempty"`            // csv file
	Prefix          string `yaml:"prefix,omitempty"`          // redis key prefix
	Database        string `yaml:"database,omitempty"`        // mongodb database
	Collection      string `yaml:"collection,omitempty"`      // mongodb collection
	SpreadsheetID   string `yaml:"spreadsheetId,omitempty"`   // sheets
	CredentialsPath string `yaml:"credentialsPath,omitempty"` // sheets
	SheetRange      string `yaml:"sheetRange,omitempty"`      // sheets
}

// New builds the backend named by cfg.Driver. An empty driver selects the
// in-memory store.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("driver", cfg.Driver))

	switch strings.ToLower(cfg.Driver) {
	case "", constants.StorageDriverMemory:
		return NewMemory(), nil
	case constants.StorageDriverCSV:
		return NewCSV(cfg.Path, logger)
	case constants.StorageDriverSQLite, constants.StorageDriverPostgres:
		return NewSQL(cfg.Driver, cfg.DSN, logger)
	case constants.StorageDriverRedis:
		return NewRedis(ctx, cfg.DSN, cfg.Prefix, logger)
	case constants.StorageDriverMongoDB:
		return NewMongo(ctx, cfg.DSN, cfg.Database, cfg.Collection, logger)
	case constants.StorageDriverSheets:
		return NewSheets(ctx, cfg.SpreadsheetID, cfg.CredentialsPath, cfg.SheetRange, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// prepare copies s and stamps the property name the snapshot is stored
// under, so a snapshot read back always names its own key.
func prepare(name string, s snapshot.Snapshot) snapshot.Snapshot {
	out := make(snapshot.Snapshot, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[snapshot.KeyPropertyName] = name
	return out
}

func sortByName(snapshots []snapshot.Snapshot) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Name() < snapshots[j].Name()
	})
}
