package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/snapshot"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// propertySnapshot is one row of the property_snapshots table.
type propertySnapshot struct {
	Name      string `gorm:"primaryKey;size:255"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (propertySnapshot) TableName() string {
	return "property_snapshots"
}

// SQL stores snapshots as JSON payloads through gorm.
type SQL struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQL opens a sqlite or postgres database and migrates the snapshot
// table.
func NewSQL(driver, dsn string, log *zap.Logger) (*SQL, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case constants.StorageDriverSQLite:
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(dsn)
	case constants.StorageDriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres store requires a dsn")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return NewSQLFromDB(db, log)
}

// NewSQLFromDB wraps an open gorm connection.
func NewSQLFromDB(db *gorm.DB, log *zap.Logger) (*SQL, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&propertySnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate property_snapshots: %w", err)
	}
	return &SQL{db: db, logger: log}, nil
}

// Save implements Store.
func (s *SQL) Save(ctx context.Context, name string, snap snapshot.Snapshot) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(prepare(name, snap))
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}

	row := propertySnapshot{Name: name, Payload: string(payload), UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}

	s.logger.Debug("saved property",
		zap.String("op", "store.SQL.Save"),
		zap.String("property", name),
	)
	return nil
}

// LoadAll implements Store.
func (s *SQL) LoadAll(ctx context.Context) ([]snapshot.Snapshot, error) {
	var rows []propertySnapshot
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}

	out := make([]snapshot.Snapshot, 0, len(rows))
	for _, row := range rows {
		var snap snapshot.Snapshot
		if err := json.Unmarshal([]byte(row.Payload), &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", row.Name, err)
		}
		out = append(out, prepare(row.Name, snap))
	}
	sortByName(out)
	return out, nil
}

// Delete implements Store.
func (s *SQL) Delete(ctx context.Context, name string) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&propertySnapshot{}, "name = ?", name).Error; err != nil {
		return fmt.Errorf("delete snapshot %s: %w", name, err)
	}
	return nil
}

// Close implements Store.
func (s *SQL) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
