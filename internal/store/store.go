// Package store persists the teams and users documents. Each document is a
// single row holding the whole JSON payload; a write replaces the previous
// payload entirely, so the next read observes either the old or the new
// content, never a mix.
package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/LautaroGarc/dardito/internal/constants"
	"github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is one persisted whole-document row.
type Document struct {
	Key       string `gorm:"primarykey;type:varchar(64)"`
	Payload   string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

const (
	keyTeams = "teams"
	keyUsers = "users"
)

// Store reads and replaces whole documents.
type Store interface {
	ReadTeams(ctx context.Context) (*models.TeamsDocument, error)
	WriteTeams(ctx context.Context, doc *models.TeamsDocument) error
	ReadUsers(ctx context.Context) (*models.UsersDocument, error)
	WriteUsers(ctx context.Context, doc *models.UsersDocument) error
}

// GormStore is the database-backed Store. Reads and writes are retried a
// bounded number of times with linear backoff before the failure surfaces as
// STORE_UNAVAILABLE.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormStore(db *gorm.DB, timeout time.Duration) *GormStore {
	return &GormStore{db: db, timeout: timeout}
}

func (s *GormStore) ReadTeams(ctx context.Context) (*models.TeamsDocument, error) {
	payload, err := s.read(ctx, keyTeams)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return models.NewTeamsDocument(), nil
	}

	var doc models.TeamsDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, errors.InvalidState("teams document is not valid JSON: %v", err)
	}
	if err := checkSchema(doc.SchemaVersion); err != nil {
		return nil, err
	}
	if doc.Teams == nil {
		doc.Teams = map[string]*models.Team{}
	}
	return &doc, nil
}

func (s *GormStore) WriteTeams(ctx context.Context, doc *models.TeamsDocument) error {
	doc.SchemaVersion = models.SchemaVersion
	return s.write(ctx, keyTeams, doc)
}

func (s *GormStore) ReadUsers(ctx context.Context) (*models.UsersDocument, error) {
	payload, err := s.read(ctx, keyUsers)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return models.NewUsersDocument(), nil
	}

	var doc models.UsersDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, errors.InvalidState("users document is not valid JSON: %v", err)
	}
	if err := checkSchema(doc.SchemaVersion); err != nil {
		return nil, err
	}
	if doc.Users == nil {
		doc.Users = map[string]*models.User{}
	}
	return &doc, nil
}

func (s *GormStore) WriteUsers(ctx context.Context, doc *models.UsersDocument) error {
	doc.SchemaVersion = models.SchemaVersion
	return s.write(ctx, keyUsers, doc)
}

// checkSchema rejects any document that is not at the current version.
// Legacy documents stored records as positional arrays whose field order
// varied between revisions; they require an explicit migration, never a
// best-effort parse.
func checkSchema(version int) error {
	if version != models.SchemaVersion {
		return errors.InvalidState(
			"document schema version %d is not supported (want %d); run the migration before serving this store",
			version, models.SchemaVersion)
	}
	return nil
}

func (s *GormStore) read(ctx context.Context, key string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= constants.StoreMaxRetries; attempt++ {
		var doc Document
		err := s.attempt(ctx, func(db *gorm.DB) error {
			return db.First(&doc, "key = ?", key).Error
		})
		if err == nil {
			return doc.Payload, nil
		}
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		lastErr = err
		sleepBackoff(ctx, attempt)
	}
	return "", errors.StoreUnavailable(lastErr, "reading %s document failed after %d attempts", key, constants.StoreMaxRetries)
}

func (s *GormStore) write(ctx context.Context, key string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return errors.InvalidState("encoding %s document: %v", key, err)
	}

	row := Document{Key: key, Payload: string(payload), UpdatedAt: time.Now()}

	var lastErr error
	for attempt := 1; attempt <= constants.StoreMaxRetries; attempt++ {
		err := s.attempt(ctx, func(db *gorm.DB) error {
			return db.
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "key"}},
					DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
				}).
				Create(&row).Error
		})
		if err == nil {
			return nil
		}
		lastErr = err
		sleepBackoff(ctx, attempt)
	}
	return errors.StoreUnavailable(lastErr, "writing %s document failed after %d attempts", key, constants.StoreMaxRetries)
}

// attempt runs one store operation under the configured I/O deadline.
func (s *GormStore) attempt(ctx context.Context, op func(db *gorm.DB) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return op(s.db.WithContext(ctx))
}

func sleepBackoff(ctx context.Context, attempt int) {
	delay := time.Duration(attempt*constants.StoreRetryDelay) * time.Millisecond
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}
