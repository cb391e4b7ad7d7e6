package postgres

import (
	"context"
	"encoding/json"
	"errors"

	settingsDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/settings"
	"github.com/AtirathTechnologies/warehouse-hub/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository struct {
	db            *gorm.DB
	notifyChannel string
}

// NewDocumentRepository returns a gorm-backed store.Repository. On postgres
// each upsert also notifies notifyChannel with the document key; an empty
// channel disables notification.
func NewDocumentRepository(db *gorm.DB, notifyChannel string) store.Repository {
	return &DocumentRepository{db: db, notifyChannel: notifyChannel}
}

func (r *DocumentRepository) Get(ctx context.Context, key store.Key) (store.Document, error) {
	var row settingsDatamodel.Document
	err := r.db.WithContext(ctx).Where("doc_key = ?", string(key)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Document{Key: key}, nil
		}
		return store.Document{}, err
	}
	return store.Document{
		Key:       key,
		Body:      json.RawMessage(row.Body),
		Exists:    true,
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

func (r *DocumentRepository) Upsert(ctx context.Context, doc store.Document) error {
	row := settingsDatamodel.Document{
		Key:       string(doc.Key),
		Body:      string(doc.Body),
		UpdatedAt: doc.UpdatedAt,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		if r.notifyChannel == "" || tx.Dialector.Name() != "postgres" {
			return nil
		}
		return tx.Exec("SELECT pg_notify(?, ?)", r.notifyChannel, string(doc.Key)).Error
	})
}
