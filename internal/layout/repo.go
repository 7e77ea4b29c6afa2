package layout

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/osoriodev/tablebook-backend/pkg/db"
	"github.com/osoriodev/tablebook-backend/pkg/db/models"
	pkgerrors "github.com/osoriodev/tablebook-backend/pkg/errors"
)

// Repository stores opaque configuration blobs keyed by name.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, now time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(client *db.Client) Repository {
	return &repository{db: client.DB()}
}

func (r *repository) Get(ctx context.Context, key string) (string, error) {
	var row models.AppConfig
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "configuration not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading configuration")
	}
	return row.Value, nil
}

func (r *repository) Set(ctx context.Context, key, value string, now time.Time) error {
	row := models.AppConfig{Key: key, Value: value, UpdatedAt: now}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing configuration")
	}
	return nil
}
