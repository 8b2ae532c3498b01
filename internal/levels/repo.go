package levels

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
)

// Repository reads the reseller tier catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, activeOnly bool) ([]models.ResellerLevel, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ResellerLevel, error)
	FindByLevel(ctx context.Context, level int) (*models.ResellerLevel, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the catalog to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.ResellerLevel, error) {
	query := r.db.WithContext(ctx).Order("level ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.ResellerLevel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ResellerLevel, error) {
	var level models.ResellerLevel
	if err := r.db.WithContext(ctx).First(&level, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &level, nil
}

func (r *repository) FindByLevel(ctx context.Context, n int) (*models.ResellerLevel, error) {
	var level models.ResellerLevel
	if err := r.db.WithContext(ctx).First(&level, "level = ?", n).Error; err != nil {
		return nil, notFound(err)
	}
	return &level, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "reseller level not found")
	}
	return err
}
