package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBannerRepository implements BannerRepository using GORM
type GormBannerRepository struct {
	db *gorm.DB
}

// NewGormBannerRepository creates a new GormBannerRepository
func NewGormBannerRepository(db *gorm.DB) *GormBannerRepository {
	return &GormBannerRepository{db: db}
}

// FindByID finds a banner by its ID
func (r *GormBannerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Banner, error) {
	var model models.BannerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindFirst returns the earliest created banner
func (r *GormBannerRepository) FindFirst(ctx context.Context) (*catalog.Banner, error) {
	var model models.BannerModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Take(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all banners matching the filter
func (r *GormBannerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Banner, error) {
	var rows []models.BannerModel
	query := applyPagination(r.db.WithContext(ctx).Model(&models.BannerModel{}), filter, BannerSortFields, "created_at", "ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	banners := make([]catalog.Banner, len(rows))
	for i := range rows {
		banners[i] = *rows[i].ToDomain()
	}
	return banners, nil
}

// Count counts all banners
func (r *GormBannerRepository) Count(ctx context.Context, _ shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BannerModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a banner
func (r *GormBannerRepository) Save(ctx context.Context, banner *catalog.Banner) error {
	return translateWriteError(r.db.WithContext(ctx).Save(models.BannerModelFromDomain(banner)).Error, nil)
}

// Delete deletes a banner
func (r *GormBannerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BannerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
