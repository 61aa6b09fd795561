package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/shared"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	// FindByName matches the name case-insensitively
	FindByName(ctx context.Context, name string) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	FindRoots(ctx context.Context) ([]Category, error)
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Category, error)
	// FindLineage returns the category's ID followed by its ancestors up to the root
	FindLineage(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	// FindSubtreeIDs returns the category's ID and all descendant IDs
	FindSubtreeIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, category *Category) error
	// DeleteSubtree removes the category and all of its descendants in one transaction
	DeleteSubtree(ctx context.Context, id uuid.UUID) error
}

// BrandRepository defines the interface for brand persistence
type BrandRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Brand, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Brand, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, brand *Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BannerRepository defines the interface for banner persistence
type BannerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Banner, error)
	// FindFirst returns the earliest created banner
	FindFirst(ctx context.Context) (*Banner, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Banner, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, banner *Banner) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines the interface for product persistence.
// Returned products carry both relation sets.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	// FindAll supports Filters keys "category_id", "brand_id" and "image_key" and a name search
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindByCategoryName matches the category name case-insensitively, newest first
	FindByCategoryName(ctx context.Context, name string, limit int) ([]Product, error)
	// SearchByName returns products whose name contains the query, case-insensitively
	SearchByName(ctx context.Context, query string, limit int) ([]Product, error)
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error)
	CountByCategories(ctx context.Context, categoryIDs []uuid.UUID) (int64, error)
	CountByBrand(ctx context.Context, brandID uuid.UUID) (int64, error)
	// Save creates or updates the product and replaces both relation sets
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
