package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// ErrProductExists is returned when a save collides with the unique name or SKU index
var ErrProductExists = shared.NewDomainError("PRODUCT_EXISTS", "A product with the same Model Name or SKU already exists.")

// GormProductRepository implements ProductRepository using GORM.
// Relation sets live in product_relations and are loaded with every product.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return r.one(ctx, &model)
}

// FindBySKU finds a product by its exact SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return r.one(ctx, &model)
}

// FindByIDs finds all products with the given IDs; missing IDs are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.many(ctx, rows)
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	query = applyPagination(query, filter, ProductSortFields, "created_at", "DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.many(ctx, rows)
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByCategoryName returns the newest products of the category with the given name
// (case-insensitive). A non-positive limit returns all of them.
func (r *GormProductRepository) FindByCategoryName(ctx context.Context, name string, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select("products.*").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("LOWER(categories.name) = LOWER(?)", name).
		Order("products.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.many(ctx, rows)
}

// SearchByName returns products whose name contains query, ignoring case
func (r *GormProductRepository) SearchByName(ctx context.Context, query string, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	q := r.db.WithContext(ctx).
		Where(containsClause("name"), likePattern(query)).
		Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.many(ctx, rows)
}

// ExistsByName checks whether a product other than excludeID uses the name
func (r *GormProductRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, "name = ?", name, excludeID)
}

// ExistsBySKU checks whether a product other than excludeID uses the SKU
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, "sku = ?", sku, excludeID)
}

// CountByCategories counts products held by any of the categories
func (r *GormProductRepository) CountByCategories(ctx context.Context, categoryIDs []uuid.UUID) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("category_id IN ?", categoryIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByBrand counts products of a brand
func (r *GormProductRepository) CountByBrand(ctx context.Context, brandID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("brand_id = ?", brandID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates the product and replaces both relation sets in one transaction
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.ProductModelFromDomain(product)).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductRelationModel{}).Error; err != nil {
			return err
		}
		relations := models.ProductRelationModelsFromDomain(product)
		if len(relations) == 0 {
			return nil
		}
		return tx.Create(&relations).Error
	})
	return translateWriteError(err, ErrProductExists)
}

// Delete deletes a product and every relation edge touching it
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ? OR related_product_id = ?", id, id).
			Delete(&models.ProductRelationModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return translateWriteError(result.Error, nil)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormProductRepository) exists(ctx context.Context, cond string, value string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where(cond, value)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where(containsClause("name"), likePattern(filter.Search))
	}
	if categoryID, ok := filter.Filters["category_id"]; ok {
		query = query.Where("category_id = ?", categoryID)
	}
	if brandID, ok := filter.Filters["brand_id"]; ok {
		query = query.Where("brand_id = ?", brandID)
	}
	if imageKey, ok := filter.Filters["image_key"]; ok {
		query = query.Where("image_key = ?", imageKey)
	}
	return query
}

func (r *GormProductRepository) one(ctx context.Context, model *models.ProductModel) (*catalog.Product, error) {
	products, err := r.many(ctx, []models.ProductModel{*model})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

// many converts rows and attaches their relation sets with a single query
func (r *GormProductRepository) many(ctx context.Context, rows []models.ProductModel) ([]catalog.Product, error) {
	products := make([]catalog.Product, len(rows))
	if len(rows) == 0 {
		return products, nil
	}

	index := make(map[uuid.UUID]int, len(rows))
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
		index[rows[i].ID] = i
		ids[i] = rows[i].ID
	}

	var relations []models.ProductRelationModel
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", ids).
		Order("relation_type ASC, position ASC").
		Find(&relations).Error; err != nil {
		return nil, err
	}

	for _, rel := range relations {
		p := &products[index[rel.ProductID]]
		switch rel.RelationType {
		case models.RelationTypeRelated:
			p.RelatedProductIDs = append(p.RelatedProductIDs, rel.RelatedProductID)
		case models.RelationTypeCompatible:
			p.CompatibleModuleIDs = append(p.CompatibleModuleIDs, rel.RelatedProductID)
		}
	}
	return products, nil
}
