package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByName finds a category by name, ignoring case
func (r *GormCategoryRepository) FindByName(ctx context.Context, name string) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all categories matching the filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CategoryModel{}), filter)
	query = applyPagination(query, filter, CategorySortFields, "name", "ASC")

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return categoriesToDomain(rows), nil
}

// FindRoots finds all categories without a parent
func (r *GormCategoryRepository) FindRoots(ctx context.Context) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("parent_id IS NULL").
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return categoriesToDomain(rows), nil
}

// FindChildren finds all direct children of a category
func (r *GormCategoryRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return categoriesToDomain(rows), nil
}

// FindLineage walks parent links from id up to the root
func (r *GormCategoryRepository) FindLineage(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	lineage := make([]uuid.UUID, 0, 4)
	seen := make(map[uuid.UUID]bool)
	current := &id
	for current != nil && !seen[*current] {
		var model models.CategoryModel
		if err := r.db.WithContext(ctx).Select("id", "parent_id").First(&model, "id = ?", *current).Error; err != nil {
			return nil, translateNotFound(err)
		}
		seen[model.ID] = true
		lineage = append(lineage, model.ID)
		current = model.ParentID
	}
	return lineage, nil
}

// FindSubtreeIDs returns id and every descendant id, breadth first
func (r *GormCategoryRepository) FindSubtreeIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return collectSubtree(r.db.WithContext(ctx), id)
}

// ExistsByName checks whether another category already uses the name (case-insensitive)
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts categories matching the filter
func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CategoryModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	model := models.CategoryModelFromDomain(category)
	err := r.db.WithContext(ctx).Save(model).Error
	return translateWriteError(err, shared.NewDomainError("CATEGORY_NAME_EXISTS",
		"A category named '"+category.Name+"' already exists."))
}

// DeleteSubtree deletes the category and all of its descendants in one transaction
func (r *GormCategoryRepository) DeleteSubtree(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := collectSubtree(tx, id)
		if err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&models.CategoryModel{})
		if result.Error != nil {
			return translateWriteError(result.Error, nil)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormCategoryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where(containsClause("name"), likePattern(filter.Search))
	}
	if parentID, ok := filter.Filters["parent_id"]; ok {
		query = query.Where("parent_id = ?", parentID)
	}
	return query
}

// collectSubtree gathers root and its descendants level by level
func collectSubtree(db *gorm.DB, root uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{root}
	seen := map[uuid.UUID]bool{root: true}
	frontier := []uuid.UUID{root}
	for len(frontier) > 0 {
		var children []uuid.UUID
		if err := db.Model(&models.CategoryModel{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, child := range children {
			if seen[child] {
				continue
			}
			seen[child] = true
			ids = append(ids, child)
			frontier = append(frontier, child)
		}
	}
	return ids, nil
}

func categoriesToDomain(rows []models.CategoryModel) []catalog.Category {
	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories
}
