package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, productRepo catalog.ProductRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// Create creates a new category, optionally under a parent
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	if err := s.ensureNameFree(ctx, req.Name, nil); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if err := s.ensureParentExists(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category, err := catalog.NewCategory(req.Name, req.ParentID)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// List returns every category ordered by name
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 0
	filter.OrderBy = "name"
	filter.OrderDir = "asc"

	categories, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(categories), nil
}

// Tree returns the category forest. Roots and children are ordered by name.
func (s *CategoryService) Tree(ctx context.Context) ([]*CategoryTreeNode, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 0
	filter.OrderBy = "name"
	filter.OrderDir = "asc"

	categories, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return buildCategoryForest(categories), nil
}

// Update renames and/or moves a category. Moving a category under itself or
// one of its descendants is rejected with CATEGORY_CYCLE.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != category.Name {
		if err := s.ensureNameFree(ctx, *req.Name, &category.ID); err != nil {
			return nil, err
		}
		if err := category.Rename(*req.Name); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearParent:
		if err := category.MoveTo(nil, nil); err != nil {
			return nil, err
		}
	case req.ParentID != nil:
		var lineage []uuid.UUID
		if *req.ParentID != category.ID {
			lineage, err = s.categoryRepo.FindLineage(ctx, *req.ParentID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
				}
				return nil, err
			}
		}
		if err := category.MoveTo(req.ParentID, lineage); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// Delete removes a category together with its descendants. It is refused while any
// category in the subtree still holds products.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	subtree, err := s.categoryRepo.FindSubtreeIDs(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.productRepo.CountByCategories(ctx, subtree)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_HAS_PRODUCTS",
			fmt.Sprintf("Category still holds %d product(s); move or delete them first", count))
	}

	return s.categoryRepo.DeleteSubtree(ctx, id)
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.categoryRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("CATEGORY_NAME_EXISTS", fmt.Sprintf("A category named '%s' already exists.", name))
	}
	return nil
}

func (s *CategoryService) ensureParentExists(ctx context.Context, parentID uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, parentID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_PARENT", "Parent category not found")
		}
		return err
	}
	return nil
}

// buildCategoryForest links categories to their parents. Categories whose parent is
// not in the input are treated as roots.
func buildCategoryForest(categories []catalog.Category) []*CategoryTreeNode {
	nodes := make(map[uuid.UUID]*CategoryTreeNode, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &CategoryTreeNode{
			ID:       categories[i].ID,
			Name:     categories[i].Name,
			Children: make([]*CategoryTreeNode, 0),
		}
	}

	roots := make([]*CategoryTreeNode, 0)
	for i := range categories {
		node := nodes[categories[i].ID]
		if parentID := categories[i].ParentID; parentID != nil {
			if parent, ok := nodes[*parentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
