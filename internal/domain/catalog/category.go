package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/shared"
)

// Category represents a product category. Categories form a forest through ParentID.
type Category struct {
	shared.BaseAggregateRoot
	Name     string
	ParentID *uuid.UUID
}

// NewCategory creates a new category, optionally under a parent
func NewCategory(name string, parentID *uuid.UUID) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ParentID:          parentID,
	}
	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// Rename changes the category name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// MoveTo re-parents the category. parentLineage holds the new parent's ID followed by
// all of its ancestors up to the root; the move is rejected if it would close a cycle.
func (c *Category) MoveTo(parentID *uuid.UUID, parentLineage []uuid.UUID) error {
	if parentID != nil {
		if *parentID == c.ID || slices.Contains(parentLineage, c.ID) {
			return shared.NewDomainError("CATEGORY_CYCLE", "A category cannot be placed under itself or one of its descendants")
		}
	}
	c.ParentID = parentID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// IsRoot returns true if the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
