package catalog

import (
	"strings"
	"time"

	"github.com/sisl/eshop/internal/domain/shared"
)

// Brand is a product manufacturer
type Brand struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	Logo        Image
}

// NewBrand creates a new brand
func NewBrand(name, description string) (*Brand, error) {
	name = strings.TrimSpace(name)
	if err := validateBrandName(name); err != nil {
		return nil, err
	}
	return &Brand{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
	}, nil
}

// Update changes the brand's name and description
func (b *Brand) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateBrandName(name); err != nil {
		return err
	}
	b.Name = name
	b.Description = description
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// SetLogo attaches a stored logo image
func (b *Brand) SetLogo(img Image) {
	b.Logo = img
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

func validateBrandName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Brand name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_NAME", "Brand name cannot exceed 255 characters")
	}
	return nil
}
