package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/shared"
)

// Product is a catalog item. Name ("Model Name") and SKU are globally unique.
type Product struct {
	shared.BaseAggregateRoot
	CategoryID      uuid.UUID
	BrandID         uuid.UUID
	Name            string
	SKU             string
	OriginalPrice   decimal.Decimal
	DiscountedPrice *decimal.Decimal
	Image           Image
	CountryOfOrigin string
	Description     string
	Specifications  Specifications

	// Asymmetric self-references: A related to B says nothing about B
	RelatedProductIDs   []uuid.UUID
	CompatibleModuleIDs []uuid.UUID
}

// ProductDetails carries the editable product attributes
type ProductDetails struct {
	CategoryID      uuid.UUID
	BrandID         uuid.UUID
	Name            string
	SKU             string
	OriginalPrice   decimal.Decimal
	DiscountedPrice *decimal.Decimal
	CountryOfOrigin string
	Description     string
	Specifications  Specifications
}

// NewProduct creates a new product
func NewProduct(details ProductDetails) (*Product, error) {
	details = normalizeDetails(details)
	if err := validateProductDetails(details); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		RelatedProductIDs:   make([]uuid.UUID, 0),
		CompatibleModuleIDs: make([]uuid.UUID, 0),
	}
	product.apply(details)
	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update replaces the product's editable attributes
func (p *Product) Update(details ProductDetails) error {
	details = normalizeDetails(details)
	if err := validateProductDetails(details); err != nil {
		return err
	}

	oldPrice := p.OriginalPrice
	p.apply(details)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
	if !oldPrice.Equal(p.OriginalPrice) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}
	return nil
}

// SetImage attaches a stored product image
func (p *Product) SetImage(img Image) {
	p.Image = img
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetRelatedProducts replaces the related products set
func (p *Product) SetRelatedProducts(ids []uuid.UUID) error {
	set, err := p.normalizeRelationSet(ids)
	if err != nil {
		return err
	}
	p.RelatedProductIDs = set
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetCompatibleModules replaces the compatible modules set
func (p *Product) SetCompatibleModules(ids []uuid.UUID) error {
	set, err := p.normalizeRelationSet(ids)
	if err != nil {
		return err
	}
	p.CompatibleModuleIDs = set
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Clone duplicates every field of the product under a new identity with the given
// name and SKU. Both relation sets are carried over. Uniqueness against other products
// is the caller's concern.
func (p *Product) Clone(name, sku string) (*Product, error) {
	name = strings.TrimSpace(name)
	sku = strings.TrimSpace(sku)
	if name == "" {
		return nil, shared.NewDomainError("CLONE_NAME_REQUIRED", "Model Name is required to clone the product.")
	}
	if sku == "" {
		return nil, shared.NewDomainError("CLONE_SKU_REQUIRED", "SKU is required to clone the product.")
	}

	details := p.Details()
	details.Name = name
	details.SKU = sku
	if err := validateProductDetails(details); err != nil {
		return nil, err
	}

	clone := &Product{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Image:               p.Image,
		RelatedProductIDs:   slices.Clone(p.RelatedProductIDs),
		CompatibleModuleIDs: slices.Clone(p.CompatibleModuleIDs),
	}
	clone.apply(details)
	if clone.RelatedProductIDs == nil {
		clone.RelatedProductIDs = make([]uuid.UUID, 0)
	}
	if clone.CompatibleModuleIDs == nil {
		clone.CompatibleModuleIDs = make([]uuid.UUID, 0)
	}

	clone.AddDomainEvent(NewProductClonedEvent(clone, p.ID))
	return clone, nil
}

// Details returns the editable attributes of the product
func (p *Product) Details() ProductDetails {
	var discounted *decimal.Decimal
	if p.DiscountedPrice != nil {
		d := *p.DiscountedPrice
		discounted = &d
	}
	return ProductDetails{
		CategoryID:      p.CategoryID,
		BrandID:         p.BrandID,
		Name:            p.Name,
		SKU:             p.SKU,
		OriginalPrice:   p.OriginalPrice,
		DiscountedPrice: discounted,
		CountryOfOrigin: p.CountryOfOrigin,
		Description:     p.Description,
		Specifications:  p.Specifications,
	}
}

// EffectivePrice returns the discounted price when set, otherwise the original price
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.OriginalPrice
}

func (p *Product) apply(d ProductDetails) {
	p.CategoryID = d.CategoryID
	p.BrandID = d.BrandID
	p.Name = d.Name
	p.SKU = d.SKU
	p.OriginalPrice = d.OriginalPrice
	p.DiscountedPrice = d.DiscountedPrice
	p.CountryOfOrigin = d.CountryOfOrigin
	p.Description = d.Description
	p.Specifications = d.Specifications
}

func (p *Product) normalizeRelationSet(ids []uuid.UUID) ([]uuid.UUID, error) {
	set := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == p.ID {
			return nil, shared.NewDomainError("PRODUCT_SELF_REFERENCE", "A product cannot reference itself")
		}
		if id == uuid.Nil || slices.Contains(set, id) {
			continue
		}
		set = append(set, id)
	}
	return set, nil
}

func normalizeDetails(d ProductDetails) ProductDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.SKU = strings.TrimSpace(d.SKU)
	d.CountryOfOrigin = strings.TrimSpace(d.CountryOfOrigin)
	return d
}

func validateProductDetails(d ProductDetails) error {
	if d.CategoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}
	if d.BrandID == uuid.Nil {
		return shared.NewDomainError("INVALID_BRAND", "Product brand is required")
	}
	if d.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Model Name cannot be empty")
	}
	if len(d.Name) > 255 {
		return shared.NewDomainError("INVALID_NAME", "Model Name cannot exceed 255 characters")
	}
	if d.SKU == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(d.SKU) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	if d.OriginalPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Original price cannot be negative")
	}
	if d.DiscountedPrice != nil && d.DiscountedPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Discounted price cannot be negative")
	}
	if d.CountryOfOrigin == "" {
		return shared.NewDomainError("INVALID_COUNTRY", "Country of origin is required")
	}
	if len(d.CountryOfOrigin) > 100 {
		return shared.NewDomainError("INVALID_COUNTRY", "Country of origin cannot exceed 100 characters")
	}
	if field := d.Specifications.invalidField(); field != "" {
		return shared.NewDomainError("INVALID_SPECIFICATION", "Specification "+field+" cannot exceed 255 characters")
	}
	return nil
}
