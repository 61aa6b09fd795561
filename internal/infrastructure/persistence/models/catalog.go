package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/catalog"
)

// CategoryModel is the persistence model for the Category aggregate.
type CategoryModel struct {
	AggregateModel
	Name     string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_name"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		ParentID:          m.ParentID,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.ParentID = c.ParentID
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// BrandModel is the persistence model for the Brand aggregate.
type BrandModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`
	LogoKey     string `gorm:"type:varchar(500)"`
	LogoURL     string `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (BrandModel) TableName() string {
	return "brands"
}

// ToDomain converts the persistence model to a domain Brand entity.
func (m *BrandModel) ToDomain() *catalog.Brand {
	return &catalog.Brand{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Logo:              catalog.Image{Key: m.LogoKey, URL: m.LogoURL},
	}
}

// FromDomain populates the persistence model from a domain Brand entity.
func (m *BrandModel) FromDomain(b *catalog.Brand) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Name = b.Name
	m.Description = b.Description
	m.LogoKey = b.Logo.Key
	m.LogoURL = b.Logo.URL
}

// BrandModelFromDomain creates a new persistence model from a domain Brand entity.
func BrandModelFromDomain(b *catalog.Brand) *BrandModel {
	m := &BrandModel{}
	m.FromDomain(b)
	return m
}

// BannerModel is the persistence model for the Banner aggregate.
type BannerModel struct {
	AggregateModel
	Title    string `gorm:"type:varchar(200)"`
	ImageKey string `gorm:"type:varchar(500)"`
	ImageURL string `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (BannerModel) TableName() string {
	return "banners"
}

// ToDomain converts the persistence model to a domain Banner entity.
func (m *BannerModel) ToDomain() *catalog.Banner {
	return &catalog.Banner{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Title:             m.Title,
		Image:             catalog.Image{Key: m.ImageKey, URL: m.ImageURL},
	}
}

// FromDomain populates the persistence model from a domain Banner entity.
func (m *BannerModel) FromDomain(b *catalog.Banner) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Title = b.Title
	m.ImageKey = b.Image.Key
	m.ImageURL = b.Image.URL
}

// BannerModelFromDomain creates a new persistence model from a domain Banner entity.
func BannerModelFromDomain(b *catalog.Banner) *BannerModel {
	m := &BannerModel{}
	m.FromDomain(b)
	return m
}

// ProductModel is the persistence model for the Product aggregate.
// The specification fields are flattened into one column each.
type ProductModel struct {
	AggregateModel
	CategoryID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	BrandID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name            string           `gorm:"type:varchar(255);not null;uniqueIndex:idx_products_name"`
	SKU             string           `gorm:"column:sku;type:varchar(50);not null;uniqueIndex:idx_products_sku"`
	OriginalPrice   decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	DiscountedPrice *decimal.Decimal `gorm:"type:decimal(10,2)"`
	ImageKey        string           `gorm:"type:varchar(500)"`
	ImageURL        string           `gorm:"type:varchar(1000)"`
	CountryOfOrigin string           `gorm:"type:varchar(100);not null"`
	Description     string           `gorm:"type:text"`

	catalog.Specifications `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
// Relation sets are attached by the repository.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		CategoryID:          m.CategoryID,
		BrandID:             m.BrandID,
		Name:                m.Name,
		SKU:                 m.SKU,
		OriginalPrice:       m.OriginalPrice,
		DiscountedPrice:     m.DiscountedPrice,
		Image:               catalog.Image{Key: m.ImageKey, URL: m.ImageURL},
		CountryOfOrigin:     m.CountryOfOrigin,
		Description:         m.Description,
		Specifications:      m.Specifications,
		RelatedProductIDs:   make([]uuid.UUID, 0),
		CompatibleModuleIDs: make([]uuid.UUID, 0),
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CategoryID = p.CategoryID
	m.BrandID = p.BrandID
	m.Name = p.Name
	m.SKU = p.SKU
	m.OriginalPrice = p.OriginalPrice
	m.DiscountedPrice = p.DiscountedPrice
	m.ImageKey = p.Image.Key
	m.ImageURL = p.Image.URL
	m.CountryOfOrigin = p.CountryOfOrigin
	m.Description = p.Description
	m.Specifications = p.Specifications
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// Product relation types
const (
	RelationTypeRelated    = "RELATED"
	RelationTypeCompatible = "COMPATIBLE"
)

// ProductRelationModel is one directed edge of a product's related or compatible set.
type ProductRelationModel struct {
	ProductID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RelatedProductID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	RelationType     string    `gorm:"type:varchar(20);primaryKey"`
	Position         int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductRelationModel) TableName() string {
	return "product_relations"
}

// ProductRelationModelsFromDomain builds the relation rows for both of a product's sets
func ProductRelationModelsFromDomain(p *catalog.Product) []ProductRelationModel {
	rows := make([]ProductRelationModel, 0, len(p.RelatedProductIDs)+len(p.CompatibleModuleIDs))
	for i, id := range p.RelatedProductIDs {
		rows = append(rows, ProductRelationModel{ProductID: p.ID, RelatedProductID: id, RelationType: RelationTypeRelated, Position: i})
	}
	for i, id := range p.CompatibleModuleIDs {
		rows = append(rows, ProductRelationModel{ProductID: p.ID, RelatedProductID: id, RelationType: RelationTypeCompatible, Position: i})
	}
	return rows
}
