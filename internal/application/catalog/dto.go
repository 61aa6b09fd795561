package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/catalog"
)

// ==================== Category ====================

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name     string     `json:"name" binding:"required,min=1,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// UpdateCategoryRequest represents a request to rename or move a category.
// Setting ClearParent moves the category to the root.
type UpdateCategoryRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=100"`
	ParentID    *uuid.UUID `json:"parent_id"`
	ClearParent bool       `json:"clear_parent"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

// CategoryTreeNode is a category with its children, used for the forest view
type CategoryTreeNode struct {
	ID       uuid.UUID           `json:"id"`
	Name     string              `json:"name"`
	Children []*CategoryTreeNode `json:"children"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// ToCategoryResponses converts a slice of domain Categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}

// ==================== Brand ====================

// CreateBrandRequest represents a request to create a brand
type CreateBrandRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=5000"`
}

// UpdateBrandRequest represents a request to update a brand
type UpdateBrandRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
}

// BrandResponse represents a brand in API responses
type BrandResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LogoURL     string    `json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// ToBrandResponse converts a domain Brand to BrandResponse
func ToBrandResponse(b *catalog.Brand) BrandResponse {
	return BrandResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		LogoURL:     b.Logo.URL,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Version:     b.Version,
	}
}

// BrandDetailResponse is a brand with its products, as shown on the storefront
type BrandDetailResponse struct {
	BrandResponse
	Products []ProductListResponse `json:"products"`
}

// ==================== Banner ====================

// BannerRequest represents a request to create or retitle a banner
type BannerRequest struct {
	Title string `json:"title" binding:"max=200"`
}

// BannerResponse represents a banner in API responses
type BannerResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	DisplayName string    `json:"display_name"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToBannerResponse converts a domain Banner to BannerResponse
func ToBannerResponse(b *catalog.Banner) BannerResponse {
	return BannerResponse{
		ID:          b.ID,
		Title:       b.Title,
		DisplayName: b.DisplayName(),
		ImageURL:    b.Image.URL,
		CreatedAt:   b.CreatedAt,
	}
}

// ==================== Product ====================

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	CategoryID      uuid.UUID              `json:"category_id" binding:"required"`
	BrandID         uuid.UUID              `json:"brand_id" binding:"required"`
	Name            string                 `json:"name" binding:"required,min=1,max=255"`
	SKU             string                 `json:"sku" binding:"required,min=1,max=50"`
	OriginalPrice   decimal.Decimal        `json:"original_price"`
	DiscountedPrice *decimal.Decimal       `json:"discounted_price"`
	CountryOfOrigin string                 `json:"country_of_origin" binding:"required,max=100"`
	Description     string                 `json:"description"`
	Specifications  catalog.Specifications `json:"specifications"`
	RelatedProducts []uuid.UUID            `json:"related_products"`
	Compatible      []uuid.UUID            `json:"compatible_modules"`
}

// UpdateProductRequest replaces a product's editable attributes.
// Relation sets are only replaced when present.
type UpdateProductRequest struct {
	CategoryID      uuid.UUID              `json:"category_id" binding:"required"`
	BrandID         uuid.UUID              `json:"brand_id" binding:"required"`
	Name            string                 `json:"name" binding:"required,min=1,max=255"`
	SKU             string                 `json:"sku" binding:"required,min=1,max=50"`
	OriginalPrice   decimal.Decimal        `json:"original_price"`
	DiscountedPrice *decimal.Decimal       `json:"discounted_price"`
	CountryOfOrigin string                 `json:"country_of_origin" binding:"required,max=100"`
	Description     string                 `json:"description"`
	Specifications  catalog.Specifications `json:"specifications"`
	RelatedProducts *[]uuid.UUID           `json:"related_products"`
	Compatible      *[]uuid.UUID           `json:"compatible_modules"`
}

// SetRelationsRequest replaces one or both relation sets of a product
type SetRelationsRequest struct {
	RelatedProducts *[]uuid.UUID `json:"related_products"`
	Compatible      *[]uuid.UUID `json:"compatible_modules"`
}

// CloneProductRequest carries the identity of a product clone
type CloneProductRequest struct {
	Name string `form:"model_name" json:"model_name"`
	SKU  string `form:"sku" json:"sku"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"category_id"`
	BrandID    *uuid.UUID `form:"brand_id"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID              `json:"id"`
	CategoryID        uuid.UUID              `json:"category_id"`
	BrandID           uuid.UUID              `json:"brand_id"`
	Name              string                 `json:"name"`
	SKU               string                 `json:"sku"`
	OriginalPrice     decimal.Decimal        `json:"original_price"`
	DiscountedPrice   *decimal.Decimal       `json:"discounted_price,omitempty"`
	EffectivePrice    decimal.Decimal        `json:"effective_price"`
	ImageURL          string                 `json:"image_url,omitempty"`
	CountryOfOrigin   string                 `json:"country_of_origin"`
	Description       string                 `json:"description"`
	Specifications    catalog.Specifications `json:"specifications"`
	RelatedProducts   []uuid.UUID            `json:"related_products"`
	CompatibleModules []uuid.UUID            `json:"compatible_modules"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	Version           int                    `json:"version"`
}

// ProductListResponse represents a list item for products
type ProductListResponse struct {
	ID              uuid.UUID        `json:"id"`
	CategoryID      uuid.UUID        `json:"category_id"`
	BrandID         uuid.UUID        `json:"brand_id"`
	Name            string           `json:"name"`
	SKU             string           `json:"sku"`
	OriginalPrice   decimal.Decimal  `json:"original_price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	ImageURL        string           `json:"image_url,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		CategoryID:        p.CategoryID,
		BrandID:           p.BrandID,
		Name:              p.Name,
		SKU:               p.SKU,
		OriginalPrice:     p.OriginalPrice,
		DiscountedPrice:   p.DiscountedPrice,
		EffectivePrice:    p.EffectivePrice(),
		ImageURL:          p.Image.URL,
		CountryOfOrigin:   p.CountryOfOrigin,
		Description:       p.Description,
		Specifications:    p.Specifications,
		RelatedProducts:   p.RelatedProductIDs,
		CompatibleModules: p.CompatibleModuleIDs,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.Version,
	}
}

// ToProductListResponse converts a domain Product to ProductListResponse
func ToProductListResponse(p *catalog.Product) ProductListResponse {
	return ProductListResponse{
		ID:              p.ID,
		CategoryID:      p.CategoryID,
		BrandID:         p.BrandID,
		Name:            p.Name,
		SKU:             p.SKU,
		OriginalPrice:   p.OriginalPrice,
		DiscountedPrice: p.DiscountedPrice,
		ImageURL:        p.Image.URL,
		CreatedAt:       p.CreatedAt,
	}
}

// ToProductListResponses converts a slice of domain Products to list items
func ToProductListResponses(products []catalog.Product) []ProductListResponse {
	responses := make([]ProductListResponse, len(products))
	for i := range products {
		responses[i] = ToProductListResponse(&products[i])
	}
	return responses
}

// ==================== Uploads ====================

// ImageUpload is an uploaded image file
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ==================== Storefront ====================

// FeaturedCategory holds the latest products of one featured category
type FeaturedCategory struct {
	Name     string                `json:"name"`
	Products []ProductListResponse `json:"products"`
}

// HomeResponse is the storefront landing page data
type HomeResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Banner     *BannerResponse    `json:"banner,omitempty"`
	Featured   []FeaturedCategory `json:"featured"`
}
