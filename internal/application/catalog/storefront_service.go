package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/config"
)

// Storefront defaults
const (
	DefaultFeaturedLimit = 8
	maxSearchResults     = 100
)

// DefaultFeaturedCategories are shown on the home page when none are configured
var DefaultFeaturedCategories = []string{"VFD", "PLC", "HMI"}

// StorefrontService serves the read-only public catalog views
type StorefrontService struct {
	categoryRepo       catalog.CategoryRepository
	brandRepo          catalog.BrandRepository
	bannerRepo         catalog.BannerRepository
	productRepo        catalog.ProductRepository
	featuredCategories []string
	featuredLimit      int
}

// NewStorefrontService creates a new StorefrontService
func NewStorefrontService(
	categoryRepo catalog.CategoryRepository,
	brandRepo catalog.BrandRepository,
	bannerRepo catalog.BannerRepository,
	productRepo catalog.ProductRepository,
	cfg config.StorefrontConfig,
) *StorefrontService {
	featured := cfg.FeaturedCategories
	if len(featured) == 0 {
		featured = DefaultFeaturedCategories
	}
	limit := cfg.FeaturedLimit
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	return &StorefrontService{
		categoryRepo:       categoryRepo,
		brandRepo:          brandRepo,
		bannerRepo:         bannerRepo,
		productRepo:        productRepo,
		featuredCategories: featured,
		featuredLimit:      limit,
	}
}

// Home returns the root categories, the first banner and the latest products of
// each featured category
func (s *StorefrontService) Home(ctx context.Context) (*HomeResponse, error) {
	roots, err := s.categoryRepo.FindRoots(ctx)
	if err != nil {
		return nil, err
	}

	response := &HomeResponse{
		Categories: ToCategoryResponses(roots),
		Featured:   make([]FeaturedCategory, 0, len(s.featuredCategories)),
	}

	banner, err := s.bannerRepo.FindFirst(ctx)
	switch {
	case err == nil:
		b := ToBannerResponse(banner)
		response.Banner = &b
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	for _, name := range s.featuredCategories {
		products, err := s.productRepo.FindByCategoryName(ctx, name, s.featuredLimit)
		if err != nil {
			return nil, err
		}
		response.Featured = append(response.Featured, FeaturedCategory{
			Name:     name,
			Products: ToProductListResponses(products),
		})
	}
	return response, nil
}

// ProductBySKU returns the product detail for sku. An empty SKU or the literal
// "none" is treated as not found.
func (s *StorefrontService) ProductBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" || strings.EqualFold(sku, "none") {
		return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// ProductsByCategoryName lists the products of the category whose name matches
// exactly, ignoring case. Unknown categories yield an empty list.
func (s *StorefrontService) ProductsByCategoryName(ctx context.Context, name string) ([]ProductListResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []ProductListResponse{}, nil
	}
	products, err := s.productRepo.FindByCategoryName(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	return ToProductListResponses(products), nil
}

// BrandDetail returns the brand and all of its products
func (s *StorefrontService) BrandDetail(ctx context.Context, id uuid.UUID) (*BrandDetailResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 0
	filter.Filters["brand_id"] = brand.ID
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &BrandDetailResponse{
		BrandResponse: ToBrandResponse(brand),
		Products:      ToProductListResponses(products),
	}, nil
}

// Search returns products whose name contains query. An empty query returns an empty list.
func (s *StorefrontService) Search(ctx context.Context, query string) ([]ProductListResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []ProductListResponse{}, nil
	}
	products, err := s.productRepo.SearchByName(ctx, query, maxSearchResults)
	if err != nil {
		return nil, err
	}
	return ToProductListResponses(products), nil
}
