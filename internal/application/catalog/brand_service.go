package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// BrandService handles brand-related business operations
type BrandService struct {
	brandRepo   catalog.BrandRepository
	productRepo catalog.ProductRepository
	images      imageStore
}

// NewBrandService creates a new BrandService
func NewBrandService(
	brandRepo catalog.BrandRepository,
	productRepo catalog.ProductRepository,
	objects storage.ObjectStorage,
	logger *zap.Logger,
) *BrandService {
	return &BrandService{
		brandRepo:   brandRepo,
		productRepo: productRepo,
		images:      imageStore{storage: objects, logger: logger.Named("brand_service")},
	}
}

// Create creates a new brand
func (s *BrandService) Create(ctx context.Context, req CreateBrandRequest) (*BrandResponse, error) {
	brand, err := catalog.NewBrand(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.brandRepo.Save(ctx, brand); err != nil {
		return nil, err
	}
	response := ToBrandResponse(brand)
	return &response, nil
}

// GetByID retrieves a brand by ID
func (s *BrandService) GetByID(ctx context.Context, id uuid.UUID) (*BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToBrandResponse(brand)
	return &response, nil
}

// List returns a page of brands
func (s *BrandService) List(ctx context.Context, filter shared.Filter) ([]BrandResponse, int64, error) {
	brands, err := s.brandRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.brandRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BrandResponse, len(brands))
	for i := range brands {
		responses[i] = ToBrandResponse(&brands[i])
	}
	return responses, total, nil
}

// Update changes a brand's name and/or description
func (s *BrandService) Update(ctx context.Context, id uuid.UUID, req UpdateBrandRequest) (*BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := brand.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := brand.Description
	if req.Description != nil {
		description = *req.Description
	}
	if err := brand.Update(name, description); err != nil {
		return nil, err
	}

	if err := s.brandRepo.Save(ctx, brand); err != nil {
		return nil, err
	}
	response := ToBrandResponse(brand)
	return &response, nil
}

// UploadLogo stores a new logo for the brand and replaces the previous one
func (s *BrandService) UploadLogo(ctx context.Context, id uuid.UUID, upload ImageUpload) (*BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	img, err := s.images.save(ctx, brandLogoPrefix, brand.ID, upload, catalog.ImagePurposeLogo)
	if err != nil {
		return nil, err
	}
	previous := brand.Logo
	brand.SetLogo(img)
	if err := s.brandRepo.Save(ctx, brand); err != nil {
		s.images.discard(ctx, img)
		return nil, err
	}
	s.images.discard(ctx, previous)

	response := ToBrandResponse(brand)
	return &response, nil
}

// Delete removes a brand that no product references
func (s *BrandService) Delete(ctx context.Context, id uuid.UUID) error {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.productRepo.CountByBrand(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("BRAND_HAS_PRODUCTS",
			fmt.Sprintf("Brand still has %d product(s); move or delete them first", count))
	}

	if err := s.brandRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.images.discard(ctx, brand.Logo)
	return nil
}
