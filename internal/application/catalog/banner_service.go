package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// BannerService manages storefront banners
type BannerService struct {
	bannerRepo catalog.BannerRepository
	images     imageStore
}

// NewBannerService creates a new BannerService
func NewBannerService(bannerRepo catalog.BannerRepository, objects storage.ObjectStorage, logger *zap.Logger) *BannerService {
	return &BannerService{
		bannerRepo: bannerRepo,
		images:     imageStore{storage: objects, logger: logger.Named("banner_service")},
	}
}

// Create creates a banner with an optional title
func (s *BannerService) Create(ctx context.Context, req BannerRequest) (*BannerResponse, error) {
	banner, err := catalog.NewBanner(req.Title)
	if err != nil {
		return nil, err
	}
	if err := s.bannerRepo.Save(ctx, banner); err != nil {
		return nil, err
	}
	response := ToBannerResponse(banner)
	return &response, nil
}

// GetByID retrieves a banner by ID
func (s *BannerService) GetByID(ctx context.Context, id uuid.UUID) (*BannerResponse, error) {
	banner, err := s.bannerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToBannerResponse(banner)
	return &response, nil
}

// List returns a page of banners, oldest first
func (s *BannerService) List(ctx context.Context, filter shared.Filter) ([]BannerResponse, int64, error) {
	banners, err := s.bannerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.bannerRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BannerResponse, len(banners))
	for i := range banners {
		responses[i] = ToBannerResponse(&banners[i])
	}
	return responses, total, nil
}

// Update changes a banner's title
func (s *BannerService) Update(ctx context.Context, id uuid.UUID, req BannerRequest) (*BannerResponse, error) {
	banner, err := s.bannerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := banner.SetTitle(req.Title); err != nil {
		return nil, err
	}
	if err := s.bannerRepo.Save(ctx, banner); err != nil {
		return nil, err
	}
	response := ToBannerResponse(banner)
	return &response, nil
}

// UploadImage stores the banner image and replaces the previous one
func (s *BannerService) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*BannerResponse, error) {
	banner, err := s.bannerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	img, err := s.images.save(ctx, bannerImagePrefix, banner.ID, upload, catalog.ImagePurposeBanner)
	if err != nil {
		return nil, err
	}
	previous := banner.Image
	banner.SetImage(img)
	if err := s.bannerRepo.Save(ctx, banner); err != nil {
		s.images.discard(ctx, img)
		return nil, err
	}
	s.images.discard(ctx, previous)

	response := ToBannerResponse(banner)
	return &response, nil
}

// Delete removes a banner and its image
func (s *BannerService) Delete(ctx context.Context, id uuid.UUID) error {
	banner, err := s.bannerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bannerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.images.discard(ctx, banner.Image)
	return nil
}
