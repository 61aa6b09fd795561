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

// Storage prefixes for catalog images
const (
	productImagePrefix = "products"
	brandLogoPrefix    = "brand_logos"
	bannerImagePrefix  = "banners"
)

// imageStore writes validated catalog images to object storage
type imageStore struct {
	storage storage.ObjectStorage
	logger  *zap.Logger
}

func (s imageStore) save(ctx context.Context, prefix string, ownerID uuid.UUID, upload ImageUpload, purpose catalog.ImagePurpose) (catalog.Image, error) {
	if err := catalog.ValidateImageContentType(upload.ContentType, purpose); err != nil {
		return catalog.Image{}, err
	}
	if len(upload.Data) == 0 {
		return catalog.Image{}, shared.NewDomainError("INVALID_INPUT", "Uploaded file is empty")
	}
	if s.storage == nil {
		return catalog.Image{}, shared.NewDomainError("STORAGE_UNAVAILABLE", "Image storage is not configured")
	}

	key := fmt.Sprintf("%s/%s/%s%s", prefix, ownerID, uuid.NewString(), catalog.ImageExtension(upload.ContentType))
	if err := s.storage.Put(ctx, key, upload.Data, upload.ContentType); err != nil {
		return catalog.Image{}, fmt.Errorf("failed to store image: %w", err)
	}
	return catalog.Image{Key: key, URL: s.storage.URL(key)}, nil
}

// discard removes a replaced image. Failures only leave an orphaned object behind.
func (s imageStore) discard(ctx context.Context, img catalog.Image) {
	if img.Key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, img.Key); err != nil {
		s.logger.Warn("Failed to delete replaced image", zap.String("key", img.Key), zap.Error(err))
	}
}
