package catalog

import (
	"time"

	"github.com/sisl/eshop/internal/domain/shared"
)

// Banner is a purely presentational storefront image
type Banner struct {
	shared.BaseAggregateRoot
	Title string
	Image Image
}

// NewBanner creates a banner; the title is optional
func NewBanner(title string) (*Banner, error) {
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Banner title cannot exceed 200 characters")
	}
	return &Banner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
	}, nil
}

// SetTitle changes the banner title
func (b *Banner) SetTitle(title string) error {
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Banner title cannot exceed 200 characters")
	}
	b.Title = title
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// SetImage attaches a stored image
func (b *Banner) SetImage(img Image) {
	b.Image = img
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

// DisplayName returns the title, or "Banner" when untitled
func (b *Banner) DisplayName() string {
	if b.Title != "" {
		return b.Title
	}
	return "Banner"
}
