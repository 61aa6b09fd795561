package catalog

import (
	"strings"

	"github.com/sisl/eshop/internal/domain/shared"
)

// Allowed upload content types for catalog images
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Image references a stored catalog image
type Image struct {
	Key string // storage key, e.g. "products/<id>/<file>.png"
	URL string // public URL
}

// IsZero reports whether no image is attached
func (i Image) IsZero() bool {
	return i.Key == "" && i.URL == ""
}

// ImagePurpose names what an uploaded image is for; it shapes the rejection message
type ImagePurpose string

const (
	ImagePurposeProduct ImagePurpose = "product images"
	ImagePurposeLogo    ImagePurpose = "logos"
	ImagePurposeBanner  ImagePurpose = "banner images"
)

// ValidateImageContentType rejects anything other than JPEG, PNG or GIF
func ValidateImageContentType(contentType string, purpose ImagePurpose) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if !allowedImageTypes[ct] {
		return shared.NewDomainError("INVALID_IMAGE_TYPE",
			"Only JPEG, PNG, or GIF files are allowed for "+string(purpose)+".")
	}
	return nil
}

// ImageExtension returns the file extension for an allowed content type
func ImageExtension(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
