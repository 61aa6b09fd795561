package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// ProductUsageChecker reports whether quotation lines still reference a product
type ProductUsageChecker interface {
	ExistsLineForProduct(ctx context.Context, productID uuid.UUID) (bool, error)
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	brandRepo      catalog.BrandRepository
	usage          ProductUsageChecker
	images         imageStore
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	brandRepo catalog.BrandRepository,
	usage ProductUsageChecker,
	objects storage.ObjectStorage,
	logger *zap.Logger,
) *ProductService {
	logger = logger.Named("product_service")
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		usage:        usage,
		images:       imageStore{storage: objects, logger: logger},
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	details := catalog.ProductDetails{
		CategoryID:      req.CategoryID,
		BrandID:         req.BrandID,
		Name:            req.Name,
		SKU:             req.SKU,
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		CountryOfOrigin: req.CountryOfOrigin,
		Description:     req.Description,
		Specifications:  req.Specifications,
	}
	product, err := catalog.NewProduct(details)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, product.Name, product.SKU, nil); err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, details); err != nil {
		return nil, err
	}
	if err := s.applyRelations(ctx, product, &req.RelatedProducts, &req.Compatible); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List returns a page of products with the total count
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductListResponse, int64, error) {
	domainFilter := productFilter(filter)

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductListResponses(products), total, nil
}

// Update replaces a product's attributes and, when given, its relation sets
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := catalog.ProductDetails{
		CategoryID:      req.CategoryID,
		BrandID:         req.BrandID,
		Name:            req.Name,
		SKU:             req.SKU,
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		CountryOfOrigin: req.CountryOfOrigin,
		Description:     req.Description,
		Specifications:  req.Specifications,
	}
	if err := product.Update(details); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, product.Name, product.SKU, &product.ID); err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, details); err != nil {
		return nil, err
	}
	if err := s.applyRelations(ctx, product, req.RelatedProducts, req.Compatible); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// SetRelations replaces the related and/or compatible sets of a product
func (s *ProductService) SetRelations(ctx context.Context, id uuid.UUID, req SetRelationsRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyRelations(ctx, product, req.RelatedProducts, req.Compatible); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// UploadImage stores the product image and replaces the previous one
func (s *ProductService) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	img, err := s.images.save(ctx, productImagePrefix, product.ID, upload, catalog.ImagePurposeProduct)
	if err != nil {
		return nil, err
	}
	previous := product.Image
	product.SetImage(img)
	if err := s.productRepo.Save(ctx, product); err != nil {
		s.images.discard(ctx, img)
		return nil, err
	}
	if previous.Key != img.Key && !s.imageShared(ctx, previous) {
		s.images.discard(ctx, previous)
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Clone copies a product under a new Model Name and SKU, including both relation
// sets. Nothing is stored when either identity is already taken.
func (s *ProductService) Clone(ctx context.Context, sourceID uuid.UUID, req CloneProductRequest) (*ProductResponse, error) {
	source, err := s.productRepo.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	clone, err := source.Clone(req.Name, req.SKU)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, clone.Name, clone.SKU, nil); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, clone); err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && (domainErr.Code == "PRODUCT_EXISTS" || domainErr.Code == shared.ErrIntegrity.Code) {
			return nil, shared.NewDomainErrorWithCause(shared.ErrIntegrity.Code, "Integrity error while saving clone", err)
		}
		return nil, err
	}
	s.logger.Info("Product cloned",
		zap.String("source_id", source.ID.String()),
		zap.String("clone_id", clone.ID.String()),
		zap.String("sku", clone.SKU),
	)
	s.publishEvents(ctx, clone)

	response := ToProductResponse(clone)
	return &response, nil
}

// Delete removes a product that no quotation line references
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if s.usage != nil {
		inUse, err := s.usage.ExistsLineForProduct(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return shared.NewDomainError("PRODUCT_IN_USE", "Product is referenced by quotations and cannot be deleted")
		}
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	if !s.imageShared(ctx, product.Image) {
		s.images.discard(ctx, product.Image)
	}
	return nil
}

// ensureUnique checks Model Name and SKU independently so each collision gets its own message
func (s *ProductService) ensureUnique(ctx context.Context, name, sku string, excludeID *uuid.UUID) error {
	exists, err := s.productRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("PRODUCT_NAME_EXISTS", fmt.Sprintf("A product with Model Name '%s' already exists.", name))
	}

	exists, err = s.productRepo.ExistsBySKU(ctx, sku, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("PRODUCT_SKU_EXISTS", fmt.Sprintf("A product with SKU '%s' already exists.", sku))
	}
	return nil
}

func (s *ProductService) ensureReferences(ctx context.Context, details catalog.ProductDetails) error {
	if _, err := s.categoryRepo.FindByID(ctx, details.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	if _, err := s.brandRepo.FindByID(ctx, details.BrandID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_BRAND", "Brand not found")
		}
		return err
	}
	return nil
}

// applyRelations replaces the sets that are non-nil after checking every target exists
func (s *ProductService) applyRelations(ctx context.Context, product *catalog.Product, related, compatible *[]uuid.UUID) error {
	if related != nil {
		if err := product.SetRelatedProducts(*related); err != nil {
			return err
		}
		if err := s.ensureProductsExist(ctx, product.RelatedProductIDs); err != nil {
			return err
		}
	}
	if compatible != nil {
		if err := product.SetCompatibleModules(*compatible); err != nil {
			return err
		}
		if err := s.ensureProductsExist(ctx, product.CompatibleModuleIDs); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProductService) ensureProductsExist(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return shared.NewDomainError("INVALID_RELATION", "One or more referenced products do not exist")
	}
	return nil
}

// imageShared reports whether another product still uses img. Clones share
// the source's image key.
func (s *ProductService) imageShared(ctx context.Context, img catalog.Image) bool {
	if img.Key == "" {
		return false
	}
	filter := shared.DefaultFilter()
	filter.Filters["image_key"] = img.Key
	count, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		s.logger.Warn("Failed to check image usage, keeping the file", zap.String("key", img.Key), zap.Error(err))
		return true
	}
	return count > 0
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		product.ClearDomainEvents()
		return
	}
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
	}
}

func productFilter(f ProductListFilter) shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search
	if f.CategoryID != nil {
		filter.Filters["category_id"] = *f.CategoryID
	}
	if f.BrandID != nil {
		filter.Filters["brand_id"] = *f.BrandID
	}
	return filter
}
