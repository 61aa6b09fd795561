package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/domain/trade"
	"github.com/sisl/eshop/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormQuotationRepository implements QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// FindByID loads a quotation with its lines in line order
func (r *GormQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Quotation, error) {
	var model models.QuotationModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists quotation headers, newest first by default
func (r *GormQuotationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Quotation, error) {
	var rows []models.QuotationModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.QuotationModel{}), filter)
	query = applyPagination(query, filter, QuotationSortFields, "created_at", "DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	quotations := make([]trade.Quotation, len(rows))
	for i := range rows {
		quotations[i] = *rows[i].ToDomain()
	}
	return quotations, nil
}

// Count counts quotations matching the filter
func (r *GormQuotationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.QuotationModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates the header and replaces the lines in one transaction
func (r *GormQuotationRepository) Save(ctx context.Context, q *trade.Quotation) error {
	model := models.QuotationModelFromDomain(q)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("quotation_id = ?", q.ID).Delete(&models.QuotationLineModel{}).Error; err != nil {
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		return tx.Create(&model.Lines).Error
	})
	return translateWriteError(err, ErrDuplicateOrderNumber)
}

// CompareAndSwapStatus moves the status from `from` to `to` atomically
func (r *GormQuotationRepository) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to trade.QuotationStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.QuotationModel{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateHeader writes the header columns only, so a confirmation or document
// render that lands between load and save is preserved
func (r *GormQuotationRepository) UpdateHeader(ctx context.Context, id uuid.UUID, header trade.QuotationHeader) error {
	return r.updateColumns(ctx, id, map[string]any{
		"customer_name":    header.CustomerName,
		"phone_no":         header.PhoneNo,
		"email":            header.Email,
		"delivery_address": header.DeliveryAddress,
		"subject":          header.Subject,
		"notes":            header.Notes,
		"version":          gorm.Expr("version + 1"),
	})
}

// UpdateTotal persists total_amount
func (r *GormQuotationRepository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	return r.updateColumns(ctx, id, map[string]any{"total_amount": total})
}

// UpdateDocument persists the rendered document reference
func (r *GormQuotationRepository) UpdateDocument(ctx context.Context, id uuid.UUID, path, url string) error {
	return r.updateColumns(ctx, id, map[string]any{"document_path": path, "document_url": url})
}

// UpdateCustomerKey persists the accounting customer key
func (r *GormQuotationRepository) UpdateCustomerKey(ctx context.Context, id uuid.UUID, key string) error {
	return r.updateColumns(ctx, id, map[string]any{"accounting_customer_key": key})
}

// MarkConfirmed persists the sales order key and confirmation time
func (r *GormQuotationRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, salesOrderKey string, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"accounting_sales_order_key": salesOrderKey,
		"confirmed_at":               at,
	})
}

// SaveLine creates or updates a single line
func (r *GormQuotationRepository) SaveLine(ctx context.Context, line *trade.QuotationLine) error {
	var model models.QuotationLineModel
	model.FromDomain(line)
	return translateWriteError(r.db.WithContext(ctx).Save(&model).Error, nil)
}

// DeleteLine removes a line from a quotation
func (r *GormQuotationRepository) DeleteLine(ctx context.Context, quotationID, lineID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND quotation_id = ?", lineID, quotationID).
		Delete(&models.QuotationLineModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsLineForProduct reports whether any line references the product
func (r *GormQuotationRepository) ExistsLineForProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QuotationLineModel{}).
		Where("product_id = ?", productID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormQuotationRepository) updateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	columns["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.QuotationModel{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormQuotationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			r.db.Where(containsClause("order_number"), pattern).
				Or(containsClause("customer_name"), pattern).
				Or(containsClause("phone_no"), pattern),
		)
	}
	return query
}
