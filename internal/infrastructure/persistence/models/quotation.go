package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/trade"
)

// QuotationModel is the persistence model for the Quotation aggregate root.
type QuotationModel struct {
	AggregateModel
	CustomerID      *uuid.UUID            `gorm:"type:uuid;index"`
	OrderNumber     string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_quotations_order_number"`
	Subject         string                `gorm:"type:varchar(255)"`
	Notes           string                `gorm:"type:text"`
	Status          trade.QuotationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TotalAmount     decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0"`
	PhoneNo         string                `gorm:"type:varchar(20);not null"`
	CustomerName    string                `gorm:"type:varchar(255)"`
	Email           string                `gorm:"type:varchar(254)"`
	DeliveryAddress string                `gorm:"type:text"`
	DocumentPath    string                `gorm:"type:varchar(500)"`
	DocumentURL     string                `gorm:"type:varchar(1000)"`

	AccountingCustomerKey   string `gorm:"type:varchar(100)"`
	AccountingSalesOrderKey string `gorm:"type:varchar(100)"`
	ConfirmedAt             *time.Time

	Lines []QuotationLineModel `gorm:"foreignKey:QuotationID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "quotations"
}

// ToDomain converts the persistence model to a domain Quotation entity.
func (m *QuotationModel) ToDomain() *trade.Quotation {
	q := &trade.Quotation{
		BaseAggregateRoot:       m.ToDomainAggregateRoot(),
		CustomerID:              m.CustomerID,
		OrderNumber:             m.OrderNumber,
		Subject:                 m.Subject,
		Notes:                   m.Notes,
		Status:                  m.Status,
		TotalAmount:             m.TotalAmount,
		PhoneNo:                 m.PhoneNo,
		CustomerName:            m.CustomerName,
		Email:                   m.Email,
		DeliveryAddress:         m.DeliveryAddress,
		DocumentPath:            m.DocumentPath,
		DocumentURL:             m.DocumentURL,
		AccountingCustomerKey:   m.AccountingCustomerKey,
		AccountingSalesOrderKey: m.AccountingSalesOrderKey,
		ConfirmedAt:             m.ConfirmedAt,
		Lines:                   make([]trade.QuotationLine, 0, len(m.Lines)),
	}
	for i := range m.Lines {
		q.Lines = append(q.Lines, *m.Lines[i].ToDomain())
	}
	return q
}

// FromDomain populates the persistence model from a domain Quotation entity.
func (m *QuotationModel) FromDomain(q *trade.Quotation) {
	m.FromDomainAggregateRoot(q.BaseAggregateRoot)
	m.CustomerID = q.CustomerID
	m.OrderNumber = q.OrderNumber
	m.Subject = q.Subject
	m.Notes = q.Notes
	m.Status = q.Status
	m.TotalAmount = q.TotalAmount
	m.PhoneNo = q.PhoneNo
	m.CustomerName = q.CustomerName
	m.Email = q.Email
	m.DeliveryAddress = q.DeliveryAddress
	m.DocumentPath = q.DocumentPath
	m.DocumentURL = q.DocumentURL
	m.AccountingCustomerKey = q.AccountingCustomerKey
	m.AccountingSalesOrderKey = q.AccountingSalesOrderKey
	m.ConfirmedAt = q.ConfirmedAt

	m.Lines = make([]QuotationLineModel, len(q.Lines))
	for i := range q.Lines {
		m.Lines[i].FromDomain(&q.Lines[i])
	}
}

// QuotationModelFromDomain creates a new persistence model from a domain Quotation entity.
func QuotationModelFromDomain(q *trade.Quotation) *QuotationModel {
	m := &QuotationModel{}
	m.FromDomain(q)
	return m
}

// QuotationLineModel is the persistence model for a quotation line.
type QuotationLineModel struct {
	BaseModel
	QuotationID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo          int             `gorm:"not null;default:1"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName     string          `gorm:"type:varchar(255);not null"`
	ProductSKU      string          `gorm:"column:product_sku;type:varchar(50);not null"`
	Description     string          `gorm:"type:text"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:25"`
}

// TableName returns the table name for GORM
func (QuotationLineModel) TableName() string {
	return "quotation_lines"
}

// ToDomain converts the persistence model to a domain QuotationLine.
func (m *QuotationLineModel) ToDomain() *trade.QuotationLine {
	return &trade.QuotationLine{
		ID:              m.ID,
		QuotationID:     m.QuotationID,
		LineNo:          m.LineNo,
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		ProductSKU:      m.ProductSKU,
		Description:     m.Description,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		DiscountPercent: m.DiscountPercent,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain QuotationLine.
func (m *QuotationLineModel) FromDomain(l *trade.QuotationLine) {
	m.ID = l.ID
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
	m.QuotationID = l.QuotationID
	m.LineNo = l.LineNo
	m.ProductID = l.ProductID
	m.ProductName = l.ProductName
	m.ProductSKU = l.ProductSKU
	m.Description = l.Description
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.DiscountPercent = l.DiscountPercent
}
