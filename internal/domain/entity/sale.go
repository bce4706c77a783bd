package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/josemp10/ventas-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Sale represents a sales transaction
type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID   *uuid.UUID      `gorm:"type:uuid;index" json:"client_id,omitempty"`
	SaleDate   time.Time       `gorm:"not null;index" json:"sale_date"`
	Status     enum.SaleStatus `gorm:"size:20;default:'pending';index" json:"status"`
	TotalItems int             `gorm:"default:0" json:"total_items"`
	Total      int64           `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	InvoiceNo  string          `gorm:"size:100;unique;not null" json:"invoice_no"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	User    User         `gorm:"foreignKey:UserID" json:"-"`
	Client  *Client      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Details []SaleDetail `gorm:"foreignKey:SaleID" json:"details,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		Total float64 `json:"total"`
	}{
		Alias: Alias(s),
		Total: float64(s.Total) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// GetTotalDecimal returns the total as a decimal
func (s *Sale) GetTotalDecimal() float64 {
	return float64(s.Total) / 100
}

// SaleDetail represents a line item in a sale
type SaleDetail struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	UnitPrice int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Subtotal  int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sale    Sale    `gorm:"foreignKey:SaleID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (d SaleDetail) MarshalJSON() ([]byte, error) {
	type Alias SaleDetail
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Subtotal  float64 `json:"subtotal"`
	}{
		Alias:     Alias(d),
		UnitPrice: float64(d.UnitPrice) / 100,
		Subtotal:  float64(d.Subtotal) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new sale detail
func (d *SaleDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleDetail model
func (SaleDetail) TableName() string {
	return "sale_details"
}

// GetSubtotalDecimal returns the subtotal as a decimal
func (d *SaleDetail) GetSubtotalDecimal() float64 {
	return float64(d.Subtotal) / 100
}
