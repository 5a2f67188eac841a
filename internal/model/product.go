package model

import "github.com/google/uuid"

type Product struct {
	BaseModel
	SKU           string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	NameEn        string     `gorm:"type:varchar(255);not null" json:"name_en" validate:"required"`
	NameAr        string     `gorm:"type:varchar(255);not null" json:"name_ar" validate:"required"`
	DescriptionEn string     `gorm:"type:text" json:"description_en"`
	DescriptionAr string     `gorm:"type:text" json:"description_ar"`
	Price         float64    `gorm:"not null" json:"price" validate:"gte=0"`
	Cost          float64    `gorm:"default:0" json:"cost" validate:"gte=0"`
	Stock         int        `gorm:"default:0" json:"stock"` // mutated only through the stock ledger
	CategoryID    *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category      *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CompanyID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id" validate:"uuid_required"`
	Company       *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Zones         ZoneList   `gorm:"serializer:json" json:"zones"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	IsFeatured    bool       `gorm:"default:false" json:"is_featured"`

	History []StockHistory `json:"history,omitempty"`
}
