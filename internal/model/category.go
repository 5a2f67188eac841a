package model

type Category struct {
	BaseModel
	NameEn    string `gorm:"type:varchar(255);not null" json:"name_en" validate:"required"`
	NameAr    string `gorm:"type:varchar(255);not null" json:"name_ar" validate:"required"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`

	Products []Product `json:"products,omitempty"`
}
