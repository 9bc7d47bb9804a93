package models

import "time"

type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2)"`
	Status    string    `json:"status" gorm:"default:draft"`
	ImageID   *uint     `json:"image_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const ProductStatusPublished = "publish"

type ProductMeta struct {
	ProductID uint   `json:"product_id" gorm:"primaryKey"`
	MetaKey   string `json:"meta_key" gorm:"primaryKey"`
	MetaValue string `json:"meta_value"`
}

func (ProductMeta) TableName() string { return "product_meta" }

// Attachment is a registered media file, e.g. a product image pulled from
// the EDGE inbox.
type Attachment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	MimeType  string    `json:"mime_type"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
