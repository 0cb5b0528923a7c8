package models

import (
	"time"
)

// Column limits, in characters. They match the size tags below.
const (
	MaxUsernameLen            = 64
	MaxFullNameLen            = 128
	MaxEmailLen               = 255
	MaxNameLen                = 255
	MaxProductDescriptionLen  = 2048
	MaxCategoryDescriptionLen = 1024
	MaxCommentLen             = 4096
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"          json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null"     json:"username"`
	FullName     string    `gorm:"size:128;not null"                json:"full_name"`
	Email        string    `gorm:"size:255;not null"                json:"email"`
	PasswordHash string    `gorm:"not null"                         json:"-"`
	Disabled     bool      `gorm:"not null"                         json:"disabled"`
	CreatedAt    time.Time `                                        json:"created_at"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null"    json:"name"`
	Description string    `gorm:"size:2048;not null"               json:"description"`
	Price       float64   `gorm:"not null;check:price > 0"         json:"price"`
	Stock       int       `gorm:"not null;check:stock >= 0"        json:"stock"`
	CreatedAt   time.Time `                                        json:"created_at"`

	CategoryIDs []uint `gorm:"-" json:"category_ids"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name        string `gorm:"size:255;uniqueIndex;not null"    json:"name"`
	Description string `gorm:"size:1024;not null"               json:"description"`
}

// ProductCategory is the explicit many-to-many join between products and categories.
type ProductCategory struct {
	ProductID  uint `gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                                   json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product"  json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product"  json:"product_id"`
	Quantity  int  `gorm:"not null;default:1;check:quantity > 0"       json:"quantity"`
}

// Purchase is written once at checkout and never updated.
type Purchase struct {
	ID          uint      `gorm:"primaryKey"          json:"id"`
	UserID      uint      `gorm:"index;not null"      json:"user_id"`
	ProductID   uint      `gorm:"index;not null"      json:"product_id"`
	Quantity    int       `gorm:"not null"            json:"quantity"`
	UnitPrice   float64   `gorm:"not null"            json:"unit_price"`
	PurchasedAt time.Time `gorm:"index;not null"      json:"purchased_at"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	ProductID uint      `gorm:"index;not null"      json:"product_id"`
	ParentID  *uint     `gorm:"index"               json:"parent_id"`
	Text      string    `gorm:"size:4096;not null"  json:"text"`
	CreatedAt time.Time `                           json:"created_at"`
}

func All() []any {
	return []any{
		&User{},
		&Product{},
		&Category{},
		&ProductCategory{},
		&CartItem{},
		&Purchase{},
		&Comment{},
	}
}
