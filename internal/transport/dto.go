package transport

import (
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

type RegisterRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest accepts both a JSON body and an OAuth2 style password form.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	AccessToken      string     `json:"access_token"`
	RefreshToken     string     `json:"refresh_token,omitempty"`
	TokenType        string     `json:"token_type"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" query:"refresh_token"`
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	CategoryIDs []uint  `json:"category_ids"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AddCategoriesRequest struct {
	CategoryIDs []uint `json:"category_ids"`
}

// AddToCartRequest leaves Quantity nil when the client omits it; that means one unit.
type AddToCartRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  *int `json:"quantity"`
}

func (r AddToCartRequest) Units() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

type CreateCommentRequest struct {
	Text     string `json:"text"`
	ParentID *uint  `json:"parent_id"`
}

type ProductPage struct {
	Items []models.Product `json:"items"`
	Meta  util.PageMeta    `json:"meta"`
}

type RemoveFromCartResponse struct {
	Deleted bool             `json:"deleted"`
	Item    *models.CartItem `json:"item,omitempty"`
}

type DeleteCommentResponse struct {
	Deleted int64 `json:"deleted"`
}
