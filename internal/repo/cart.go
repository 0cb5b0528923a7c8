package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertCartItem increments an existing line by item.Quantity or inserts a new
// one. It must run inside a transaction; item is reloaded with the stored row.
func (r *GormRepo) UpsertCartItem(ctx context.Context, item *models.CartItem) error {
	db := r.DB.WithContext(ctx)
	res := db.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
		Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return db.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(item).Error
	}
	return translate(db.Create(item).Error)
}

// DecrementCartItem removes one unit of a line and deletes the line when it
// reaches zero. deleted reports whether the line is gone.
func (r *GormRepo) DecrementCartItem(ctx context.Context, userID, productID uint) (deleted bool, item *models.CartItem, err error) {
	db := r.DB.WithContext(ctx)
	var line models.CartItem
	if err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&line).Error; err != nil {
		return false, nil, err
	}

	if line.Quantity > 1 {
		if err := db.Model(&line).Update("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
			return false, nil, err
		}
		if err := db.First(&line, line.ID).Error; err != nil {
			return false, nil, err
		}
		return false, &line, nil
	}

	if err := db.Delete(&line).Error; err != nil {
		return false, nil, err
	}
	line.Quantity = 0
	return true, &line, nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
