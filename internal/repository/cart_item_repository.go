package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)
	// マージ更新用の行ロック付き取得
	FindByCartAndProductForUpdate(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)
	Insert(ctx context.Context, item *model.CartItem) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	// 削除対象が無ければErrNotFound
	DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error
	DeleteAllByCartID(ctx context.Context, cartID int64) error
}
