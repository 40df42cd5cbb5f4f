package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 複数ステップの更新は必ずTransactionManager経由で1つのTxにまとめます。
type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

type CartItemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type CartResponse struct {
	ID    int64              `json:"id"`
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

type AddItemInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateItemInput struct {
	ProductID   int64
	NewQuantity int64
}

// GetCart はカート取得（無ければ空のカートを作って返す）。
// 作成ポリシーは全読み取り経路で統一：404にはしない。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = buildCartResponse(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}

	return out, nil
}

// CreateCart はカートの明示的な作成。
// user_idにunique制約があるので、既にあればそのカートを返すだけ。
func (u *CartUsecase) CreateCart(ctx context.Context, userID int64) (CartResponse, error) {
	return u.GetCart(ctx, userID)
}

// AddItem はカートに追加（同一商品は数量加算）。
// 在庫チェックは商品行をロックした上で行い、超過なら一切書き込まない。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//商品チェック（行ロック）
		p, err := r.Products().FindByIDForUpdate(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カート取得（無ければ作成）
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//既存明細を探して、あれば加算
		item, err := r.CartItems().FindByCartAndProductForUpdate(ctx, cart.ID, in.ProductID)
		if err == nil {
			newQty := item.Quantity + in.Quantity
			if newQty > p.Stock {
				return insufficientStockError(p, in.Quantity, item.Quantity)
			}
			if err := r.CartItems().UpdateQuantity(ctx, item.ID, newQty); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else if errors.Is(err, repo.ErrNotFound) {
			//無ければ新規作成
			if in.Quantity > p.Stock {
				return insufficientStockError(p, in.Quantity, 0)
			}
			newItem := model.CartItem{
				CartID:    cart.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
			}
			if err := r.CartItems().Insert(ctx, &newItem); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = buildCartResponse(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}

	return out, nil
}

// UpdateItemQuantity は数量変更。0なら明細ごと削除する（0は保存しない）。
func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, userID int64, in UpdateItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.NewQuantity < 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		item, err := r.CartItems().FindByCartAndProductForUpdate(ctx, cart.ID, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "item not found in cart")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//商品が消えているのは異常系だが404で返す
		p, err := r.Products().FindByIDForUpdate(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if in.NewQuantity == 0 {
			//0は削除扱い
			if err := r.CartItems().DeleteByCartAndProduct(ctx, cart.ID, in.ProductID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			if in.NewQuantity > p.Stock {
				return insufficientStockError(p, in.NewQuantity, item.Quantity)
			}
			if err := r.CartItems().UpdateQuantity(ctx, item.ID, in.NewQuantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out, err = buildCartResponse(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}

	return out, nil
}

// RemoveItem は明細削除
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		err = r.CartItems().DeleteByCartAndProduct(ctx, cart.ID, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "item not found in cart")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = buildCartResponse(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}

	return out, nil
}

// ClearCart は明細の全削除。空になったカートを返す。
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.CartItems().DeleteAllByCartID(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = buildCartResponse(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}

	return out, nil
}

// 在庫不足のメッセージには利用可能在庫・要求数量・カート内数量を入れる
func insufficientStockError(p model.Product, requested int64, inCart int64) error {
	return NewHTTPError(http.StatusBadRequest, fmt.Sprintf(
		"insufficient stock for %s: available %d, requested %d, in cart %d",
		p.Name, p.Stock, requested, inCart,
	))
}

// カートの明細をまとめてCartResponseを作る。
func buildCartResponse(ctx context.Context, r repo.TxRepos, cart model.Cart) (CartResponse, error) {
	items, err := r.CartItems().ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	var total int64 = 0

	for _, it := range items {
		p, err := r.Products().FindByID(ctx, it.ProductID)
		if err != nil {
			//削除済み商品の明細は表示しない
			continue
		}

		subtotal := p.Price * it.Quantity
		respItems = append(respItems, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  it.Quantity,
			Subtotal:  subtotal,
		})

		total += subtotal
	}

	return CartResponse{ID: cart.ID, Items: respItems, Total: total}, nil
}
