package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

type ProductDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	ImageURL    string `json:"image_url"`
}

type ProductListResponse struct {
	Items []ProductDTO `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type ProductCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	ImageURL    string `json:"image_url"`
}

func mustDecodeProductList(t *testing.T, body []byte) ProductListResponse {
	t.Helper()
	var v ProductListResponse
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ProductListResponse) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeProduct(t *testing.T, body []byte) ProductDTO {
	t.Helper()
	var v ProductDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ProductDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

// 管理者で商品を作ってIDを返す
func createTestProduct(t *testing.T, c *TestClient, ctx context.Context, access string, name string, price int64, stock int64) int64 {
	t.Helper()

	create := ProductCreateRequest{
		Name:        name,
		Description: "e2e test product",
		Price:       price,
		Stock:       stock,
	}
	b, err := json.Marshal(create)
	if err != nil {
		t.Fatalf("json.Marshal(ProductCreateRequest) failed: %v", err)
	}

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/admin/products", access, b)
	requireStatus(t, resp, http.StatusCreated, body)

	created := mustDecodeProduct(t, body)
	if created.ID <= 0 {
		t.Fatalf("created product id should be positive: body=%s", string(body))
	}
	return created.ID
}

func Test_Products_AdminCreate_PublicList_Detail_Delete(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()
	access := adminLogin(t, c, ctx)

	uniqueName := "E2E-Beans-" + uniqueSuffix()
	productID := createTestProduct(t, c, ctx, access, uniqueName, 1200, 7)

	//一覧検索で見つかるか（認証不要）
	resp, body := c.doJSON(ctx, t, http.MethodGet, "/products?page=1&limit=20&q="+uniqueName+"&sort=new", "", nil)
	requireStatus(t, resp, http.StatusOK, body)

	list := mustDecodeProductList(t, body)
	if len(list.Items) != 1 {
		t.Fatalf("expected exactly 1 product: body=%s", string(body))
	}
	if list.Items[0].ID != productID {
		t.Fatalf("listed product id mismatch: body=%s", string(body))
	}

	//画像未指定はプレースホルダーURLになるか
	if list.Items[0].ImageURL == "" {
		t.Fatalf("image_url should default to placeholder: body=%s", string(body))
	}

	//詳細が取れるか
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/products/"+toStr(productID), "", nil)
	requireStatus(t, resp, http.StatusOK, body)

	detail := mustDecodeProduct(t, body)
	if detail.Name != uniqueName || detail.Price != 1200 || detail.Stock != 7 {
		t.Fatalf("detail mismatch: body=%s", string(body))
	}

	//同名商品の作成は409になるか
	dup := ProductCreateRequest{Name: uniqueName, Price: 100, Stock: 1}
	dupJSON, err := json.Marshal(dup)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/admin/products", access, dupJSON)
	requireStatus(t, resp, http.StatusConflict, body)

	//削除して詳細が404になるか
	resp, body = c.doJSON(ctx, t, http.MethodDelete, "/admin/products/"+toStr(productID), access, nil)
	requireStatus(t, resp, http.StatusOK, body)

	msg := mustDecodeSuccess(t, body)
	if msg.Message != "deleted" {
		t.Fatalf("message should be 'deleted': body=%s", string(body))
	}

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/products/"+toStr(productID), "", nil)
	requireStatus(t, resp, http.StatusNotFound, body)
}

func Test_Products_InvalidListParams(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/products?page=0&limit=20", "", nil)
	requireStatus(t, resp, http.StatusBadRequest, body)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/products?page=1&limit=1000", "", nil)
	requireStatus(t, resp, http.StatusBadRequest, body)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/products?page=1&limit=20&sort=oldest", "", nil)
	requireStatus(t, resp, http.StatusBadRequest, body)
}

// 一般ユーザーは/adminに入れない
func Test_Products_AdminRoutes_RejectNonAdmin(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()
	access, _ := registerAndLogin(t, c, ctx)

	create := ProductCreateRequest{Name: "E2E-Forbidden-" + uniqueSuffix(), Price: 100, Stock: 1}
	b, err := json.Marshal(create)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/admin/products", access, b)
	requireStatus(t, resp, http.StatusForbidden, body)

	er := mustDecodeError(t, body)
	if er.Error != "admin only" {
		t.Fatalf("error should be 'admin only': body=%s", string(body))
	}
}
