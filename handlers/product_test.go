package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prostore-backend/models"

	"github.com/google/uuid"
)

func TestGetLatestProducts(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)

	for i := 0; i < 6; i++ {
		p := seedProduct(db, fmt.Sprintf("Product %d", i), fmt.Sprintf("product-%d", i), "10", 5)
		db.Model(&p).Update("created_at", time.Now().Add(time.Duration(i)*time.Minute))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/products/latest", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	result := parseResponseArray(w)
	if len(result) != 4 {
		t.Fatalf("expected 4 products, got %d", len(result))
	}
	if first := result[0].(map[string]interface{}); first["slug"] != "product-5" {
		t.Errorf("expected newest product first, got %v", first["slug"])
	}
}

func TestGetLatestProductsCustomLimit(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	for i := 0; i < 3; i++ {
		seedProduct(db, fmt.Sprintf("Product %d", i), fmt.Sprintf("product-%d", i), "10", 5)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/products/latest?limit=2", nil))

	if len(parseResponseArray(w)) != 2 {
		t.Errorf("expected 2 products, got %s", w.Body.String())
	}
}

func TestGetProductsPaginated(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	for i := 0; i < 5; i++ {
		seedProduct(db, fmt.Sprintf("Shirt %d", i), fmt.Sprintf("shirt-%d", i), "10", 5)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/products?page=2&limit=2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["total"] != float64(5) {
		t.Errorf("expected total 5, got %v", resp["total"])
	}
	if products := resp["products"].([]interface{}); len(products) != 2 {
		t.Errorf("expected 2 products on page 2, got %d", len(products))
	}
}

func TestGetProductBySlug(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	seedProduct(db, "Polo Shirt", "polo-shirt", "59.99", 5)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/products/polo-shirt", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["name"] != "Polo Shirt" || resp["price"] != "59.99" {
		t.Errorf("unexpected product %v", resp)
	}
}

func TestGetProductBySlugNotFound(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/products/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestCreateProductAsAdmin(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, token := seedTestUser(db, "admin@test.com", models.RoleAdmin)

	body := map[string]interface{}{
		"name":     "Classic Oxford Shirt",
		"category": "Shirts",
		"images":   []string{"/images/oxford.jpg"},
		"price":    "49.999",
		"stock":    10,
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/products", body, token))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["slug"] != "classic-oxford-shirt" {
		t.Errorf("expected generated slug, got %v", resp["slug"])
	}
	if resp["price"] != "50" {
		t.Errorf("expected price rounded to cents, got %v", resp["price"])
	}
}

func TestCreateProductDuplicateSlug(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, token := seedTestUser(db, "admin@test.com", models.RoleAdmin)
	seedProduct(db, "Polo Shirt", "polo-shirt", "10", 1)

	body := map[string]interface{}{
		"name":     "Polo Shirt",
		"category": "Shirts",
		"images":   []string{"/images/polo.jpg"},
		"price":    "10",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/products", body, token))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateProductRejectsNonPositivePrice(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, token := seedTestUser(db, "admin@test.com", models.RoleAdmin)

	body := map[string]interface{}{
		"name":     "Free Shirt",
		"category": "Shirts",
		"images":   []string{"/images/free.jpg"},
		"price":    "0",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/products", body, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateProductForbiddenForUser(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, token := seedTestUser(db, "user@test.com", models.RoleUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/products", map[string]interface{}{}, token))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestUpdateStock(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, token := seedTestUser(db, "admin@test.com", models.RoleAdmin)
	p := seedProduct(db, "Polo Shirt", "polo-shirt", "10", 5)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/products/"+p.ID.String()+"/stock", map[string]interface{}{"stock": 0}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if stock := parseResponse(w)["stock"]; stock != float64(0) {
		t.Errorf("expected stock 0, got %v", stock)
	}
}

func TestUpdateStockValidation(t *testing.T) {
	db := freshDB()
	router := setupProductRouter(db)
	_, token := seedTestUser(db, "admin@test.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/products/not-a-uuid/stock", map[string]interface{}{"stock": 1}, token))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for bad id, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/products/"+uuid.New().String()+"/stock", map[string]interface{}{"stock": -1}, token))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for negative stock, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/products/"+uuid.New().String()+"/stock", map[string]interface{}{"stock": 1}, token))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown product, got %d", w.Code)
	}
}
