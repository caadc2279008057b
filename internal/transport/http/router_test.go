package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/checkout"
	"github.com/sakashimaa/storefront/internal/service"
	"github.com/sakashimaa/storefront/internal/store"
	"github.com/sakashimaa/storefront/internal/transport/http/handler"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type backendItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// backend is a minimal storefront API: one cart, login and order creation.
type backend struct {
	mu        sync.Mutex
	items     []backendItem
	nextID    int
	orderKeys []string
}

func (b *backend) cartJSON() map[string]interface{} {
	return map[string]interface{}{
		"id":           "cart-1",
		"status":       "active",
		"items":        b.items,
		"total_amount": "0",
	}
}

func (b *backend) handler() nethttp.Handler {
	writeJSON := func(w nethttp.ResponseWriter, status int, body interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /carts", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, nethttp.StatusOK, b.cartJSON())
	})
	mux.HandleFunc("POST /carts/items", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		b.items = append(b.items, backendItem{
			ID:        fmt.Sprintf("item-%d", b.nextID),
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			UnitPrice: "10.00",
		})
		w.WriteHeader(nethttp.StatusCreated)
	})
	mux.HandleFunc("PATCH /carts/items/{id}", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			Quantity int `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.items {
			if b.items[i].ID == r.PathValue("id") {
				b.items[i].Quantity = req.Quantity
			}
		}
		writeJSON(w, nethttp.StatusOK, b.cartJSON())
	})
	mux.HandleFunc("DELETE /carts/items/{id}", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		kept := b.items[:0:0]
		for _, item := range b.items {
			if item.ID != r.PathValue("id") {
				kept = append(kept, item)
			}
		}
		b.items = kept
		writeJSON(w, nethttp.StatusOK, b.cartJSON())
	})
	mux.HandleFunc("POST /auth/login/email", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, nethttp.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	})
	mux.HandleFunc("POST /orders", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		b.mu.Lock()
		b.orderKeys = append(b.orderKeys, r.Header.Get("Idempotency-Key"))
		b.mu.Unlock()

		writeJSON(w, nethttp.StatusCreated, map[string]interface{}{
			"id":           "order-1",
			"order_number": "SF-0001",
			"status":       "pending",
			"items":        []interface{}{},
			"total_amount": "25.98",
		})
	})

	return mux
}

type RouterSuite struct {
	suite.Suite
	backend *backend
	server  *httptest.Server
	app     *fiber.App
}

func (s *RouterSuite) SetupTest() {
	s.backend = &backend{}
	s.server = httptest.NewServer(s.backend.handler())

	logger := zap.NewNop()
	tokens := apiclient.NewMemoryTokenStore()
	api := apiclient.New(apiclient.Config{BaseURL: s.server.URL, Timeout: 2 * time.Second}, tokens, logger)
	validate := service.NewValidator()

	ui := store.NewUIStore(0)
	deps := store.Deps{Logger: logger, UI: ui}

	cartStore := store.NewCartStore(service.NewCartService(api, validate), deps)
	authStore := store.NewAuthStore(service.NewAuthService(api, tokens, validate), cartStore, deps)
	orderStore := store.NewOrderStore(service.NewOrderService(api, validate), deps)
	addressStore := store.NewAddressStore(service.NewAddressService(api, validate), deps)
	productStore := store.NewProductStore(service.NewProductService(api, validate), deps)
	categoryStore := store.NewCategoryStore(service.NewCategoryService(api, validate), deps)
	brandStore := store.NewBrandStore(service.NewBrandService(api, validate), deps)
	api.SetSessionExpiredHook(authStore.HandleSessionExpired)

	pricing := checkout.NewPricing(0, nil)
	flow := checkout.NewFlow(pricing, orderStore, cartStore, deps)

	s.app = NewApp(ServerConfig{})
	RegisterRoutes(s.app, &Handlers{
		Cart:     handler.NewCartHandler(cartStore, pricing, validate, logger, time.Second),
		Checkout: handler.NewCheckoutHandler(flow, cartStore, authStore, addressStore, validate, logger, time.Second),
		Product:  handler.NewProductHandler(productStore, validate, logger, time.Second),
		Catalog:  handler.NewCatalogHandler(categoryStore, brandStore, validate, logger, time.Second),
		Account:  handler.NewAccountHandler(orderStore, addressStore, validate, logger, time.Second),
		Auth:     handler.NewAuthHandler(authStore, validate, logger, time.Second),
		UI:       handler.NewUIHandler(ui),
	})
}

func (s *RouterSuite) TearDownTest() {
	s.server.Close()
}

func (s *RouterSuite) do(method, path string, body interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.app.Test(req, 5000)
	s.Require().NoError(err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	s.Require().NoError(err)

	out := map[string]interface{}{}
	if len(bytes.TrimSpace(raw)) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &out), string(raw))
	}
	return res.StatusCode, out
}

func (s *RouterSuite) itemCount(body map[string]interface{}) int {
	cart, ok := body["cart"].(map[string]interface{})
	s.Require().True(ok, "response has no cart")
	return int(cart["item_count"].(float64))
}

func (s *RouterSuite) TestHealth() {
	status, body := s.do(fiber.MethodGet, "/health", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().Equal("ok", body["status"])
}

func (s *RouterSuite) TestCartLifecycle() {
	status, body := s.do(fiber.MethodPost, "/cart/items", map[string]interface{}{"product_id": "P1", "quantity": 2})
	s.Require().Equal(fiber.StatusCreated, status)
	s.Require().Equal(2, s.itemCount(body))

	status, body = s.do(fiber.MethodPatch, "/cart/items/item-1", map[string]interface{}{"quantity": 5})
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().Equal(5, s.itemCount(body))

	summary := body["cart"].(map[string]interface{})["summary"].(map[string]interface{})
	s.Require().Equal("50", summary["subtotal"])

	status, body = s.do(fiber.MethodDelete, "/cart/items/item-1", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().Zero(s.itemCount(body))
}

func (s *RouterSuite) TestAddItemValidation() {
	status, body := s.do(fiber.MethodPost, "/cart/items", map[string]interface{}{"product_id": "P1", "quantity": 0})
	s.Require().Equal(fiber.StatusBadRequest, status)
	s.Require().Contains(body["fields"], "quantity")
}

func (s *RouterSuite) TestBadCredentials() {
	status, body := s.do(fiber.MethodPost, "/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong",
	})
	s.Require().Equal(fiber.StatusUnauthorized, status)
	s.Require().Equal("Invalid email or password.", body["error"])
}

func (s *RouterSuite) TestCheckoutFlow() {
	status, _ := s.do(fiber.MethodPost, "/checkout/place-order", nil)
	s.Require().Equal(fiber.StatusConflict, status)

	form := map[string]interface{}{
		"email": "jane@example.com",
		"shipping_address": map[string]string{
			"first_name":    "Jane",
			"last_name":     "Doe",
			"address_line1": "1 Main St",
			"city":          "Springfield",
			"postal_code":   "12345",
			"country":       "US",
		},
		"billing_same_as_shipping": true,
		"shipping_method":          "standard",
		"payment_method":           "paypal",
	}
	status, body := s.do(fiber.MethodPut, "/checkout/data", form)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().Nil(body["errors"])

	status, body = s.do(fiber.MethodPost, "/checkout/continue", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().Equal("payment", body["step"])

	status, body = s.do(fiber.MethodPost, "/checkout/continue", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().Equal("review", body["step"])

	status, body = s.do(fiber.MethodPost, "/checkout/place-order", nil)
	s.Require().Equal(fiber.StatusCreated, status)
	s.Require().Equal("order-1", body["order"].(map[string]interface{})["id"])

	s.Require().Len(s.backend.orderKeys, 1)
	s.Require().NotEmpty(s.backend.orderKeys[0])

	status, _ = s.do(fiber.MethodGet, "/checkout/confirmation", nil)
	s.Require().Equal(fiber.StatusOK, status)

	status, _ = s.do(fiber.MethodPost, "/checkout/goto/payment", nil)
	s.Require().Equal(fiber.StatusConflict, status)
}

func (s *RouterSuite) TestCheckoutStepUpdatesKeepEarlierSteps() {
	status, _ := s.do(fiber.MethodPut, "/checkout/data", map[string]interface{}{
		"email": "jane@example.com",
		"shipping_address": map[string]string{
			"first_name":    "Jane",
			"last_name":     "Doe",
			"address_line1": "1 Main St",
			"city":          "Springfield",
			"postal_code":   "12345",
			"country":       "US",
		},
		"shipping_method": "express",
	})
	s.Require().Equal(fiber.StatusOK, status)

	status, _ = s.do(fiber.MethodPost, "/checkout/continue", nil)
	s.Require().Equal(fiber.StatusOK, status)

	status, _ = s.do(fiber.MethodPut, "/checkout/data", map[string]string{"payment_method": "paypal"})
	s.Require().Equal(fiber.StatusOK, status)

	status, body := s.do(fiber.MethodPost, "/checkout/continue", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().Equal("review", body["step"])

	status, body = s.do(fiber.MethodPost, "/checkout/back", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().Equal("payment", body["step"])

	data := body["data"].(map[string]interface{})
	s.Require().Equal("jane@example.com", data["email"])
	s.Require().Equal("express", data["shipping_method"])
	s.Require().Equal("paypal", data["payment_method"])
	s.Require().Equal(true, data["billing_same_as_shipping"])

	addr := data["shipping_address"].(map[string]interface{})
	s.Require().Equal("1 Main St", addr["address_line1"])
	s.Require().Equal("Springfield", addr["city"])
}

func (s *RouterSuite) TestCheckoutUnknownStep() {
	status, _ := s.do(fiber.MethodPost, "/checkout/goto/somewhere", nil)
	s.Require().Equal(fiber.StatusBadRequest, status)
}

func (s *RouterSuite) TestProductListRejectsBadSort() {
	status, _ := s.do(fiber.MethodGet, "/products?sort=cheapest", nil)
	s.Require().Equal(fiber.StatusBadRequest, status)
}

func (s *RouterSuite) TestUIFlags() {
	status, body := s.do(fiber.MethodPost, "/ui/flags/cart_drawer/toggle", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().Equal(true, body["open"])

	status, _ = s.do(fiber.MethodPost, "/ui/flags/sidebar/toggle", nil)
	s.Require().Equal(fiber.StatusNotFound, status)

	status, _ = s.do(fiber.MethodDelete, "/ui/toasts/missing", nil)
	s.Require().Equal(fiber.StatusNotFound, status)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}
