package handler

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/selector"
	"github.com/sakashimaa/storefront/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const attrPrefix = "attr_"

type ProductHandler struct {
	base
	products *store.ProductStore
}

type ListProductsInput struct {
	Page       int    `query:"page" validate:"gte=0"`
	Limit      int    `query:"limit" validate:"gte=0,lte=100"`
	CategoryID string `query:"category_id"`
	BrandID    string `query:"brand_id"`
	MinPrice   string `query:"min_price" validate:"omitempty,numeric"`
	MaxPrice   string `query:"max_price" validate:"omitempty,numeric"`
	Sort       string `query:"sort" validate:"omitempty,oneof=newest price_asc price_desc popular"`
	InStock    bool   `query:"in_stock"`
}

func (in ListProductsInput) filter() domain.ProductFilter {
	f := domain.ProductFilter{
		Page:       in.Page,
		Limit:      in.Limit,
		CategoryID: in.CategoryID,
		BrandID:    in.BrandID,
		Sort:       domain.ProductSort(in.Sort),
		InStock:    in.InStock,
	}
	if d, err := decimal.NewFromString(in.MinPrice); err == nil {
		f.MinPrice = &d
	}
	if d, err := decimal.NewFromString(in.MaxPrice); err == nil {
		f.MaxPrice = &d
	}
	return f
}

type productDetail struct {
	*domain.ProductWithRelations
	Variant         *domain.ProductVariant `json:"selected_variant,omitempty"`
	EffectivePrice  decimal.Decimal        `json:"effective_price"`
	DiscountPercent *int                   `json:"discount_percent"`
	PrimaryImage    string                 `json:"primary_image,omitempty"`
}

func NewProductHandler(products *store.ProductStore, validate *validator.Validate, logger *zap.Logger, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		base:     newBase(logger, validate, timeout),
		products: products,
	}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	input := new(ListProductsInput)
	if err := c.QueryParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid query",
		})
	}
	if err := h.validate.Struct(input); err != nil {
		return h.fail(c, c.UserContext(), "list products", "invalid query", err)
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.products.LoadList(ctx, input.filter()); err != nil {
		return h.fail(c, ctx, "list products", h.products.State().Error, err)
	}

	page := h.products.State().Value.List
	items := page.Items
	if input.InStock {
		items = selector.FilterProducts(page.Items, selector.InStock)
	}

	return c.JSON(fiber.Map{
		"items":    withDiscounts(items),
		"total":    page.Total,
		"page":     page.Page,
		"limit":    page.Limit,
		"has_next": page.HasNext(),
	})
}

func (h *ProductHandler) Featured(c *fiber.Ctx) error {
	return h.rail(c, "featured", h.products.LoadFeatured, func(st store.ProductState) []domain.ProductListItem {
		return st.Featured
	})
}

func (h *ProductHandler) NewArrivals(c *fiber.Ctx) error {
	return h.rail(c, "new arrivals", h.products.LoadNewArrivals, func(st store.ProductState) []domain.ProductListItem {
		return st.NewArrivals
	})
}

func (h *ProductHandler) Bestsellers(c *fiber.Ctx) error {
	return h.rail(c, "bestsellers", h.products.LoadBestsellers, func(st store.ProductState) []domain.ProductListItem {
		return st.Bestsellers
	})
}

func (h *ProductHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.products.Search(ctx, query, c.QueryInt("page", 1), c.QueryInt("limit", 20)); err != nil {
		return h.fail(c, ctx, "search products", h.products.State().Error, err)
	}

	results := h.products.State().Value.Results
	return c.JSON(fiber.Map{
		"query":    query,
		"items":    withDiscounts(results.Items),
		"total":    results.Total,
		"has_next": results.HasNext(),
	})
}

// Detail resolves the variant from attr_* query parameters, e.g. ?attr_color=red&attr_size=M.
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.products.LoadBySlug(ctx, c.Params("slug")); err != nil {
		return h.fail(c, ctx, "product detail", h.products.State().Error, err)
	}

	product := h.products.State().Value.Current

	attrs := make(map[string]string)
	for key, value := range c.Queries() {
		if name, ok := strings.CutPrefix(key, attrPrefix); ok && name != "" {
			attrs[name] = value
		}
	}

	variant := product.FindVariant(attrs)

	return c.JSON(productDetail{
		ProductWithRelations: product,
		Variant:              variant,
		EffectivePrice:       product.EffectivePrice(variant),
		DiscountPercent:      selector.ProductDiscount(product, variant),
		PrimaryImage:         product.PrimaryImage(),
	})
}

func (h *ProductHandler) rail(
	c *fiber.Ctx,
	name string,
	load func(ctx context.Context) error,
	pick func(st store.ProductState) []domain.ProductListItem,
) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := load(ctx); err != nil {
		return h.fail(c, ctx, "load "+name, h.products.State().Error, err)
	}

	return c.JSON(fiber.Map{
		"items": withDiscounts(pick(h.products.State().Value)),
	})
}

type listItem struct {
	domain.ProductListItem
	DiscountPercent *int `json:"discount_percent"`
}

func withDiscounts(items []domain.ProductListItem) []listItem {
	out := make([]listItem, 0, len(items))
	for _, item := range items {
		price := item.Price
		out = append(out, listItem{
			ProductListItem: item,
			DiscountPercent: selector.CalculateDiscount(&price, item.ComparePrice),
		})
	}
	return out
}
