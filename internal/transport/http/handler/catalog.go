package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/storefront/internal/store"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	base
	categories *store.CategoryStore
	brands     *store.BrandStore
}

func NewCatalogHandler(
	categories *store.CategoryStore,
	brands *store.BrandStore,
	validate *validator.Validate,
	logger *zap.Logger,
	timeout time.Duration,
) *CatalogHandler {
	return &CatalogHandler{
		base:       newBase(logger, validate, timeout),
		categories: categories,
		brands:     brands,
	}
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	if len(h.categories.State().Value) == 0 || c.QueryBool("refresh") {
		ctx, cancel := h.context(c)
		defer cancel()

		if err := h.categories.Load(ctx); err != nil {
			return h.fail(c, ctx, "load categories", h.categories.State().Error, err)
		}
	}

	return c.JSON(fiber.Map{"items": h.categories.State().Value})
}

func (h *CatalogHandler) Category(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	category, err := h.categories.BySlug(ctx, c.Params("slug"))
	if err != nil {
		return h.fail(c, ctx, "category by slug", "", err)
	}

	return c.JSON(category)
}

func (h *CatalogHandler) Brands(c *fiber.Ctx) error {
	if len(h.brands.State().Value) == 0 || c.QueryBool("refresh") {
		ctx, cancel := h.context(c)
		defer cancel()

		if err := h.brands.Load(ctx); err != nil {
			return h.fail(c, ctx, "load brands", h.brands.State().Error, err)
		}
	}

	return c.JSON(fiber.Map{"items": h.brands.State().Value})
}

func (h *CatalogHandler) Brand(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	brand, err := h.brands.BySlug(ctx, c.Params("slug"))
	if err != nil {
		return h.fail(c, ctx, "brand by slug", "", err)
	}

	return c.JSON(brand)
}
