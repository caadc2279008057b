package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/storefront/internal/store"
)

type UIHandler struct {
	ui *store.UIStore
}

func NewUIHandler(ui *store.UIStore) *UIHandler {
	return &UIHandler{ui: ui}
}

func (h *UIHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.ui.State().Value)
}

func (h *UIHandler) ToggleFlag(c *fiber.Ctx) error {
	flag, ok := store.ParseFlag(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown flag",
		})
	}

	return c.JSON(fiber.Map{
		"flag": flag,
		"open": h.ui.Toggle(flag),
	})
}

func (h *UIHandler) DismissToast(c *fiber.Ctx) error {
	if !h.ui.DismissToast(c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "toast not found",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
