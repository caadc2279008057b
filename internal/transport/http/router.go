package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/storefront/internal/transport/http/handler"
)

type Handlers struct {
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Product  *handler.ProductHandler
	Catalog  *handler.CatalogHandler
	Account  *handler.AccountHandler
	Auth     *handler.AuthHandler
	UI       *handler.UIHandler
}

func RegisterRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authGroup := app.Group("/auth")
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/logout", h.Auth.Logout)
	authGroup.Get("/me", h.Auth.Me)
	authGroup.Post("/password-reset/request", h.Auth.RequestPasswordReset)
	authGroup.Post("/password-reset/confirm", h.Auth.ConfirmPasswordReset)

	cart := app.Group("/cart")
	cart.Get("", h.Cart.Get)
	cart.Delete("", h.Cart.Clear)
	cart.Post("/items", h.Cart.AddItem)
	cart.Patch("/items/:id", h.Cart.UpdateItem)
	cart.Delete("/items/:id", h.Cart.RemoveItem)
	cart.Post("/coupon", h.Cart.ApplyCoupon)
	cart.Delete("/coupon", h.Cart.RemoveCoupon)

	checkout := app.Group("/checkout")
	checkout.Get("", h.Checkout.Get)
	checkout.Put("/data", h.Checkout.UpdateData)
	checkout.Post("/continue", h.Checkout.Continue)
	checkout.Post("/back", h.Checkout.Back)
	checkout.Post("/goto/:step", h.Checkout.GoTo)
	checkout.Post("/place-order", h.Checkout.PlaceOrder)
	checkout.Get("/confirmation", h.Checkout.Confirmation)
	checkout.Post("/reset", h.Checkout.Reset)

	product := app.Group("/products")
	product.Get("", h.Product.List)
	product.Get("/featured", h.Product.Featured)
	product.Get("/new-arrivals", h.Product.NewArrivals)
	product.Get("/bestsellers", h.Product.Bestsellers)
	product.Get("/search", h.Product.Search)
	product.Get("/:slug", h.Product.Detail)

	app.Get("/categories", h.Catalog.Categories)
	app.Get("/categories/:slug", h.Catalog.Category)
	app.Get("/brands", h.Catalog.Brands)
	app.Get("/brands/:slug", h.Catalog.Brand)

	account := app.Group("/account")
	account.Get("/orders", h.Account.Orders)
	account.Get("/orders/:id", h.Account.Order)
	account.Post("/orders/:id/cancel", h.Account.CancelOrder)
	account.Get("/addresses", h.Account.Addresses)
	account.Post("/addresses", h.Account.CreateAddress)
	account.Put("/addresses/:id", h.Account.UpdateAddress)
	account.Delete("/addresses/:id", h.Account.DeleteAddress)
	account.Post("/addresses/:id/default", h.Account.SetDefaultAddress)

	ui := app.Group("/ui")
	ui.Get("", h.UI.Get)
	ui.Post("/flags/:name/toggle", h.UI.ToggleFlag)
	ui.Delete("/toasts/:id", h.UI.DismissToast)
}
