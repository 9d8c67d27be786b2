package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kale-connect/kaleconnect/internal/rates"
)

// RegisterRatesRoutes wires rates oracle endpoints.
func RegisterRatesRoutes(r fiber.Router, h *rates.Handler) {
	group := r.Group("/rates")
	group.Post("/init", h.Init)
	group.Put("/:pair", h.SetRate)
	group.Get("/:pair", h.GetRate)
	group.Get("/:pair/quote", h.Quote)
}
