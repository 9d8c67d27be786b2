package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kale-connect/kaleconnect/internal/kyc"
)

// RegisterKYCRoutes wires KYC registry endpoints.
func RegisterKYCRoutes(r fiber.Router, h *kyc.Handler) {
	group := r.Group("/kyc")
	group.Post("/init", h.Init)
	group.Post("/start", h.Start)
	group.Put("/users/:user/status", h.SetStatus)
	group.Get("/users/:user/status", h.GetStatus)
}
