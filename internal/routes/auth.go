package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kale-connect/kaleconnect/internal/auth"
)

// RegisterAuthRoutes wires challenge, credential and token endpoints.
// rateLimiter, when non-nil, guards every endpoint that accepts a proof.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Use(rateLimiter)
	}
	group.Post("/challenge", h.Challenge)
	group.Post("/credentials", h.Register)
	group.Post("/token", h.Token)
}
