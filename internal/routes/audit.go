package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kale-connect/kaleconnect/internal/audit"
)

// RegisterAuditRoutes wires the per-principal audit trail.
func RegisterAuditRoutes(r fiber.Router, h *audit.Handler) {
	r.Get("/audit/:principal", h.List)
}
