package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kale-connect/kaleconnect/internal/remittance"
)

// RegisterRemittanceRoutes wires remittance ledger endpoints. idempotency,
// when non-nil, guards create against duplicate submissions.
func RegisterRemittanceRoutes(r fiber.Router, h *remittance.Handler, idempotency fiber.Handler) {
	group := r.Group("/remittances")
	group.Post("/init", h.Init)
	if idempotency != nil {
		group.Post("/", idempotency, h.Create)
	} else {
		group.Post("/", h.Create)
	}
	group.Get("/:id", h.Get)
	group.Put("/:id/status", h.SetStatus)
}
