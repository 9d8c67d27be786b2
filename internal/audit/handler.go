package audit

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kale-connect/kaleconnect/internal/auth"
)

// Handler exposes a principal's audit chain to that principal.
type Handler struct {
	trail *Trail
	authz auth.Authorizer
}

// NewHandler constructs an audit HTTP handler.
func NewHandler(trail *Trail, authz auth.Authorizer) *Handler {
	return &Handler{trail: trail, authz: authz}
}

// List returns the events recorded for :principal and whether the chain verifies.
func (h *Handler) List(c *fiber.Ctx) error {
	p := auth.Principal(c.Params("principal"))
	if err := h.authz.Require(c.UserContext(), p); err != nil {
		return fiber.NewError(http.StatusForbidden, err.Error())
	}
	events, err := h.trail.Events(c.UserContext(), p)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"principal": p,
		"events":    events,
		"verified":  h.trail.Verify(events) == nil,
	})
}
