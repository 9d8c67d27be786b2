package kyc

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kale-connect/kaleconnect/internal/auth"
	"github.com/kale-connect/kaleconnect/internal/contract"
)

// Handler exposes KYC registry endpoints.
type Handler struct {
	registry *Registry
}

// NewHandler constructs a KYC HTTP handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

type initRequest struct {
	Admin string `json:"admin"`
}

type startRequest struct {
	User string `json:"user"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type statusResponse struct {
	User   string `json:"user"`
	Status string `json:"status"`
}

func fail(err error) error {
	return fiber.NewError(contract.HTTPStatus(err), err.Error())
}

// Init registers the registry admin.
func (h *Handler) Init(c *fiber.Ctx) error {
	var req initRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Admin == "" {
		return fiber.NewError(http.StatusBadRequest, "admin is required")
	}
	if err := h.registry.Init(c.UserContext(), auth.Principal(req.Admin)); err != nil {
		return fail(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"admin": req.Admin})
}

// Start begins verification for the calling user.
func (h *Handler) Start(c *fiber.Ctx) error {
	var req startRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user := auth.Principal(req.User)
	if user == "" {
		user, _ = auth.PrincipalFromContext(c.UserContext())
	}
	if user == "" {
		return fiber.NewError(http.StatusBadRequest, "user is required")
	}
	if err := h.registry.Start(c.UserContext(), user); err != nil {
		return fail(err)
	}
	return c.Status(http.StatusAccepted).JSON(statusResponse{User: string(user), Status: string(StatusPending)})
}

// SetStatus relabels a user's verification status.
func (h *Handler) SetStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user := c.Params("user")
	if err := h.registry.SetStatus(c.UserContext(), auth.Principal(user), Status(req.Status)); err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(statusResponse{User: user, Status: req.Status})
}

// GetStatus returns a user's verification status.
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	user := c.Params("user")
	status, found, err := h.registry.GetStatus(c.UserContext(), auth.Principal(user))
	if err != nil {
		return fail(err)
	}
	if !found {
		return fiber.NewError(http.StatusNotFound, "kyc status not found")
	}
	return c.Status(http.StatusOK).JSON(statusResponse{User: user, Status: string(status)})
}
