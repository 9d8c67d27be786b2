package remittance

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kale-connect/kaleconnect/internal/auth"
	"github.com/kale-connect/kaleconnect/internal/contract"
)

// Handler exposes remittance ledger endpoints.
type Handler struct {
	ledger *Ledger
}

// NewHandler constructs a remittance HTTP handler.
func NewHandler(ledger *Ledger) *Handler {
	return &Handler{ledger: ledger}
}

type initRequest struct {
	Admin string `json:"admin"`
}

type createRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount json.RawMessage `json:"amount"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// remittanceResponse carries id and amount as decimal strings so u128/i128
// values survive JSON clients limited to 53-bit numbers.
type remittanceResponse struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	Status string `json:"status"`
}

func fail(err error) error {
	return fiber.NewError(contract.HTTPStatus(err), err.Error())
}

func idParam(c *fiber.Ctx) (*big.Int, error) {
	id, ok := new(big.Int).SetString(c.Params("id"), 10)
	if !ok || !contract.IsUint128(id) {
		return nil, fiber.NewError(http.StatusBadRequest, "id must be an unsigned integer")
	}
	return id, nil
}

// Init registers the ledger admin.
func (h *Handler) Init(c *fiber.Ctx) error {
	var req initRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Admin == "" {
		return fiber.NewError(http.StatusBadRequest, "admin is required")
	}
	if err := h.ledger.Init(c.UserContext(), auth.Principal(req.Admin)); err != nil {
		return fail(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"admin": req.Admin})
}

// Create records a new remittance from the authenticated sender.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	from := auth.Principal(req.From)
	if from == "" {
		from, _ = auth.PrincipalFromContext(c.UserContext())
	}
	if from == "" || req.To == "" {
		return fiber.NewError(http.StatusBadRequest, "from and to are required")
	}
	amount, err := contract.ParseInteger(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "amount: "+err.Error())
	}
	id, err := h.ledger.Create(c.UserContext(), from, auth.Principal(req.To), amount)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusCreated).JSON(remittanceResponse{
		ID:     id.String(),
		From:   string(from),
		To:     req.To,
		Amount: amount.String(),
		Status: string(StatusPending),
	})
}

// Get returns a remittance by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	rec, found, err := h.ledger.Get(c.UserContext(), id)
	if err != nil {
		return fail(err)
	}
	if !found {
		return fiber.NewError(http.StatusNotFound, "remit not found")
	}
	return c.Status(http.StatusOK).JSON(remittanceResponse{
		ID:     id.String(),
		From:   string(rec.From),
		To:     string(rec.To),
		Amount: contract.FormatInteger(rec.Amount),
		Status: string(rec.Status),
	})
}

// SetStatus relabels a remittance.
func (h *Handler) SetStatus(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.ledger.SetStatus(c.UserContext(), id, Status(req.Status)); err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"id": id.String(), "status": req.Status})
}
