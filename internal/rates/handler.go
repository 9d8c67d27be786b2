package rates

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/kale-connect/kaleconnect/internal/auth"
	"github.com/kale-connect/kaleconnect/internal/contract"
)

// Handler exposes rates oracle endpoints.
type Handler struct {
	oracle *Oracle
}

// NewHandler constructs a rates HTTP handler.
func NewHandler(oracle *Oracle) *Handler {
	return &Handler{oracle: oracle}
}

type initRequest struct {
	Admin string `json:"admin"`
}

type setRateRequest struct {
	Price json.RawMessage `json:"price"`
	FeeBP uint32          `json:"fee_bp"`
}

// Prices and amounts are decimal strings; see contract.ParseInteger.
type rateResponse struct {
	Pair  string `json:"pair"`
	Price string `json:"price"`
	FeeBP uint32 `json:"fee_bp"`
}

type quoteResponse struct {
	Pair   string `json:"pair"`
	Amount string `json:"amount"`
	Price  string `json:"price"`
	FeeBP  uint32 `json:"fee_bp"`
	Gross  string `json:"gross"`
	Fee    string `json:"fee"`
	Net    string `json:"net"`
}

func fail(err error) error {
	return fiber.NewError(contract.HTTPStatus(err), err.Error())
}

func pairParam(c *fiber.Ctx) (string, error) {
	pair, err := url.PathUnescape(c.Params("pair"))
	if err != nil {
		return "", fiber.NewError(http.StatusBadRequest, "invalid pair")
	}
	return pair, nil
}

// Init registers the oracle admin.
func (h *Handler) Init(c *fiber.Ctx) error {
	var req initRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Admin == "" {
		return fiber.NewError(http.StatusBadRequest, "admin is required")
	}
	if err := h.oracle.Init(c.UserContext(), auth.Principal(req.Admin)); err != nil {
		return fail(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"admin": req.Admin})
}

// SetRate replaces the rate for a pair.
func (h *Handler) SetRate(c *fiber.Ctx) error {
	pair, err := pairParam(c)
	if err != nil {
		return err
	}
	var req setRateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	price, err := contract.ParseInteger(req.Price)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "price: "+err.Error())
	}
	if err := h.oracle.SetRate(c.UserContext(), pair, price, req.FeeBP); err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(rateResponse{Pair: pair, Price: price.String(), FeeBP: req.FeeBP})
}

// GetRate returns the rate for a pair.
func (h *Handler) GetRate(c *fiber.Ctx) error {
	pair, err := pairParam(c)
	if err != nil {
		return err
	}
	rate, found, err := h.oracle.GetRate(c.UserContext(), pair)
	if err != nil {
		return fail(err)
	}
	if !found {
		return fiber.NewError(http.StatusNotFound, "rate not found")
	}
	return c.Status(http.StatusOK).JSON(rateResponse{Pair: pair, Price: contract.FormatInteger(rate.Price), FeeBP: rate.FeeBP})
}

// Quote converts the amount query parameter using the pair's rate.
func (h *Handler) Quote(c *fiber.Ctx) error {
	pair, err := pairParam(c)
	if err != nil {
		return err
	}
	amount, ok := new(big.Int).SetString(c.Query("amount"), 10)
	if !ok {
		return fiber.NewError(http.StatusBadRequest, "amount must be an integer")
	}
	quote, err := h.oracle.Quote(c.UserContext(), pair, amount)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(quoteResponse{
		Pair:   quote.Pair,
		Amount: quote.Amount.String(),
		Price:  quote.Price.String(),
		FeeBP:  quote.FeeBP,
		Gross:  quote.Gross.String(),
		Fee:    quote.Fee.String(),
		Net:    quote.Net.String(),
	})
}
