package auth

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes challenge, credential registration and token issuance.
type Handler struct {
	svc *Service
}

// NewHandler builds an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type challengeRequest struct {
	Principal string `json:"principal"`
}

type credentialsRequest struct {
	Principal string `json:"principal"`
	Secret    string `json:"secret"`
	// Signature is the base64 ed25519 signature of the challenge message.
	Signature string `json:"signature"`
}

type tokenResponse struct {
	Principal   string    `json:"principal"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func decodeSignature(s string) ([]byte, error) {
	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "signature must be base64")
	}
	return sig, nil
}

func authError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrCredentialExists):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrWeakSecret), errors.Is(err, ErrInvalidAccount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

// Challenge issues a login nonce for an account.
func (h *Handler) Challenge(c *fiber.Ctx) error {
	var req challengeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	ch, err := h.svc.Challenge(c.UserContext(), Principal(strings.TrimSpace(req.Principal)))
	if err != nil {
		return authError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"principal":  ch.Principal,
		"nonce":      ch.Nonce,
		"message":    ch.Message,
		"expires_at": ch.ExpiresAt,
	})
}

// Register binds a secret to an account that signed its challenge.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	sig, err := decodeSignature(req.Signature)
	if err != nil {
		return err
	}
	p := Principal(strings.TrimSpace(req.Principal))
	if err := h.svc.Register(c.UserContext(), p, req.Secret, sig); err != nil {
		return authError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"principal": p})
}

// Token exchanges a signed challenge, or a registered secret, for a bearer token.
func (h *Handler) Token(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p := Principal(strings.TrimSpace(req.Principal))

	var (
		pair TokenPair
		err  error
	)
	switch {
	case req.Signature != "":
		sig, decodeErr := decodeSignature(req.Signature)
		if decodeErr != nil {
			return decodeErr
		}
		pair, err = h.svc.LoginWithSignature(c.UserContext(), p, sig)
	case req.Secret != "":
		pair, err = h.svc.Login(c.UserContext(), p, req.Secret)
	default:
		return fiber.NewError(http.StatusBadRequest, "signature or secret is required")
	}
	if err != nil {
		return authError(err)
	}
	return c.Status(http.StatusOK).JSON(tokenResponse{Principal: string(p), AccessToken: pair.AccessToken, ExpiresAt: pair.ExpiresAt})
}
