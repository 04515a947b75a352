package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/safetrail/safetrail/internal/identity"
	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/safety"
)

// Handler exposes login and registration endpoints.
type Handler struct {
	ids    *identity.Service
	svc    *Service
	safety *safety.Service
}

// NewHandler wires the auth handler. The safety service auto-provisions a
// tourist profile on tourist registration.
func NewHandler(ids *identity.Service, svc *Service, safetySvc *safety.Service) *Handler {
	return &Handler{ids: ids, svc: svc, safety: safetySvc}
}

// Login validates credentials and returns a bearer token with the user record.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.Authenticate(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "Invalid email or password")
	}
	token, err := h.svc.Issue(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(model.TokenResponse{AccessToken: token, TokenType: "bearer", User: user.Identity()})
}

// Register creates an account and, for tourists, a safety profile, then logs
// the new user in.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.Register(c.UserContext(), identity.Registration{
		Email:            req.Email,
		Password:         req.Password,
		FullName:         req.FullName,
		Role:             req.Role,
		Phone:            req.Phone,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
		IDProofNumber:    req.IDProofNumber,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, identity.ErrEmailTaken) {
			return fiber.NewError(status, "Email already registered")
		}
		return fiber.NewError(status, err.Error())
	}

	if user.Role == model.RoleTourist && h.safety != nil {
		var contacts []model.EmergencyContact
		if req.EmergencyContact != "" && req.EmergencyPhone != "" {
			contacts = []model.EmergencyContact{{
				Name:         req.EmergencyContact,
				Phone:        req.EmergencyPhone,
				Relationship: "Emergency Contact",
			}}
		}
		if _, err := h.safety.EnsureProfile(c.UserContext(), user.ID, contacts); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	token, err := h.svc.Issue(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(model.TokenResponse{AccessToken: token, TokenType: "bearer", User: user.Identity()})
}
