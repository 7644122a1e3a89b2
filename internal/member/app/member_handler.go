package app

import (
	"realtime_chat_service/internal/member/domain"
	"realtime_chat_service/pkg/errs"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MemberHandler handles identity REST requests.
type MemberHandler struct {
	Usecase MemberUseCase
}

// NewMemberHandler create a new MemberHandler
func NewMemberHandler(uc MemberUseCase) *MemberHandler {
	return &MemberHandler{Usecase: uc}
}

type memberView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func viewOf(m *domain.Member) memberView {
	return memberView{ID: m.ID, Username: m.Username, Email: m.Email, IsActive: m.IsActive}
}

func statusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case errs.KindAccessDenied:
		return fiber.StatusForbidden
	case errs.KindNotFound:
		return fiber.StatusNotFound
	case errs.KindValidation, errs.KindDuplicate:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// Register creates a new user account.
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	type request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	member, err := h.Usecase.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		logger.Log.Error("register failed", zap.String("username", req.Username), zap.Error(err))
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(viewOf(member))
}

// Login verifies credentials and returns a bearer token.
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	t, err := h.Usecase.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"token": t, "token_type": "bearer"})
}

// Logout revokes the caller's session.
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	tokenStr, ok := c.Locals(middlewares.TokenRaw).(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}

	if err := h.Usecase.Logout(c.Context(), tokenStr); err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "logout success"})
}

// Me returns the authenticated user's profile.
func (h *MemberHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals(middlewares.TokenUserID).(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}

	member, err := h.Usecase.FindMember(c.Context(), &domain.MemberQuery{ID: &userID})
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(viewOf(member))
}

// Users lists all active users.
func (h *MemberHandler) Users(c *fiber.Ctx) error {
	members, err := h.Usecase.ListMembers(c.Context())
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}

	views := make([]memberView, 0, len(members))
	for i := range members {
		views = append(views, viewOf(&members[i]))
	}
	return c.JSON(views)
}
