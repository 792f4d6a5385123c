package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/spec-kit/board-service/internal/api/dto"
	"github.com/spec-kit/board-service/internal/service"
	apperrors "github.com/spec-kit/board-service/pkg/util"
)

// UsersHandler exposes the /user endpoints.
type UsersHandler struct {
	users    *service.UserService
	sessions *session.Store
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, sessions *session.Store) *UsersHandler {
	return &UsersHandler{users: users, sessions: sessions}
}

// SignUp handles POST /user/signup.
func (h *UsersHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.InvalidRequest, err)
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" || req.Age < 0 {
		return apperrors.New(apperrors.InvalidRequest)
	}

	_, err := h.users.CreateUser(c.UserContext(), service.SignUpInput{
		Name:     req.Name,
		Age:      req.Age,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(apperrors.OK("회원가입에 성공하였습니다."))
}

// GetUsers handles GET /user/ and GET /user/?userId=.
func (h *UsersHandler) GetUsers(c *fiber.Ctx) error {
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.Wrap(apperrors.InvalidRequest, err)
		}
		user, err := h.users.GetUserByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(apperrors.OK(dto.NewGetUserResponse(user)))
	}

	users, err := h.users.GetUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(apperrors.OK(dto.NewGetUserResponses(users)))
}

// Login handles POST /user/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}

	res, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(apperrors.OK(dto.PostJwtResponse{
		UserID:       res.UserID,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}))
}

// SessionLogin handles POST /user/session-login.
func (h *UsersHandler) SessionLogin(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return apperrors.Wrap(apperrors.InternalServerError, err)
	}
	if _, err := h.users.SessionLogin(c.UserContext(), req.Email, req.Password, sess); err != nil {
		return err
	}
	return c.JSON(apperrors.OK("로그인에 성공하였습니다."))
}

// SessionLogout handles POST /user/session-logout.
func (h *UsersHandler) SessionLogout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return apperrors.Wrap(apperrors.NoSessionID, err)
	}
	if err := h.users.SessionLogout(c.UserContext(), sess); err != nil {
		return err
	}
	return c.JSON(apperrors.OK("성공적으로 로그아웃되었습니다."))
}

// ActiveSessions handles GET /admin/sessions.
func (h *UsersHandler) ActiveSessions(c *fiber.Ctx) error {
	return c.JSON(apperrors.OK(fiber.Map{"active": h.users.Sessions().Len()}))
}

func parseLogin(c *fiber.Ctx) (dto.LoginRequest, error) {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.Wrap(apperrors.InvalidRequest, err)
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return req, apperrors.New(apperrors.InvalidRequest)
	}
	return req, nil
}
