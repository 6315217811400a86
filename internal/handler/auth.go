package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mufant-museum/internal/config"
	"github.com/iliyamo/mufant-museum/internal/middleware"
	"github.com/iliyamo/mufant-museum/internal/model"
	"github.com/iliyamo/mufant-museum/internal/repository"
	"github.com/iliyamo/mufant-museum/internal/utils"
)

// AuthHandler registers museum accounts and issues access tokens. The
// role in a token comes from config.Config.RoleFor.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type authResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

func (h *AuthHandler) issue(u *model.User) (authResp, error) {
	role := h.Cfg.RoleFor(u.Username)
	ttl := time.Duration(h.Cfg.AccessTTLMin) * time.Minute
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, strconv.FormatUint(u.ID, 10), role, ttl)
	if err != nil {
		return authResp{}, err
	}
	return authResp{
		User:   userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: role},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	}, nil
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already exists"})
		}
		return storeError(c, err)
	}
	resp, err := h.issue(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return storeError(c, err)
	}
	resp, err := h.issue(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Me handles GET /v1/me and returns the account behind the token.
func (h *AuthHandler) Me(c echo.Context) error {
	sub, _ := c.Get(middleware.CtxUserID).(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: role})
}
