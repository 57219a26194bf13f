package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/service"
)

// AuthHandler exposes registration, login, refresh and the identity
// probe.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Status        string  `json:"status"`
	ActiveGroupID *string `json:"active_group_id"`
}
type authResp struct {
	User      userPart  `json:"user"`
	Access    tokenPart `json:"access"`
	Refresh   tokenPart `json:"refresh"`
	ExpiresIn int       `json:"expires_in"`
}

func toUserPart(u *model.User) userPart {
	p := userPart{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Status: string(u.Status),
	}
	if u.ActiveGroupID != nil {
		gid := u.ActiveGroupID.String()
		p.ActiveGroupID = &gid
	}
	return p
}

func toAuthResp(res *service.LoginResult) authResp {
	return authResp{
		User:      toUserPart(res.User),
		Access:    tokenPart{Token: res.Tokens.AccessToken, Expires: res.Tokens.AccessExp},
		Refresh:   tokenPart{Token: res.Tokens.RefreshToken, Expires: res.Tokens.RefreshExp},
		ExpiresIn: res.Tokens.ExpiresIn,
	}
}

// Register creates a PENDING user. Tokens are not issued here; the
// client logs in afterwards, which also triggers the first-login
// bootstrap.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	user, err := h.Auth.Register(ctx, actionCtx(c, "register"), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": toUserPart(user)})
}

// Login verifies credentials and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, actionCtx(c, "login"), req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Refresh exchanges a valid refresh token for a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.Auth.Refresh(ctx, actionCtx(c, "refresh"), req.RefreshToken)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Me returns the credential of the calling user.
func (h *AuthHandler) Me(c echo.Context) error {
	cred, ok := credential(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         cred.ID.String(),
		"email":      cred.Email,
		"is_pending": cred.IsPending,
	})
}
