package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-chat/chat-service/internal/api/metrics"
	"github.com/campus-chat/chat-service/internal/core/domain"
	"github.com/campus-chat/chat-service/internal/core/ports"
)

// UserHandler serves the user directory.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Login creates the user on first sight and refreshes lastSeen afterwards.
//
// @Summary      Login (upsert user)
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login details"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.users.Login(c.Request().Context(), ports.LoginInput{
		UserID: req.UserID,
		Name:   req.Name,
		Role:   req.UserType,
		Email:  req.Email,
	})
	if err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues(string(res.User.Role)).Inc()
	return c.JSON(http.StatusOK, loginResponse{User: res.User, Token: res.Token})
}

// Get returns a single user.
//
// @Summary      Get user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListByRole returns every student ordered by name. For the shopkeeper role
// it returns the sole shopkeeper, or null when none has logged in yet.
//
// @Summary      List users by role
// @Tags         users
// @Produce      json
// @Param        role  path      string  true  "student, students or shopkeeper"
// @Success      200   {array}   domain.User
// @Failure      400   {object}  errorResponse
// @Router       /users/type/{role} [get]
func (h *UserHandler) ListByRole(c echo.Context) error {
	role, err := domain.ParseRole(c.Param("role"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if role == domain.RoleShopkeeper {
		shop, err := h.users.GetSoleShopkeeper(ctx)
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, shop)
	}

	users, err := h.users.ListByRole(ctx, string(role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
