package handler

import (
	"net/http"

	"github.com/deppfellow/adboard/internal/model"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/deppfellow/adboard/internal/service"
	"github.com/labstack/echo/v4"
)

// UserResponse is returned by POST /user and PATCH /user/:id.
type UserResponse struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Status string `json:"status"`
}

// UserDetailResponse is returned by GET /user/:id.
type UserDetailResponse struct {
	UserID int64  `json:"user_id"`
	User   string `json:"user"`
	Rating int    `json:"rating"`
	Status string `json:"status"`
}

// UserDeletedResponse is returned by DELETE /user/:id.
type UserDeletedResponse struct {
	User   string `json:"user"`
	Status string `json:"status"`
}

type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

func (h *UserHandler) CreateUser(c echo.Context, req *model.CreateUserPayload) (*UserResponse, error) {
	user, err := h.users.CreateUser(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}
	return &UserResponse{UserID: user.ID, Name: user.Name, Rating: user.Rating, Status: model.StatusAdded}, nil
}

func (h *UserHandler) GetUser(c echo.Context, req *model.UserIDPayload) (*UserDetailResponse, error) {
	user, err := h.users.GetUser(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}
	return &UserDetailResponse{UserID: user.ID, User: user.Name, Rating: user.Rating, Status: model.StatusExists}, nil
}

func (h *UserHandler) DeleteUser(c echo.Context, req *model.UserIDPayload) (*UserDeletedResponse, error) {
	user, err := h.users.DeleteUser(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}
	return &UserDeletedResponse{User: user.Name, Status: model.StatusDeleted}, nil
}

func (h *UserHandler) PatchUser(c echo.Context, req *model.PatchUserPayload) (*UserResponse, error) {
	user, err := h.users.UpdateUser(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}
	return &UserResponse{UserID: user.ID, Name: user.Name, Rating: user.Rating, Status: model.StatusPatched}, nil
}

// Register mounts the user routes on g.
func (h *UserHandler) Register(g *echo.Group) {
	g.POST("", Handle(h.Handler, h.CreateUser, http.StatusCreated, newPayload[model.CreateUserPayload]))
	g.GET("/:id", Handle(h.Handler, h.GetUser, http.StatusOK, newPayload[model.UserIDPayload]))
	g.DELETE("/:id", Handle(h.Handler, h.DeleteUser, http.StatusOK, newPayload[model.UserIDPayload]))
	g.PATCH("/:id", Handle(h.Handler, h.PatchUser, http.StatusOK, newPayload[model.PatchUserPayload]))
}
