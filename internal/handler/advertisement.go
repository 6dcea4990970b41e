package handler

import (
	"net/http"
	"time"

	"github.com/deppfellow/adboard/internal/model"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/deppfellow/adboard/internal/service"
	"github.com/labstack/echo/v4"
)

// AdvertisementResponse is returned by POST /adv and PATCH /adv/:id.
type AdvertisementResponse struct {
	AdvID  int64  `json:"adv_id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// AdvertisementDetailResponse is returned by GET /adv/:id.
type AdvertisementDetailResponse struct {
	AdvID       int64     `json:"adv_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Owner       string    `json:"owner"`
	Status      string    `json:"status"`
}

// AdvertisementDeletedResponse is returned by DELETE /adv/:id.
type AdvertisementDeletedResponse struct {
	Adv    string `json:"adv"`
	Status string `json:"status"`
}

type AdvertisementHandler struct {
	Handler
	advertisements *service.AdvertisementService
}

func NewAdvertisementHandler(s *server.Server, advertisements *service.AdvertisementService) *AdvertisementHandler {
	return &AdvertisementHandler{
		Handler:        NewHandler(s),
		advertisements: advertisements,
	}
}

func (h *AdvertisementHandler) CreateAdvertisement(c echo.Context, req *model.CreateAdvertisementPayload) (*AdvertisementResponse, error) {
	adv, err := h.advertisements.CreateAdvertisement(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}
	return &AdvertisementResponse{AdvID: adv.ID, Title: adv.Title, Status: model.StatusAdded}, nil
}

func (h *AdvertisementHandler) GetAdvertisement(c echo.Context, req *model.AdvertisementIDPayload) (*AdvertisementDetailResponse, error) {
	adv, err := h.advertisements.GetAdvertisement(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}
	return &AdvertisementDetailResponse{
		AdvID:       adv.ID,
		Title:       adv.Title,
		Description: adv.Description,
		CreatedAt:   adv.CreatedAt,
		Owner:       adv.OwnerName,
		Status:      model.StatusExists,
	}, nil
}

func (h *AdvertisementHandler) DeleteAdvertisement(c echo.Context, req *model.AdvertisementIDPayload) (*AdvertisementDeletedResponse, error) {
	adv, err := h.advertisements.DeleteAdvertisement(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}
	return &AdvertisementDeletedResponse{Adv: adv.Title, Status: model.StatusDeleted}, nil
}

func (h *AdvertisementHandler) PatchAdvertisement(c echo.Context, req *model.PatchAdvertisementPayload) (*AdvertisementResponse, error) {
	adv, err := h.advertisements.UpdateAdvertisement(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}
	return &AdvertisementResponse{AdvID: adv.ID, Title: adv.Title, Status: model.StatusPatched}, nil
}

// Register mounts the advertisement routes on g.
func (h *AdvertisementHandler) Register(g *echo.Group) {
	g.POST("", Handle(h.Handler, h.CreateAdvertisement, http.StatusCreated, newPayload[model.CreateAdvertisementPayload]))
	g.GET("/:id", Handle(h.Handler, h.GetAdvertisement, http.StatusOK, newPayload[model.AdvertisementIDPayload]))
	g.DELETE("/:id", Handle(h.Handler, h.DeleteAdvertisement, http.StatusOK, newPayload[model.AdvertisementIDPayload]))
	g.PATCH("/:id", Handle(h.Handler, h.PatchAdvertisement, http.StatusOK, newPayload[model.PatchAdvertisementPayload]))
}
