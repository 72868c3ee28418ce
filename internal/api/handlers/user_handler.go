package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/service"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

type registerUserRequest struct {
	Email        string              `json:"email" validate:"required,email,max=254"`
	Name         string              `json:"name" validate:"max=200"`
	BusinessName string              `json:"business_name" validate:"max=200"`
	BusinessType domain.BusinessType `json:"business_type" validate:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerUserRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user := domain.User{
		Email:        req.Email,
		Name:         req.Name,
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
	}
	if err := h.service.Register(c.Request.Context(), &user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
