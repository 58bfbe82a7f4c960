package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursegrid/solver-api/internal/models"
	"github.com/coursegrid/solver-api/internal/service"
	appErrors "github.com/coursegrid/solver-api/pkg/errors"
	"github.com/coursegrid/solver-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the stateless client-credential flow.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Exchange a client ID and key for an access token
// @Description There is no user account behind this exchange: the client ID identifies the calling system.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
