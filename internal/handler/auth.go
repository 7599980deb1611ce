package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sowin/internal/dto"
	"sowin/internal/service"
)

type AuthHandler struct {
	svc     service.AuthService
	cascada service.CascadaService
}

func NewAuthHandler(svc service.AuthService, cascada service.CascadaService) *AuthHandler {
	return &AuthHandler{svc: svc, cascada: cascada}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		// Always 401 on credential failure, regardless of cause.
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "credenciales inválidas"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) CrearUsuario(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearUsuario(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) ListarUsuarios(c *gin.Context) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ObtenerUsuario(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerUsuario(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarUsuario cascades permisos and nullifies historical references.
func (h *AuthHandler) EliminarUsuario(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.cascada.EliminarUsuario(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
