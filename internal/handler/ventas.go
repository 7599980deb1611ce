package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sowin/internal/apierror"
	"sowin/internal/dto"
	"sowin/internal/service"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler {
	return &VentasHandler{svc: svc}
}

// RegistrarSalida handles the single-item dispatch used for quick outbound
// registrations without a full cart.
func (h *VentasHandler) RegistrarSalida(c *gin.Context) {
	var req dto.RegistrarSalidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarSalida(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarVenta handles the multi-item POS sale.
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarVenta(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *VentasHandler) Listar(c *gin.Context) {
	var q dto.FiltrarSalidasQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar edits a single-item dispatch; the stock already moved stays put.
func (h *VentasHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarSalidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) ListarDetalles(c *gin.Context) {
	resp, err := h.svc.ListarDetalles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasPorCajero lists today's sales of one cashier, cart included.
func (h *VentasHandler) VentasPorCajero(c *gin.Context) {
	usuarioID, err := uuid.Parse(c.Param("id_usuario"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.VentasPorCajeroHoy(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket serves the sale ticket as a PDF download.
func (h *VentasHandler) Ticket(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ruta, err := h.svc.TicketPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.File(ruta)
}

// Eliminar deletes a sale and puts its stock back.
func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "salida eliminada y stock restaurado"})
}
