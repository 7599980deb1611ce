package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sowin/internal/apierror"
	"sowin/internal/dto"
	"sowin/internal/service"
)

type ProductosHandler struct {
	svc     service.ProductoService
	cascada service.CascadaService
}

func NewProductosHandler(svc service.ProductoService, cascada service.CascadaService) *ProductosHandler {
	return &ProductosHandler{svc: svc, cascada: cascada}
}

func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
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

// BuscarPorBarcode answers encontrado=false instead of 404 so the scan UI
// can branch into registration without error handling.
func (h *ProductosHandler) BuscarPorBarcode(c *gin.Context) {
	codigo := c.Param("codigo")
	if codigo == "" {
		c.JSON(http.StatusBadRequest, apierror.New("codigo de barras requerido"))
		return
	}
	resp, err := h.svc.BuscarPorBarcode(c.Request.Context(), codigo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
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

func (h *ProductosHandler) AjustarStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar tears down the product and its full history.
func (h *ProductosHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.cascada.EliminarProducto(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Scan(c *gin.Context) {
	var req dto.BarcodeScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ProcesarScan(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) RegistrarDesdeBarcode(c *gin.Context) {
	var req dto.RegistrarDesdeBarcodeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarDesdeBarcode(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
