package handler

import (
	"net/http"

	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type CodigosHandler struct{ svc service.CodigoService }

func NewCodigosHandler(svc service.CodigoService) *CodigosHandler { return &CodigosHandler{svc: svc} }

// Ultimo godoc
// @Summary      Ultimo codigo de venta registrado
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.UltimoCodigoResponse
// @Router       /v1/ventas/codigos/ultimo [get]
func (h *CodigosHandler) Ultimo(c *gin.Context) {
	resp, err := h.svc.Ultimo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reservar godoc
// @Summary      Reservar un codigo de venta
// @Description  Reserva atomica con expiracion. reservado=false si otra sesion de cobro lo tiene o ya fue registrado.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CodigoVentaRequest true "Codigo"
// @Success      200  {object} dto.ReservaCodigoResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/ventas/codigos/reservar [post]
func (h *CodigosHandler) Reservar(c *gin.Context) {
	var req dto.CodigoVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := workerID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Reservar(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CodigosHandler) Liberar(c *gin.Context) {
	var req dto.CodigoVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := workerID(c)
	if !ok {
		return
	}
	if err := h.svc.Liberar(c.Request.Context(), usuarioID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
