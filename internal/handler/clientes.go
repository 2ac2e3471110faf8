package handler

import (
	"net/http"

	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct{ svc service.ClienteService }

func NewClientesHandler(svc service.ClienteService) *ClientesHandler {
	return &ClientesHandler{svc: svc}
}

// Listar godoc
// @Summary      Listar clientes
// @Description  Lista paginada; search filtra por nombre, documento o email.
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Param        page   query int    false "Pagina"
// @Param        limit  query int    false "Tamano de pagina"
// @Param        search query string false "Busqueda"
// @Param        estado query string false "activo | inactivo | all"
// @Success      200  {object} dto.ClienteListResponse
// @Router       /v1/clientes [get]
func (h *ClientesHandler) Listar(c *gin.Context) {
	var filter dto.ClienteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
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
