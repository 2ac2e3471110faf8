package handler

import (
	"errors"
	"net/http"

	"github.com/kevinserna01/react-cabina-sub000/internal/apierror"
	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/middleware"
	"github.com/kevinserna01/react-cabina-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validateBound(c, req)
}

// bindQuery is bindAndValidate for query-string DTOs.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validateBound(c, req)
}

func validateBound(c *gin.Context, req interface{}) bool {
	fields, err := dto.Validate(req)
	if err != nil {
		_ = c.Error(err)
		return false
	}
	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// statusBySentinel maps service sentinels to their HTTP status.
var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrCodigoDuplicado, http.StatusConflict},
	{service.ErrCodigoReservado, http.StatusConflict},
	{service.ErrStockInsuficiente, http.StatusConflict},
	{service.ErrDocumentoDuplicado, http.StatusConflict},
	{service.ErrProductoNoEncontrado, http.StatusNotFound},
	{service.ErrClienteNoEncontrado, http.StatusNotFound},
	{service.ErrTrabajadorNoEncontrado, http.StatusNotFound},
	{service.ErrCodigoInvalido, http.StatusUnprocessableEntity},
	{service.ErrTotalInconsistente, http.StatusUnprocessableEntity},
	{service.ErrDescuentoInvalido, http.StatusUnprocessableEntity},
	{service.ErrCredencialesInvalidas, http.StatusUnauthorized},
	{service.ErrTrabajadorNoAutorizado, http.StatusForbidden},
}

// respondError writes the envelope for a known service error. Anything else
// is handed to middleware.ErrorHandler, which logs it and answers 500.
func respondError(c *gin.Context, err error) {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			c.JSON(m.status, apierror.New(err.Error()))
			return
		}
	}
	_ = c.Error(err)
}

// workerID returns the authenticated worker, writing 401 when the token
// subject is not a UUID.
func workerID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return uuid.Nil, false
	}
	return id, true
}
