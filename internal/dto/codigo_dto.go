package dto

// ─── Sale-code reservation ───────────────────────────────────────────────────

// UltimoCodigoResponse is returned by GET /v1/ventas/codigos/ultimo.
// Codigo is null when no sale was ever registered.
type UltimoCodigoResponse struct {
	Codigo *string `json:"codigo"`
}

// CodigoVentaRequest is the body of the reserve and release endpoints.
// Sesion identifies the checkout session holding the code; one worker may
// run several sessions at once.
type CodigoVentaRequest struct {
	Codigo string `json:"codigo" validate:"required,startswith=VTA-,max=20"`
	Sesion string `json:"sesion" validate:"required,uuid"`
}

type ReservaCodigoResponse struct {
	Codigo    string `json:"codigo"`
	Reservado bool   `json:"reservado"`
}
