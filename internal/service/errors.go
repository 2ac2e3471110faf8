package service

import "errors"

// Sentinel errors returned by the services. Handlers map them to HTTP
// statuses with errors.Is; wrapped messages carry the detail shown to the
// client.
var (
	ErrCodigoInvalido    = errors.New("codigo de venta invalido")
	ErrCodigoDuplicado   = errors.New("el codigo de venta ya fue registrado")
	ErrCodigoReservado   = errors.New("el codigo de venta esta reservado por otra sesion de cobro")
	ErrStockInsuficiente = errors.New("stock insuficiente")

	ErrProductoNoEncontrado   = errors.New("producto no encontrado")
	ErrClienteNoEncontrado    = errors.New("cliente no encontrado")
	ErrTrabajadorNoEncontrado = errors.New("trabajador no encontrado")
	ErrTrabajadorNoAutorizado = errors.New("no puede registrar ventas a nombre de otro trabajador")

	ErrDocumentoDuplicado = errors.New("ya existe un cliente con ese documento")
	ErrTotalInconsistente = errors.New("los totales de la venta no coinciden")
	ErrDescuentoInvalido  = errors.New("descuento no aplicable")

	ErrCredencialesInvalidas = errors.New("credenciales invalidas")
)
