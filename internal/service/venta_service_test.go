package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/model"
	"github.com/kevinserna01/react-cabina-sub000/internal/repository"
	"github.com/kevinserna01/react-cabina-sub000/internal/service"
	"github.com/kevinserna01/react-cabina-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── VentaService factory for tests ───────────────────────────────────────────

type ventaFixture struct {
	svc       service.VentaService
	ventas    *stubVentaRepo
	productos *stubProductoRepo
	movs      *stubMovimientoRepo
	reservas  repository.ReservaCodigoRepository
	codigos   service.CodigoService
	rdb       *redis.Client
	sesion    string

	trabajador *model.Usuario
	cafe       *model.Producto // 5000, stock 5
	torta      *model.Producto // 10000, stock 2
	cliente    *model.Cliente  // 15% discount
}

func newVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()
	rdb, _ := newTestRedis(t)
	f := &ventaFixture{
		rdb:        rdb,
		sesion:     uuid.NewString(),
		trabajador: &model.Usuario{ID: uuid.New(), Username: "caja1", Rol: "trabajador", Activo: true},
		cafe:       &model.Producto{ID: uuid.New(), Codigo: "CAF-01", Nombre: "Cafe americano", PrecioVenta: decimal.NewFromInt(5000), StockActual: 5, Activo: true},
		torta:      &model.Producto{ID: uuid.New(), Codigo: "TOR-01", Nombre: "Torta de queso", PrecioVenta: decimal.NewFromInt(10000), StockActual: 2, Activo: true},
		cliente:    &model.Cliente{ID: uuid.New(), Nombre: "Ana Torres", Documento: "1020304050", DescuentoPersonalizado: decimal.NewFromInt(15), Estado: "activo"},
	}
	f.ventas = newStubVentaRepo()
	f.productos = newStubProductoRepo(f.cafe, f.torta)
	f.movs = &stubMovimientoRepo{}
	f.reservas = repository.NewReservaCodigoRepository(rdb)
	f.codigos = service.NewCodigoService(f.ventas, f.reservas, time.Minute)
	f.svc = service.NewVentaService(
		f.ventas,
		f.productos,
		f.movs,
		newStubClienteRepo(f.cliente),
		newStubUsuarioRepo(f.trabajador),
		f.reservas,
		service.NewProductoService(f.productos, rdb),
		worker.NewDispatcher(rdb),
	)
	return f
}

func (f *ventaFixture) item(p *model.Producto, qty int) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{
		ProductoID:     p.ID.String(),
		Codigo:         p.Codigo,
		Cantidad:       qty,
		PrecioUnitario: p.PrecioVenta,
		Subtotal:       p.PrecioVenta.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// request builds 2 cafe + 1 torta = 20000 for the fixture customer.
func (f *ventaFixture) request(codigo string, withDiscount bool) dto.CrearVentaRequest {
	id := f.cliente.ID.String()
	req := dto.CrearVentaRequest{
		Codigo:     codigo,
		Sesion:     f.sesion,
		Items:      []dto.ItemVentaRequest{f.item(f.cafe, 2), f.item(f.torta, 1)},
		MetodoPago: "efectivo",
		Cliente:    &dto.ClienteVentaSnapshot{ID: &id, Nombre: f.cliente.Nombre, Documento: f.cliente.Documento, Email: strPtr("ana@correo.co")},
		Total:      decimal.NewFromInt(20000),
	}
	if withDiscount {
		pct := decimal.NewFromInt(15)
		req.DescuentoPorcentaje = &pct
		req.Total = decimal.NewFromInt(17000)
	}
	return req
}

// reserve holds codigo for usuarioID under the fixture's checkout session.
func (f *ventaFixture) reserve(t *testing.T, codigo string, usuarioID uuid.UUID) {
	t.Helper()
	resp, err := f.codigos.Reservar(context.Background(), usuarioID, dto.CodigoVentaRequest{Codigo: codigo, Sesion: f.sesion})
	require.NoError(t, err)
	require.True(t, resp.Reservado)
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestVenta_CrearWithDiscount(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()
	f.reserve(t, "VTA-001", f.trabajador.ID)

	resp, err := f.svc.Crear(ctx, f.trabajador.ID, f.request("VTA-001", true))
	require.NoError(t, err)

	assert.Equal(t, "VTA-001", resp.Codigo)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(20000)))
	assert.True(t, resp.DescuentoTotal.Equal(decimal.NewFromInt(3000)))
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(17000)))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Cafe americano", resp.Items[0].Producto)
	require.NotNil(t, resp.Cliente)
	assert.Equal(t, f.cliente.ID.String(), resp.Cliente.ID)

	assert.Equal(t, 3, f.productos.stock(f.cafe.ID))
	assert.Equal(t, 1, f.productos.stock(f.torta.ID))

	require.Len(t, f.movs.movimientos, 2)
	mov := f.movs.movimientos[0]
	assert.Equal(t, f.cafe.ID, mov.ProductoID)
	assert.Equal(t, "venta", mov.Tipo)
	assert.Equal(t, -2, mov.Cantidad)
	assert.Equal(t, 5, mov.StockAnterior)
	assert.Equal(t, 3, mov.StockNuevo)
	assert.Equal(t, "VTA-001", mov.Referencia)
	require.NotNil(t, mov.VentaID)
	assert.Equal(t, resp.ID, mov.VentaID.String())

	owner, err := f.reservas.Owner(ctx, "VTA-001")
	require.NoError(t, err)
	assert.Empty(t, owner, "reservation is consumed after commit")

	raw, err := f.rdb.RPop(ctx, worker.QueueRecibos).Result()
	require.NoError(t, err)
	var job worker.Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, worker.JobRecibo, job.Type)
	assert.Contains(t, string(job.Payload), resp.ID)
}

func TestVenta_CrearWithoutReservationStillCommits(t *testing.T) {
	f := newVentaFixture(t)
	resp, err := f.svc.Crear(context.Background(), f.trabajador.ID, f.request("VTA-002", false))
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(20000)))
}

func TestVenta_CrearWalkInCustomer(t *testing.T) {
	f := newVentaFixture(t)
	req := f.request("VTA-003", false)
	req.Cliente = &dto.ClienteVentaSnapshot{Nombre: "Consumidor final"}

	resp, err := f.svc.Crear(context.Background(), f.trabajador.ID, req)
	require.NoError(t, err)
	require.NotNil(t, resp.Cliente)
	assert.Empty(t, resp.Cliente.ID)
	assert.Equal(t, "Consumidor final", resp.Cliente.Nombre)
}

func TestVenta_CodeHeldByOtherWorker(t *testing.T) {
	f := newVentaFixture(t)
	f.reserve(t, "VTA-004", uuid.New())

	_, err := f.svc.Crear(context.Background(), f.trabajador.ID, f.request("VTA-004", false))
	assert.ErrorIs(t, err, service.ErrCodigoReservado)
	assert.Equal(t, 5, f.productos.stock(f.cafe.ID))
}

func TestVenta_CodeHeldByOtherSessionOfSameWorker(t *testing.T) {
	f := newVentaFixture(t)
	f.reserve(t, "VTA-004", f.trabajador.ID)

	req := f.request("VTA-004", false)
	req.Sesion = uuid.NewString()
	_, err := f.svc.Crear(context.Background(), f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrCodigoReservado)
	assert.Equal(t, 5, f.productos.stock(f.cafe.ID))

	// the holding session still commits
	_, err = f.svc.Crear(context.Background(), f.trabajador.ID, f.request("VTA-004", false))
	require.NoError(t, err)
}

func TestVenta_DuplicateCode(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()
	_, err := f.svc.Crear(ctx, f.trabajador.ID, f.request("VTA-005", false))
	require.NoError(t, err)

	req := f.request("VTA-005", false)
	req.Items = []dto.ItemVentaRequest{f.item(f.cafe, 1)}
	req.Total = decimal.NewFromInt(5000)
	_, err = f.svc.Crear(ctx, f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrCodigoDuplicado)
}

func TestVenta_InsufficientStock(t *testing.T) {
	f := newVentaFixture(t)
	req := f.request("VTA-006", false)
	req.Items = []dto.ItemVentaRequest{f.item(f.torta, 3)}
	req.Total = decimal.NewFromInt(30000)

	_, err := f.svc.Crear(context.Background(), f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrStockInsuficiente)
	assert.Contains(t, err.Error(), "Torta de queso")
}

func TestVenta_UnknownReferences(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	req := f.request("VTA-007", false)
	ghost := &model.Producto{ID: uuid.New(), Codigo: "GHO-01", PrecioVenta: decimal.NewFromInt(1000)}
	req.Items = []dto.ItemVentaRequest{f.item(ghost, 1)}
	req.Total = decimal.NewFromInt(1000)
	_, err := f.svc.Crear(ctx, f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrProductoNoEncontrado)

	req = f.request("VTA-007", false)
	missing := uuid.NewString()
	req.Cliente.ID = &missing
	_, err = f.svc.Crear(ctx, f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrClienteNoEncontrado)

	_, err = f.svc.Crear(ctx, uuid.New(), f.request("VTA-007", false))
	assert.ErrorIs(t, err, service.ErrTrabajadorNoEncontrado)
}

func TestVenta_InactiveProductIsNotFound(t *testing.T) {
	f := newVentaFixture(t)
	f.cafe.Activo = false
	_, err := f.svc.Crear(context.Background(), f.trabajador.ID, f.request("VTA-008", false))
	assert.ErrorIs(t, err, service.ErrProductoNoEncontrado)
}

func TestVenta_InconsistentTotals(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	req := f.request("VTA-009", false)
	req.Total = decimal.NewFromInt(19999)
	_, err := f.svc.Crear(ctx, f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrTotalInconsistente)

	req = f.request("VTA-009", false)
	req.Items[0].Subtotal = decimal.NewFromInt(1)
	_, err = f.svc.Crear(ctx, f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrTotalInconsistente)
}

func TestVenta_DiscountMustMatchCustomer(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	req := f.request("VTA-010", true)
	pct := decimal.NewFromInt(30)
	req.DescuentoPorcentaje = &pct
	_, err := f.svc.Crear(ctx, f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrDescuentoInvalido)

	req = f.request("VTA-010", true)
	req.Cliente = &dto.ClienteVentaSnapshot{Nombre: "Consumidor final"}
	_, err = f.svc.Crear(ctx, f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrDescuentoInvalido)
}

func TestVenta_ExplicitTrabajador(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	// matching the token subject is accepted
	req := f.request("VTA-011", false)
	self := f.trabajador.ID.String()
	req.Trabajador = &self
	_, err := f.svc.Crear(ctx, f.trabajador.ID, req)
	require.NoError(t, err)

	// naming another worker is rejected before anything is written
	req = f.request("VTA-013", false)
	other := uuid.NewString()
	req.Trabajador = &other
	_, err = f.svc.Crear(ctx, f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrTrabajadorNoAutorizado)

	garbage := "no-es-uuid"
	req.Trabajador = &garbage
	_, err = f.svc.Crear(ctx, f.trabajador.ID, req)
	assert.ErrorIs(t, err, service.ErrTrabajadorNoAutorizado)

	assert.Len(t, f.ventas.ventas, 1)
	assert.Equal(t, 3, f.productos.stock(f.cafe.ID))
}

func TestVenta_RepositoryFailurePropagates(t *testing.T) {
	f := newVentaFixture(t)
	boom := errors.New("connection reset")
	f.ventas.err = boom
	_, err := f.svc.Crear(context.Background(), f.trabajador.ID, f.request("VTA-012", false))
	assert.ErrorIs(t, err, boom)
}
