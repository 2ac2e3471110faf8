package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/domain"
	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/model"
	"github.com/kevinserna01/react-cabina-sub000/internal/repository"
	"github.com/kevinserna01/react-cabina-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	// Crear persists a sale under its reserved code. usuarioID is the
	// authenticated worker; together with req.Sesion it owns the code
	// reservation.
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	movimientos  repository.MovimientoStockRepository
	clienteRepo  repository.ClienteRepository
	usuarioRepo  repository.UsuarioRepository
	reservas     repository.ReservaCodigoRepository
	productos    ProductoService
	dispatcher   *worker.Dispatcher // nil skips receipt jobs
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	movimientos repository.MovimientoStockRepository,
	clienteRepo repository.ClienteRepository,
	usuarioRepo repository.UsuarioRepository,
	reservas repository.ReservaCodigoRepository,
	productos ProductoService,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		movimientos:  movimientos,
		clienteRepo:  clienteRepo,
		usuarioRepo:  usuarioRepo,
		reservas:     reservas,
		productos:    productos,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Crear ─────────────────────────────────────────────────────────────────────
//   1. Code must be well formed and not held by another session
//   2. Resolve worker, products and customer (pre-flight, outside TX)
//   3. Recompute line totals, subtotal, discount and final total
//   4. BEGIN TX: insert venta+items, decrement stock with a stock >= qty guard,
//      record one "venta" stock movement per line
//   5. COMMIT, drop the reservation, invalidate the catalog cache
//   6. (async) dispatch the receipt job

func (s *ventaService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error) {
	if _, err := domain.ParseSaleCode(req.Codigo); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCodigoInvalido, req.Codigo)
	}
	owner := reservaOwner(usuarioID, req.Sesion)
	holder, err := s.reservas.Owner(ctx, req.Codigo)
	if err != nil {
		return nil, err
	}
	if holder != "" && holder != owner {
		return nil, fmt.Errorf("%w: %s", ErrCodigoReservado, req.Codigo)
	}

	// 2. Worker: the token subject; an explicit trabajador must agree with it
	trabajadorID := usuarioID
	if req.Trabajador != nil {
		if id, err := uuid.Parse(*req.Trabajador); err != nil || id != usuarioID {
			return nil, fmt.Errorf("%w: %s", ErrTrabajadorNoAutorizado, *req.Trabajador)
		}
	}
	if _, err := s.usuarioRepo.FindByID(ctx, trabajadorID); err != nil {
		return nil, lookupErr(err, ErrTrabajadorNoEncontrado, trabajadorID.String())
	}

	productos, err := s.resolveProductos(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var cliente *model.Cliente
	if req.Cliente != nil && req.Cliente.ID != nil {
		cid, err := uuid.Parse(*req.Cliente.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrClienteNoEncontrado, *req.Cliente.ID)
		}
		if cliente, err = s.clienteRepo.FindByID(ctx, cid); err != nil {
			return nil, lookupErr(err, ErrClienteNoEncontrado, *req.Cliente.ID)
		}
	}

	// 3. Totals
	subtotal := decimal.Zero
	for _, item := range req.Items {
		line := item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		if !line.Equal(item.Subtotal) {
			return nil, fmt.Errorf("%w: subtotal de %s es %s, se esperaba %s",
				ErrTotalInconsistente, item.Codigo, item.Subtotal.String(), line.String())
		}
		subtotal = subtotal.Add(line)
	}

	porcentaje := decimal.Zero
	if req.DescuentoPorcentaje != nil && req.DescuentoPorcentaje.IsPositive() {
		if cliente == nil || !cliente.DescuentoPersonalizado.Equal(*req.DescuentoPorcentaje) {
			return nil, fmt.Errorf("%w: %s%%", ErrDescuentoInvalido, req.DescuentoPorcentaje.String())
		}
		porcentaje = *req.DescuentoPorcentaje
	}
	total := domain.ApplyDiscount(subtotal, porcentaje)
	if !total.Equal(req.Total) {
		return nil, fmt.Errorf("%w: total %s, se esperaba %s", ErrTotalInconsistente, req.Total.String(), total.String())
	}

	venta := model.Venta{
		Codigo:              req.Codigo,
		UsuarioID:           &trabajadorID,
		Subtotal:            subtotal,
		DescuentoPorcentaje: porcentaje,
		DescuentoTotal:      subtotal.Sub(total),
		Total:               total,
		MetodoPago:          req.MetodoPago,
		CreatedAt:           time.Now(),
	}
	if cliente != nil {
		venta.ClienteID = &cliente.ID
	}
	if snap := req.Cliente; snap != nil {
		venta.ClienteNombre = &snap.Nombre
		venta.ClienteDocumento = &snap.Documento
		venta.ClienteEmail = snap.Email
		venta.ClienteTelefono = snap.Telefono
	}
	for _, item := range req.Items {
		p := productos[item.ProductoID]
		venta.Items = append(venta.Items, model.VentaItem{
			ProductoID:     p.ID,
			Codigo:         p.Codigo,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}

	// 4. ACID transaction
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrCodigoDuplicado, req.Codigo)
			}
			return err
		}
		for i, item := range venta.Items {
			nuevo, ok, err := s.productoRepo.DescontarStockTx(tx, item.ProductoID, item.Cantidad)
			if err != nil {
				return fmt.Errorf("descontando stock de %s: %w", item.Codigo, err)
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrStockInsuficiente, productos[req.Items[i].ProductoID].Nombre)
			}
			if err := s.movimientos.CreateTx(tx, &model.MovimientoStock{
				ProductoID:    item.ProductoID,
				Tipo:          model.MovimientoTipoVenta,
				Cantidad:      -item.Cantidad,
				StockAnterior: nuevo + item.Cantidad,
				StockNuevo:    nuevo,
				VentaID:       &venta.ID,
				Referencia:    venta.Codigo,
			}); err != nil {
				return fmt.Errorf("registrando movimiento de %s: %w", item.Codigo, err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	for i := range venta.Items {
		venta.Items[i].Producto = productos[req.Items[i].ProductoID]
	}

	// 5. Post-commit housekeeping never fails the sale
	if err := s.reservas.Consumir(ctx, req.Codigo); err != nil {
		log.Warn().Err(err).Str("codigo", req.Codigo).Msg("venta: failed to drop code reservation")
	}
	s.productos.Invalidar(ctx)

	// 6. Receipt
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueRecibo(ctx, worker.ReciboJobPayload{VentaID: venta.ID.String()}); err != nil {
			log.Warn().Err(err).Str("codigo", venta.Codigo).Msg("venta: failed to enqueue recibo")
		}
	}

	log.Info().
		Str("codigo", venta.Codigo).
		Str("total", venta.Total.String()).
		Str("metodo_pago", venta.MetodoPago).
		Msg("venta registrada")

	return ventaToResponse(&venta), nil
}

// resolveProductos loads every product of the sale keyed by its request id.
func (s *ventaService) resolveProductos(ctx context.Context, items []dto.ItemVentaRequest) (map[string]*model.Producto, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		id, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, item.Codigo)
		}
		ids = append(ids, id)
	}
	found, err := s.productoRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Producto, len(found))
	for i := range found {
		byID[found[i].ID.String()] = &found[i]
	}

	out := make(map[string]*model.Producto, len(items))
	for i, item := range items {
		p, ok := byID[ids[i].String()]
		if !ok || !p.Activo {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, item.Codigo)
		}
		out[item.ProductoID] = p
	}
	return out, nil
}

// lookupErr maps a repository miss to sentinel and passes anything else on.
func lookupErr(err, sentinel error, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", sentinel, key)
	}
	return err
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:                  v.ID.String(),
		Codigo:              v.Codigo,
		Subtotal:            v.Subtotal,
		DescuentoPorcentaje: v.DescuentoPorcentaje,
		DescuentoTotal:      v.DescuentoTotal,
		Total:               v.Total,
		MetodoPago:          v.MetodoPago,
		CreatedAt:           v.CreatedAt.Format(time.RFC3339),
	}
	for _, item := range v.Items {
		ir := dto.ItemVentaResponse{
			ProductoID:     item.ProductoID.String(),
			Codigo:         item.Codigo,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		}
		if item.Producto != nil {
			ir.Producto = item.Producto.Nombre
		}
		resp.Items = append(resp.Items, ir)
	}
	if v.ClienteNombre != nil {
		c := &dto.ClienteResponse{Nombre: *v.ClienteNombre, Email: v.ClienteEmail, Telefono: v.ClienteTelefono}
		if v.ClienteID != nil {
			c.ID = v.ClienteID.String()
		}
		if v.ClienteDocumento != nil {
			c.Documento = *v.ClienteDocumento
		}
		resp.Cliente = c
	}
	return resp
}
