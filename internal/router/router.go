package router

import (
	"database/sql"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/config"
	"github.com/kevinserna01/react-cabina-sub000/internal/handler"
	"github.com/kevinserna01/react-cabina-sub000/internal/middleware"
	"github.com/kevinserna01/react-cabina-sub000/internal/repository"
	"github.com/kevinserna01/react-cabina-sub000/internal/service"
	"github.com/kevinserna01/react-cabina-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMin, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	reservaRepo := repository.NewReservaCodigoRepository(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, rdb)
	clienteSvc := service.NewClienteService(clienteRepo)
	codigoSvc := service.NewCodigoService(ventaRepo, reservaRepo, cfg.SaleCodeTTL())
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoRepo)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, movimientoRepo, clienteRepo, usuarioRepo, reservaRepo, productoSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	codigosH := handler.NewCodigosHandler(codigoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var sqlDB *sql.DB
	if db != nil {
		sqlDB, _ = db.DB()
	}
	r.GET("/health", handler.Health(pinger(sqlDB), rdb))
	r.POST("/v1/auth/login", middleware.LoginRateLimiter(), authH.Login)

	// Protected routes: every role may sell
	v1 := r.Group("/v1",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(middleware.RolTrabajador, middleware.RolAdministrador),
	)
	{
		v1.GET("/productos", productosH.Listar)

		v1.GET("/clientes", clientesH.Listar)
		v1.POST("/clientes", clientesH.Crear)

		codigos := v1.Group("/ventas/codigos")
		{
			codigos.GET("/ultimo", codigosH.Ultimo)
			codigos.POST("/reservar", codigosH.Reservar)
			codigos.POST("/liberar", codigosH.Liberar)
		}
		v1.POST("/ventas", ventasH.Crear)

		inventario := v1.Group("/inventario", middleware.RequireRole(middleware.RolAdministrador))
		{
			inventario.GET("/movimientos", inventarioH.Movimientos)
			inventario.GET("/alertas", inventarioH.Alertas)
		}
	}

	return r
}

// pinger keeps a nil *sql.DB from becoming a non-nil interface.
func pinger(db *sql.DB) handler.Pinger {
	if db == nil {
		return nil
	}
	return db
}
