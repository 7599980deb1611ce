package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"sowin/internal/config"
	"sowin/internal/handler"
	"sowin/internal/middleware"
	"sowin/internal/repository"
	"sowin/internal/service"
	"sowin/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	entradaRepo := repository.NewEntradaRepository(db)
	salidaRepo := repository.NewSalidaRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	productoSvc := service.NewProductoService(productoRepo, movimientoRepo, rdb)
	movimientoSvc := service.NewMovimientoService(movimientoRepo, productoRepo)
	entradaSvc := service.NewEntradaService(entradaRepo, productoRepo, movimientoRepo)
	ventaSvc := service.NewVentaService(salidaRepo, productoRepo, movimientoRepo, dispatcher, cfg.PDFStoragePath)
	cascadaSvc := service.NewCascadaService(productoRepo, movimientoRepo, entradaRepo, salidaRepo, categoriaRepo, proveedorRepo, usuarioRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo, productoRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo, productoRepo)
	authSvc := service.NewAuthService(usuarioRepo, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productosH := handler.NewProductosHandler(productoSvc, cascadaSvc)
	movimientosH := handler.NewMovimientosHandler(movimientoSvc)
	entradasH := handler.NewEntradasHandler(entradaSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc, cascadaSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc, cascadaSvc)
	authH := handler.NewAuthHandler(authSvc, cascadaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	api := r.Group("/api")

	// Public
	api.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	api.POST("/barcode-scan", productosH.Scan)
	api.GET("/productos/barcode/:codigo", productosH.BuscarPorBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	auth := api.Group("", jwtMW)
	{
		productos := auth.Group("/productos")
		{
			productos.POST("", productosH.Crear)
			productos.GET("", productosH.Listar)
			productos.GET("/:id", productosH.ObtenerPorID)
			productos.PUT("/:id", productosH.Actualizar)
			productos.PATCH("/:id/stock", productosH.AjustarStock)
			productos.DELETE("/:id", productosH.Eliminar)
			productos.POST("/registrar-desde-barcode", productosH.RegistrarDesdeBarcode)
			productos.GET("/:id/movimientos", movimientosH.ListarPorProducto)
		}

		movimientos := auth.Group("/movimientos")
		{
			movimientos.POST("", movimientosH.Registrar)
			movimientos.GET("", movimientosH.Listar)
			movimientos.GET("/:id", movimientosH.ObtenerPorID)
			movimientos.DELETE("/:id", movimientosH.Eliminar)
		}

		entradas := auth.Group("/entradas")
		{
			entradas.POST("", entradasH.Registrar)
			entradas.GET("", entradasH.Listar)
			entradas.GET("/stats", entradasH.Stats)
			entradas.GET("/:id", entradasH.ObtenerPorID)
			entradas.PUT("/:id", entradasH.Actualizar)
			entradas.DELETE("/:id", entradasH.Eliminar)
			entradas.POST("/purgar", middleware.RequireRol("administrador"), entradasH.Purgar)
		}

		salidas := auth.Group("/salidas")
		{
			salidas.POST("", ventasH.RegistrarSalida)
			salidas.GET("", ventasH.Listar)
			salidas.GET("/detalles", ventasH.ListarDetalles)
			salidas.GET("/:id", ventasH.ObtenerPorID)
			salidas.PUT("/:id", ventasH.Actualizar)
			salidas.DELETE("/:id", ventasH.Eliminar)
		}

		ventas := auth.Group("/ventas")
		{
			ventas.POST("", ventasH.RegistrarVenta)
			ventas.GET("/cajero/:id_usuario", ventasH.VentasPorCajero)
			ventas.GET("/:id/ticket", ventasH.Ticket)
		}

		categorias := auth.Group("/categorias")
		{
			categorias.POST("", categoriasH.Crear)
			categorias.GET("", categoriasH.Listar)
			categorias.GET("/stats/conteo-productos", categoriasH.ConteoProductos)
			categorias.GET("/:id", categoriasH.ObtenerPorID)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Eliminar)
		}

		proveedores := auth.Group("/proveedores")
		{
			proveedores.POST("", proveedoresH.Crear)
			proveedores.GET("", proveedoresH.Listar)
			proveedores.GET("/:id", proveedoresH.ObtenerPorID)
			proveedores.PUT("/:id", proveedoresH.Actualizar)
			proveedores.DELETE("/:id", proveedoresH.Eliminar)
		}

		usuarios := auth.Group("/usuarios", middleware.RequireRol("administrador"))
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.GET("/:id", authH.ObtenerUsuario)
			usuarios.DELETE("/:id", authH.EliminarUsuario)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
