package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/model"
	"sowin/internal/repository"
)

// In-memory repository stubs. DB() returns nil so runTx calls the closure
// directly; transactional rollback itself is exercised by the integration
// suite against real Postgres.

func strPtr(s string) *string { return &s }

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("uuid inválido %q: %v", s, err)
	}
	return id
}

// ── stubProductoRepo ─────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
	barcodes  map[string]uuid.UUID
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos: make(map[uuid.UUID]*model.Producto),
		barcodes:  make(map[string]uuid.UUID),
	}
}

func (r *stubProductoRepo) seed(p *model.Producto) *model.Producto {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	r.barcodes[p.CodigoBarras] = p.ID
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if _, dup := r.barcodes[p.CodigoBarras]; dup {
		return apierror.Duplicate("ya existe un producto con ese código de barras", nil)
	}
	r.seed(p)
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, apierror.NotFound("producto no encontrado")
	}
	return p, nil
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) FindByBarcode(_ context.Context, codigo string) (*model.Producto, error) {
	id, ok := r.barcodes[codigo]
	if !ok {
		return nil, apierror.NotFound("producto no encontrado")
	}
	return r.productos[id], nil
}

func (r *stubProductoRepo) List(_ context.Context) ([]model.Producto, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	r.barcodes[p.CodigoBarras] = p.ID
	return nil
}

func (r *stubProductoRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return apierror.NotFound("producto no encontrado")
	}
	delete(r.barcodes, p.CodigoBarras)
	delete(r.productos, id)
	return nil
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) (int, error) {
	p, ok := r.productos[id]
	if !ok {
		return 0, apierror.NotFound("producto no encontrado")
	}
	if p.StockActual+delta < 0 {
		return 0, apierror.StockInsuficiente("stock insuficiente para completar la operación", nil)
	}
	p.StockActual += delta
	return p.StockActual, nil
}

func (r *stubProductoRepo) CountByCategoria(_ context.Context, categoriaID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range r.productos {
		if p.CategoriaID == categoriaID {
			n++
		}
	}
	return n, nil
}

func (r *stubProductoRepo) CountByProveedor(_ context.Context, proveedorID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range r.productos {
		if p.ProveedorID != nil && *p.ProveedorID == proveedorID {
			n++
		}
	}
	return n, nil
}

func (r *stubProductoRepo) NullifyCreadorTx(_ *gorm.DB, usuarioID uuid.UUID) error {
	for _, p := range r.productos {
		if p.CreadoPor != nil && *p.CreadoPor == usuarioID {
			p.CreadoPor = nil
		}
	}
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── stubMovimientoRepo ───────────────────────────────────────────────────────

type stubMovimientoRepo struct {
	movimientos []*model.Movimiento
}

func newStubMovimientoRepo() *stubMovimientoRepo { return &stubMovimientoRepo{} }

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.Movimiento) error {
	return r.CreateTx(nil, m)
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.Movimiento) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Fecha.IsZero() {
		m.Fecha = time.Now()
	}
	r.movimientos = append(r.movimientos, m)
	return nil
}

func (r *stubMovimientoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Movimiento, error) {
	for _, m := range r.movimientos {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, apierror.NotFound("movimiento no encontrado")
}

func (r *stubMovimientoRepo) List(_ context.Context, filter repository.MovimientoFilter) ([]model.Movimiento, error) {
	var out []model.Movimiento
	for _, m := range r.movimientos {
		if filter.TipoMovimiento != nil && m.TipoMovimiento != *filter.TipoMovimiento {
			continue
		}
		if filter.FechaInicio != nil && m.Fecha.Before(*filter.FechaInicio) {
			continue
		}
		if filter.FechaFin != nil && !m.Fecha.Before(filter.FechaFin.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubMovimientoRepo) ListByProducto(_ context.Context, productoID uuid.UUID) ([]model.Movimiento, error) {
	var out []model.Movimiento
	for _, m := range r.movimientos {
		if m.ProductoID == productoID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, m := range r.movimientos {
		if m.ID == id {
			r.movimientos = append(r.movimientos[:i], r.movimientos[i+1:]...)
			return nil
		}
	}
	return apierror.NotFound("movimiento no encontrado")
}

func (r *stubMovimientoRepo) DeleteByProductoTx(_ *gorm.DB, productoID uuid.UUID) (int64, error) {
	var kept []*model.Movimiento
	var n int64
	for _, m := range r.movimientos {
		if m.ProductoID == productoID {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.movimientos = kept
	return n, nil
}

func (r *stubMovimientoRepo) DB() *gorm.DB { return nil }

var _ repository.MovimientoRepository = (*stubMovimientoRepo)(nil)

// ── stubEntradaRepo ──────────────────────────────────────────────────────────

type stubEntradaRepo struct {
	entradas map[uuid.UUID]*model.Entrada
}

func newStubEntradaRepo() *stubEntradaRepo {
	return &stubEntradaRepo{entradas: make(map[uuid.UUID]*model.Entrada)}
}

func (r *stubEntradaRepo) CreateTx(_ *gorm.DB, e *model.Entrada) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Fecha.IsZero() {
		e.Fecha = time.Now()
	}
	// Mirror the BeforeCreate hook the real driver runs.
	_ = e.BeforeCreate(nil)
	r.entradas[e.ID] = e
	return nil
}

func (r *stubEntradaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Entrada, error) {
	e, ok := r.entradas[id]
	if !ok {
		return nil, apierror.NotFound("entrada no encontrada")
	}
	return e, nil
}

func (r *stubEntradaRepo) List(_ context.Context) ([]model.Entrada, error) {
	out := make([]model.Entrada, 0, len(r.entradas))
	for _, e := range r.entradas {
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubEntradaRepo) UpdateTx(_ *gorm.DB, e *model.Entrada) error {
	_ = e.BeforeUpdate(nil)
	r.entradas[e.ID] = e
	return nil
}

func (r *stubEntradaRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.entradas[id]; !ok {
		return apierror.NotFound("entrada no encontrada")
	}
	delete(r.entradas, id)
	return nil
}

func (r *stubEntradaRepo) StatsPorProducto(_ context.Context) ([]repository.EntradaStats, error) {
	byProducto := make(map[uuid.UUID]*repository.EntradaStats)
	for _, e := range r.entradas {
		st, ok := byProducto[e.ProductoID]
		if !ok {
			st = &repository.EntradaStats{ProductoID: e.ProductoID}
			byProducto[e.ProductoID] = st
		}
		st.TotalEntradas++
		st.CantidadTotal += int64(e.Cantidad)
		st.ValorTotal = st.ValorTotal.Add(e.Total)
	}
	out := make([]repository.EntradaStats, 0, len(byProducto))
	for _, st := range byProducto {
		out = append(out, *st)
	}
	return out, nil
}

func (r *stubEntradaRepo) DeleteByProductoTx(_ *gorm.DB, productoID uuid.UUID) (int64, error) {
	var n int64
	for id, e := range r.entradas {
		if e.ProductoID == productoID {
			delete(r.entradas, id)
			n++
		}
	}
	return n, nil
}

func (r *stubEntradaRepo) PurgeOlderThan(_ context.Context, limite time.Time) (int64, error) {
	var n int64
	for id, e := range r.entradas {
		if e.Fecha.Before(limite) {
			delete(r.entradas, id)
			n++
		}
	}
	return n, nil
}

func (r *stubEntradaRepo) PurgeRange(_ context.Context, desde, hasta time.Time) (int64, error) {
	var n int64
	for id, e := range r.entradas {
		if !e.Fecha.Before(desde) && e.Fecha.Before(hasta.AddDate(0, 0, 1)) {
			delete(r.entradas, id)
			n++
		}
	}
	return n, nil
}

func (r *stubEntradaRepo) NullifyUsuarioTx(_ *gorm.DB, usuarioID uuid.UUID) error {
	for _, e := range r.entradas {
		if e.UsuarioID != nil && *e.UsuarioID == usuarioID {
			e.UsuarioID = nil
		}
	}
	return nil
}

func (r *stubEntradaRepo) DB() *gorm.DB { return nil }

var _ repository.EntradaRepository = (*stubEntradaRepo)(nil)

// ── stubSalidaRepo ───────────────────────────────────────────────────────────

type stubSalidaRepo struct {
	salidas    map[uuid.UUID]*model.Salida
	lastFilter repository.SalidaFilter
}

func newStubSalidaRepo() *stubSalidaRepo {
	return &stubSalidaRepo{salidas: make(map[uuid.UUID]*model.Salida)}
}

func (r *stubSalidaRepo) CreateTx(_ *gorm.DB, s *model.Salida) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Fecha.IsZero() {
		s.Fecha = time.Now()
	}
	for i := range s.Detalles {
		if s.Detalles[i].ID == uuid.Nil {
			s.Detalles[i].ID = uuid.New()
		}
		s.Detalles[i].SalidaID = s.ID
	}
	r.salidas[s.ID] = s
	return nil
}

func (r *stubSalidaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Salida, error) {
	s, ok := r.salidas[id]
	if !ok {
		return nil, apierror.NotFound("salida no encontrada")
	}
	return s, nil
}

func (r *stubSalidaRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Salida, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSalidaRepo) List(_ context.Context, filter repository.SalidaFilter) ([]model.Salida, error) {
	r.lastFilter = filter
	var out []model.Salida
	for _, s := range r.salidas {
		if filter.FechaInicio != nil && s.Fecha.Before(*filter.FechaInicio) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubSalidaRepo) UpdateTx(_ *gorm.DB, s *model.Salida) error {
	if _, ok := r.salidas[s.ID]; !ok {
		return apierror.NotFound("salida no encontrada")
	}
	r.salidas[s.ID] = s
	return nil
}

func (r *stubSalidaRepo) ListDetalles(_ context.Context) ([]model.DetalleSalida, error) {
	var out []model.DetalleSalida
	for _, s := range r.salidas {
		out = append(out, s.Detalles...)
	}
	return out, nil
}

func (r *stubSalidaRepo) ListPorCajeroHoy(_ context.Context, usuarioID uuid.UUID) ([]model.Salida, error) {
	var out []model.Salida
	for _, s := range r.salidas {
		if s.UsuarioID != nil && *s.UsuarioID == usuarioID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSalidaRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.salidas[id]; !ok {
		return apierror.NotFound("salida no encontrada")
	}
	delete(r.salidas, id)
	return nil
}

func (r *stubSalidaRepo) DeleteDetallesByProductoTx(_ *gorm.DB, productoID uuid.UUID) (int64, error) {
	var n int64
	for _, s := range r.salidas {
		var kept []model.DetalleSalida
		for _, d := range s.Detalles {
			if d.ProductoID == productoID {
				n++
				continue
			}
			kept = append(kept, d)
		}
		s.Detalles = kept
	}
	return n, nil
}

func (r *stubSalidaRepo) NullifyUsuarioTx(_ *gorm.DB, usuarioID uuid.UUID) error {
	for _, s := range r.salidas {
		if s.UsuarioID != nil && *s.UsuarioID == usuarioID {
			s.UsuarioID = nil
		}
	}
	return nil
}

func (r *stubSalidaRepo) DB() *gorm.DB { return nil }

var _ repository.SalidaRepository = (*stubSalidaRepo)(nil)

// ── stubCategoriaRepo ────────────────────────────────────────────────────────

type stubCategoriaRepo struct {
	categorias map[uuid.UUID]*model.Categoria
	// productos feeds ConteoProductos; nil means every count is zero.
	productos *stubProductoRepo
}

func newStubCategoriaRepo() *stubCategoriaRepo {
	return &stubCategoriaRepo{categorias: make(map[uuid.UUID]*model.Categoria)}
}

func (r *stubCategoriaRepo) seed(c *model.Categoria) *model.Categoria {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categorias[c.ID] = c
	return c
}

func (r *stubCategoriaRepo) Create(_ context.Context, c *model.Categoria) error {
	for _, existente := range r.categorias {
		if existente.NombreCategoria == c.NombreCategoria {
			return apierror.Duplicate("ya existe una categoría con ese nombre", nil)
		}
	}
	r.seed(c)
	return nil
}

func (r *stubCategoriaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	c, ok := r.categorias[id]
	if !ok {
		return nil, apierror.NotFound("categoría no encontrada")
	}
	return c, nil
}

func (r *stubCategoriaRepo) List(_ context.Context) ([]model.Categoria, error) {
	out := make([]model.Categoria, 0, len(r.categorias))
	for _, c := range r.categorias {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCategoriaRepo) ConteoProductos(_ context.Context) ([]repository.CategoriaConteo, error) {
	out := make([]repository.CategoriaConteo, 0, len(r.categorias))
	for _, c := range r.categorias {
		conteo := repository.CategoriaConteo{ID: c.ID, NombreCategoria: c.NombreCategoria}
		if r.productos != nil {
			for _, p := range r.productos.productos {
				if p.CategoriaID == c.ID {
					conteo.TotalProductos++
				}
			}
		}
		out = append(out, conteo)
	}
	return out, nil
}

func (r *stubCategoriaRepo) Update(_ context.Context, c *model.Categoria) error {
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.categorias[id]; !ok {
		return apierror.NotFound("categoría no encontrada")
	}
	delete(r.categorias, id)
	return nil
}

var _ repository.CategoriaRepository = (*stubCategoriaRepo)(nil)

// ── stubProveedorRepo ────────────────────────────────────────────────────────

type stubProveedorRepo struct {
	proveedores map[uuid.UUID]*model.Proveedor
}

func newStubProveedorRepo() *stubProveedorRepo {
	return &stubProveedorRepo{proveedores: make(map[uuid.UUID]*model.Proveedor)}
}

func (r *stubProveedorRepo) seed(p *model.Proveedor) *model.Proveedor {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.proveedores[p.ID] = p
	return p
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	r.seed(p)
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, apierror.NotFound("proveedor no encontrado")
	}
	return p, nil
}

func (r *stubProveedorRepo) List(_ context.Context) ([]model.Proveedor, error) {
	out := make([]model.Proveedor, 0, len(r.proveedores))
	for _, p := range r.proveedores {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.proveedores[id]; !ok {
		return apierror.NotFound("proveedor no encontrado")
	}
	delete(r.proveedores, id)
	return nil
}

var _ repository.ProveedorRepository = (*stubProveedorRepo)(nil)

// ── stubUsuarioRepo ──────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) seed(u *model.Usuario) *model.Usuario {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return u
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.seed(u)
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, apierror.NotFound("usuario no encontrado")
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByNombre(_ context.Context, nombre string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.NombreUsuario == nombre {
			return u, nil
		}
	}
	return nil, apierror.NotFound("usuario no encontrado")
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	out := make([]model.Usuario, 0, len(r.usuarios))
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.usuarios[id]; !ok {
		return apierror.NotFound("usuario no encontrado")
	}
	delete(r.usuarios, id)
	return nil
}

func (r *stubUsuarioRepo) ListModulos(_ context.Context, _ uuid.UUID) ([]string, error) {
	return nil, nil
}

func (r *stubUsuarioRepo) DB() *gorm.DB { return nil }

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)
