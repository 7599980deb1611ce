package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sowin/internal/apierror"
	"sowin/internal/dto"
	"sowin/internal/model"
)

func newVentaFixture() (*stubProductoRepo, *stubMovimientoRepo, *stubSalidaRepo, VentaService) {
	productoRepo := newStubProductoRepo()
	movimientoRepo := newStubMovimientoRepo()
	salidaRepo := newStubSalidaRepo()
	svc := NewVentaService(salidaRepo, productoRepo, movimientoRepo, nil, "")
	return productoRepo, movimientoRepo, salidaRepo, svc
}

func seedProducto(repo *stubProductoRepo, codigo string, stock int) *model.Producto {
	return repo.seed(&model.Producto{
		CodigoBarras:   codigo,
		NombreProducto: "Producto " + codigo,
		CategoriaID:    uuid.New(),
		PrecioCompra:   decimal.NewFromFloat(5.00),
		PrecioVenta:    decimal.NewFromFloat(10.00),
		StockActual:    stock,
	})
}

func TestRegistrarSalidaDescuentaStock(t *testing.T) {
	productoRepo, movimientoRepo, _, svc := newVentaFixture()
	p := seedProducto(productoRepo, "123", 10)

	resp, err := svc.RegistrarSalida(context.Background(), dto.RegistrarSalidaRequest{
		ProductoID:     p.ID.String(),
		UsuarioID:      strPtr(uuid.NewString()),
		Cantidad:       4,
		PrecioUnitario: decimal.NewFromFloat(10.00),
	})
	require.NoError(t, err)

	assert.Equal(t, 6, p.StockActual)
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(40.00)))

	require.Len(t, movimientoRepo.movimientos, 1)
	mov := movimientoRepo.movimientos[0]
	assert.Equal(t, model.MovimientoSalida, mov.TipoMovimiento)
	assert.Equal(t, 4, mov.Cantidad)
	assert.Equal(t, 6, mov.StockResultante)
}

func TestRegistrarSalidaStockInsuficiente(t *testing.T) {
	productoRepo, movimientoRepo, salidaRepo, svc := newVentaFixture()
	p := seedProducto(productoRepo, "123", 10)

	// 10 - 4 = 6 disponible; pedir 7 debe fallar sin tocar nada.
	_, err := svc.RegistrarSalida(context.Background(), dto.RegistrarSalidaRequest{
		ProductoID:     p.ID.String(),
		UsuarioID:      strPtr(uuid.NewString()),
		Cantidad:       4,
		PrecioUnitario: decimal.NewFromFloat(10.00),
	})
	require.NoError(t, err)

	_, err = svc.RegistrarSalida(context.Background(), dto.RegistrarSalidaRequest{
		ProductoID:     p.ID.String(),
		UsuarioID:      strPtr(uuid.NewString()),
		Cantidad:       7,
		PrecioUnitario: decimal.NewFromFloat(10.00),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindStockInsuficiente))

	// The conflict payload identifies the product.
	var ae *apierror.Error
	require.ErrorAs(t, err, &ae)
	resumen, ok := ae.Conflicto.(dto.ProductoResumen)
	require.True(t, ok)
	assert.Equal(t, "123", resumen.CodigoBarras)

	assert.Equal(t, 6, p.StockActual)
	assert.Len(t, movimientoRepo.movimientos, 1)
	assert.Len(t, salidaRepo.salidas, 1)
}

func TestRegistrarSalidaProductoInexistente(t *testing.T) {
	_, _, _, svc := newVentaFixture()

	_, err := svc.RegistrarSalida(context.Background(), dto.RegistrarSalidaRequest{
		ProductoID:     uuid.NewString(),
		UsuarioID:      strPtr(uuid.NewString()),
		Cantidad:       1,
		PrecioUnitario: decimal.NewFromFloat(10.00),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}

func TestRegistrarSalidaSinUsuario(t *testing.T) {
	productoRepo, movimientoRepo, salidaRepo, svc := newVentaFixture()
	p := seedProducto(productoRepo, "123", 10)

	_, err := svc.RegistrarSalida(context.Background(), dto.RegistrarSalidaRequest{
		ProductoID:     p.ID.String(),
		Cantidad:       2,
		PrecioUnitario: decimal.NewFromFloat(10.00),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	assert.Equal(t, 10, p.StockActual)
	assert.Empty(t, movimientoRepo.movimientos)
	assert.Empty(t, salidaRepo.salidas)
}

func TestRegistrarVentaMultiItem(t *testing.T) {
	productoRepo, movimientoRepo, salidaRepo, svc := newVentaFixture()
	p1 := seedProducto(productoRepo, "111", 10)
	p2 := seedProducto(productoRepo, "222", 5)

	resp, err := svc.RegistrarVenta(context.Background(), dto.RegistrarVentaRequest{
		UsuarioID: strPtr(uuid.NewString()),
		Total:     decimal.NewFromFloat(50.00),
		Efectivo:  decimal.NewFromFloat(100.00),
		Cambio:    decimal.NewFromFloat(50.00),
		Productos: []dto.ItemVentaRequest{
			{ProductoID: p1.ID.String(), Cantidad: 3, PrecioUnitario: decimal.NewFromFloat(10.00), Total: decimal.NewFromFloat(30.00)},
			{ProductoID: p2.ID.String(), Cantidad: 2, PrecioUnitario: decimal.NewFromFloat(10.00), Total: decimal.NewFromFloat(20.00)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, p1.StockActual)
	assert.Equal(t, 3, p2.StockActual)
	assert.Len(t, movimientoRepo.movimientos, 2)

	require.Len(t, salidaRepo.salidas, 1)
	venta, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	guardada := salidaRepo.salidas[venta]
	require.Len(t, guardada.Detalles, 2)
	assert.True(t, guardada.Detalles[0].Total.Equal(decimal.NewFromFloat(30.00)))
	assert.True(t, resp.Cambio.Equal(decimal.NewFromFloat(50.00)))
}

func TestRegistrarVentaFallaEnLineaPosterior(t *testing.T) {
	productoRepo, _, salidaRepo, svc := newVentaFixture()
	p1 := seedProducto(productoRepo, "111", 10)
	p2 := seedProducto(productoRepo, "222", 1)

	_, err := svc.RegistrarVenta(context.Background(), dto.RegistrarVentaRequest{
		UsuarioID: strPtr(uuid.NewString()),
		Total:     decimal.NewFromFloat(50.00),
		Productos: []dto.ItemVentaRequest{
			{ProductoID: p1.ID.String(), Cantidad: 3, PrecioUnitario: decimal.NewFromFloat(10.00), Total: decimal.NewFromFloat(30.00)},
			{ProductoID: p2.ID.String(), Cantidad: 2, PrecioUnitario: decimal.NewFromFloat(10.00), Total: decimal.NewFromFloat(20.00)},
		},
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindStockInsuficiente))

	// The payload names the offending line's product.
	var ae *apierror.Error
	require.ErrorAs(t, err, &ae)
	resumen, ok := ae.Conflicto.(dto.ProductoResumen)
	require.True(t, ok)
	assert.Equal(t, "222", resumen.CodigoBarras)

	// No header is ever written when a line fails.
	assert.Empty(t, salidaRepo.salidas)
	// The untouched line keeps its stock.
	assert.Equal(t, 1, p2.StockActual)
}

func TestRegistrarVentaSinUsuario(t *testing.T) {
	productoRepo, movimientoRepo, salidaRepo, svc := newVentaFixture()
	p := seedProducto(productoRepo, "123", 10)

	_, err := svc.RegistrarVenta(context.Background(), dto.RegistrarVentaRequest{
		Total: decimal.NewFromFloat(10.00),
		Productos: []dto.ItemVentaRequest{
			{ProductoID: p.ID.String(), Cantidad: 1, PrecioUnitario: decimal.NewFromFloat(10.00), Total: decimal.NewFromFloat(10.00)},
		},
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	assert.Equal(t, 10, p.StockActual)
	assert.Empty(t, movimientoRepo.movimientos)
	assert.Empty(t, salidaRepo.salidas)
}

func TestRegistrarVentaSinTotalDeLinea(t *testing.T) {
	productoRepo, movimientoRepo, salidaRepo, svc := newVentaFixture()
	p := seedProducto(productoRepo, "123", 10)

	// El total de línea es obligatorio; nunca se calcula en silencio.
	_, err := svc.RegistrarVenta(context.Background(), dto.RegistrarVentaRequest{
		UsuarioID: strPtr(uuid.NewString()),
		Total:     decimal.NewFromFloat(10.00),
		Productos: []dto.ItemVentaRequest{
			{ProductoID: p.ID.String(), Cantidad: 1, PrecioUnitario: decimal.NewFromFloat(10.00)},
		},
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	assert.Equal(t, 10, p.StockActual)
	assert.Empty(t, movimientoRepo.movimientos)
	assert.Empty(t, salidaRepo.salidas)
}

func TestActualizarSalidaNoReajustaStock(t *testing.T) {
	productoRepo, movimientoRepo, salidaRepo, svc := newVentaFixture()
	p := seedProducto(productoRepo, "123", 10)

	resp, err := svc.RegistrarSalida(context.Background(), dto.RegistrarSalidaRequest{
		ProductoID:     p.ID.String(),
		UsuarioID:      strPtr(uuid.NewString()),
		Cantidad:       4,
		PrecioUnitario: decimal.NewFromFloat(10.00),
	})
	require.NoError(t, err)
	require.Equal(t, 6, p.StockActual)

	id := mustUUID(t, resp.ID)
	actualizado, err := svc.Actualizar(context.Background(), id, dto.ActualizarSalidaRequest{
		Cantidad:       2,
		PrecioUnitario: decimal.NewFromFloat(12.00),
		NombreCajero:   strPtr("Cajera Dos"),
	})
	require.NoError(t, err)

	// El registro cambia, el stock ya movido no. Sin movimientos nuevos.
	assert.Equal(t, 6, p.StockActual)
	assert.Len(t, movimientoRepo.movimientos, 1)
	require.NotNil(t, actualizado.Cantidad)
	assert.Equal(t, 2, *actualizado.Cantidad)
	assert.True(t, actualizado.Total.Equal(decimal.NewFromFloat(24.00)))

	guardada := salidaRepo.salidas[id]
	assert.Equal(t, 2, guardada.Cantidad)
	assert.Equal(t, "Cajera Dos", *guardada.NombreCajero)

	// Omitir el cajero en una edición posterior conserva el guardado.
	_, err = svc.Actualizar(context.Background(), id, dto.ActualizarSalidaRequest{
		Cantidad:       3,
		PrecioUnitario: decimal.NewFromFloat(12.00),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cajera Dos", *salidaRepo.salidas[id].NombreCajero)
}

func TestActualizarVentaConDetallesRechazada(t *testing.T) {
	productoRepo, _, _, svc := newVentaFixture()
	p := seedProducto(productoRepo, "123", 10)

	resp, err := svc.RegistrarVenta(context.Background(), dto.RegistrarVentaRequest{
		UsuarioID: strPtr(uuid.NewString()),
		Total:     decimal.NewFromFloat(10.00),
		Productos: []dto.ItemVentaRequest{
			{ProductoID: p.ID.String(), Cantidad: 1, PrecioUnitario: decimal.NewFromFloat(10.00), Total: decimal.NewFromFloat(10.00)},
		},
	})
	require.NoError(t, err)

	_, err = svc.Actualizar(context.Background(), mustUUID(t, resp.ID), dto.ActualizarSalidaRequest{
		Cantidad:       2,
		PrecioUnitario: decimal.NewFromFloat(10.00),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestListarFiltraPorProducto(t *testing.T) {
	_, _, salidaRepo, svc := newVentaFixture()

	producto := "Yerba"
	_, err := svc.Listar(context.Background(), dto.FiltrarSalidasQuery{Producto: &producto})
	require.NoError(t, err)

	require.NotNil(t, salidaRepo.lastFilter.NombreProducto)
	assert.Equal(t, "Yerba", *salidaRepo.lastFilter.NombreProducto)
}

func TestEliminarVentaRestauraStock(t *testing.T) {
	productoRepo, movimientoRepo, salidaRepo, svc := newVentaFixture()
	p1 := seedProducto(productoRepo, "111", 10)
	p2 := seedProducto(productoRepo, "222", 5)

	resp, err := svc.RegistrarVenta(context.Background(), dto.RegistrarVentaRequest{
		UsuarioID: strPtr(uuid.NewString()),
		Total:     decimal.NewFromFloat(50.00),
		Productos: []dto.ItemVentaRequest{
			{ProductoID: p1.ID.String(), Cantidad: 3, PrecioUnitario: decimal.NewFromFloat(10.00), Total: decimal.NewFromFloat(30.00)},
			{ProductoID: p2.ID.String(), Cantidad: 2, PrecioUnitario: decimal.NewFromFloat(10.00), Total: decimal.NewFromFloat(20.00)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 7, p1.StockActual)

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Eliminar(context.Background(), id))

	assert.Equal(t, 10, p1.StockActual)
	assert.Equal(t, 5, p2.StockActual)
	assert.Empty(t, salidaRepo.salidas)

	// 2 SALIDA + 2 reversal entries.
	require.Len(t, movimientoRepo.movimientos, 4)
	reversa := movimientoRepo.movimientos[2]
	assert.Equal(t, model.MovimientoEntrada, reversa.TipoMovimiento)
	assert.Equal(t, model.OrigenAnulacionVenta, reversa.OrigenMovimiento)
}

func TestEliminarSalidaSingleItemRestauraStock(t *testing.T) {
	productoRepo, _, salidaRepo, svc := newVentaFixture()
	p := seedProducto(productoRepo, "123", 10)

	resp, err := svc.RegistrarSalida(context.Background(), dto.RegistrarSalidaRequest{
		ProductoID:     p.ID.String(),
		UsuarioID:      strPtr(uuid.NewString()),
		Cantidad:       4,
		PrecioUnitario: decimal.NewFromFloat(10.00),
	})
	require.NoError(t, err)
	require.Equal(t, 6, p.StockActual)

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Eliminar(context.Background(), id))

	assert.Equal(t, 10, p.StockActual)
	assert.Empty(t, salidaRepo.salidas)
}

func TestVentasPorCajeroHoy(t *testing.T) {
	productoRepo, _, _, svc := newVentaFixture()
	p := seedProducto(productoRepo, "123", 20)
	cajero := uuid.New()
	cajeroID := cajero.String()
	otro := uuid.NewString()

	for _, uid := range []string{cajeroID, cajeroID, otro} {
		id := uid
		_, err := svc.RegistrarVenta(context.Background(), dto.RegistrarVentaRequest{
			UsuarioID: &id,
			Total:     decimal.NewFromFloat(10.00),
			Productos: []dto.ItemVentaRequest{
				{ProductoID: p.ID.String(), Cantidad: 1, PrecioUnitario: decimal.NewFromFloat(10.00), Total: decimal.NewFromFloat(10.00)},
			},
		})
		require.NoError(t, err)
	}

	ventas, err := svc.VentasPorCajeroHoy(context.Background(), cajero)
	require.NoError(t, err)
	assert.Len(t, ventas, 2)
}
