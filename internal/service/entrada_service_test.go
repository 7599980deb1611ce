package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sowin/internal/apierror"
	"sowin/internal/dto"
	"sowin/internal/model"
)

func newEntradaFixture() (*stubProductoRepo, *stubMovimientoRepo, *stubEntradaRepo, EntradaService) {
	productoRepo := newStubProductoRepo()
	movimientoRepo := newStubMovimientoRepo()
	entradaRepo := newStubEntradaRepo()
	svc := NewEntradaService(entradaRepo, productoRepo, movimientoRepo)
	return productoRepo, movimientoRepo, entradaRepo, svc
}

func TestRegistrarEntradaIncrementaStock(t *testing.T) {
	productoRepo, movimientoRepo, _, svc := newEntradaFixture()
	p := seedProducto(productoRepo, "123", 4)

	resp, err := svc.Registrar(context.Background(), dto.CrearEntradaRequest{
		ProductoID:     p.ID.String(),
		Cantidad:       6,
		PrecioUnitario: decimal.NewFromFloat(5.00),
	})
	require.NoError(t, err)

	assert.Equal(t, 10, p.StockActual)
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(30.00)))

	// La respuesta trae el nombre del producto sin una consulta extra.
	require.NotNil(t, resp.NombreProducto)
	assert.Equal(t, "Producto 123", *resp.NombreProducto)

	require.Len(t, movimientoRepo.movimientos, 1)
	mov := movimientoRepo.movimientos[0]
	assert.Equal(t, model.MovimientoEntrada, mov.TipoMovimiento)
	assert.Equal(t, 6, mov.Cantidad)
	assert.Equal(t, 10, mov.StockResultante)
	assert.Equal(t, model.OrigenCompra, mov.OrigenMovimiento)
}

func TestRegistrarEntradaProductoInexistente(t *testing.T) {
	_, movimientoRepo, entradaRepo, svc := newEntradaFixture()

	_, err := svc.Registrar(context.Background(), dto.CrearEntradaRequest{
		ProductoID:     "00000000-0000-0000-0000-000000000001",
		Cantidad:       6,
		PrecioUnitario: decimal.NewFromFloat(5.00),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
	assert.Empty(t, entradaRepo.entradas)
	assert.Empty(t, movimientoRepo.movimientos)
}

func TestActualizarEntradaNoRecalculaStock(t *testing.T) {
	productoRepo, _, _, svc := newEntradaFixture()
	p := seedProducto(productoRepo, "123", 0)

	resp, err := svc.Registrar(context.Background(), dto.CrearEntradaRequest{
		ProductoID:     p.ID.String(),
		Cantidad:       6,
		PrecioUnitario: decimal.NewFromFloat(5.00),
	})
	require.NoError(t, err)
	require.Equal(t, 6, p.StockActual)

	id := mustUUID(t, resp.ID)
	actualizada, err := svc.Actualizar(context.Background(), id, dto.ActualizarEntradaRequest{
		ProductoID:     p.ID.String(),
		Cantidad:       9,
		PrecioUnitario: decimal.NewFromFloat(4.00),
	})
	require.NoError(t, err)

	// The record changes, the shelf does not.
	assert.Equal(t, 9, actualizada.Cantidad)
	assert.True(t, actualizada.Total.Equal(decimal.NewFromFloat(36.00)))
	assert.Equal(t, 6, p.StockActual)
}

func TestEliminarEntradaNoRestauraStock(t *testing.T) {
	productoRepo, _, entradaRepo, svc := newEntradaFixture()
	p := seedProducto(productoRepo, "123", 0)

	resp, err := svc.Registrar(context.Background(), dto.CrearEntradaRequest{
		ProductoID:     p.ID.String(),
		Cantidad:       6,
		PrecioUnitario: decimal.NewFromFloat(5.00),
	})
	require.NoError(t, err)
	require.Equal(t, 6, p.StockActual)

	require.NoError(t, svc.Eliminar(context.Background(), mustUUID(t, resp.ID)))

	assert.Empty(t, entradaRepo.entradas)
	assert.Equal(t, 6, p.StockActual)
}

func TestPurgarEntradasPorMeses(t *testing.T) {
	productoRepo, _, entradaRepo, svc := newEntradaFixture()
	p := seedProducto(productoRepo, "123", 0)

	vieja := &model.Entrada{
		ProductoID:     p.ID,
		Cantidad:       1,
		PrecioUnitario: decimal.NewFromFloat(5.00),
		Fecha:          time.Now().AddDate(0, -8, 0),
	}
	require.NoError(t, entradaRepo.CreateTx(nil, vieja))
	reciente := &model.Entrada{
		ProductoID:     p.ID,
		Cantidad:       1,
		PrecioUnitario: decimal.NewFromFloat(5.00),
		Fecha:          time.Now().AddDate(0, -1, 0),
	}
	require.NoError(t, entradaRepo.CreateTx(nil, reciente))

	meses := 6
	resp, err := svc.Purgar(context.Background(), dto.PurgarEntradasRequest{MesesConservar: &meses})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Eliminados)
	_, err = entradaRepo.FindByID(context.Background(), vieja.ID)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
	_, err = entradaRepo.FindByID(context.Background(), reciente.ID)
	assert.NoError(t, err)
}

func TestPurgarEntradasPorRango(t *testing.T) {
	productoRepo, _, entradaRepo, svc := newEntradaFixture()
	p := seedProducto(productoRepo, "123", 0)

	dentro := &model.Entrada{
		ProductoID:     p.ID,
		Cantidad:       1,
		PrecioUnitario: decimal.NewFromFloat(5.00),
		Fecha:          time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, entradaRepo.CreateTx(nil, dentro))
	fuera := &model.Entrada{
		ProductoID:     p.ID,
		Cantidad:       1,
		PrecioUnitario: decimal.NewFromFloat(5.00),
		Fecha:          time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, entradaRepo.CreateTx(nil, fuera))

	inicio, fin := "2026-03-01", "2026-03-31"
	resp, err := svc.Purgar(context.Background(), dto.PurgarEntradasRequest{
		FechaInicio: &inicio,
		FechaFin:    &fin,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Eliminados)
	_, err = entradaRepo.FindByID(context.Background(), fuera.ID)
	assert.NoError(t, err)
}

func TestPurgarEntradasSinCriterio(t *testing.T) {
	_, _, _, svc := newEntradaFixture()

	_, err := svc.Purgar(context.Background(), dto.PurgarEntradasRequest{})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestPurgarEntradasRangoInvertido(t *testing.T) {
	_, _, _, svc := newEntradaFixture()

	inicio, fin := "2026-03-31", "2026-03-01"
	_, err := svc.Purgar(context.Background(), dto.PurgarEntradasRequest{
		FechaInicio: &inicio,
		FechaFin:    &fin,
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestEntradaStatsAgrupaPorProducto(t *testing.T) {
	productoRepo, _, _, svc := newEntradaFixture()
	p1 := seedProducto(productoRepo, "111", 0)
	p2 := seedProducto(productoRepo, "222", 0)

	for _, e := range []dto.CrearEntradaRequest{
		{ProductoID: p1.ID.String(), Cantidad: 3, PrecioUnitario: decimal.NewFromFloat(5.00)},
		{ProductoID: p1.ID.String(), Cantidad: 2, PrecioUnitario: decimal.NewFromFloat(5.00)},
		{ProductoID: p2.ID.String(), Cantidad: 4, PrecioUnitario: decimal.NewFromFloat(2.00)},
	} {
		_, err := svc.Registrar(context.Background(), e)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	porProducto := make(map[string]dto.EntradaStatsItem, len(stats))
	for _, st := range stats {
		porProducto[st.ProductoID] = st
	}
	st1 := porProducto[p1.ID.String()]
	assert.Equal(t, int64(2), st1.TotalEntradas)
	assert.Equal(t, int64(5), st1.CantidadTotal)
	assert.True(t, st1.ValorTotal.Equal(decimal.NewFromFloat(25.00)))
}
