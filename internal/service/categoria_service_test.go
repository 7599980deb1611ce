package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sowin/internal/model"
)

func TestConteoProductosPorCategoria(t *testing.T) {
	categoriaRepo := newStubCategoriaRepo()
	productoRepo := newStubProductoRepo()
	categoriaRepo.productos = productoRepo
	svc := NewCategoriaService(categoriaRepo, productoRepo)

	almacen := categoriaRepo.seed(&model.Categoria{NombreCategoria: "Almacén"})
	categoriaRepo.seed(&model.Categoria{NombreCategoria: "Limpieza"})

	for _, codigo := range []string{"111", "222"} {
		p := seedProducto(productoRepo, codigo, 5)
		p.CategoriaID = almacen.ID
	}

	conteos, err := svc.ConteoProductos(context.Background())
	require.NoError(t, err)
	require.Len(t, conteos, 2)

	porNombre := make(map[string]int64, len(conteos))
	for _, c := range conteos {
		porNombre[c.NombreCategoria] = c.TotalProductos
	}
	assert.Equal(t, int64(2), porNombre["Almacén"])
	// La categoría sin productos aparece con conteo cero.
	assert.Equal(t, int64(0), porNombre["Limpieza"])
}
