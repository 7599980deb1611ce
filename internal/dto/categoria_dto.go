package dto

type CrearCategoriaRequest struct {
	NombreCategoria string  `json:"nombre_categoria" validate:"required,min=2,max=80"`
	Descripcion     *string `json:"descripcion"`
}

type ActualizarCategoriaRequest struct {
	NombreCategoria string  `json:"nombre_categoria" validate:"required,min=2,max=80"`
	Descripcion     *string `json:"descripcion"`
}

// CategoriaConteoItem is one row of the per-category product count report.
type CategoriaConteoItem struct {
	ID              string `json:"id_categoria"`
	NombreCategoria string `json:"nombre_categoria"`
	TotalProductos  int64  `json:"total_productos"`
}

type CategoriaResponse struct {
	ID              string  `json:"id_categoria"`
	NombreCategoria string  `json:"nombre_categoria"`
	Descripcion     *string `json:"descripcion"`
	TotalProductos  *int64  `json:"total_productos,omitempty"`
}
