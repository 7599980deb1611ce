package dto

type CrearProveedorRequest struct {
	NombreProveedor string  `json:"nombre_proveedor" validate:"required,min=2,max=120"`
	NIT             *string `json:"nit"`
	Telefono        *string `json:"telefono"`
	Email           *string `json:"email"    validate:"omitempty,email"`
	Direccion       *string `json:"direccion"`
	Ciudad          *string `json:"ciudad"`
	Pais            *string `json:"pais"`
}

type ActualizarProveedorRequest struct {
	NombreProveedor string  `json:"nombre_proveedor" validate:"required,min=2,max=120"`
	NIT             *string `json:"nit"`
	Telefono        *string `json:"telefono"`
	Email           *string `json:"email"    validate:"omitempty,email"`
	Direccion       *string `json:"direccion"`
	Ciudad          *string `json:"ciudad"`
	Pais            *string `json:"pais"`
	Activo          *bool   `json:"activo"`
}

type ProveedorResponse struct {
	ID              string  `json:"id_proveedor"`
	NombreProveedor string  `json:"nombre_proveedor"`
	NIT             *string `json:"nit"`
	Telefono        *string `json:"telefono"`
	Email           *string `json:"email"`
	Direccion       *string `json:"direccion"`
	Ciudad          *string `json:"ciudad"`
	Pais            *string `json:"pais"`
	Activo          bool    `json:"activo"`
	TotalProductos  *int64  `json:"total_productos,omitempty"`
}
