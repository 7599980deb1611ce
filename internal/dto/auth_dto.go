package dto

type LoginRequest struct {
	NombreUsuario string `json:"nombre_usuario" validate:"required"`
	Contrasena    string `json:"contrasena"     validate:"required"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Usuario UsuarioResponse `json:"usuario"`
}

type CrearUsuarioRequest struct {
	NombreUsuario string  `json:"nombre_usuario" validate:"required,min=3,max=60"`
	Contrasena    string  `json:"contrasena"     validate:"required,min=8"`
	RolID         string  `json:"id_rol"         validate:"required,uuid"`
	NombreReal    *string `json:"nombre_real"`
}

type UsuarioResponse struct {
	ID            string   `json:"id_usuario"`
	NombreUsuario string   `json:"nombre_usuario"`
	NombreReal    *string  `json:"nombre_real"`
	Rol           string   `json:"rol"`
	Modulos       []string `json:"modulos,omitempty"`
}
