package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sowin/internal/apierror"
	"sowin/internal/config"
	"sowin/internal/dto"
	"sowin/internal/model"
	"sowin/internal/repository"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
	ObtenerUsuario(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := s.repo.FindByNombre(ctx, req.NombreUsuario)
	if err != nil {
		// Same answer for unknown user and bad password.
		return nil, apierror.Validation("credenciales inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.ContrasenaHash), []byte(req.Contrasena)); err != nil {
		return nil, apierror.Validation("credenciales inválidas")
	}

	modulos, err := s.repo.ListModulos(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(u, modulos)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &dto.LoginResponse{
		Token:   token,
		Usuario: *usuarioToResponse(u, modulos),
	}, nil
}

func (s *authService) generateToken(u *model.Usuario, modulos []string) (string, error) {
	rol := ""
	if u.Rol != nil {
		rol = u.Rol.NombreRol
	}
	claims := jwt.MapClaims{
		"user_id": u.ID.String(),
		"usuario": u.NombreUsuario,
		"rol":     rol,
		"modulos": modulos,
		"exp":     time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	rolID, err := uuid.Parse(req.RolID)
	if err != nil {
		return nil, apierror.Validation("id_rol inválido")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Contrasena), 12)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	u := &model.Usuario{
		NombreUsuario:  req.NombreUsuario,
		NombreReal:     req.NombreReal,
		ContrasenaHash: string(hash),
		RolID:          rolID,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return usuarioToResponse(u, nil), nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	usuarios, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UsuarioResponse, 0, len(usuarios))
	for i := range usuarios {
		out = append(out, *usuarioToResponse(&usuarios[i], nil))
	}
	return out, nil
}

func (s *authService) ObtenerUsuario(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	modulos, err := s.repo.ListModulos(ctx, id)
	if err != nil {
		return nil, err
	}
	return usuarioToResponse(u, modulos), nil
}

func usuarioToResponse(u *model.Usuario, modulos []string) *dto.UsuarioResponse {
	resp := &dto.UsuarioResponse{
		ID:            u.ID.String(),
		NombreUsuario: u.NombreUsuario,
		NombreReal:    u.NombreReal,
		Modulos:       modulos,
	}
	if u.Rol != nil {
		resp.Rol = u.Rol.NombreRol
	}
	return resp
}
