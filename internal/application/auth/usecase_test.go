package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/tienda-backoffice/internal/application/apptest"
	"github.com/tu-usuario/tienda-backoffice/internal/application/auth"
	"github.com/tu-usuario/tienda-backoffice/internal/application/dto"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func newAuth(st *apptest.Store) *auth.AuthUseCase {
	return auth.NewAuthUseCase(&apptest.UserRepo{S: st}, auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     "tienda-backoffice-test",
	})
}

func TestRegisterUser_HasheaYPersiste(t *testing.T) {
	st := apptest.NewStore()
	uc := newAuth(st)

	user, err := uc.RegisterUser(dto.RegisterRequest{
		Email:    "ana@tienda.com",
		Password: "secreto-largo",
		Name:     "Ana",
		Role:     entity.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, user.Role)

	stored, err := (&apptest.UserRepo{S: st}).GetByEmail("ana@tienda.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secreto-largo", stored.PasswordHash,
		"la contraseña nunca se persiste en texto plano")
}

func TestRegisterUser_EmailDuplicadoEsConflicto(t *testing.T) {
	st := apptest.NewStore()
	uc := newAuth(st)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@tienda.com", Password: "secreto-largo"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "ana@tienda.com", Password: "otro-secreto"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterUser_RolDesconocidoCaeAOperador(t *testing.T) {
	st := apptest.NewStore()
	uc := newAuth(st)

	user, err := uc.RegisterUser(dto.RegisterRequest{
		Email:    "luis@tienda.com",
		Password: "secreto-largo",
		Role:     "superusuario",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOperador, user.Role)
}

func TestLogin_TokenConRol(t *testing.T) {
	st := apptest.NewStore()
	uc := newAuth(st)
	_, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "ana@tienda.com", Password: "secreto-largo", Role: entity.RoleAdmin,
	})
	require.NoError(t, err)

	resp, err := uc.Login(dto.LoginRequest{Email: "ana@tienda.com", Password: "secreto-largo"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "ana@tienda.com", resp.User.Email)

	userID, role, err := jwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
	assert.Equal(t, entity.RoleAdmin, role, "el rol viaja en el claim para el middleware")
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	st := apptest.NewStore()
	uc := newAuth(st)
	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@tienda.com", Password: "secreto-largo"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "ana@tienda.com", Password: "equivocada"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(dto.LoginRequest{Email: "nadie@tienda.com", Password: "da igual"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized,
		"usuario inexistente y password errada responden igual")
}
