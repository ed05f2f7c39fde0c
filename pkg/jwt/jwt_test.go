package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice/pkg/jwt"
)

func newManager(t *testing.T, issuer string, ttl time.Duration) *jwt.Manager {
	t.Helper()
	m, err := jwt.NewManager("secreto-de-pruebas", issuer, ttl)
	require.NoError(t, err)
	return m
}

func TestIssueYVerify(t *testing.T) {
	m := newManager(t, "backoffice", 15*time.Minute)

	tok, exp, err := m.Issue("u-1", "bodeguero")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID())
	assert.Equal(t, "bodeguero", claims.Role)
}

func TestVerify_Vencido(t *testing.T) {
	m := newManager(t, "backoffice", time.Minute)
	past := time.Now().Add(-time.Hour)
	tok, _, err := m.WithClock(func() time.Time { return past }).Issue("u-1", "admin")
	require.NoError(t, err)

	_, err = m.WithClock(time.Now).Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_SecretoOEmisorDistinto(t *testing.T) {
	m := newManager(t, "backoffice", time.Minute)
	tok, _, err := m.Issue("u-1", "admin")
	require.NoError(t, err)

	other, err := jwt.NewManager("otro-secreto", "backoffice", time.Minute)
	require.NoError(t, err)
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)

	_, err = newManager(t, "otro-emisor", time.Minute).Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)

	_, err = m.Verify("no.es.jwt")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
}

func TestNewManager_SecretVacio(t *testing.T) {
	_, err := jwt.NewManager("", "x", time.Minute)
	assert.Error(t, err)
}
