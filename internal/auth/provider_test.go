package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/donkihote1489/site-cost-manager/internal/domain/entity"
)

func newTestProvider(maxAttempts int) *Provider {
	return NewProvider([]User{
		{Username: "site1", Password: "secret", Department: entity.DeptSite},
		{Username: "admin", Password: "adminpw", Department: entity.RoleAdmin},
	}, maxAttempts, zap.NewNop())
}

func TestLogin_Succeeds(t *testing.T) {
	p := newTestProvider(5)

	session, err := p.Login("site1", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "site1", session.Username)
	assert.Equal(t, entity.DeptSite, session.Department)

	dept, ok := p.CurrentDepartment(session.Token)
	require.True(t, ok)
	assert.Equal(t, entity.DeptSite, dept)
}

func TestLogin_WrongPassword(t *testing.T) {
	p := newTestProvider(5)

	_, err := p.Login("site1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Login("nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LockoutAfterMaxAttempts(t *testing.T) {
	p := newTestProvider(3)

	for i := 0; i < 3; i++ {
		_, err := p.Login("site1", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Even the correct password is refused once the limit is hit.
	_, err := p.Login("site1", "secret")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// Other accounts keep their own counters.
	_, err = p.Login("admin", "adminpw")
	assert.NoError(t, err)
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	p := newTestProvider(3)

	_, err := p.Login("site1", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.Login("site1", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Login("site1", "secret")
	require.NoError(t, err)

	// The slate is clean again; two fresh failures do not lock.
	_, err = p.Login("site1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.Login("site1", "secret")
	assert.NoError(t, err)
}

func TestLogout_DiscardsSession(t *testing.T) {
	p := newTestProvider(5)

	session, err := p.Login("site1", "secret")
	require.NoError(t, err)

	p.Logout(session.Token)

	_, ok := p.CurrentDepartment(session.Token)
	assert.False(t, ok)

	p.Logout("no-such-token")
}

func TestCurrentDepartment_UnknownToken(t *testing.T) {
	p := newTestProvider(5)

	_, ok := p.CurrentDepartment("bogus")
	assert.False(t, ok)
}
