package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"droneFoodDelivery/internal/apperr"
	"droneFoodDelivery/internal/auth"
	"droneFoodDelivery/internal/logger"
	"droneFoodDelivery/internal/testutil"
	"droneFoodDelivery/repository"
)

const secret = "account-secret"

func newService(t *testing.T, name string) (*Service, *repository.Store) {
	t.Helper()
	store := repository.NewStore(testutil.OpenInMemoryDB(t, name), 0)
	return New(store, secret, time.Hour, WithCost(bcrypt.MinCost), WithLogger(logger.Discard())), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, store := newService(t, "account_login")
	ctx := context.Background()

	c, err := svc.Register(ctx, Registration{Name: "Grace", Email: "grace@example.com", Username: " grace ", Password: "hopper42"})
	require.NoError(t, err)
	assert.Equal(t, "grace", c.Username)

	stored, err := store.Repos().Customers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "hopper42", stored.PasswordHash, "password is stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hopper42")))

	sess, err := svc.Login(ctx, "grace", "hopper42")
	require.NoError(t, err)
	assert.Equal(t, c.ID, sess.Customer.ID)

	p, err := svc.Authenticate("Bearer " + sess.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.KindCustomer, p.Kind)
	assert.Equal(t, c.ID, p.CustomerID)

	profile, err := svc.Profile(ctx, p.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", profile.Email)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t, "account_validation")
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{Username: "  ", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Register(ctx, Registration{Username: "bob", Password: "abc"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	c, err := svc.Register(ctx, Registration{Username: "bob", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "bob", c.Name, "name defaults to username")

	_, err = svc.Register(ctx, Registration{Username: "bob", Password: "another1"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestLogin_Failures(t *testing.T) {
	svc, store := newService(t, "account_failures")
	ctx := context.Background()
	_, err := svc.Register(ctx, Registration{Username: "eve", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "eve", "wrong-horse")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Login(ctx, "eve", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	// Customers created without credentials (seeded data) cannot sign in.
	fx := testutil.Seed(t, store.Repos())
	_, err = svc.Login(ctx, fx.Customer.Username, "anything")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Authenticate("Bearer not-a-token")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Profile(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
