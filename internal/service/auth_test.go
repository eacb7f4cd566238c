package service

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/model"
)

type counterRedis struct {
	counts map[string]int64
}

func (c *counterRedis) Get(_ context.Context, key string) *redis.StringCmd {
	n, ok := c.counts[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(strconv.FormatInt(n, 10), nil)
}

func (c *counterRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	c.counts[key]++
	return redis.NewIntResult(c.counts[key], nil)
}

func (c *counterRedis) ExpireNX(context.Context, string, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (c *counterRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(c.counts, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Auth.Login(f.ctx, "lee", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, f.landlord.UserID, res.UserID)
	assert.Equal(t, model.RoleIDLandlord, res.RoleID)

	claims, err := f.tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "lee@example.com", claims.Subject)
	assert.Equal(t, "lee", claims.Username)

	res, err = f.svc.Auth.Login(f.ctx, "LEE@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, f.landlord.UserID, res.UserID)
}

func TestAuthService_LoginFailuresAreOpaque(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "alice", model.RoleIDTenant)

	res, err := f.svc.Auth.Login(f.ctx, "alice", "wrong")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, unknown := f.svc.Auth.Login(f.ctx, "nobody", "wrong")
	assert.ErrorIs(t, unknown, model.ErrUnauthenticated)
	assert.Equal(t, err.Error(), unknown.Error())
}

func TestAuthService_LoginThrottle(t *testing.T) {
	rdb := &counterRedis{counts: map[string]int64{}}
	f := newFixtureWithThrottle(t, auth.NewLoginThrottle(rdb, 2, time.Minute))

	for i := 0; i < 2; i++ {
		_, err := f.svc.Auth.Login(f.ctx, "lee", "wrong-password")
		assert.ErrorIs(t, err, model.ErrUnauthenticated)
	}

	_, err := f.svc.Auth.Login(f.ctx, "lee", "correct-horse")
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	rdb.counts = map[string]int64{}
	_, err = f.svc.Auth.Login(f.ctx, "lee", "correct-horse")
	assert.NoError(t, err)
}

func TestAuthService_Signup(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.Auth.Signup(f.ctx, SignupInput{Username: "Bob", Email: "Bob@Example.com", Password: "long-enough", RoleID: model.RoleIDTenant})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
	require.NotNil(t, user.Role)
	assert.Equal(t, "Tenant", user.Role.Name)
	assert.NotEqual(t, "long-enough", user.HashedPassword)

	_, err = f.svc.Auth.Signup(f.ctx, SignupInput{Username: "BOB", Email: "other@example.com", Password: "long-enough", RoleID: 3})
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = f.svc.Auth.Signup(f.ctx, SignupInput{Username: "carol", Email: "carol@example.com", Password: "long-enough", RoleID: 42})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "1:Admin")

	_, err = f.svc.Auth.Signup(f.ctx, SignupInput{Username: "dave", Email: "dave@example.com", Password: "short", RoleID: 3})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Auth.Signup(f.ctx, SignupInput{Username: "ed", Email: "ed@example.com", Password: "long-enough", RoleID: 3})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Auth.Signup(f.ctx, SignupInput{Username: "frank", Email: "not-an-email", Password: "long-enough", RoleID: 3})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Auth.Signup(f.ctx, SignupInput{Username: "gina", Email: "gina@example.com", Password: strings.Repeat("a", 80), RoleID: 3})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "at most 72 bytes")

	user, err = f.svc.Auth.Signup(f.ctx, SignupInput{Username: "hank", Email: "hank@example.com", Password: strings.Repeat("b", 72), RoleID: 3})
	require.NoError(t, err)
	res, err := f.svc.Auth.Login(f.ctx, "hank", strings.Repeat("b", 72))
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.UserID)
}

func TestUserService_Authorization(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Users.Create(f.ctx, f.landlord, SignupInput{Username: "gina", Email: "gina@example.com", Password: "long-enough", RoleID: 3})
	assert.ErrorIs(t, err, model.ErrForbidden)

	created, err := f.svc.Users.Create(f.ctx, f.admin, SignupInput{Username: "gina", Email: "gina@example.com", Password: "long-enough", RoleID: 3})
	require.NoError(t, err)

	name := "gina2"
	_, err = f.svc.Users.Update(f.ctx, f.landlord, created.ID, UserUpdate{Username: &name})
	assert.ErrorIs(t, err, model.ErrForbidden)

	role := model.RoleIDAdmin
	_, err = f.svc.Users.Update(f.ctx, f.renter, f.renter.UserID, UserUpdate{RoleID: &role})
	assert.ErrorIs(t, err, model.ErrForbidden)

	taken := "lee@example.com"
	_, err = f.svc.Users.Update(f.ctx, f.admin, created.ID, UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, model.ErrConflict)

	tooLong := strings.Repeat("x", 73)
	_, err = f.svc.Users.Update(f.ctx, f.admin, created.ID, UserUpdate{Password: &tooLong})
	assert.ErrorIs(t, err, model.ErrValidation)

	pw := "new-password"
	updated, err := f.svc.Users.Update(f.ctx, f.admin, created.ID, UserUpdate{Username: &name, Password: &pw})
	require.NoError(t, err)
	assert.Equal(t, "gina2", updated.Username)
	_, err = f.svc.Auth.Login(f.ctx, "gina2", "new-password")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.Users.Delete(f.ctx, f.landlord, f.landlord.UserID), model.ErrConflict)
	assert.ErrorIs(t, f.svc.Users.Delete(f.ctx, f.renter, f.renter.UserID), model.ErrConflict)
	assert.NoError(t, f.svc.Users.Delete(f.ctx, f.admin, created.ID))
}

func TestRoleService(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Roles.Create(f.ctx, f.landlord, "Auditor")
	assert.ErrorIs(t, err, model.ErrForbidden)

	role, err := f.svc.Roles.Create(f.ctx, f.admin, "Auditor")
	require.NoError(t, err)
	assert.Equal(t, int64(4), role.ID)

	_, err = f.svc.Roles.Create(f.ctx, f.admin, "Auditor")
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = f.svc.Roles.Update(f.ctx, f.admin, role.ID, "Landlord")
	assert.ErrorIs(t, err, model.ErrConflict)

	assert.ErrorIs(t, f.svc.Roles.Delete(f.ctx, f.admin, model.RoleIDTenant), model.ErrConflict)
	assert.NoError(t, f.svc.Roles.Delete(f.ctx, f.admin, role.ID))

	roles, err := f.svc.Roles.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}
