package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureDefaultAdminOnlyOnEmptyTable(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:admin_seed_%d?mode=memory&cache=shared", time.Now().UnixNano()),
	}, false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Admin{}))

	created, err := EnsureDefaultAdmin(db, "  ", "")
	require.NoError(t, err)
	assert.True(t, created)

	var admin Admin
	require.NoError(t, db.First(&admin).Error)
	assert.Equal(t, defaultAdminUsername, admin.Username)
	assert.Equal(t, constants.AdminRoleSuper, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(defaultAdminPassword)))

	created, err = EnsureDefaultAdmin(db, "second", "pw")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"}, false)
	assert.ErrorContains(t, err, "unsupported database driver")
}
