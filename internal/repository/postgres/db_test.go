package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driano7/Xoco-POS-sub003/internal/config"
)

func TestNewDBDoesNotDialAtStartup(t *testing.T) {
	db, err := NewDB(config.DatabaseConfig{
		Host:    "10.255.255.1",
		Port:    5432,
		User:    "till",
		Name:    "xoco",
		SSLMode: "disable",
	})
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.NoError(t, db.Close())
}
