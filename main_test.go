package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storerate/storerate/database"
)

func TestCloseDBIsIdempotent(t *testing.T) {
	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "main.db")))

	closeDB()
	assert.Nil(t, database.GetDB())
	assert.NotPanics(t, closeDB)
}
