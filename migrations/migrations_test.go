package migrations_test

import (
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/agreement-ledger-go/migrations"
)

func Test_Source_ListsMigrationsInOrder(t *testing.T) {
	// arrange
	src, err := migrations.Source()
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	// act
	first, err := src.First()
	require.NoError(t, err)
	second, err := src.Next(first)
	require.NoError(t, err)
	_, err = src.Next(second)

	// assert
	assert.Equal(t, uint(1), first)
	assert.Equal(t, uint(2), second)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func Test_Source_InitialSchemaCarriesTheLedgerConstraints(t *testing.T) {
	// arrange
	src, err := migrations.Source()
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	// act
	reader, identifier, err := src.ReadUp(1)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)

	// assert
	assert.Equal(t, "initial_schema", identifier)
	for _, constraint := range []string{
		"CHECK (balance >= 0)",
		"CHECK (price > 0)",
		"CHECK (type IN ('client', 'contractor'))",
		"CHECK (status IN ('new', 'in_progress', 'terminated'))",
	} {
		assert.Contains(t, string(content), constraint)
	}
}

func Test_Source_EveryMigrationHasADownScript(t *testing.T) {
	src, err := migrations.Source()
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	for _, version := range []uint{1, 2} {
		reader, _, readErr := src.ReadDown(version)
		require.NoError(t, readErr)
		_ = reader.Close()
	}
}
