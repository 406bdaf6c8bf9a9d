package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstraintClassificationIgnoresNonPostgresErrors(t *testing.T) {
	err := fmt.Errorf("insert result: %w", errors.New("connection reset"))
	require.False(t, isIntegrityViolation(err))
	require.False(t, isUniqueViolation(err))
	require.False(t, isIntegrityViolation(nil))
}
