package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("noop", nil))
	assert.ErrorIs(t, mapError("get", sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapError("get", fmt.Errorf("scan: %w", sql.ErrNoRows)), ErrNotFound)

	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}
	err := mapError("list estimations", opErr)
	assert.Contains(t, err.Error(), "database connection: list estimations")
	assert.ErrorIs(t, err, opErr)

	err = mapError("ping", driver.ErrBadConn)
	assert.Contains(t, err.Error(), "database connection")

	err = mapError("list estimations", errors.New(`column "nope" does not exist`))
	assert.Contains(t, err.Error(), "database query: list estimations")
}
