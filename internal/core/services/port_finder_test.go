package services

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

func TestFindAvailablePort_SkipsBoundPort(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	_, portStr, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	busy, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	_, err = FindAvailablePort(busy, busy)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), portStr)
}

func TestFindAvailablePort_ReturnsFreePort(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, portStr, _ := net.SplitHostPort(listener.Addr().String())
	port, _ := strconv.Atoi(portStr)
	require.NoError(t, listener.Close())

	got, err := FindAvailablePort(port, port)
	require.NoError(t, err)
	assert.Equal(t, port, got)
}
