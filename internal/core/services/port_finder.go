package services

import (
	"fmt"
	"net"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// FindAvailablePort returns the first port in [startPort, endPort] that can
// be bound on the loopback interface.
func FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			continue
		}
		_ = listener.Close()
		return port, nil
	}
	return 0, fmt.Errorf("%w: no available port in range %d-%d", domain.ErrConfiguration, startPort, endPort)
}
