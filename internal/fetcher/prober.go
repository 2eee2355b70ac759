package fetcher

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
)

// TCPProber checks reachability by opening a TCP connection to host:port
type TCPProber struct {
	logger  *zap.Logger
	address string
	timeout time.Duration
	dialer  net.Dialer
}

// NewTCPProber creates a prober for the given host:port
func NewTCPProber(logger *zap.Logger, address string, timeout time.Duration) *TCPProber {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &TCPProber{
		logger:  logger,
		address: address,
		timeout: timeout,
	}
}

// Reachable reports whether the probe target accepted a connection
func (p *TCPProber) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		p.logger.Debug("Connectivity probe failed",
			zap.String("address", p.address),
			zap.Error(err))
		return false
	}
	_ = conn.Close()
	return true
}
