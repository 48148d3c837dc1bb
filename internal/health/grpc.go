package health

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Serving names the gRPC health services kept in sync with the checker.
// The empty name is the overall server status.
var Serving = []string{"", "developer.v1.Workflow"}

// Sync sets the serving status of every name in Serving from one checker run.
func Sync(ctx context.Context, checker *Checker, server *health.Server) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !checker.Run(ctx).Healthy() {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	for _, name := range Serving {
		server.SetServingStatus(name, status)
	}
}

// Watch re-syncs the gRPC health server every interval until ctx is done.
func Watch(ctx context.Context, checker *Checker, server *health.Server, interval time.Duration) {
	Sync(ctx, checker, server)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			Sync(ctx, checker, server)
		}
	}
}
