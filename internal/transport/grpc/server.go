package grpcx

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check service name reported next to the overall "" status.
const ServiceName = "quickclinic.realtime.v1.Realtime"

type Server struct {
	GRPC   *grpc.Server
	health *health.Server
}

func NewServer() *Server {
	g := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(10*time.Second)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(g, hs)

	s := &Server{GRPC: g, health: hs}
	s.SetServing(false)
	return s
}

func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// WatchReadiness runs check every interval and mirrors the result into the health status
// until ctx is done.
func (s *Server) WatchReadiness(ctx context.Context, every time.Duration, check func(context.Context) error) {
	if every <= 0 {
		every = 10 * time.Second
	}
	probe := func() {
		cctx, cancel := context.WithTimeout(ctx, every)
		defer cancel()
		s.SetServing(check(cctx) == nil)
	}

	probe()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

// Stop marks the service as not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.GRPC.GracefulStop()
}
