package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/Domenick1991/eventbooking/api"
	"github.com/Domenick1991/eventbooking/config"
	bookingsapi "github.com/Domenick1991/eventbooking/internal/api/bookings_service_api"
	eventsapi "github.com/Domenick1991/eventbooking/internal/api/events_service_api"
	"github.com/Domenick1991/eventbooking/internal/auth"
	"github.com/Domenick1991/eventbooking/internal/rpc"
	"github.com/Domenick1991/eventbooking/internal/service/booking"
	"github.com/Domenick1991/eventbooking/internal/service/events"
)

const shutdownTimeout = 5 * time.Second

type Services struct {
	Bookings booking.BookingUseCase
	Events   events.EventUseCase
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	log        *zap.Logger
}

// Run starts the gRPC and HTTP servers and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, svc Services) error {
	if err := cfg.ValidateServing(); err != nil {
		return err
	}
	s := NewServers(cfg, log, svc)

	grpcLis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	httpLis, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		grpcLis.Close()
		return fmt.Errorf("listen HTTP %s: %w", cfg.HTTP.Address, err)
	}
	return s.Serve(ctx, grpcLis, httpLis)
}

func NewServers(cfg *config.Config, log *zap.Logger, svc Services) *Servers {
	tokens := auth.NewManager(cfg.Auth)

	grpcSrv := grpc.NewServer(rpc.ServerOptions(
		rpc.ErrorInterceptor(log.Named("grpc")),
		rpc.AuthInterceptor(tokens, rpc.PublicMethods),
	)...)
	rpc.RegisterBookingsServiceServer(grpcSrv, bookingsapi.NewServer(svc.Bookings))
	rpc.RegisterEventsServiceServer(grpcSrv, eventsapi.NewServer(svc.Events, svc.Bookings))

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           api.NewRouter(log.Named("http"), tokens, svc.Bookings, svc.Events),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
		log:        log,
	}
}

// Serve runs both servers on the given listeners until ctx ends, then shuts them down gracefully.
func (s *Servers) Serve(ctx context.Context, grpcLis, httpLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("starting gRPC server", zap.String("addr", grpcLis.Addr().String()))
		return s.grpcServer.Serve(grpcLis)
	})

	g.Go(func() error {
		s.log.Info("starting HTTP server", zap.String("addr", httpLis.Addr().String()))
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
