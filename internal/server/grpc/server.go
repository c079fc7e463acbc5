// Package grpc exposes the user and entry services over the
// journal.v1.Journal gRPC service.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"
	"google.golang.org/grpc"
)

// Users is the account side of the server.
type Users interface {
	SignUp(ctx context.Context, email, password string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
}

// Entries is the journal side of the server. Every call is scoped to the
// authenticated user.
type Entries interface {
	Create(ctx context.Context, userID string, e journal.Entry) (journal.Entry, error)
	Update(ctx context.Context, userID string, e journal.Entry) error
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, userID, id string) (journal.Entry, error)
	Watch(ctx context.Context, userID string, send func([]journal.Entry) error) error
	Export(ctx context.Context, userID string) (string, error)
}

// shutdownGrace bounds how long a graceful stop waits for open streams.
const shutdownGrace = 5 * time.Second

type GRPCServer struct {
	rpc.UnimplementedJournalServer
	address   string
	users     Users
	entries   Entries
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us Users, es Entries, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		entries:   es,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.accessTokenStreamInterceptor),
	)
	rpc.RegisterJournalServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully. Streams still open after shutdownGrace are cut.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")

		graceful := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(graceful)
		}()
		select {
		case <-graceful:
		case <-time.After(shutdownGrace):
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
