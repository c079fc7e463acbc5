package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// fail logs err when it is not one the client is expected to handle and
// converts it to a status.
func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, op+" failed", "error", err)
	} else {
		s.logger.Debug(ctx, op+" rejected", "error", err)
	}
	return st
}

func (s *GRPCServer) currentUser(ctx context.Context) (string, error) {
	id, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Internal, "missing user id")
	}
	return id, nil
}

func sessionStruct(sess *services.Session) *structpb.Struct {
	return rpc.Session{
		UserID:       sess.UserID,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}.Struct()
}

func (s *GRPCServer) SignUp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	creds := rpc.CredentialsFromStruct(req)

	s.logger.Info(ctx, "Registration request")

	sess, err := s.users.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, s.fail(ctx, "sign up", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", sess.UserID)
	return sessionStruct(sess), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	creds := rpc.CredentialsFromStruct(req)

	sess, err := s.users.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, s.fail(ctx, "sign in", err)
	}
	return sessionStruct(sess), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := req.GetFields()[rpc.FieldRefreshToken].GetStringValue()

	sess, err := s.users.RefreshToken(ctx, token)
	if err != nil {
		return nil, s.fail(ctx, "refresh token", err)
	}
	return sessionStruct(sess), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) CreateEntry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	created, err := s.entries.Create(ctx, userID, rpc.EntryFromStruct(req))
	if err != nil {
		return nil, s.fail(ctx, "create entry", err)
	}

	resp, err := rpc.EntryStruct(created)
	if err != nil {
		return nil, s.fail(ctx, "create entry", err)
	}
	return resp, nil
}

func (s *GRPCServer) UpdateEntry(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.entries.Update(ctx, userID, rpc.EntryFromStruct(req)); err != nil {
		return nil, s.fail(ctx, "update entry", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) DeleteEntry(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.entries.Delete(ctx, userID, rpc.ID(req)); err != nil {
		return nil, s.fail(ctx, "delete entry", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetEntry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	e, err := s.entries.Get(ctx, userID, rpc.ID(req))
	if err != nil {
		return nil, s.fail(ctx, "get entry", err)
	}

	resp, err := rpc.EntryStruct(e)
	if err != nil {
		return nil, s.fail(ctx, "get entry", err)
	}
	return resp, nil
}

func (s *GRPCServer) ExportEntries(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	url, err := s.entries.Export(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "export entries", err)
	}
	return rpc.URLResponse(url), nil
}

// WatchEntries streams the caller's full entry list now and after every
// change until the client goes away.
func (s *GRPCServer) WatchEntries(_ *emptypb.Empty, stream rpc.Journal_WatchEntriesServer) error {
	ctx := stream.Context()
	userID, err := s.currentUser(ctx)
	if err != nil {
		return err
	}

	s.logger.Debug(ctx, "watch started", "user_id", userID)
	defer s.logger.Debug(ctx, "watch ended", "user_id", userID)

	err = s.entries.Watch(ctx, userID, func(list []journal.Entry) error {
		msg, err := rpc.SnapshotStruct(list)
		if err != nil {
			return err
		}
		return stream.Send(msg)
	})
	if ctx.Err() != nil {
		return status.FromContextError(ctx.Err()).Err()
	}
	return s.fail(ctx, "watch entries", err)
}
