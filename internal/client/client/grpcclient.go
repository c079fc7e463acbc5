package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// expirySkew treats tokens about to expire as already expired.
const expirySkew = 5 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.JournalClient
	logger      logging.Logger

	mu           sync.RWMutex
	userID       string
	accessToken  string
	refreshToken string
	onSession    func(Session)

	refreshMu sync.Mutex
}

func NewGRPCClient(endpointURL string, logger logging.Logger) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, logger: logger.With("module", "grpc_client")}
	if err := c.initGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewJournalClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// tokenUsable reports whether token is present and not about to expire.
// The signature is not checked; only the server can do that.
func tokenUsable(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.After(now.Add(expirySkew))
}

// authContext returns ctx carrying a usable access token, refreshing first
// if needed.
func (s *GRPCClient) authContext(ctx context.Context) (context.Context, error) {
	s.mu.RLock()
	access, refresh := s.accessToken, s.refreshToken
	s.mu.RUnlock()

	if !tokenUsable(access, time.Now()) && refresh != "" {
		if err := s.refresh(ctx, access); err != nil {
			return ctx, err
		}
		s.mu.RLock()
		access = s.accessToken
		s.mu.RUnlock()
	}
	return withAccessToken(ctx, access), nil
}

// refresh rotates the token pair unless another caller already replaced
// stale.
func (s *GRPCClient) refresh(ctx context.Context, stale string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.RLock()
	current, refreshToken := s.accessToken, s.refreshToken
	s.mu.RUnlock()
	if current != stale {
		return nil
	}
	if refreshToken == "" {
		return common.ErrPermissionDenied
	}

	resp, err := s.client.RefreshToken(ctx, rpc.RefreshRequest(refreshToken))
	if err != nil {
		s.logger.Warn(ctx, "token refresh failed", "error", err)
		return mapError(err)
	}
	sess := rpc.SessionFromStruct(resp)
	s.setTokens(sess.UserID, sess.AccessToken, sess.RefreshToken)
	return nil
}

func (s *GRPCClient) setTokens(userID, access, refresh string) {
	s.mu.Lock()
	if userID != "" {
		s.userID = userID
	}
	s.accessToken = access
	s.refreshToken = refresh
	hook := s.onSession
	sess := Session{UserID: s.userID, RefreshToken: s.refreshToken}
	s.mu.Unlock()

	if hook != nil {
		hook(sess)
	}
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if rpc.PublicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	authCtx, err := s.authContext(ctx)
	if err != nil {
		return err
	}

	err = invoker(authCtx, method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	s.mu.RLock()
	stale := s.accessToken
	s.mu.RUnlock()
	if rerr := s.refresh(ctx, stale); rerr != nil {
		return err
	}

	authCtx, _ = s.authContext(ctx)
	return invoker(authCtx, method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	authCtx, err := s.authContext(ctx)
	if err != nil {
		return nil, err
	}
	return streamer(authCtx, desc, cc, method, opts...)
}

// OnSessionChange registers fn to be called whenever the token pair rotates.
func (s *GRPCClient) OnSessionChange(fn func(Session)) {
	s.mu.Lock()
	s.onSession = fn
	s.mu.Unlock()
}

func (s *GRPCClient) Resume(sess Session) {
	s.mu.Lock()
	s.userID = sess.UserID
	s.accessToken = ""
	s.refreshToken = sess.RefreshToken
	s.mu.Unlock()
}

func (s *GRPCClient) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{UserID: s.userID, RefreshToken: s.refreshToken}
}

func (s *GRPCClient) Forget() {
	s.mu.Lock()
	s.userID, s.accessToken, s.refreshToken = "", "", ""
	s.mu.Unlock()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	_, err := s.client.Ping(ctx, &emptypb.Empty{})
	return mapError(err)
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password string) (Session, error) {
	resp, err := s.client.SignUp(ctx, rpc.Credentials{Email: email, Password: password}.Struct())
	if err != nil {
		return Session{}, mapError(err)
	}
	return s.startSession(resp)
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (Session, error) {
	resp, err := s.client.SignIn(ctx, rpc.Credentials{Email: email, Password: password}.Struct())
	if err != nil {
		return Session{}, mapError(err)
	}
	return s.startSession(resp)
}

func (s *GRPCClient) startSession(resp *structpb.Struct) (Session, error) {
	sess := rpc.SessionFromStruct(resp)
	if sess.UserID == "" {
		return Session{}, common.ErrUnknown
	}

	s.mu.Lock()
	s.userID, s.accessToken, s.refreshToken = sess.UserID, sess.AccessToken, sess.RefreshToken
	s.mu.Unlock()

	return Session{UserID: sess.UserID, RefreshToken: sess.RefreshToken}, nil
}

func (s *GRPCClient) CreateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	req, err := rpc.EntryStruct(e)
	if err != nil {
		return journal.Entry{}, err
	}
	resp, err := s.client.CreateEntry(ctx, req)
	if err != nil {
		return journal.Entry{}, mapError(err)
	}
	return rpc.EntryFromStruct(resp), nil
}

func (s *GRPCClient) UpdateEntry(ctx context.Context, e journal.Entry) error {
	req, err := rpc.EntryStruct(e)
	if err != nil {
		return err
	}
	_, err = s.client.UpdateEntry(ctx, req)
	return mapError(err)
}

func (s *GRPCClient) DeleteEntry(ctx context.Context, id string) error {
	_, err := s.client.DeleteEntry(ctx, rpc.IDRequest(id))
	return mapError(err)
}

func (s *GRPCClient) GetEntry(ctx context.Context, id string) (journal.Entry, error) {
	resp, err := s.client.GetEntry(ctx, rpc.IDRequest(id))
	if err != nil {
		return journal.Entry{}, mapError(err)
	}
	return rpc.EntryFromStruct(resp), nil
}

func (s *GRPCClient) ExportEntries(ctx context.Context) (string, error) {
	resp, err := s.client.ExportEntries(ctx, &emptypb.Empty{})
	if err != nil {
		return "", mapError(err)
	}
	return rpc.URL(resp), nil
}

// WatchEntries opens the live snapshot stream of the signed-in user. Every
// snapshot is a full list sorted newest first. The server ending the stream
// is reported as ErrNetworkUnavailable.
func (s *GRPCClient) WatchEntries(ctx context.Context) *stream.Stream[[]journal.Entry] {
	ctx, cancel := context.WithCancel(ctx)
	out := stream.New[[]journal.Entry](cancel, stream.Coalesce())

	go func() {
		rs, err := s.client.WatchEntries(ctx, &emptypb.Empty{})
		if err != nil {
			out.Fail(mapError(err))
			return
		}
		for {
			msg, err := rs.Recv()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if errors.Is(err, io.EOF) {
					err = status.Error(codes.Unavailable, "stream closed by server")
				}
				s.logger.Warn(ctx, "entry stream failed", "error", err)
				out.Fail(mapError(err))
				return
			}
			entries := rpc.EntriesFromSnapshot(msg)
			journal.SortNewestFirst(entries)
			out.Send(entries)
		}
	}()

	return out
}
