// Package client implements docstore.Backend and docstore.Auth against a
// running classnotesd.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/matheus3301/classnotes/internal/docstore"
	"github.com/matheus3301/classnotes/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Client wraps the gRPC connection to the daemon and tracks the signed-in
// account. Its token is attached to every call.
type Client struct {
	target string
	conn   *grpc.ClientConn
	auth   *rpc.AuthClient
	docs   *rpc.DocumentClient
	health healthpb.HealthClient

	state docstore.AuthState
	mu    sync.RWMutex
	token string
}

var (
	_ docstore.Backend = (*Client)(nil)
	_ docstore.Auth    = (*Client)(nil)
)

// New dials the daemon. target is a gRPC target such as
// "unix:///home/me/.classnotes/sessions/main/daemon.sock" or "host:port".
func New(target string) (*Client, error) {
	c := &Client{target: target}
	conn, err := grpc.NewClient(
		target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(tokenCredentials{c}),
		grpc.WithDefaultCallOptions(rpc.CallOption()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	c.conn = conn
	c.auth = rpc.NewAuthClient(conn)
	c.docs = rpc.NewDocumentClient(conn)
	c.health = healthpb.NewHealthClient(conn)
	return c, nil
}

// Target returns the dialed gRPC target.
func (c *Client) Target() string {
	return c.target
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping checks that the daemon is up and serving.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("daemon not serving: %s", resp.GetStatus())
	}
	return nil
}

// Token returns the current ID token, empty when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Resume signs in with a token saved by an earlier process. An expired or
// unknown token leaves the client signed out and returns the error.
func (c *Client) Resume(ctx context.Context, token string) (*docstore.AuthUser, error) {
	c.setToken(token)
	resp, err := c.auth.Me(ctx, &rpc.Empty{})
	if err != nil {
		c.setToken("")
		c.state.Set(nil)
		return nil, rpc.FromStatus(err)
	}
	c.state.Set(&resp.User)
	return c.state.Current(), nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*docstore.AuthUser, error) {
	resp, err := c.auth.SignIn(ctx, &rpc.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, rpc.FromStatus(err)
	}
	return c.signedIn(resp), nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*docstore.AuthUser, error) {
	resp, err := c.auth.SignUp(ctx, &rpc.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, rpc.FromStatus(err)
	}
	return c.signedIn(resp), nil
}

func (c *Client) signedIn(resp *rpc.AuthResponse) *docstore.AuthUser {
	c.setToken(resp.Token)
	c.state.Set(&resp.User)
	return c.state.Current()
}

func (c *Client) UpdateProfile(ctx context.Context, displayName string) error {
	if c.Token() == "" {
		return docstore.ErrUnauthenticated
	}
	resp, err := c.auth.UpdateProfile(ctx, &rpc.UpdateProfileRequest{DisplayName: displayName})
	if err != nil {
		return rpc.FromStatus(err)
	}
	c.state.Update(&resp.User)
	return nil
}

// SignOut forgets the token. Tokens are stateless, so no call is made.
func (c *Client) SignOut(context.Context) error {
	c.setToken("")
	c.state.Set(nil)
	return nil
}

func (c *Client) CurrentUser() *docstore.AuthUser {
	return c.state.Current()
}

func (c *Client) OnAuthStateChanged(fn func(*docstore.AuthUser)) func() {
	return c.state.Listen(fn)
}

func (c *Client) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	resp, err := c.docs.Add(ctx, &rpc.AddRequest{Collection: collection, Fields: fields})
	if err != nil {
		return "", rpc.FromStatus(err)
	}
	return resp.ID, nil
}

func (c *Client) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	_, err := c.docs.Set(ctx, &rpc.WriteRequest{Collection: collection, ID: id, Fields: fields})
	return rpc.FromStatus(err)
}

func (c *Client) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	_, err := c.docs.Update(ctx, &rpc.WriteRequest{Collection: collection, ID: id, Fields: fields})
	return rpc.FromStatus(err)
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	_, err := c.docs.Delete(ctx, &rpc.DocRef{Collection: collection, ID: id})
	return rpc.FromStatus(err)
}

func (c *Client) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	resp, err := c.docs.Get(ctx, &rpc.DocRef{Collection: collection, ID: id})
	if err != nil {
		return nil, rpc.FromStatus(err)
	}
	return &resp.Document, nil
}

func (c *Client) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	resp, err := c.docs.Query(ctx, &rpc.QueryRequest{Query: q})
	if err != nil {
		return nil, rpc.FromStatus(err)
	}
	return resp.Docs, nil
}

// Watch opens a snapshot stream. The first snapshot is awaited so that
// rejected queries and missing credentials fail here rather than later.
func (c *Client) Watch(ctx context.Context, q docstore.Query) (*docstore.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := c.docs.Watch(ctx, &rpc.QueryRequest{Query: q})
	if err != nil {
		cancel()
		return nil, rpc.FromStatus(err)
	}
	first, err := stream.Recv()
	if err != nil {
		cancel()
		return nil, rpc.FromStatus(err)
	}

	sub := docstore.NewSubscription(cancel)
	sub.Deliver(*first)
	go func() {
		for {
			snap, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					_ = sub.Close()
				} else {
					sub.Fail(rpc.FromStatus(err))
				}
				return
			}
			sub.Deliver(*snap)
		}
	}()
	return sub, nil
}

type tokenCredentials struct {
	c *Client
}

func (t tokenCredentials) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	token := t.c.Token()
	if token == "" {
		return nil, nil
	}
	return map[string]string{"authorization": "Bearer " + token}, nil
}

func (tokenCredentials) RequireTransportSecurity() bool { return false }
