package client

import (
	"context"
	"errors"
	"time"

	"github.com/matheus3301/classnotes/internal/docstore"
	"github.com/matheus3301/classnotes/internal/session"
)

// Connect dials target and resumes the credentials saved for the session,
// if any. Stale credentials are dropped from the state file.
func Connect(ctx context.Context, sessionName, target string) (*Client, error) {
	c, err := New(target)
	if err != nil {
		return nil, err
	}
	st, err := session.LoadState(sessionName)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if st.Token == "" {
		return c, nil
	}
	if _, err := c.Resume(ctx, st.Token); err != nil {
		if !errors.Is(err, docstore.ErrUnauthenticated) {
			_ = c.Close()
			return nil, err
		}
		if err := ForgetCredentials(sessionName); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

// SaveCredentials stores the client's token and user in the session state.
func SaveCredentials(sessionName string, c *Client) error {
	u := c.CurrentUser()
	token := c.Token()
	return session.UpdateState(sessionName, func(st *session.State) {
		st.Token = token
		st.UID, st.Email, st.DisplayName = "", "", ""
		if u != nil {
			st.UID = u.UID
			st.Email = u.Email
			st.DisplayName = u.DisplayName
		}
	})
}

// ForgetCredentials clears the saved token, keeping the REST login flag.
func ForgetCredentials(sessionName string) error {
	return session.UpdateState(sessionName, func(st *session.State) {
		st.Token, st.UID, st.Email, st.DisplayName = "", "", "", ""
	})
}

// Probe reports whether a daemon answers health checks at target.
func Probe(target string) bool {
	c, err := New(target)
	if err != nil {
		return false
	}
	defer func() { _ = c.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Ping(ctx) == nil
}

// WaitReady polls Probe until it succeeds or timeout elapses.
func WaitReady(target string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if Probe(target) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
