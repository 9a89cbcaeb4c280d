package docserver

import (
	"context"

	"github.com/matheus3301/classnotes/internal/docstore"
)

// Local serves docstore.Backend and docstore.Auth in-process, with the same
// rule the daemon enforces: document access requires a signed-in user.
type Local struct {
	engine   *Engine
	accounts *Accounts
	state    docstore.AuthState
}

var (
	_ docstore.Backend = (*Local)(nil)
	_ docstore.Auth    = (*Local)(nil)
)

// NewLocal creates an in-process client over engine and accounts.
func NewLocal(engine *Engine, accounts *Accounts) *Local {
	return &Local{engine: engine, accounts: accounts}
}

func (l *Local) signedIn() error {
	if l.state.Current() == nil {
		return docstore.ErrUnauthenticated
	}
	return nil
}

func (l *Local) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	if err := l.signedIn(); err != nil {
		return "", err
	}
	return l.engine.Add(ctx, collection, fields)
}

func (l *Local) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := l.signedIn(); err != nil {
		return err
	}
	return l.engine.Set(ctx, collection, id, fields)
}

func (l *Local) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := l.signedIn(); err != nil {
		return err
	}
	return l.engine.Update(ctx, collection, id, fields)
}

func (l *Local) Delete(ctx context.Context, collection, id string) error {
	if err := l.signedIn(); err != nil {
		return err
	}
	return l.engine.Delete(ctx, collection, id)
}

func (l *Local) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	if err := l.signedIn(); err != nil {
		return nil, err
	}
	return l.engine.Get(ctx, collection, id)
}

func (l *Local) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if err := l.signedIn(); err != nil {
		return nil, err
	}
	return l.engine.Query(ctx, q)
}

func (l *Local) Watch(ctx context.Context, q docstore.Query) (*docstore.Subscription, error) {
	if err := l.signedIn(); err != nil {
		return nil, err
	}
	return l.engine.Watch(ctx, q)
}

func (l *Local) SignIn(ctx context.Context, email, password string) (*docstore.AuthUser, error) {
	sess, err := l.accounts.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	l.state.Set(&sess.User)
	return l.state.Current(), nil
}

func (l *Local) SignUp(ctx context.Context, email, password string) (*docstore.AuthUser, error) {
	sess, err := l.accounts.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	l.state.Set(&sess.User)
	return l.state.Current(), nil
}

func (l *Local) UpdateProfile(ctx context.Context, displayName string) error {
	cur := l.state.Current()
	if cur == nil {
		return docstore.ErrUnauthenticated
	}
	u, err := l.accounts.UpdateProfile(ctx, cur.UID, displayName)
	if err != nil {
		return err
	}
	l.state.Update(u)
	return nil
}

func (l *Local) SignOut(context.Context) error {
	l.state.Set(nil)
	return nil
}

func (l *Local) CurrentUser() *docstore.AuthUser {
	return l.state.Current()
}

func (l *Local) OnAuthStateChanged(fn func(*docstore.AuthUser)) func() {
	return l.state.Listen(fn)
}
