package api

import (
	"context"

	"github.com/matheus3301/classnotes/internal/docserver"
	"github.com/matheus3301/classnotes/internal/rpc"
	"go.uber.org/zap"
)

// DocumentService implements rpc.DocumentServer over the document engine.
type DocumentService struct {
	engine *docserver.Engine
	logger *zap.Logger
}

var _ rpc.DocumentServer = (*DocumentService)(nil)

// NewDocumentService creates a new document service.
func NewDocumentService(engine *docserver.Engine, logger *zap.Logger) *DocumentService {
	return &DocumentService{engine: engine, logger: logger}
}

func (s *DocumentService) Add(ctx context.Context, in *rpc.AddRequest) (*rpc.AddResponse, error) {
	id, err := s.engine.Add(ctx, in.Collection, in.Fields)
	if err != nil {
		return nil, s.fail(ctx, "add", in.Collection, "", err)
	}
	return &rpc.AddResponse{ID: id}, nil
}

func (s *DocumentService) Set(ctx context.Context, in *rpc.WriteRequest) (*rpc.Empty, error) {
	if err := s.engine.Set(ctx, in.Collection, in.ID, in.Fields); err != nil {
		return nil, s.fail(ctx, "set", in.Collection, in.ID, err)
	}
	return &rpc.Empty{}, nil
}

func (s *DocumentService) Update(ctx context.Context, in *rpc.WriteRequest) (*rpc.Empty, error) {
	if err := s.engine.Update(ctx, in.Collection, in.ID, in.Fields); err != nil {
		return nil, s.fail(ctx, "update", in.Collection, in.ID, err)
	}
	return &rpc.Empty{}, nil
}

func (s *DocumentService) Delete(ctx context.Context, in *rpc.DocRef) (*rpc.Empty, error) {
	if err := s.engine.Delete(ctx, in.Collection, in.ID); err != nil {
		return nil, s.fail(ctx, "delete", in.Collection, in.ID, err)
	}
	return &rpc.Empty{}, nil
}

func (s *DocumentService) Get(ctx context.Context, in *rpc.DocRef) (*rpc.DocumentResponse, error) {
	doc, err := s.engine.Get(ctx, in.Collection, in.ID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.DocumentResponse{Document: *doc}, nil
}

func (s *DocumentService) Query(ctx context.Context, in *rpc.QueryRequest) (*rpc.QueryResponse, error) {
	docs, err := s.engine.Query(ctx, in.Query)
	if err != nil {
		return nil, s.fail(ctx, "query", in.Query.Collection, "", err)
	}
	return &rpc.QueryResponse{Docs: docs}, nil
}

func (s *DocumentService) Watch(in *rpc.QueryRequest, stream rpc.SnapshotSender) error {
	ctx := stream.Context()
	sub, err := s.engine.Watch(ctx, in.Query)
	if err != nil {
		return s.fail(ctx, "watch", in.Query.Collection, "", err)
	}
	defer func() { _ = sub.Close() }()

	s.logger.Debug("watch opened", zap.String("collection", in.Query.Collection))
	for snap := range sub.Snapshots() {
		if err := stream.Send(&snap); err != nil {
			return err
		}
	}
	s.logger.Debug("watch closed", zap.String("collection", in.Query.Collection))
	return rpc.ToStatus(sub.Err())
}

func (s *DocumentService) fail(ctx context.Context, op, collection, id string, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.String("collection", collection), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}
	if claims, ok := ClaimsFromContext(ctx); ok {
		fields = append(fields, zap.String("uid", claims.Subject))
	}
	s.logger.Warn("document operation failed", fields...)
	return rpc.ToStatus(err)
}
