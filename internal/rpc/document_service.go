package rpc

import (
	"context"

	"github.com/matheus3301/classnotes/internal/docstore"
	"google.golang.org/grpc"
)

const DocumentServiceName = "classnotes.v1.DocumentService"

// DocumentServer is implemented by the daemon.
type DocumentServer interface {
	Add(context.Context, *AddRequest) (*AddResponse, error)
	Set(context.Context, *WriteRequest) (*Empty, error)
	Update(context.Context, *WriteRequest) (*Empty, error)
	Delete(context.Context, *DocRef) (*Empty, error)
	Get(context.Context, *DocRef) (*DocumentResponse, error)
	Query(context.Context, *QueryRequest) (*QueryResponse, error)
	Watch(*QueryRequest, SnapshotSender) error
}

// SnapshotSender is the server side of a Watch stream.
type SnapshotSender interface {
	Send(*docstore.Snapshot) error
	Context() context.Context
}

// SnapshotReceiver is the client side of a Watch stream.
type SnapshotReceiver interface {
	Recv() (*docstore.Snapshot, error)
	grpc.ClientStream
}

// RegisterDocumentServer attaches srv to s.
func RegisterDocumentServer(s grpc.ServiceRegistrar, srv DocumentServer) {
	s.RegisterService(&documentServiceDesc, srv)
}

var documentServiceDesc = grpc.ServiceDesc{
	ServiceName: DocumentServiceName,
	HandlerType: (*DocumentServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Add", Handler: unary(DocumentServiceName, "Add", DocumentServer.Add)},
		{MethodName: "Set", Handler: unary(DocumentServiceName, "Set", DocumentServer.Set)},
		{MethodName: "Update", Handler: unary(DocumentServiceName, "Update", DocumentServer.Update)},
		{MethodName: "Delete", Handler: unary(DocumentServiceName, "Delete", DocumentServer.Delete)},
		{MethodName: "Get", Handler: unary(DocumentServiceName, "Get", DocumentServer.Get)},
		{MethodName: "Query", Handler: unary(DocumentServiceName, "Query", DocumentServer.Query)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
	},
	Metadata: "classnotes/v1/document",
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(QueryRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DocumentServer).Watch(in, &snapshotSender{stream})
}

type snapshotSender struct {
	grpc.ServerStream
}

func (s *snapshotSender) Send(snap *docstore.Snapshot) error {
	return s.ServerStream.SendMsg(snap)
}

// DocumentClient calls DocumentService.
type DocumentClient struct {
	cc grpc.ClientConnInterface
}

func NewDocumentClient(cc grpc.ClientConnInterface) *DocumentClient {
	return &DocumentClient{cc: cc}
}

func (c *DocumentClient) Add(ctx context.Context, in *AddRequest, opts ...grpc.CallOption) (*AddResponse, error) {
	return invoke[AddResponse](ctx, c.cc, DocumentServiceName, "Add", in, opts)
}

func (c *DocumentClient) Set(ctx context.Context, in *WriteRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, DocumentServiceName, "Set", in, opts)
}

func (c *DocumentClient) Update(ctx context.Context, in *WriteRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, DocumentServiceName, "Update", in, opts)
}

func (c *DocumentClient) Delete(ctx context.Context, in *DocRef, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, DocumentServiceName, "Delete", in, opts)
}

func (c *DocumentClient) Get(ctx context.Context, in *DocRef, opts ...grpc.CallOption) (*DocumentResponse, error) {
	return invoke[DocumentResponse](ctx, c.cc, DocumentServiceName, "Get", in, opts)
}

func (c *DocumentClient) Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error) {
	return invoke[QueryResponse](ctx, c.cc, DocumentServiceName, "Query", in, opts)
}

// Watch opens the snapshot stream for in.Query.
func (c *DocumentClient) Watch(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (SnapshotReceiver, error) {
	stream, err := c.cc.NewStream(ctx, &documentServiceDesc.Streams[0], fullMethod(DocumentServiceName, "Watch"), opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &snapshotReceiver{stream}, nil
}

type snapshotReceiver struct {
	grpc.ClientStream
}

func (r *snapshotReceiver) Recv() (*docstore.Snapshot, error) {
	snap := new(docstore.Snapshot)
	if err := r.ClientStream.RecvMsg(snap); err != nil {
		return nil, err
	}
	return snap, nil
}
