// Package rpc is the gRPC contract between classnotesd and its clients.
// Messages are plain Go structs carried by a JSON codec; proto messages
// (the health service) go through protojson.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the content subtype the codec registers under.
const CodecName = "json"

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	return json.Unmarshal(data, v)
}

func (codec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(codec{})
}

// CallOption selects the JSON codec for a call. Clients install it with
// grpc.WithDefaultCallOptions.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}
