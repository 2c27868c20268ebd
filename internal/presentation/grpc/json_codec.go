package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// The JSON codec serves clients that call with content-subtype "json" while
// the health and reflection services keep the default proto codec.
func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}
