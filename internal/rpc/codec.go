// Package rpc holds the wire contract of the booking gRPC services: message types, service
// descriptors, a JSON codec, clients and interceptors.
package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

// Codec carries messages as JSON documents inside gRPC frames.
type Codec struct{}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal %T: %w", v, err)
	}
	return data, nil
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpc: unmarshal %T: %w", v, err)
	}
	return nil
}

func (Codec) Name() string {
	return codecName
}

var _ encoding.Codec = Codec{}
