package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/wealthflow-widgets/internal/adapter/api"
)

// Server implements the AllocationService gRPC server
// Messages are google.protobuf.Struct values holding the JSON payloads of the api package
type Server struct {
	API *api.Service
}

// NewServer creates a new gRPC server instance
func NewServer(apiService *api.Service) *Server {
	return &Server{API: apiService}
}

// SetAllocation handles the SetAllocation RPC
func (s *Server) SetAllocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input api.SetAllocationRequest
	if err := decode(req, &input); err != nil {
		return nil, err
	}

	resp, err := s.API.SetAllocation(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return encode(resp)
}

// ToggleLock handles the ToggleLock RPC
func (s *Server) ToggleLock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input api.BucketRequest
	if err := decode(req, &input); err != nil {
		return nil, err
	}

	resp, err := s.API.ToggleLock(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return encode(resp)
}

// ToggleInstrument handles the ToggleInstrument RPC
func (s *Server) ToggleInstrument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input api.BucketRequest
	if err := decode(req, &input); err != nil {
		return nil, err
	}

	resp, err := s.API.ToggleInstrument(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return encode(resp)
}

// Equalize handles the Equalize RPC
func (s *Server) Equalize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input api.EqualizeRequest
	if err := decode(req, &input); err != nil {
		return nil, err
	}

	resp, err := s.API.Equalize(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return encode(resp)
}

// SplitAmount handles the SplitAmount RPC
func (s *Server) SplitAmount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input api.SplitRequest
	if err := decode(req, &input); err != nil {
		return nil, err
	}

	resp, err := s.API.SplitAmount(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return encode(resp)
}

// Simulate handles the Simulate RPC
func (s *Server) Simulate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input api.SimulateRequest
	if err := decode(req, &input); err != nil {
		return nil, err
	}

	resp, err := s.API.Simulate(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return encode(resp)
}

// ListInstruments handles the ListInstruments RPC
func (s *Server) ListInstruments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input api.ListInstrumentsRequest
	if err := decode(req, &input); err != nil {
		return nil, err
	}

	resp, err := s.API.ListInstruments(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return encode(resp)
}

// decode converts a Struct request into its api type
// A nil request decodes as an empty object
func decode(req *structpb.Struct, v any) error {
	if req == nil {
		return nil
	}

	raw, err := protojson.Marshal(req)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request format: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request format: %v", err)
	}
	return nil
}

// encode converts an api response into a Struct
func encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}

	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// NewRequest builds a Struct request from any JSON-encodable value
// Clients use it to call the service without generated stubs
func NewRequest(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return out, nil
}

// DecodeResponse converts a Struct response into v
func DecodeResponse(resp *structpb.Struct, v any) error {
	raw, err := protojson.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return json.Unmarshal(raw, v)
}

// mapError maps domain errors to gRPC status codes
func mapError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()

	switch api.Classify(err) {
	case api.KindConflict:
		return status.Errorf(codes.FailedPrecondition, "%s", errorMsg)
	case api.KindInvalid:
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	case api.KindNotFound:
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
