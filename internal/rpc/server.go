// Package rpc exposes the engine over gRPC as service advisor.v1.Engine.
//
// There is no .proto file: every method takes and returns a
// google.protobuf.Struct, so any gRPC client can call it with plain JSON-like
// payloads. Inquiries are addressed either by "inquiry_id" or by share
// "code".
package rpc

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/shakespeare-advisor/advisor-engine/internal/codes"
	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "advisor.v1.Engine"

// Engine is the subset of *scoring.Engine the service calls.
type Engine interface {
	RecordAnswer(ctx context.Context, inquiryID, questionID int64, raw string) error
	Advance(ctx context.Context, inquiryID, questionID int64) error
	Retreat(ctx context.Context, inquiryID, questionID int64) error
	IsPageVisible(ctx context.Context, inquiryID, pageID int64) (bool, error)
	TechnologyScore(ctx context.Context, inquiryID, technologyID int64) (scoring.Verdict, error)
}

var _ Engine = (*scoring.Engine)(nil)

// EngineServer is the service contract registered with grpc.Server.
type EngineServer interface {
	RecordAnswer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Advance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Retreat(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IsPageVisible(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TechnologyScore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EncodeID(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DecodeCode(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements EngineServer on top of the scoring engine.
type Server struct {
	engine Engine
	codes  *codes.Encoder
	logger *slog.Logger
}

var _ EngineServer = (*Server)(nil)

// NewServer creates the service implementation.
func NewServer(engine Engine, encoder *codes.Encoder, logger *slog.Logger) *Server {
	return &Server{engine: engine, codes: encoder, logger: logger}
}

// NewGRPCServer returns a grpc.Server with the service registered and the
// request-id and logging interceptors installed.
func NewGRPCServer(s *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(requestIDInterceptor, s.loggingInterceptor),
	}, opts...)
	g := grpc.NewServer(opts...)
	Register(g, s)
	return g
}

// Register adds the service to g.
func Register(g grpc.ServiceRegistrar, srv EngineServer) {
	g.RegisterService(&serviceDesc, srv)
}

// ─── SERVICE DESCRIPTOR ───────────────────────────────────────────────────────

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RecordAnswer", Handler: unary("RecordAnswer", EngineServer.RecordAnswer)},
		{MethodName: "Advance", Handler: unary("Advance", EngineServer.Advance)},
		{MethodName: "Retreat", Handler: unary("Retreat", EngineServer.Retreat)},
		{MethodName: "IsPageVisible", Handler: unary("IsPageVisible", EngineServer.IsPageVisible)},
		{MethodName: "TechnologyScore", Handler: unary("TechnologyScore", EngineServer.TechnologyScore)},
		{MethodName: "EncodeID", Handler: unary("EncodeID", EngineServer.EncodeID)},
		{MethodName: "DecodeCode", Handler: unary("DecodeCode", EngineServer.DecodeCode)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "advisor/v1/engine.proto",
}

type unaryMethod func(EngineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unary adapts a Struct-in, Struct-out method to grpc.MethodHandler, the same
// shape protoc-gen-go-grpc emits for each method.
func unary(name string, call unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EngineServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EngineServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ─── METHODS ──────────────────────────────────────────────────────────────────

// RecordAnswer takes {inquiry_id|code, question_id, answer}.
func (s *Server) RecordAnswer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	inq, err := s.inquiry(in)
	if err != nil {
		return nil, err
	}
	qid, err := intField(in, "question_id")
	if err != nil {
		return nil, err
	}
	answer, err := stringField(in, "answer")
	if err != nil {
		return nil, err
	}
	if err := s.engine.RecordAnswer(ctx, inq, qid, answer); err != nil {
		return nil, s.statusErr(ctx, err)
	}
	return &structpb.Struct{}, nil
}

// Advance takes {inquiry_id|code, question_id}.
func (s *Server) Advance(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	inq, qid, err := s.inquiryAndQuestion(in)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Advance(ctx, inq, qid); err != nil {
		return nil, s.statusErr(ctx, err)
	}
	return &structpb.Struct{}, nil
}

// Retreat takes {inquiry_id|code, question_id}.
func (s *Server) Retreat(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	inq, qid, err := s.inquiryAndQuestion(in)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Retreat(ctx, inq, qid); err != nil {
		return nil, s.statusErr(ctx, err)
	}
	return &structpb.Struct{}, nil
}

// IsPageVisible takes {inquiry_id|code, page_id} and returns {visible}.
func (s *Server) IsPageVisible(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	inq, err := s.inquiry(in)
	if err != nil {
		return nil, err
	}
	pid, err := intField(in, "page_id")
	if err != nil {
		return nil, err
	}
	visible, err := s.engine.IsPageVisible(ctx, inq, pid)
	if err != nil {
		return nil, s.statusErr(ctx, err)
	}
	return newStruct(map[string]any{"page_id": pid, "visible": visible})
}

// TechnologyScore takes {inquiry_id|code, technology_id} and returns {verdict}.
func (s *Server) TechnologyScore(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	inq, err := s.inquiry(in)
	if err != nil {
		return nil, err
	}
	tid, err := intField(in, "technology_id")
	if err != nil {
		return nil, err
	}
	v, err := s.engine.TechnologyScore(ctx, inq, tid)
	if err != nil {
		return nil, s.statusErr(ctx, err)
	}
	return newStruct(map[string]any{"technology_id": tid, "verdict": string(v)})
}

// EncodeID takes {id} and returns {code}.
func (s *Server) EncodeID(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := intField(in, "id")
	if err != nil {
		return nil, err
	}
	if id < 0 {
		return nil, invalidArgument("id must not be negative")
	}
	return newStruct(map[string]any{"code": s.codes.Encode(id)})
}

// DecodeCode takes {code} and returns {id}.
func (s *Server) DecodeCode(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	code, err := stringField(in, "code")
	if err != nil {
		return nil, err
	}
	id, err := s.codes.Decode(code)
	if err != nil {
		return nil, invalidArgument(err.Error())
	}
	return newStruct(map[string]any{"id": id})
}

// ─── REQUEST FIELDS ───────────────────────────────────────────────────────────

// inquiry resolves the addressed inquiry. "code" wins over "inquiry_id".
func (s *Server) inquiry(in *structpb.Struct) (int64, error) {
	if v, ok := in.GetFields()["code"]; ok {
		id, err := s.codes.Decode(v.GetStringValue())
		if err != nil {
			return 0, invalidArgument(err.Error())
		}
		return id, nil
	}
	return intField(in, "inquiry_id")
}

func (s *Server) inquiryAndQuestion(in *structpb.Struct) (int64, int64, error) {
	inq, err := s.inquiry(in)
	if err != nil {
		return 0, 0, err
	}
	qid, err := intField(in, "question_id")
	if err != nil {
		return 0, 0, err
	}
	return inq, qid, nil
}

// intField reads a whole number. Struct numbers are doubles on the wire.
func intField(in *structpb.Struct, key string) (int64, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, invalidArgument(key + " is required")
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, invalidArgument(key + " must be a number")
	}
	id := int64(n.NumberValue)
	if float64(id) != n.NumberValue {
		return 0, invalidArgument(key + " must be a whole number")
	}
	return id, nil
}

func stringField(in *structpb.Struct, key string) (string, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return "", invalidArgument(key + " is required")
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", invalidArgument(key + " must be a string")
	}
	return str.StringValue, nil
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("rpc: build response: %w", err)
	}
	return out, nil
}
