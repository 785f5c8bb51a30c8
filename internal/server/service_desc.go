package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service uses well-known wrapper types on the wire, so it is declared
// by hand instead of generated from a .proto file.
const (
	ExtractorServiceName       = "fiscal.v1.ExtractorService"
	ExtractorExtractXMLMethod  = "/fiscal.v1.ExtractorService/ExtractXML"
	ExtractorExtractTextMethod = "/fiscal.v1.ExtractorService/ExtractText"
)

// ExtractorServiceServer is the server API for fiscal.v1.ExtractorService.
type ExtractorServiceServer interface {
	// ExtractXML maps an NF-e XML document and returns the processed result.
	ExtractXML(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	// ExtractText runs OCR text through the LLM and the audit engine.
	ExtractText(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterExtractorServiceServer(s grpc.ServiceRegistrar, srv ExtractorServiceServer) {
	s.RegisterService(&ExtractorService_ServiceDesc, srv)
}

func _ExtractorService_ExtractXML_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractorServiceServer).ExtractXML(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExtractorExtractXMLMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractorServiceServer).ExtractXML(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExtractorService_ExtractText_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractorServiceServer).ExtractText(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExtractorExtractTextMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractorServiceServer).ExtractText(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var ExtractorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ExtractorServiceName,
	HandlerType: (*ExtractorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractXML", Handler: _ExtractorService_ExtractXML_Handler},
		{MethodName: "ExtractText", Handler: _ExtractorService_ExtractText_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fiscal/v1/extractor.proto",
}

// ExtractorServiceClient is the client API for fiscal.v1.ExtractorService.
type ExtractorServiceClient interface {
	ExtractXML(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ExtractText(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type extractorServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractorServiceClient(cc grpc.ClientConnInterface) ExtractorServiceClient {
	return &extractorServiceClient{cc}
}

func (c *extractorServiceClient) ExtractXML(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ExtractorExtractXMLMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *extractorServiceClient) ExtractText(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ExtractorExtractTextMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
