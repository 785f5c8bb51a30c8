package server

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/fiscal-extract/internal/pipeline"
)

const smallNFe = `<NFe xmlns="http://www.portalfiscal.inf.br/nfe"><infNFe Id="NFe123">
<ide><mod>65</mod><dhEmi>2024-01-31T08:00:00-03:00</dhEmi></ide>
<emit><CNPJ>11222333000181</CNPJ><xNome>PADARIA CENTRAL</xNome></emit>
<det nItem="1"><prod><xProd>PAO</xProd><CFOP>5102</CFOP><qCom>1</qCom><vUnCom>5.00</vUnCom><vProd>5.00</vProd></prod></det>
<total><ICMSTot><vNF>5.00</vNF></ICMSTot></total>
</infNFe></NFe>`

func startServer(t *testing.T, maxBody int) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs, _ := New(pipeline.NewProcessor(), maxBody, nil)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestExtractXML(t *testing.T) {
	client := NewExtractorServiceClient(startServer(t, 0))

	var header metadata.MD
	out, err := client.ExtractXML(context.Background(), wrapperspb.Bytes([]byte(smallNFe)), grpc.Header(&header))
	require.NoError(t, err)

	m := out.AsMap()
	assert.Equal(t, "XML", m["source"])
	rec := m["record"].(map[string]any)
	assert.Equal(t, "123", rec["numero_controle"])
	assert.Equal(t, "31-01-2024", rec["data_emissao"])
	summary := m["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["item_count"])
	assert.NotEmpty(t, header.Get(requestIDHeader))
}

func TestRequestIDPropagation(t *testing.T) {
	client := NewExtractorServiceClient(startServer(t, 0))
	const rid = "8f0c2b9e-3d4a-4c53-9a61-0b2f5d7e1a44"

	var header metadata.MD
	ctx := metadata.AppendToOutgoingContext(context.Background(), requestIDHeader, rid)
	_, err := client.ExtractXML(ctx, wrapperspb.Bytes([]byte(smallNFe)), grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{rid}, header.Get(requestIDHeader))

	ctx = metadata.AppendToOutgoingContext(context.Background(), requestIDHeader, "not-a-uuid")
	_, err = client.ExtractXML(ctx, wrapperspb.Bytes([]byte(smallNFe)), grpc.Header(&header))
	require.NoError(t, err)
	require.Len(t, header.Get(requestIDHeader), 1)
	assert.NotEqual(t, "not-a-uuid", header.Get(requestIDHeader)[0])
}

func TestExtractXML_Errors(t *testing.T) {
	client := NewExtractorServiceClient(startServer(t, 64))

	_, err := client.ExtractXML(context.Background(), wrapperspb.Bytes(nil))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ExtractXML(context.Background(), wrapperspb.Bytes([]byte("<NFe><infNFe>")))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ExtractXML(context.Background(), wrapperspb.Bytes([]byte(smallNFe)))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "at most 64")
}

func TestExtractText_NoProvider(t *testing.T) {
	client := NewExtractorServiceClient(startServer(t, 0))

	_, err := client.ExtractText(context.Background(), wrapperspb.String("   "))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ExtractText(context.Background(), wrapperspb.String("CUPOM FISCAL"))
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestHealth(t *testing.T) {
	hc := healthpb.NewHealthClient(startServer(t, 0))
	resp, err := hc.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ExtractorServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
