package detection

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"farmwatch/internal/models"
)

type detectorServer interface {
	infer(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error)
}

type stubDetector struct {
	lastImage []byte
	response  map[string]interface{}
}

func (s *stubDetector) infer(_ context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error) {
	s.lastImage = in.GetValue()
	return structpb.NewStruct(s.response)
}

var detectorDesc = grpc.ServiceDesc{
	ServiceName: DetectorService,
	HandlerType: (*detectorServer)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "Infer",
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(wrapperspb.BytesValue)
			if err := dec(in); err != nil {
				return nil, err
			}
			return srv.(detectorServer).infer(ctx, in)
		},
	}},
}

func startDetector(t *testing.T, stub *stubDetector, servingStatus healthpb.HealthCheckResponse_ServingStatus) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&detectorDesc, stub)

	hs := health.NewServer()
	hs.SetServingStatus(DetectorService, servingStatus)
	healthpb.RegisterHealthServer(srv, hs)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	return conn
}

func TestGRPCClient_Infer(t *testing.T) {
	stub := &stubDetector{response: map[string]interface{}{
		"detections": []interface{}{
			map[string]interface{}{"class_id": 20, "confidence": 0.93, "bbox": []interface{}{10, 20, 110, 220}},
			map[string]interface{}{"class_id": 19, "confidence": 0.4, "bbox": []interface{}{1, 2}}, // malformed box
		},
	}}
	client := NewGRPCClientConn(startDetector(t, stub, healthpb.HealthCheckResponse_SERVING), zerolog.Nop())
	defer client.Close()

	require.True(t, client.Ready())

	raw, err := client.Infer(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), stub.lastImage)
	require.Len(t, raw, 1)
	assert.Equal(t, models.RawDetection{ClassID: 20, Confidence: 0.93, BBox: models.BoundingBox{10, 20, 110, 220}}, raw[0])
}

func TestGRPCClient_NotServingIsDegraded(t *testing.T) {
	stub := &stubDetector{}
	client := NewGRPCClientConn(startDetector(t, stub, healthpb.HealthCheckResponse_NOT_SERVING), zerolog.Nop())
	defer client.Close()

	assert.False(t, client.Ready())

	_, err := client.Infer(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrModelUnavailable)

	svc := NewService(client, 0.6, 0, zerolog.Nop())
	assert.Empty(t, svc.Detect(context.Background(), fakeFrame{}))
}

func TestParseGRPCEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		target string
		tls    bool
	}{
		{"localhost:50051", "localhost:50051", false},
		{"detector.farm.internal", "detector.farm.internal:443", true},
		{"models.example.com:8443", "models.example.com:8443", true},
		{"http://detector", "detector:80", false},
		{"https://detector:9000", "detector:9000", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			target, creds, err := parseGRPCEndpoint(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.target, target)
			assert.Equal(t, tt.tls, creds.Info().SecurityProtocol == "tls")
		})
	}

	_, _, err := parseGRPCEndpoint("ftp://detector:21")
	assert.Error(t, err)
}
