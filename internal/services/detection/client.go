package detection

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"farmwatch/internal/models"
)

const (
	// DetectorService is the gRPC service name of the model server.
	DetectorService = "farmwatch.detector.v1.Detector"
	// InferMethod takes a JPEG as BytesValue and answers with a Struct:
	// {"detections": [{"class_id": 19, "confidence": 0.91, "bbox": [x1, y1, x2, y2]}]}
	InferMethod = "/" + DetectorService + "/Infer"
)

var ErrModelUnavailable = errors.New("detection model unavailable")

// ModelClient talks to the external pretrained detector.
type ModelClient interface {
	Infer(ctx context.Context, jpeg []byte) ([]models.RawDetection, error)
	Ready() bool
	Close() error
}

// GRPCClient is a ModelClient over a gRPC connection. Readiness follows the
// server's health status and is re-probed with exponential backoff.
type GRPCClient struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
	logger zerolog.Logger

	ready   atomic.Bool
	probing atomic.Bool

	mu               sync.Mutex
	lastFailTime     time.Time
	consecutiveFails int
	maxRetryBackoff  time.Duration
	probeTimeout     time.Duration
}

// NewGRPCClient dials endpoint and runs an initial health probe. A failed
// probe is not an error: the client starts in degraded mode.
func NewGRPCClient(endpoint string, logger zerolog.Logger) (*GRPCClient, error) {
	target, creds, err := parseGRPCEndpoint(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse detector endpoint %s: %w", endpoint, err)
	}

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to detector at %s: %w", target, err)
	}

	logger.Info().
		Str("endpoint", endpoint).
		Str("target", target).
		Bool("use_tls", creds.Info().SecurityProtocol == "tls").
		Msg("Connecting to detection model")

	return NewGRPCClientConn(conn, logger), nil
}

// NewGRPCClientConn wraps an existing connection.
func NewGRPCClientConn(conn *grpc.ClientConn, logger zerolog.Logger) *GRPCClient {
	c := &GRPCClient{
		conn:            conn,
		health:          healthpb.NewHealthClient(conn),
		logger:          logger,
		maxRetryBackoff: 30 * time.Second,
		probeTimeout:    3 * time.Second,
	}
	c.probing.Store(true)
	c.probe()
	return c
}

// Ready reports whether the model answered its last health probe. While not
// ready it schedules a background re-probe once the backoff has elapsed.
func (c *GRPCClient) Ready() bool {
	if c.ready.Load() {
		return true
	}
	if c.shouldRetry() && c.probing.CompareAndSwap(false, true) {
		go c.probe()
	}
	return false
}

func (c *GRPCClient) Infer(ctx context.Context, jpeg []byte) ([]models.RawDetection, error) {
	if !c.ready.Load() {
		return nil, ErrModelUnavailable
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, InferMethod, wrapperspb.Bytes(jpeg), resp); err != nil {
		if status.Code(err) == codes.Unavailable {
			c.ready.Store(false)
			c.recordFailure()
		}
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return decodeDetections(resp), nil
}

func (c *GRPCClient) Close() error {
	c.ready.Store(false)
	return c.conn.Close()
}

func (c *GRPCClient) probe() {
	defer c.probing.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), c.probeTimeout)
	defer cancel()

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: DetectorService})
	if err == nil && resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		err = fmt.Errorf("detector status %s", resp.GetStatus())
	}
	if err != nil {
		c.ready.Store(false)
		c.recordFailure()
		c.logger.Warn().Err(err).Msg("Detection model not available, running in degraded mode")
		return
	}

	c.mu.Lock()
	c.consecutiveFails = 0
	c.mu.Unlock()
	if !c.ready.Swap(true) {
		c.logger.Info().Msg("Detection model ready")
	}
}

// shouldRetry applies exponential backoff: 1s, 2s, 4s, 8s, 16s, 30s (max).
func (c *GRPCClient) shouldRetry() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.consecutiveFails == 0 {
		return true
	}

	backoff := time.Duration(1<<uint(c.consecutiveFails-1)) * time.Second
	if backoff > c.maxRetryBackoff {
		backoff = c.maxRetryBackoff
	}
	return time.Since(c.lastFailTime) >= backoff
}

func (c *GRPCClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFails++
	c.lastFailTime = time.Now()
}

func decodeDetections(resp *structpb.Struct) []models.RawDetection {
	list := resp.GetFields()["detections"].GetListValue().GetValues()
	out := make([]models.RawDetection, 0, len(list))
	for _, v := range list {
		fields := v.GetStructValue().GetFields()
		box := fields["bbox"].GetListValue().GetValues()
		if fields == nil || len(box) != 4 {
			continue
		}
		var bbox models.BoundingBox
		for i, coord := range box {
			bbox[i] = int(coord.GetNumberValue())
		}
		out = append(out, models.RawDetection{
			ClassID:    int(fields["class_id"].GetNumberValue()),
			Confidence: fields["confidence"].GetNumberValue(),
			BBox:       bbox,
		})
	}
	return out
}

// parseGRPCEndpoint normalizes host[:port] or scheme://host[:port] into a dial
// target and matching transport credentials.
func parseGRPCEndpoint(endpoint string) (string, credentials.TransportCredentials, error) {
	if !strings.Contains(endpoint, "://") {
		host, portStr, found := strings.Cut(endpoint, ":")
		switch {
		case !found:
			endpoint = "https://" + host + ":443"
		default:
			port, err := strconv.Atoi(portStr)
			if err == nil && (port == 443 || port == 8443 || port == 9443) {
				endpoint = "https://" + endpoint
			} else {
				endpoint = "http://" + endpoint
			}
		}
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if u.Hostname() == "" {
		return "", nil, fmt.Errorf("missing host in %q", endpoint)
	}

	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = u.Hostname() + ":443"
		case "http":
			host = u.Hostname() + ":80"
		}
	}

	switch u.Scheme {
	case "https":
		return host, credentials.NewTLS(&tls.Config{ServerName: u.Hostname()}), nil
	case "http":
		return host, insecure.NewCredentials(), nil
	default:
		return "", nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
}
