package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/resilience"
)

var (
	// ErrDisabled is returned by Send when no bridge URL is configured
	ErrDisabled = errors.New("bridge: outbound sync disabled")
	// ErrRejected is returned when the bridge answers with a non-2xx status
	ErrRejected = errors.New("bridge: event rejected")
)

// Sender delivers events to the game client
type Sender interface {
	Send(ctx context.Context, event string, payload any) error
	Enabled() bool
}

// Config configures the outbound client
type Config struct {
	URL       string
	Resource  string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	RPS       float64

	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Client posts events to <URL>/<resource>/<event>, the way the game client
// receives NUI callbacks
type Client struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	breaker  *resilience.Breaker
	resource string
	enabled  bool
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewClient creates a bridge client. An empty URL yields a disabled client.
func NewClient(cfg Config, logger *zap.Logger, metrics *monitoring.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Resource == "" {
		cfg.Resource = "phone"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 100 * time.Millisecond
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = max(cfg.Retries, 0)
	retryClient.RetryWaitMin = cfg.RetryWait
	retryClient.RetryWaitMax = 20 * cfg.RetryWait
	retryClient.Logger = leveledLogger{logger.Sugar()}

	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "phoneshell/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), max(int(cfg.RPS), 1))
	}

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		breaker: resilience.New("bridge", resilience.Settings{
			FailureThreshold: cfg.BreakerThreshold,
			Cooldown:         cfg.BreakerCooldown,
			Logger:           logger,
		}),
		resource: cfg.Resource,
		enabled:  cfg.URL != "",
		logger:   logger,
		metrics:  metrics,
	}
}

// Enabled reports whether a bridge URL is configured
func (c *Client) Enabled() bool {
	return c.enabled
}

// Breaker exposes the circuit breaker guarding outbound calls
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// Send posts payload as JSON. Retries happen inside the transport; a failing
// bridge trips the breaker and later sends fail fast with ErrCircuitOpen.
func (c *Client) Send(ctx context.Context, event string, payload any) error {
	if !c.enabled {
		c.metrics.RecordBridgeCall(event, "disabled", 0)
		return ErrDisabled
	}

	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.RecordBridgeCall(event, "throttled", time.Since(start))
		return fmt.Errorf("rate limit error: %w", err)
	}

	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		resp, err := c.resty.R().
			SetContext(ctx).
			SetBody(payload).
			Post("/" + c.resource + "/" + event)
		if err != nil {
			return fmt.Errorf("bridge: %s: %w", event, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: %s returned %d", ErrRejected, event, resp.StatusCode())
		}
		return nil
	})

	status := "success"
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrProbeInFlight):
		status = "open"
	case err != nil:
		status = "error"
	}
	c.metrics.RecordBridgeCall(event, status, time.Since(start))

	if err != nil {
		c.logger.Debug("Bridge call failed", zap.String("event", event), zap.Error(err))
	}
	return err
}

// leveledLogger routes retryablehttp logs through zap
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
