package http

import (
	"context"
	"errors"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/blackenaxe/icom/internal/config"
	"github.com/blackenaxe/icom/internal/ids"
	"github.com/blackenaxe/icom/internal/observability"
	apperrors "github.com/blackenaxe/icom/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
// The error middleware sits inside the request logger so the logged status is
// the rendered one.
func RegisterMiddlewares(app *fiber.App, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) {
	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  ids.New,
		ContextKey: observability.RequestIDKey,
	}))
	app.Use(cors.New(corsConfig(cfg.CORS)))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout := cfg.App.RequestTimeout(); timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

// corsConfig only allows credentials for an explicit origin list; fiber
// refuses credentials combined with a wildcard.
func corsConfig(cfg config.CORSConfig) cors.Config {
	origins := strings.Join(cfg.AllowOrigins, ",")
	if origins == "" {
		origins = "*"
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: !slices.Contains(cfg.AllowOrigins, "*") && origins != "*",
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(observability.RouteLabel(c), c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= 500 {
					fields := []zap.Field{zap.Error(domainErr), zap.String("path", c.Path())}
					if id, ok := c.Locals(observability.RequestIDKey).(string); ok {
						fields = append(fields, zap.String("request_id", id))
					}
					logger.Error("request failed", fields...)
				}
				err = writeError(c, domainErr)
			}
		}()
		return c.Next()
	}
}

// toDomainError also covers errors raised by fiber itself, e.g. unknown
// routes or malformed requests, and deadlines hit while serving.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.FromStatus(fiberErr.Code, fiberErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewDomainError(apperrors.CodeInternal, "request timed out", fiber.StatusServiceUnavailable, nil)
	}
	return apperrors.ToDomainError(err)
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

// ErrorHandler is installed as fiber's ErrorHandler for errors that escape
// the middleware chain.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		domainErr := toDomainError(err)
		if domainErr.HTTPStatus >= 500 {
			logger.Error("unhandled error", zap.Error(err), zap.String("path", c.Path()))
		}
		return writeError(c, domainErr)
	}
}

const limiterIdleTTL = 5 * time.Minute

// loginLimiter is a token bucket per client IP. Idle buckets are swept
// lazily on access instead of by a background goroutine.
type loginLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*limiterBucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type limiterBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLoginLimiter(cfg config.RateLimitConfig) *loginLimiter {
	burst := cfg.LoginBurst
	if burst <= 0 {
		burst = 1
	}
	return &loginLimiter{
		buckets: make(map[string]*limiterBucket),
		limit:   rate.Limit(cfg.LoginPerSecond),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *loginLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > time.Minute {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > limiterIdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &limiterBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// LoginRateLimit throttles login attempts per client IP.
func LoginRateLimit(cfg config.RateLimitConfig) fiber.Handler {
	if cfg.LoginPerSecond <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	limiter := newLoginLimiter(cfg)
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			ip = "unknown"
		}
		if !limiter.allow(ip) {
			return apperrors.NewRateLimited("too many login attempts; try again later")
		}
		return c.Next()
	}
}
