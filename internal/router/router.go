package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/jobboard-api/internal/handler"
	"github.com/jwalitptl/jobboard-api/internal/middleware"
	"github.com/jwalitptl/jobboard-api/pkg/logger"
	"github.com/jwalitptl/jobboard-api/pkg/metrics"
	"github.com/jwalitptl/jobboard-api/pkg/ratelimit"
)

const APIVersion = "1.0"

// PasswordHandler mounts the password routes, applying sensitive only to
// routes that receive passwords
type PasswordHandler interface {
	RegisterRoutes(rg *gin.RouterGroup, sensitive ...gin.HandlerFunc)
}

type Router struct {
	engine     *gin.Engine
	h          *handler.Handler
	passwordH  PasswordHandler
	limiter    *middleware.RateLimiter
	metrics    *metrics.Metrics
	config     RouterConfig
	validation middleware.ValidationConfig
}

type RouterConfig struct {
	Mode         string
	CORSConfig   middleware.CORSConfig
	MaxBodyBytes int64
	// TrustedProxies are the peers whose forwarding headers set the client IP
	TrustedProxies []string
	// MetricsPath is empty when the scrape endpoint is disabled
	MetricsPath string
}

func NewRouter(
	h *handler.Handler,
	passwordH PasswordHandler,
	limiter ratelimit.Limiter,
	m *metrics.Metrics,
	log *logger.Logger,
	config RouterConfig,
) (*Router, error) {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	validation := middleware.DefaultValidationConfig()
	if err := middleware.RegisterValidators(validation); err != nil {
		return nil, err
	}

	engine := gin.New()

	// Client IPs key the rate limiter, so forwarding headers count only from known proxies
	if err := engine.SetTrustedProxies(config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	r := &Router{
		engine:     engine,
		h:          h,
		passwordH:  passwordH,
		limiter:    middleware.NewRateLimiter(limiter, m),
		metrics:    m,
		config:     config,
		validation: validation,
	}

	// Outermost first: the request ID must exist before anything logs
	engine.Use(
		middleware.RequestID(log),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		middleware.ErrorHandler(),
		middleware.Validation(validation),
	)

	engine.NoRoute(func(c *gin.Context) {
		resp := handler.NewErrorResponse("route not found")
		resp.RequestID = c.GetString(middleware.ContextRequestID)
		c.JSON(http.StatusNotFound, resp)
	})

	r.setup()
	return r, nil
}

func (r *Router) setup() {
	if r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.h.MetricsHandler())
	}

	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", APIVersion)
		c.Next()
	})

	r.h.RegisterRoutes(api)

	limited := api.Group("", r.limiter.RateLimit())
	limited.Use(middleware.Cache(middleware.DefaultCacheConfig()))

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if r.config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = r.config.MaxBodyBytes
	}

	r.passwordH.RegisterRoutes(limited,
		middleware.NoStore(),
		middleware.SizeLimit(sizeLimit),
	)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
