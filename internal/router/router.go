package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-intake-api/internal/handler"
	metricshandler "github.com/jwalitptl/dental-intake-api/internal/handler/metrics"
	"github.com/jwalitptl/dental-intake-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine  *gin.Engine
	root    *handler.Handler
	formH   Handler
	healthH Handler
	adminH  Handler
	metrics *metricshandler.Handler
	config  RouterConfig
}

type RouterConfig struct {
	Mode        string
	RateLimiter middleware.RateLimiterConfig
	CORSConfig  middleware.CORSConfig
	Timeout     middleware.TimeoutConfig
	SizeLimit   middleware.SizeLimitConfig
	Security    middleware.SecurityConfig

	// TrustedProxies are allowed to set X-Forwarded-For. Nil trusts none,
	// so rate limiting keys on the socket peer.
	TrustedProxies []string

	// AdminSecret enables /api/admin when set.
	AdminSecret []byte
}

// NewRouter wires the global middleware chain. adminH may be nil.
func NewRouter(
	root *handler.Handler,
	formH Handler,
	healthH Handler,
	adminH Handler,
	metrics *metricshandler.Handler,
	config RouterConfig,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	middleware.RegisterJSONFieldNames()

	engine := gin.New()
	if err := engine.SetTrustedProxies(config.TrustedProxies); err != nil {
		log.Warn().Err(err).Msg("invalid trusted proxies, trusting none")
		_ = engine.SetTrustedProxies(nil)
	}

	r := &Router{
		engine:  engine,
		root:    root,
		formH:   formH,
		healthH: healthH,
		adminH:  adminH,
		metrics: metrics,
		config:  config,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		metrics.Middleware(),
		middleware.SecurityHeaders(config.Security),
		middleware.CORS(config.CORSConfig),
	)

	rateLimiter := middleware.NewRateLimiter(config.RateLimiter)
	engine.Use(
		rateLimiter.RateLimit(),
		middleware.Timeout(config.Timeout),
		middleware.SizeLimit(config.SizeLimit),
	)

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/", r.root.Root)
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api")
	r.healthH.RegisterRoutes(api)
	r.formH.RegisterRoutes(api)

	if r.adminH != nil && len(r.config.AdminSecret) > 0 {
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(r.config.AdminSecret))
		r.adminH.RegisterRoutes(admin)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Endpoints lists the public routes for the service descriptor.
func Endpoints(adminEnabled bool) []string {
	endpoints := []string{
		"POST /api/send-medical-form",
		"POST /api/send-patient-questionnaire",
		"GET /api/health",
		"GET /api/db-health",
		"GET /metrics",
	}
	if adminEnabled {
		endpoints = append(endpoints, "GET /api/admin/patients")
	}
	return endpoints
}
