package http

import (
	"context"
	"net/http"
	"time"

	"attestd/internal/config"
	"attestd/internal/domain"
	"attestd/internal/infra/cachemem"
	"attestd/internal/infra/cacheredis"
	"attestd/internal/infra/db"
	"attestd/internal/infra/logger"
	"attestd/internal/infra/metrics"
	"attestd/internal/infra/notary"
	"attestd/internal/infra/ratelimit"
	"attestd/internal/infra/verifier"
	"attestd/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReceiptStore is the optional audit sink for accepted claims.
type ReceiptStore interface {
	Save(ctx context.Context, record domain.ReceiptRecord) error
	ListByTransferID(ctx context.Context, transferID string) ([]domain.ReceiptRecord, error)
}

type Server struct {
	cfg config.Config
	r   *gin.Engine
	log logger.Logger

	verifyUC *usecase.VerifyWiseAttestation
	receipts ReceiptStore
	recorder metrics.Recorder

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration

	verifyTimeout time.Duration
}

// ServerDeps lets callers override wiring; the external verification
// collaborator has no in-process default and must come from here.
type ServerDeps struct {
	VerifyFn verifier.Func
	Verify   *usecase.VerifyWiseAttestation
	Receipts ReceiptStore
	Keys     usecase.NotaryKeyResolver
	Recorder metrics.Recorder
	Limiter  domain.RateLimiter
	Log      logger.Logger
}

func NewServer(cfg config.Config, store *db.Store, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:           cfg,
		r:             r,
		log:           deps.Log,
		verifyUC:      deps.Verify,
		receipts:      deps.Receipts,
		recorder:      deps.Recorder,
		rateLimiter:   deps.Limiter,
		verifyTimeout: cfg.VerifyTimeout(),
	}
	if s.log == nil {
		s.log = logger.Noop()
	}
	if s.recorder == nil {
		if cfg.EnableMetrics {
			s.recorder = metrics.NewPrometheusRecorder()
		} else {
			s.recorder = metrics.NoopRecorder{}
		}
	}
	if s.verifyUC == nil {
		s.verifyUC = buildVerifyUsecase(cfg, deps, s.log)
	}
	if s.receipts == nil && store != nil && store.DB != nil {
		s.receipts = db.NewReceiptRepository(store.DB)
	}
	s.initRateLimit()
	s.routes()
	return s
}

func buildVerifyUsecase(cfg config.Config, deps ServerDeps, log logger.Logger) *usecase.VerifyWiseAttestation {
	keys := deps.Keys
	if keys == nil {
		var cache notary.KeyCache
		if cfg.RedisAddr != "" {
			if redisCache, err := cacheredis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err == nil {
				cache = redisCache
			}
		}
		if cache == nil {
			cache = cachemem.New()
		}
		keys = &notary.Resolver{
			Client:      &notary.Client{},
			Cache:       cache,
			CacheTTL:    cfg.NotaryKeyCacheTTL(),
			EnvFallback: cfg.NotaryPublicKeyPem,
			Log:         log,
		}
	}
	return &usecase.VerifyWiseAttestation{
		Keys:          keys,
		Verifier:      &verifier.Service{Fn: deps.VerifyFn},
		Allowed:       cfg.AllowedDomainList(),
		RecentDefault: cfg.RecentTransfersDefault,
	}
}

func (s *Server) initRateLimit() {
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	if s.cfg.RateLimitWindowSeconds > 0 {
		s.rateLimitWindow = time.Duration(s.cfg.RateLimitWindowSeconds) * time.Second
	}
}

func (s *Server) routes() {
	s.r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	if s.cfg.EnableMetrics {
		s.r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	s.r.POST("/verify-wise-attestation", s.maxBody(), s.enforceRateLimit, s.handleVerifyAttestation)
	s.r.GET("/receipts/:transfer_id", s.handleListReceipts)
}

func (s *Server) maxBody() gin.HandlerFunc {
	limit := int64(s.cfg.MaxBodyBytes)
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.r }

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}
