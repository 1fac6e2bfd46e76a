package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ysy950803/supportchat/internal/errors"
	"github.com/ysy950803/supportchat/internal/kvstore"
)

type Service struct {
	conf Config
	kv   kvstore.Store

	router *gin.Engine
	server *http.Server
}

type Config interface {
	GetHTTPAddr() string
	GetOperatorCredentials() (username, password string)
	GetAuthKey() string
}

func NewService(conf Config, kv kvstore.Store) *Service {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Wrong-method requests fold into the 404 path: the state API contract
	// is "unroutable combination means not found", not 405.
	router.HandleMethodNotAllowed = false

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Err(err).Msg("Failed to set trusted proxies")
	}

	// Middleware
	router.Use(
		errors.RecoveryMiddleware(),
		errors.ErrorHandlerMiddleware(),
		gin.LoggerWithWriter(log.Logger, "/"),
		corsMiddleware(),
	)

	s := &Service{
		conf:   conf,
		kv:     kv,
		router: router,
	}

	s.initRouter()
	return s
}

func (s *Service) Start() error {

	s.server = &http.Server{
		Addr:    s.conf.GetHTTPAddr(),
		Handler: s.router,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("Failed to start HTTP server")
		}
	}()

	log.Info().Msg("Starting HTTP server on " + s.conf.GetHTTPAddr())

	return nil
}

func (s *Service) ListenAndServe() error {

	s.server = &http.Server{
		Addr:    s.conf.GetHTTPAddr(),
		Handler: s.router,
	}

	log.Info().Msg("Starting HTTP server on " + s.conf.GetHTTPAddr())
	return s.server.ListenAndServe()
}

func (s *Service) Stop() error {

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to shutdown HTTP server")
		return nil
	}

	log.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Service) GetRouter() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// basicAuthMiddleware gates the state API behind the operator credentials.
// Credentials come from the config on every request so a reload takes
// effect immediately. Missing or malformed headers compare as empty
// credentials and fail.
func (s *Service) basicAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, _ := c.Request.BasicAuth()

		wantUser, wantPass := s.conf.GetOperatorCredentials()
		if wantUser == "" && wantPass == "" {
			// An unset credential pair locks the API rather than opening it.
			errors.Err(c, errors.New(http.StatusInternalServerError, "operator credentials not configured"))
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(wantUser)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(wantPass)) == 1
		if !userOK || !passOK {
			errors.Err(c, errors.Unauthorized())
			return
		}

		c.Next()
	}
}
