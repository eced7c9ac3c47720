package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danthegoodman1/hitmerge/gologger"
	"github.com/danthegoodman1/hitmerge/metastore"
	"github.com/danthegoodman1/hitmerge/pipeline"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

var logger = gologger.NewLogger()

type HTTPServer struct {
	Echo *echo.Echo

	runner    *pipeline.Runner
	metaStore metastore.MetaStore
	defaults  pipeline.Config

	// runs share output files, so only one may be in flight
	runMu sync.Mutex
}

type CustomValidator struct {
	validator *validator.Validate
}

func NewHTTPServer(runner *pipeline.Runner, ms metastore.MetaStore, defaults pipeline.Config) *HTTPServer {
	s := &HTTPServer{
		Echo:      echo.New(),
		runner:    runner,
		metaStore: ms,
		defaults:  defaults,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.Use(CreateReqContext)
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.CORS())
	s.Echo.Validator = &CustomValidator{validator: validator.New()}

	// technical - no auth
	s.Echo.GET("/hc", s.HealthCheck)

	s.Echo.POST("/combine", ccHandler(s.CombineHandler))
	s.Echo.GET("/runs", ccHandler(s.ListRunsHandler))

	return s
}

// StartHTTPServer listens on port and serves in the background.
func StartHTTPServer(s *HTTPServer, port string) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return fmt.Errorf("error creating tcp listener: %w", err)
	}
	s.Echo.Listener = listener
	go func() {
		logger.Info().Msg("starting h2c server on " + listener.Addr().String())
		err := s.Echo.StartH2CServer("", &http2.Server{})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start h2c server, exiting")
		}
	}()

	return nil
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	return err
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		logger := zerolog.Ctx(c.Request().Context())
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}
		logger.Debug().Str("method", req.Method).Str("remote_ip", c.RealIP()).Str("path", p).Int("status", res.Status).Dur("latency", time.Since(start)).Int64("bytes_out", res.Size).Msg("handled request")
		return nil
	}
}
