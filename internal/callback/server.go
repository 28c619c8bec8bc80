package callback

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"apiconnect/pkg/logging"

	"github.com/gin-gonic/gin"
)

// DefaultTimeout is how long Wait blocks for the redirect by default.
const DefaultTimeout = 10 * time.Minute

const shutdownGrace = 5 * time.Second

//go:embed templates/callback.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/callback.html"))

// Server is a short-lived local HTTP server receiving a single
// authorization redirect.
type Server struct {
	addr string
	path string

	server   *http.Server
	listener net.Listener
	resultCh chan *Result
	errorCh  chan error
	once     sync.Once
	stopOnce sync.Once
	baseURL  string
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server listening on addr (host:port; port 0 picks a
// free one) and handling path.
func NewServer(addr, path string, opts ...Option) *Server {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	s := &Server{
		addr:     addr,
		path:     path,
		resultCh: make(chan *Result, 1),
		errorCh:  make(chan error, 1),
		logger:   logging.For("Callback"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServerForRedirect creates a server listening where redirectURL
// points. Only plain-HTTP loopback redirect URLs can be served locally.
func NewServerForRedirect(redirectURL string, opts ...Option) (*Server, error) {
	u, err := url.Parse(strings.TrimSpace(redirectURL))
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URL: %w", err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("redirect URL %q is not served over plain http", redirectURL)
	}
	host := u.Hostname()
	if host != "localhost" {
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			return nil, fmt.Errorf("redirect URL %q does not point at the loopback interface", redirectURL)
		}
	}
	port := u.Port()
	if port == "" {
		port = "80"
	}
	return NewServer(net.JoinHostPort(host, port), u.Path, opts...), nil
}

// Handler returns the gin engine serving the redirect path.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger(), securityHeaders())
	engine.SetHTMLTemplate(pages)
	engine.GET(s.path, s.handleCallback)
	return engine
}

// Start begins listening and returns the URL to use as redirect URL. The
// server stops when ctx is cancelled.
func (s *Server) Start(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.baseURL = "http://" + listener.Addr().String()

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Debug("callback server listening", "url", s.RedirectURL())
	return s.RedirectURL(), nil
}

// Wait blocks until the redirect arrives, the server fails or ctx is done.
func (s *Server) Wait(ctx context.Context) (*Result, error) {
	select {
	case r := <-s.resultCh:
		return r, nil
	case err := <-s.errorCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Server) handleCallback(c *gin.Context) {
	handled := false
	s.once.Do(func() {
		handled = true
		s.processCallback(c)
	})
	if !handled {
		c.String(http.StatusBadRequest, "Callback already processed")
	}
}

func (s *Server) processCallback(c *gin.Context) {
	result := resultFromQuery(c.Request.URL.Query())

	switch {
	case result.IsError():
		c.HTML(http.StatusOK, "error", gin.H{"Error": result.Error, "Description": result.ErrorDescription})
	case result.Code == "":
		result.Error = "invalid_request"
		result.ErrorDescription = "redirect carries no authorization code"
		c.HTML(http.StatusBadRequest, "error", gin.H{"Error": result.Error, "Description": result.ErrorDescription})
	default:
		c.HTML(http.StatusOK, "success", nil)
	}

	select {
	case s.resultCh <- result:
	default:
	}

	go func() {
		time.Sleep(time.Second)
		s.Stop()
	}()
}

// Stop shuts the server down. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

// RedirectURL returns the URL the server receives redirects on. It is
// empty until Start succeeds.
func (s *Server) RedirectURL() string {
	if s.baseURL == "" {
		return ""
	}
	return s.baseURL + s.path
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// The query holds the authorization code; only the path is logged.
		s.logger.Debug("callback request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}
