package server

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/apihelper/errors"
	"github.com/kbukum/apihelper/logger"
)

// Callback is the authorization redirect received from the provider.
type Callback struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
	// Query holds every redirect parameter; some providers add extras.
	Query url.Values
}

// Err reports a denied authorization, nil when a code was issued.
func (c Callback) Err() error {
	if c.Error == "" {
		if c.Code == "" {
			return errors.InvalidArgument("authorization redirect carried no code")
		}
		return nil
	}
	if c.ErrorDescription != "" {
		return errors.InvalidArgument("authorization denied: %s (%s)", c.Error, c.ErrorDescription)
	}
	return errors.InvalidArgument("authorization denied: %s", c.Error)
}

// Server receives one OAuth2 redirect on a loopback address.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	cfg        Config
	log        *logger.Logger
	state      string

	results chan Callback
	once    sync.Once
}

// New creates a callback server expecting state. The Gin engine is ready
// for requests through Handler before Start is called.
func New(cfg Config, state string, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:  gin.New(),
		cfg:     cfg,
		log:     log.WithComponent("callback"),
		state:   state,
		results: make(chan Callback, 1),
	}
	s.engine.Use(recovery(s.log), requestID(), requestLogger(s.log))
	s.engine.GET(cfg.Path, s.handleCallback)

	s.httpServer = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the Gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the redirect URI is known; serving continues in a goroutine.
func (s *Server) Start(_ context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("callback server failed to bind %s: %w", addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Callback server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("Callback server started", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// RedirectURI returns the URL to register as the OAuth2 redirect_uri.
// It is empty before Start.
func (s *Server) RedirectURI() string {
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String() + s.cfg.Path
}

// Wait blocks until a matching redirect arrives or ctx is done.
func (s *Server) Wait(ctx context.Context) (Callback, error) {
	select {
	case cb := <-s.results:
		return cb, cb.Err()
	case <-ctx.Done():
		return Callback{}, errors.Timeout("authorization callback", ctx.Err())
	}
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("callback server shutdown error: %w", err)
	}
	s.log.Debug("Callback server stopped")
	return nil
}

func (s *Server) handleCallback(c *gin.Context) {
	q := c.Request.URL.Query()
	if q.Get("state") != s.state {
		s.log.Warn("Callback state mismatch")
		page(c, http.StatusBadRequest, "Login failed", "The authorization response does not belong to this login attempt.")
		return
	}

	cb := Callback{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
		Query:            q,
	}
	delivered := false
	s.once.Do(func() {
		s.results <- cb
		delivered = true
	})
	if !delivered {
		page(c, http.StatusConflict, "Login already completed", "This login attempt has already been completed.")
		return
	}

	if err := cb.Err(); err != nil {
		page(c, http.StatusOK, "Login failed", err.Error())
		return
	}
	page(c, http.StatusOK, "Login complete", "You can close this window and return to the terminal.")
}

func page(c *gin.Context, status int, title, message string) {
	body := fmt.Sprintf("<!doctype html><html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>",
		html.EscapeString(title), html.EscapeString(title), html.EscapeString(message))
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}
