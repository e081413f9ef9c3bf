package httpapi

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type ServerOptions struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	addr   string
	srv    *fasthttp.Server
	logger *zap.Logger
}

func NewServer(h *Handler, opts ServerOptions) *Server {
	return &Server{
		addr:   opts.Addr,
		logger: h.logger,
		srv: &fasthttp.Server{
			Handler:               h.Handle,
			Name:                  "boardimage",
			ReadTimeout:           opts.ReadTimeout,
			WriteTimeout:          opts.WriteTimeout,
			NoDefaultServerHeader: true,
		},
	}
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http_listen", zap.String("addr", s.addr))
	return s.srv.ListenAndServe(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http_shutdown")
	return s.srv.ShutdownWithContext(ctx)
}
