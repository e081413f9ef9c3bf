// Package boardimage runs the render pipeline: parse, resolve, compose and
// rasterize.
package boardimage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/park285/boardimage/internal/annotate"
	"github.com/park285/boardimage/internal/position"
	"github.com/park285/boardimage/internal/raster"
	"github.com/park285/boardimage/internal/scene"
	"github.com/park285/boardimage/pkg/boarddto"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrRenderTimeout is returned when a render does not finish within the
// configured timeout or waits too long for a render slot.
var ErrRenderTimeout = &boarddto.DomainError{Code: boarddto.CodeRenderTimeout, Message: "render timed out"}

type Image struct {
	Data        []byte
	ContentType string
	ETag        string
	Format      annotate.Format
	Width       int
	Height      int
}

type Options struct {
	Timeout       time.Duration
	MaxConcurrent int
	Logger        *zap.Logger
}

type Service struct {
	resolver *annotate.Resolver
	sem      *semaphore.Weighted
	timeout  time.Duration
	logger   *zap.Logger
}

func NewService(resolver *annotate.Resolver, opts Options) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2 * runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		resolver: resolver,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		timeout:  opts.Timeout,
		logger:   opts.Logger,
	}
}

// Render parses notation, applies params and encodes the board. Nothing is
// returned on failure; a render whose context ends first is discarded.
func (s *Service) Render(ctx context.Context, notation string, params map[string]string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	board, err := position.Parse(notation)
	if err != nil {
		return nil, err
	}
	board, set, opts, err := s.resolver.Resolve(board, params)
	if err != nil {
		return nil, err
	}
	sc, err := scene.Compose(board, set, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, contextError(err)
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer s.sem.Release(1)
		data, err := raster.Render(sc, opts.Format)
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("render_discarded",
			zap.String("format", string(opts.Format)),
			zap.Int("square_size", opts.SquareSize),
			zap.Error(ctx.Err()),
		)
		return nil, contextError(ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return &Image{
			Data:        r.data,
			ContentType: opts.Format.ContentType(),
			ETag:        ETag(r.data),
			Format:      opts.Format,
			Width:       sc.Width,
			Height:      sc.Height,
		}, nil
	}
}

// ETag is a strong validator derived from the BLAKE3 digest of data.
func ETag(data []byte) string {
	sum := blake3.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrRenderTimeout
	}
	return fmt.Errorf("render cancelled: %w", err)
}
