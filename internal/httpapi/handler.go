// Package httpapi exposes the board renderer over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/park285/boardimage/internal/annotate"
	"github.com/park285/boardimage/internal/boardimage"
	"github.com/park285/boardimage/internal/theme"
	"github.com/park285/boardimage/pkg/boarddto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-Id"
	paramFEN        = "fen"
	cacheControl    = "public, max-age=86400"
)

type Handler struct {
	svc    *boardimage.Service
	themes *theme.Registry
	logger *zap.Logger
}

func NewHandler(svc *boardimage.Service, themes *theme.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, themes: themes, logger: logger}
}

// Handle is the fasthttp entry point.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	reqID := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID)))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx.Response.Header.Set(HeaderRequestID, reqID)

	path := string(ctx.Path())
	if !ctx.IsGet() && !ctx.IsHead() {
		ctx.Response.Header.Set("Allow", "GET, HEAD")
		h.writeError(ctx, fasthttp.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET and HEAD are supported", "", "")
	} else {
		switch path {
		case "/board", "/board.svg", "/board.png":
			h.handleBoard(ctx, path)
		case "/themes":
			h.handleThemes(ctx)
		case "/healthz":
			ctx.SetContentType("text/plain; charset=utf-8")
			ctx.SetBodyString("ok")
		default:
			h.writeError(ctx, fasthttp.StatusNotFound, "NOT_FOUND", "no such route", "", "")
		}
	}

	h.logger.Info("http_request",
		zap.String("request_id", reqID),
		zap.String("method", string(ctx.Method())),
		zap.String("path", path),
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("duration", time.Since(start)),
		zap.String("size", humanize.Bytes(uint64(len(ctx.Response.Body())))),
	)
}

func (h *Handler) handleBoard(ctx *fasthttp.RequestCtx, path string) {
	params := map[string]string{}
	ctx.QueryArgs().VisitAll(func(k, v []byte) {
		params[string(k)] = string(v)
	})
	notation := strings.ReplaceAll(params[paramFEN], "_", " ")
	delete(params, paramFEN)

	norm := annotate.Normalize(params)
	if strings.TrimSpace(norm[annotate.ParamFormat]) == "" {
		switch path {
		case "/board.png":
			norm[annotate.ParamFormat] = string(annotate.FormatPNG)
		case "/board.svg":
			norm[annotate.ParamFormat] = string(annotate.FormatSVG)
		}
	}

	if strings.TrimSpace(notation) == "" {
		h.writeDomainError(ctx, boarddto.MalformedPosition("", "the fen parameter is required"))
		return
	}

	img, err := h.svc.Render(context.Background(), notation, norm)
	if err != nil {
		h.writeDomainError(ctx, err)
		return
	}

	ctx.Response.Header.Set(fasthttp.HeaderETag, img.ETag)
	ctx.Response.Header.Set(fasthttp.HeaderCacheControl, cacheControl)
	if match := string(ctx.Request.Header.Peek(fasthttp.HeaderIfNoneMatch)); match != "" && etagMatches(match, img.ETag) {
		ctx.SetStatusCode(fasthttp.StatusNotModified)
		return
	}
	ctx.SetContentType(img.ContentType)
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(img.Data)
}

func (h *Handler) handleThemes(ctx *fasthttp.RequestCtx) {
	resp := boarddto.ThemesResponse{}
	for _, name := range h.themes.Names() {
		th, _ := h.themes.Get(name)
		resp.Themes = append(resp.Themes, boarddto.ThemeInfo{
			Name:     name,
			GlyphSet: th.Glyphs.Name,
			Complete: th.Glyphs.Complete(),
			Default:  name == h.themes.DefaultName(),
		})
	}
	h.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func etagMatches(header, etag string) bool {
	for _, part := range strings.Split(header, ",") {
		p := strings.TrimPrefix(strings.TrimSpace(part), "W/")
		if p == "*" || p == etag {
			return true
		}
	}
	return false
}

// StatusFor maps a pipeline error onto an HTTP status.
func StatusFor(err error) int {
	var de *boarddto.DomainError
	if errors.As(err, &de) {
		switch {
		case de.ClientError():
			return fasthttp.StatusBadRequest
		case de.Code == boarddto.CodeRenderTimeout:
			return fasthttp.StatusServiceUnavailable
		}
		return fasthttp.StatusInternalServerError
	}
	if errors.Is(err, context.Canceled) {
		return fasthttp.StatusServiceUnavailable
	}
	return fasthttp.StatusInternalServerError
}

func (h *Handler) writeDomainError(ctx *fasthttp.RequestCtx, err error) {
	status := StatusFor(err)
	var de *boarddto.DomainError
	if !errors.As(err, &de) {
		h.logger.Error("render_error", zap.Error(err))
		h.writeError(ctx, status, boarddto.CodeRenderFailure, "internal error", "", "")
		return
	}
	if status >= fasthttp.StatusInternalServerError {
		h.logger.Error("render_error", zap.String("code", string(de.Code)), zap.Error(err))
	}
	msg := de.Message
	if msg == "" {
		msg = string(de.Code)
	}
	h.writeError(ctx, status, de.Code, msg, de.Param, de.Value)
}

func (h *Handler) writeError(ctx *fasthttp.RequestCtx, status int, code boarddto.Code, msg, param, value string) {
	h.writeJSON(ctx, status, boarddto.ErrorBody{Error: boarddto.ErrorDetail{
		Code:    code,
		Message: msg,
		Param:   param,
		Value:   value,
	}})
}

func (h *Handler) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("json_encode_failed", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
