package cli

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/park285/boardimage/internal/config"
	"github.com/park285/boardimage/internal/httpapi"
	"github.com/park285/boardimage/pkg/boarddto"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"THEME_DIR", "DEFAULT_THEME", "DEFAULT_SQUARE_SIZE", "MAX_SQUARE_SIZE", "DEFAULT_FORMAT", "DEFAULT_COORDINATES"} {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSetVersion(t *testing.T) {
	prev := version
	t.Cleanup(func() { version = prev })

	SetVersion("1.2.3")
	if version != "1.2.3" {
		t.Fatalf("version = %q", version)
	}
	SetVersion("")
	if version != "1.2.3" {
		t.Fatalf("empty version should be ignored, got %q", version)
	}
}

func TestRenderToStdout(t *testing.T) {
	clearEnv(t)
	out, err := execute(t, "render", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR", "b", "KQkq", "e3", "0", "1",
		"--lastmove", "e2e4", "--coordinates", "--size", "30")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, err := xmlquery.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("output is not xml: %v", err)
	}
	root := xmlquery.FindOne(doc, "/*[local-name()='svg']")
	if root == nil || root.SelectAttr("width") != "270" {
		t.Fatalf("unexpected svg root: %v", root)
	}
	if n := len(xmlquery.Find(doc, "//*[local-name()='text']")); n != 32 {
		t.Fatalf("labels = %d, want 32", n)
	}
}

func TestRenderToFileUsesExtension(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "board.png")
	if _, err := execute(t, "render", "startpos", "--flip", "-o", path); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("output is not png")
	}
}

func TestRenderRejectsBadOption(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "render", "startpos", "--highlight", "z9")
	if boarddto.CodeOf(err) != boarddto.CodeInvalidSquareReference {
		t.Fatalf("err = %v, want INVALID_SQUARE_REFERENCE", err)
	}
	if _, err := execute(t, "render"); err == nil {
		t.Fatalf("render without a position should fail")
	}
}

func TestCheckAgainstServer(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	d, err := buildDeps(cfg, nil)
	if err != nil {
		t.Fatalf("buildDeps: %v", err)
	}
	h := httpapi.NewHandler(d.Service, d.Themes, nil)

	ln := fasthttputil.NewInmemoryListener()
	defer ln.Close()
	go func() { _ = fasthttp.Serve(ln, h.Handle) }()

	client := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	var out bytes.Buffer
	if err := runCheck(context.Background(), client, "http://boardimage.test/", 5*time.Second, &out); err != nil {
		t.Fatalf("check: %v\n%s", err, out.String())
	}
	for _, want := range []string{"/healthz ok: ok", "/themes ok: blue,brown,green", "/board ok:"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestCheckReportsFailures(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	defer ln.Close()
	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusNotFound) })
	}()

	client := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	var out bytes.Buffer
	err := runCheck(context.Background(), client, "http://boardimage.test", time.Second, &out)
	if err == nil || !strings.Contains(err.Error(), "3 of 3") {
		t.Fatalf("err = %v\n%s", err, out.String())
	}
}
