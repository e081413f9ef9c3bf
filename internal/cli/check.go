package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/park285/boardimage/pkg/boarddto"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
)

func newCheckCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe a running server: health, themes and a start position render",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), &fasthttp.Client{}, baseURL, timeout, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://127.0.0.1:8000", "server base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-request timeout")
	return cmd
}

// runCheck reports every probe and fails if any of them failed.
func runCheck(ctx context.Context, client *fasthttp.Client, baseURL string, timeout time.Duration, w io.Writer) error {
	base := strings.TrimRight(baseURL, "/")
	failed := 0

	if err := ctx.Err(); err != nil {
		return err
	}
	status, body, _, err := probe(client, base+"/healthz", timeout)
	switch {
	case err != nil:
		fmt.Fprintf(w, "/healthz error: %v\n", err)
		failed++
	case status != fasthttp.StatusOK:
		fmt.Fprintf(w, "/healthz status=%d\n", status)
		failed++
	default:
		fmt.Fprintf(w, "/healthz ok: %s\n", body)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	status, body, _, err = probe(client, base+"/themes", timeout)
	if err == nil && status != fasthttp.StatusOK {
		err = fmt.Errorf("status=%d", status)
	}
	var themes boarddto.ThemesResponse
	if err == nil {
		err = json.Unmarshal(body, &themes)
	}
	if err != nil {
		fmt.Fprintf(w, "/themes error: %v\n", err)
		failed++
	} else {
		names := make([]string, 0, len(themes.Themes))
		for _, t := range themes.Themes {
			names = append(names, t.Name)
		}
		fmt.Fprintf(w, "/themes ok: %s\n", strings.Join(names, ","))
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	status, body, headers, err := probe(client, base+"/board.png?fen=startpos", timeout)
	switch {
	case err != nil:
		fmt.Fprintf(w, "/board error: %v\n", err)
		failed++
	case status != fasthttp.StatusOK || !bytes.HasPrefix(body, []byte("\x89PNG")):
		fmt.Fprintf(w, "/board status=%d content-type=%s\n", status, headers.contentType)
		failed++
	default:
		fmt.Fprintf(w, "/board ok: %s etag=%s\n", humanize.Bytes(uint64(len(body))), headers.etag)
	}

	if failed > 0 {
		return fmt.Errorf("%d of 3 checks failed", failed)
	}
	return nil
}

type probeHeaders struct {
	contentType string
	etag        string
}

func probe(client *fasthttp.Client, url string, timeout time.Duration) (int, []byte, probeHeaders, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if err := client.DoTimeout(req, resp, timeout); err != nil {
		return 0, nil, probeHeaders{}, err
	}
	h := probeHeaders{
		contentType: string(resp.Header.ContentType()),
		etag:        string(resp.Header.Peek(fasthttp.HeaderETag)),
	}
	return resp.StatusCode(), append([]byte(nil), resp.Body()...), h, nil
}
