package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rustyeddy/traderdash/internal/logger"
)

const (
	// DefaultTimeout bounds every request; a hung call becomes a
	// TransportFailure once it elapses.
	DefaultTimeout = 60 * time.Second
	// DefaultAuthHeader carries the access key.
	DefaultAuthHeader = "X-Admin-Key"
)

// CredentialSource supplies the access key for each request.
type CredentialSource interface {
	Credential() (string, bool)
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func() (string, bool)

func (f CredentialFunc) Credential() (string, bool) { return f() }

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	AuthHeader  string
	Credentials CredentialSource
}

// Client talks to the trading backend. Read methods never fail: they
// log and substitute a safe default. Command methods return classified
// errors. Nothing is retried.
type Client struct {
	rc         *resty.Client
	authHeader string
	creds      CredentialSource
}

// NewClient creates a backend client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.AuthHeader == "" {
		opts.AuthHeader = DefaultAuthHeader
	}

	c := &Client{
		authHeader: opts.AuthHeader,
		creds:      opts.Credentials,
	}

	rc := resty.New()
	rc.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	rc.SetTimeout(opts.Timeout)
	rc.SetRetryCount(0)
	rc.SetLogger(restyLogger{logger.L})
	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if c.creds == nil {
			return nil
		}
		if key, ok := c.creds.Credential(); ok && key != "" {
			req.SetHeader(c.authHeader, key)
		}
		return nil
	})
	c.rc = rc
	return c
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.rc.BaseURL }

// do issues exactly one request and classifies the outcome.
func (c *Client) do(ctx context.Context, op, method, path string, prep func(*resty.Request)) ([]byte, error) {
	req := c.rc.R().SetContext(ctx)
	if prep != nil {
		prep(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, &RequestError{Op: op, Kind: ErrTransport, Err: err}
	}

	body := resp.Body()
	code := resp.StatusCode()
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, &RequestError{Op: op, Kind: ErrAuthorization, Status: code, Body: trimBody(body)}
	case code < 200 || code > 299:
		return nil, &RequestError{Op: op, Kind: ErrServer, Status: code, Body: trimBody(body)}
	}
	return body, nil
}

func readFailed(op string, err error) {
	logger.L.Warn("backend read failed, using default", "op", op, "kind", Kind(err), "err", err)
}

func emptyResult(op string, err error) error {
	return &RequestError{Op: op, Kind: ErrEmptyResult, Err: err}
}

// Health reads GET /. Any failure yields OfflineHealth.
func (c *Client) Health(ctx context.Context) HealthSnapshot {
	const op = "health"
	body, err := c.do(ctx, op, http.MethodGet, "/", nil)
	if err == nil {
		var r record
		if r, err = decodeObject(body); err == nil {
			return healthFromRecord(r)
		}
		err = emptyResult(op, err)
	}
	readFailed(op, err)
	return OfflineHealth()
}

// Positions reads GET /api/alpaca/positions. Any failure yields an
// empty list.
func (c *Client) Positions(ctx context.Context) []Position {
	const op = "positions"
	body, err := c.do(ctx, op, http.MethodGet, "/api/alpaca/positions", nil)
	if err == nil {
		var recs []record
		if recs, err = decodeList(body); err == nil {
			return positionsFromRecords(recs)
		}
		err = emptyResult(op, err)
	}
	readFailed(op, err)
	return []Position{}
}

// JournalHistory reads GET /api/journal/history. Any failure yields an
// empty list.
func (c *Client) JournalHistory(ctx context.Context) []JournalEntry {
	const op = "journal history"
	body, err := c.do(ctx, op, http.MethodGet, "/api/journal/history", nil)
	if err == nil {
		var recs []record
		if recs, err = decodeList(body); err == nil {
			return journalFromRecords(recs)
		}
		err = emptyResult(op, err)
	}
	readFailed(op, err)
	return []JournalEntry{}
}

// JournalStats reads GET /api/journal/stats. Any failure yields stats
// with every figure null.
func (c *Client) JournalStats(ctx context.Context) JournalStats {
	const op = "journal stats"
	body, err := c.do(ctx, op, http.MethodGet, "/api/journal/stats", nil)
	if err == nil {
		var r record
		if r, err = decodeObject(body); err == nil {
			return statsFromRecord(r)
		}
		err = emptyResult(op, err)
	}
	readFailed(op, err)
	return JournalStats{}
}

// Uploads reads GET /upload/list. Any failure yields an empty inventory.
func (c *Client) Uploads(ctx context.Context) UploadInventory {
	const op = "upload list"
	body, err := c.do(ctx, op, http.MethodGet, "/upload/list", nil)
	if err == nil {
		var inv UploadInventory
		if inv, err = uploadsFromBody(body); err == nil {
			return inv
		}
		err = emptyResult(op, err)
	}
	readFailed(op, err)
	return UploadInventory{}
}

// VerifyCredential makes one request to a protected endpoint and fails
// unless it answers with a non-empty body. Unlike JournalStats it does
// not swallow failures.
func (c *Client) VerifyCredential(ctx context.Context) error {
	const op = "verify credential"
	body, err := c.do(ctx, op, http.MethodGet, "/api/journal/stats", nil)
	if err != nil {
		return err
	}
	if blank(body) {
		return emptyResult(op, nil)
	}
	return nil
}

// RunScan triggers GET /scan and returns the candidates per section.
func (c *Client) RunScan(ctx context.Context) (ScanResults, error) {
	const op = "run scan"
	body, err := c.do(ctx, op, http.MethodGet, "/scan", nil)
	if err != nil {
		return nil, err
	}
	res, err := scanFromBody(body)
	if err != nil {
		return nil, emptyResult(op, err)
	}
	return res, nil
}

// UploadFile posts a CSV to /upload/{source} as multipart field "file".
func (c *Client) UploadFile(ctx context.Context, source, filename string, r io.Reader) (Ack, error) {
	op := fmt.Sprintf("upload %s", source)
	source = strings.TrimSpace(source)
	if source == "" || strings.ContainsAny(source, "/?#") {
		return Ack{}, &RequestError{Op: op, Kind: ErrInvalidRequest, Err: fmt.Errorf("bad source %q", source)}
	}
	base := filepath.Base(filename)
	if !strings.EqualFold(filepath.Ext(base), ".csv") {
		return Ack{}, &RequestError{Op: op, Kind: ErrInvalidRequest, Err: fmt.Errorf("only CSV files allowed, got %q", base)}
	}

	return c.command(ctx, op, "/upload/"+url.PathEscape(source), func(req *resty.Request) {
		req.SetFileReader("file", base, r)
	})
}

// ClosePosition asks the backend to close symbol.
func (c *Client) ClosePosition(ctx context.Context, symbol string) (Ack, error) {
	op := fmt.Sprintf("close position %s", symbol)
	if strings.TrimSpace(symbol) == "" {
		return Ack{}, &RequestError{Op: op, Kind: ErrInvalidRequest, Err: fmt.Errorf("symbol is required")}
	}
	return c.command(ctx, op, "/api/alpaca/close_position", func(req *resty.Request) {
		req.SetBody(map[string]string{"symbol": symbol})
	})
}

// LiquidateAll is the kill switch: close every position and cancel orders.
func (c *Client) LiquidateAll(ctx context.Context) (Ack, error) {
	return c.command(ctx, "liquidate all", "/api/emergency/liquidate", nil)
}

// ClearData deletes the uploaded data files on the backend.
func (c *Client) ClearData(ctx context.Context) (Ack, error) {
	return c.command(ctx, "clear data", "/api/data/clear", nil)
}

// command POSTs and requires an acknowledgement. The backend reports
// some failures as 200 with {"status":"error"}; those are ServerFailures.
func (c *Client) command(ctx context.Context, op, path string, prep func(*resty.Request)) (Ack, error) {
	body, err := c.do(ctx, op, http.MethodPost, path, prep)
	if err != nil {
		return Ack{}, err
	}
	if blank(body) {
		return Ack{}, emptyResult(op, nil)
	}
	r, err := decodeObject(body)
	if err != nil {
		return Ack{}, emptyResult(op, err)
	}
	ack := ackFromRecord(r)
	if ack.Status == "error" {
		return ack, &RequestError{Op: op, Kind: ErrServer, Status: http.StatusOK, Body: ack.Message}
	}
	logger.L.Info("backend command acknowledged", "op", op, "message", ack.Message)
	return ack, nil
}

type restyLogger struct{ l *slog.Logger }

func (r restyLogger) Errorf(format string, v ...any) { r.l.Debug(fmt.Sprintf(format, v...), "src", "resty") }
func (r restyLogger) Warnf(format string, v ...any)  { r.l.Debug(fmt.Sprintf(format, v...), "src", "resty") }
func (r restyLogger) Debugf(format string, v ...any) { r.l.Debug(fmt.Sprintf(format, v...), "src", "resty") }
