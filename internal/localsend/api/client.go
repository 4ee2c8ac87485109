// Package api is the request layer in front of the transfer backend. Calls
// return the raw status and body; callers decide what a status means.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	lserrors "github.com/0w0mewo/lsctl/internal/localsend/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "lsctl"
)

// Result is a backend answer.
type Result struct {
	Status int
	Body   []byte
}

func (r Result) OK() bool {
	return r.Status == fiber.StatusOK
}

// Message extracts the backend's error text, if any.
func (r Result) Message() string {
	for _, key := range []string{"error", "message", "msg"} {
		if v := gjson.GetBytes(r.Body, key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	if !gjson.ValidBytes(r.Body) {
		return strings.TrimSpace(string(r.Body))
	}
	return ""
}

// Decode unmarshals the body into v, unwrapping a top level "data" envelope.
func (r Result) Decode(v any) error {
	raw := r.Body
	if data := gjson.GetBytes(raw, "data"); data.IsObject() || data.IsArray() {
		raw = []byte(data.Raw)
	}
	return json.Unmarshal(raw, v)
}

// Err maps a non-success status to an error carrying the backend message.
func (r Result) Err() error {
	err := lserrors.ParseError(r.Status)
	if err == nil {
		return nil
	}
	if msg := r.Message(); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithInsecureTLS(insecure bool) Option {
	return func(c *Client) {
		c.insecure = insecure
	}
}

type Client struct {
	scheme   string
	host     string
	timeout  time.Duration
	insecure bool
}

// NewClient builds a client for the backend at baseURL, e.g. "http://127.0.0.1:53318".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: missing host", baseURL)
	}

	c := &Client{
		scheme:  u.Scheme,
		host:    u.Host,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL is the backend origin, used to derive the event channel address.
func (c *Client) BaseURL() string {
	return c.scheme + "://" + c.host
}

type request struct {
	method string
	path   string
	query  url.Values
	json   any
	body   []byte
	ctype  string
}

func (c *Client) prepareURI(req *fasthttp.Request, path string, query url.Values) {
	req.Header.SetUserAgent(userAgent)
	req.URI().SetScheme(c.scheme)
	req.URI().SetHost(c.host)
	req.URI().SetPath(path)
	for key, values := range query {
		for _, v := range values {
			req.URI().QueryArgs().Add(key, v)
		}
	}
}

func (c *Client) do(ctx context.Context, r request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remain := time.Until(deadline); remain < timeout {
			timeout = remain
		}
	}

	agent := fiber.AcquireAgent()

	// setup request
	req := agent.Request()
	req.Header.SetMethod(r.method)
	c.prepareURI(req, r.path, r.query)
	err := agent.Parse()
	if err != nil {
		fiber.ReleaseAgent(agent)
		return Result{}, err
	}

	if c.insecure {
		agent.InsecureSkipVerify()
	}
	agent.Timeout(timeout)

	switch {
	case r.json != nil:
		agent.JSON(r.json)
	case r.body != nil:
		agent.Body(r.body)
		agent.ContentType(r.ctype)
	}

	// make request, Bytes releases the agent
	status, b, errs := agent.Bytes()
	if len(errs) != 0 {
		return Result{}, fmt.Errorf("%w: %v", lserrors.ErrBackendUnreachable, errs[0])
	}

	return Result{Status: status, Body: b}, nil
}

// decodeOK runs r and decodes a 200 body into v.
func (c *Client) decodeOK(ctx context.Context, r request, v any) error {
	res, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return res.Decode(v)
}
