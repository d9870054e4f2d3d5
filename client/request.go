package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/akismet/akismetclient-go/errors"
	"github.com/akismet/akismetclient-go/protocol"
)

// Response is a successful, already classified Akismet response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// Request represents an HTTP request to Akismet
type Request struct {
	endpoint  protocol.AkismetEndpoint
	client    *Client
	fields    map[string]string
	bodyCheck func(string) error
}

// NewRequest creates a new request carrying fields on top of the blog fields
func NewRequest(client *Client, command protocol.AkismetCommand, fields map[string]string) *Request {
	return &Request{
		endpoint: protocol.FromCommand(command),
		client:   client,
		fields:   fields,
	}
}

// WithBodyCheck sets a check run on the body of a response that passed classification.
// Its error is reported to observers like any other failure.
func (r *Request) WithBodyCheck(check func(body string) error) *Request {
	r.bodyCheck = check
	return r
}

// Values builds the form body: blog fields, then the request fields, then the test flag.
// The test flag is applied last so request fields cannot override it.
func (r *Request) Values() url.Values {
	values := make(url.Values)
	for k, v := range r.client.blog.Fields() {
		values.Set(k, v)
	}
	for k, v := range r.fields {
		values.Set(k, v)
	}
	if r.client.config.IsTest {
		values.Set(protocol.TestField, "1")
	}
	return values
}

// Execute sends the request and returns the response once it has been fully read
func (r *Request) Execute(ctx context.Context) (*Response, error) {
	cfg := r.client.config

	target, err := protocol.ResolveURL(cfg.BaseURL, cfg.APIKey, r.endpoint.Command)
	if err != nil {
		return nil, err
	}
	targetURL := target.String()

	values := r.Values()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, errors.NewTransportErrorWithCause(targetURL, err)
	}
	req.Header.Set("Content-Type", protocol.FormContentType)
	req.Header.Set("User-Agent", cfg.UserAgent)

	r.client.notifyBeforeSend(RequestEvent{
		Command: r.endpoint.Command,
		URL:     targetURL,
		Header:  req.Header.Clone(),
		Fields:  cloneValues(values),
	})

	start := time.Now()
	resp, body, err := r.roundTrip(req, targetURL)
	event := ResponseEvent{
		Command:  r.endpoint.Command,
		URL:      targetURL,
		Body:     body,
		Duration: time.Since(start),
		Err:      err,
	}
	if resp != nil {
		event.StatusCode = resp.StatusCode
		event.Header = resp.Header.Clone()
	}
	r.client.notifyAfterReceive(event)

	r.client.logger.DebugContext(ctx, "akismet request",
		slog.String("endpoint", r.endpoint.Path),
		slog.String("key", r.client.fingerprint),
		slog.Int("status", event.StatusCode),
		slog.Duration("duration", event.Duration),
		slog.Any("error", err),
	)

	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// roundTrip issues req, reads the whole body, classifies the outcome and runs the body check. The response
// is returned whenever one was received, even if it is classified as an error.
func (r *Request) roundTrip(req *http.Request, targetURL string) (*http.Response, string, error) {
	resp, err := r.client.doer.Do(req)
	if err != nil {
		return nil, "", errors.NewTransportErrorWithCause(targetURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, "", errors.NewTransportErrorWithCause(targetURL, err)
	}
	body := string(data)

	if err := classifyResponse(resp, targetURL); err != nil {
		return resp, body, err
	}
	if r.bodyCheck != nil {
		return resp, body, r.bodyCheck(body)
	}
	return resp, body, nil
}

// classifyResponse maps status codes and x-akismet-* headers to errors. Alerts take
// priority over debug help.
func classifyResponse(resp *http.Response, targetURL string) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewTransportError(resp.StatusCode, statusText(resp), targetURL)
	}

	code := resp.Header.Get(protocol.HeaderAlertCode)
	msg := resp.Header.Get(protocol.HeaderAlertMsg)
	if code != "" || msg != "" {
		if msg == "" {
			msg = "alert code " + code
		}
		return errors.NewServiceAlertError(code, msg)
	}

	if help := resp.Header.Get(protocol.HeaderDebugHelp); help != "" {
		return errors.NewDebugHelpError(help)
	}
	return nil
}

// statusText returns the reason phrase of resp, e.g. "Not Found"
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
