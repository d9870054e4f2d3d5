package client

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/akismet/akismetclient-go/config"
	"github.com/akismet/akismetclient-go/errors"
	"github.com/akismet/akismetclient-go/protocol"
)

// recordedRequest is what stubDoer saw of one request
type recordedRequest struct {
	Method string
	URL    *url.URL
	Header http.Header
	Form   url.Values
}

// stubDoer answers every request with handler, whatever the target host
type stubDoer struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func (d *stubDoer) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.requests = append(d.requests, recordedRequest{
		Method: req.Method,
		URL:    req.URL,
		Header: req.Header.Clone(),
		Form:   form,
	})
	d.mu.Unlock()

	req.Body = io.NopCloser(strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	d.handler(rec, req)
	return rec.Result(), nil
}

func (d *stubDoer) last(t *testing.T) recordedRequest {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.requests) == 0 {
		t.Fatal("no request was sent")
	}
	return d.requests[len(d.requests)-1]
}

// errDoer always fails
type errDoer struct{ err error }

func (d errDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

func reply(body string, headers map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		io.WriteString(w, body)
	}
}

func testBlog(t *testing.T) *protocol.Blog {
	t.Helper()
	blog, err := protocol.NewBlog("https://www.example.com")
	if err != nil {
		t.Fatalf("NewBlog: %v", err)
	}
	return blog.WithCharset("UTF-8").WithLanguages("en", "fr")
}

func testComment() *protocol.Comment {
	author := &protocol.Author{IPAddress: "127.0.0.1", UserAgent: "Mozilla/5.0", Name: "Jane"}
	return protocol.NewComment("Hello world", author).WithType(protocol.TypeComment)
}

func newTestClient(t *testing.T, doer Doer, opts ...Option) *Client {
	t.Helper()
	cfg := config.NewConfig("ABC123").WithUserAgent("Go/test | Akismet/test")
	c, err := NewClient(cfg, testBlog(t), append([]Option{WithDoer(doer)}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestCheckCommentVerdicts(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		headers map[string]string
		want    protocol.CheckResult
	}{
		{"ham", "false", nil, protocol.Ham},
		{"spam", "true", nil, protocol.Spam},
		{"pervasive spam", "true", map[string]string{"x-akismet-pro-tip": "discard"}, protocol.PervasiveSpam},
		{"other pro tip", "true", map[string]string{"x-akismet-pro-tip": "keep"}, protocol.Spam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &stubDoer{handler: reply(tt.body, tt.headers)})
			got, err := c.CheckComment(context.Background(), testComment())
			if err != nil {
				t.Fatalf("CheckComment: %v", err)
			}
			if got != tt.want {
				t.Errorf("result = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckCommentRequest(t *testing.T) {
	doer := &stubDoer{handler: reply("false", nil)}
	c := newTestClient(t, doer)

	if _, err := c.CheckComment(context.Background(), testComment()); err != nil {
		t.Fatalf("CheckComment: %v", err)
	}

	req := doer.last(t)
	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	if got, want := req.URL.String(), "https://ABC123.rest.akismet.com/1.1/comment-check"; got != want {
		t.Errorf("url = %s, want %s", got, want)
	}
	if got := req.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := req.Header.Get("User-Agent"); got != "Go/test | Akismet/test" {
		t.Errorf("User-Agent = %q", got)
	}

	want := map[string]string{
		"blog":            "https://www.example.com/",
		"blog_charset":    "UTF-8",
		"blog_lang":       "en,fr",
		"user_ip":         "127.0.0.1",
		"user_agent":      "Mozilla/5.0",
		"comment_author":  "Jane",
		"comment_content": "Hello world",
		"comment_type":    "comment",
	}
	if len(req.Form) != len(want) {
		t.Errorf("form has %d fields, want %d: %v", len(req.Form), len(want), req.Form)
	}
	for k, v := range want {
		if got := req.Form.Get(k); got != v {
			t.Errorf("form[%s] = %q, want %q", k, got, v)
		}
	}
	if req.Form.Has("is_test") {
		t.Error("is_test must not be sent outside test mode")
	}
	if req.Form.Has("key") {
		t.Error("the API key travels in the host name, not in the body")
	}
}

func TestTestModeForcesFlag(t *testing.T) {
	doer := &stubDoer{handler: reply("false", nil)}
	cfg := config.NewConfig("ABC123").WithTest(true)
	c, err := NewClient(cfg, testBlog(t), WithDoer(doer))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	values := NewRequest(c, protocol.CommentCheck, map[string]string{"is_test": "0"}).Values()
	if got := values.Get("is_test"); got != "1" {
		t.Errorf("is_test = %q, want 1", got)
	}

	if _, err := c.CheckComment(context.Background(), testComment()); err != nil {
		t.Fatalf("CheckComment: %v", err)
	}
	if _, err := c.VerifyKey(context.Background()); err != nil {
		t.Fatalf("VerifyKey: %v", err)
	}
	for i, req := range doer.requests {
		if got := req.Form.Get("is_test"); got != "1" {
			t.Errorf("request %d: is_test = %q, want 1", i, got)
		}
	}
}

func TestSubmit(t *testing.T) {
	commands := []struct {
		name string
		path string
		call func(*Client, context.Context, *protocol.Comment) error
	}{
		{"ham", "/1.1/submit-ham", (*Client).SubmitHam},
		{"spam", "/1.1/submit-spam", (*Client).SubmitSpam},
	}

	for _, cmd := range commands {
		t.Run(cmd.name+" accepted", func(t *testing.T) {
			doer := &stubDoer{handler: reply("Thanks for making the web a better place.", nil)}
			c := newTestClient(t, doer)
			if err := cmd.call(c, context.Background(), testComment()); err != nil {
				t.Fatalf("submit: %v", err)
			}
			req := doer.last(t)
			if req.URL.Host != "ABC123.rest.akismet.com" || req.URL.Path != cmd.path {
				t.Errorf("url = %s", req.URL)
			}
		})

		t.Run(cmd.name+" unexpected body", func(t *testing.T) {
			c := newTestClient(t, &stubDoer{handler: reply("Thanks!", nil)})
			err := cmd.call(c, context.Background(), testComment())
			if !errors.IsType(err, errors.ProtocolError) {
				t.Fatalf("err = %v, want protocol error", err)
			}
		})
	}
}

func TestVerifyKey(t *testing.T) {
	var mu sync.Mutex
	var lastForm url.Values
	var lastHost string
	status, body := http.StatusOK, "valid"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1.1/verify-key" {
			http.NotFound(w, r)
			return
		}
		r.ParseForm()
		mu.Lock()
		lastForm = r.PostForm
		lastHost = r.Host
		s, b := status, body
		mu.Unlock()
		w.WriteHeader(s)
		io.WriteString(w, b)
	}))
	defer server.Close()

	cfg := config.NewConfig("ABC123").WithBaseURL(server.URL + "/1.1/")
	c, err := NewClient(cfg, testBlog(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	valid, err := c.VerifyKey(context.Background())
	if err != nil || !valid {
		t.Fatalf("VerifyKey = %v, %v; want true, nil", valid, err)
	}
	if got := lastForm.Get("key"); got != "ABC123" {
		t.Errorf("key = %q, want ABC123", got)
	}
	if got := lastForm.Get("blog"); got != "https://www.example.com/" {
		t.Errorf("blog = %q", got)
	}
	if want := strings.TrimPrefix(server.URL, "http://"); lastHost != want {
		t.Errorf("host = %q, want %q", lastHost, want)
	}

	mu.Lock()
	body = "invalid"
	mu.Unlock()
	valid, err = c.VerifyKey(context.Background())
	if err != nil || valid {
		t.Fatalf("VerifyKey = %v, %v; want false, nil", valid, err)
	}

	mu.Lock()
	status, body = http.StatusInternalServerError, "boom"
	mu.Unlock()
	_, err = c.VerifyKey(context.Background())
	var ae *errors.AkismetError
	if !stderrors.As(err, &ae) || ae.Type != errors.TransportError {
		t.Fatalf("err = %v, want transport error", err)
	}
	if ae.StatusCode != http.StatusInternalServerError {
		t.Errorf("status code = %d", ae.StatusCode)
	}
	if !strings.Contains(ae.Message, "Internal Server Error") {
		t.Errorf("message = %q", ae.Message)
	}
	if ae.URL != server.URL+"/1.1/verify-key" {
		t.Errorf("url = %q", ae.URL)
	}
}

func TestResponseClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		headers   map[string]string
		wantType  errors.ErrorType
		wantMsg   string
		wantAlert string
	}{
		{
			name:     "non 2xx status",
			status:   http.StatusForbidden,
			wantType: errors.TransportError,
			wantMsg:  "HTTP 403: Forbidden",
		},
		{
			name:      "alert code and message",
			status:    http.StatusOK,
			headers:   map[string]string{"x-akismet-alert-code": "10001", "x-akismet-alert-msg": "Your site is using an expired Yahoo! Small Business API key."},
			wantType:  errors.ServiceAlertError,
			wantMsg:   "Your site is using an expired Yahoo! Small Business API key.",
			wantAlert: "10001",
		},
		{
			name:     "alert wins over debug help",
			status:   http.StatusOK,
			headers:  map[string]string{"x-akismet-alert-msg": "Account suspended", "x-akismet-debug-help": "Empty user_ip"},
			wantType: errors.ServiceAlertError,
			wantMsg:  "Account suspended",
		},
		{
			name:     "debug help",
			status:   http.StatusOK,
			headers:  map[string]string{"x-akismet-debug-help": "Empty \"user_ip\" value"},
			wantType: errors.DebugHelpError,
			wantMsg:  "Empty \"user_ip\" value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &stubDoer{handler: func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, "invalid")
			}}
			c := newTestClient(t, doer)

			_, err := c.CheckComment(context.Background(), testComment())
			var ae *errors.AkismetError
			if !stderrors.As(err, &ae) {
				t.Fatalf("err = %v, want *AkismetError", err)
			}
			if ae.Type != tt.wantType {
				t.Errorf("type = %v, want %v", ae.Type, tt.wantType)
			}
			if ae.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", ae.Message, tt.wantMsg)
			}
			if ae.AlertCode != tt.wantAlert {
				t.Errorf("alert code = %q, want %q", ae.AlertCode, tt.wantAlert)
			}

			// verify-key does not swallow these either
			if _, err := c.VerifyKey(context.Background()); !errors.IsType(err, tt.wantType) {
				t.Errorf("VerifyKey err = %v, want %v", err, tt.wantType)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	cause := stderrors.New("dial tcp: lookup ABC123.rest.akismet.com: no such host")
	c := newTestClient(t, errDoer{err: cause})

	_, err := c.CheckComment(context.Background(), testComment())
	var ae *errors.AkismetError
	if !stderrors.As(err, &ae) || ae.Type != errors.TransportError {
		t.Fatalf("err = %v, want transport error", err)
	}
	if !stderrors.Is(err, cause) {
		t.Error("transport error should wrap its cause")
	}
	if ae.URL != "https://ABC123.rest.akismet.com/1.1/comment-check" {
		t.Errorf("url = %q", ae.URL)
	}
}

func TestContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "valid")
	}))
	defer server.Close()

	cfg := config.NewConfig("ABC123").WithBaseURL(server.URL + "/1.1/")
	c, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.VerifyKey(ctx)
	if !errors.IsType(err, errors.TransportError) {
		t.Fatalf("err = %v, want transport error", err)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want it to wrap context.Canceled", err)
	}
}

func TestInvalidKeyIsRejectedBeforeSending(t *testing.T) {
	doer := &stubDoer{handler: reply("false", nil)}
	c, err := NewClient(config.NewConfig("not.a.label"), nil, WithDoer(doer))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.CheckComment(context.Background(), testComment()); !errors.IsType(err, errors.ConfigError) {
		t.Fatalf("err = %v, want config error", err)
	}
	if len(doer.requests) != 0 {
		t.Error("no request should have been sent")
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	if _, err := NewClient(nil, nil); !errors.IsType(err, errors.ConfigError) {
		t.Errorf("nil config: err = %v", err)
	}
	if _, err := NewClient(config.NewConfig(""), nil); !errors.IsType(err, errors.ConfigError) {
		t.Errorf("empty key: err = %v", err)
	}
	missingCA := "/nonexistent/ca.pem"
	cfg := config.NewConfig("ABC123").WithTLSSettings(&config.TLSSettings{CAPath: &missingCA})
	if _, err := NewClient(cfg, nil); !errors.IsType(err, errors.ConfigError) {
		t.Errorf("missing CA: err = %v", err)
	}
	cfg = config.NewConfig("ABC123").WithProxyConfig(&config.ProxyConfig{ProxyURL: "http://[::1"})
	if _, err := NewClient(cfg, nil); !errors.IsType(err, errors.ConfigError) {
		t.Errorf("bad proxy: err = %v", err)
	}
}

func TestObserver(t *testing.T) {
	var requests []RequestEvent
	var responses []ResponseEvent
	observer := ObserverFuncs{
		OnRequest: func(e RequestEvent) {
			e.Fields.Set("comment_content", "tampered")
			requests = append(requests, e)
		},
		OnResponse: func(e ResponseEvent) { responses = append(responses, e) },
	}

	doer := &stubDoer{handler: reply("true", map[string]string{"x-akismet-pro-tip": "discard"})}
	c := newTestClient(t, doer, WithObserver(observer))

	result, err := c.CheckComment(context.Background(), testComment())
	if err != nil {
		t.Fatalf("CheckComment: %v", err)
	}
	if result != protocol.PervasiveSpam {
		t.Errorf("result = %v", result)
	}
	if got := doer.last(t).Form.Get("comment_content"); got != "Hello world" {
		t.Errorf("observer changed the request: comment_content = %q", got)
	}

	if len(requests) != 1 || len(responses) != 1 {
		t.Fatalf("got %d request and %d response events", len(requests), len(responses))
	}
	if requests[0].Command != protocol.CommentCheck {
		t.Errorf("request command = %v", requests[0].Command)
	}
	resp := responses[0]
	if resp.StatusCode != http.StatusOK || resp.Body != "true" || resp.Err != nil {
		t.Errorf("response event = %+v", resp)
	}
	if resp.Header.Get("x-akismet-pro-tip") != "discard" {
		t.Errorf("response header = %v", resp.Header)
	}

	c = newTestClient(t, errDoer{err: stderrors.New("boom")}, WithObserver(observer))
	c.CheckComment(context.Background(), testComment())
	if len(responses) != 2 || responses[1].Err == nil || responses[1].StatusCode != 0 {
		t.Errorf("failed call event = %+v", responses[len(responses)-1])
	}
}

func TestConfigChangesAfterNewClient(t *testing.T) {
	doer := &stubDoer{handler: reply("false", nil)}
	ca := "/etc/ssl/ca.pem"
	cfg := config.NewConfig("ABC123").WithUserAgent("Go/test | Akismet/test").
		WithTLSSettings(&config.TLSSettings{CAPath: &ca})
	c, err := NewClient(cfg, testBlog(t), WithDoer(doer))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	cfg.WithTest(true).WithBaseURL("https://other.example/1.1/").WithUserAgent("changed")
	cfg.APIKey = "XYZ789"
	cfg.TLSSettings.CertPath = "/tmp/cert.pem"

	if _, err := c.CheckComment(context.Background(), testComment()); err != nil {
		t.Fatalf("CheckComment: %v", err)
	}
	req := doer.last(t)
	if req.URL.Host != "ABC123.rest.akismet.com" {
		t.Errorf("host = %s, want ABC123.rest.akismet.com", req.URL.Host)
	}
	if req.Form.Has("is_test") {
		t.Error("is_test sent after the caller changed the config")
	}
	if got := req.Header.Get("User-Agent"); got != "Go/test | Akismet/test" {
		t.Errorf("User-Agent = %q", got)
	}
	if c.APIKey() != "ABC123" || c.IsTest() {
		t.Errorf("accessors changed: key=%s test=%v", c.APIKey(), c.IsTest())
	}
	if c.config.TLSSettings.CertPath != "" {
		t.Error("TLS settings are shared with the caller")
	}
}

func TestObserverSeesProtocolError(t *testing.T) {
	var responses []ResponseEvent
	observer := ObserverFuncs{OnResponse: func(e ResponseEvent) { responses = append(responses, e) }}
	c := newTestClient(t, &stubDoer{handler: reply("Thanks!", nil)}, WithObserver(observer))

	err := c.SubmitSpam(context.Background(), testComment())
	if !errors.IsType(err, errors.ProtocolError) {
		t.Fatalf("err = %v, want protocol error", err)
	}
	if len(responses) != 1 {
		t.Fatalf("got %d response events", len(responses))
	}
	if !errors.IsType(responses[0].Err, errors.ProtocolError) {
		t.Errorf("event err = %v, want protocol error", responses[0].Err)
	}
	if responses[0].StatusCode != http.StatusOK || responses[0].Body != "Thanks!" {
		t.Errorf("response event = %+v", responses[0])
	}
}

func TestConcurrentUse(t *testing.T) {
	doer := &stubDoer{handler: func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		if form.Get("comment_content") == "spam" {
			io.WriteString(w, "true")
			return
		}
		io.WriteString(w, "false")
	}}
	c := newTestClient(t, doer)

	var wg sync.WaitGroup
	errs := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			content, want := "ham", protocol.Ham
			if i%2 == 0 {
				content, want = "spam", protocol.Spam
			}
			got, err := c.CheckComment(context.Background(), protocol.NewComment(content, nil))
			if err != nil || got != want {
				errs <- content
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for content := range errs {
		t.Errorf("wrong verdict for %q", content)
	}
}
