package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/akismet/akismetclient-go/client"
	"github.com/akismet/akismetclient-go/errors"
	"github.com/akismet/akismetclient-go/protocol"
)

func (s *Server) handleCommentCheck(w http.ResponseWriter, r *http.Request) {
	c, comment, err := s.parseCommentRequest(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := c.CheckComment(r.Context(), comment)
	if err != nil {
		writeError(w, err)
		return
	}

	body := "false"
	if result.IsSpam() {
		body = "true"
	}
	if result == protocol.PervasiveSpam {
		w.Header().Set(protocol.HeaderProTip, protocol.ProTipDiscard)
	}
	writeText(w, body)
}

func (s *Server) handleSubmit(command protocol.AkismetCommand) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, comment, err := s.parseCommentRequest(w, r)
		if err != nil {
			writeError(w, err)
			return
		}

		if command == protocol.SubmitHam {
			err = c.SubmitHam(r.Context(), comment)
		} else {
			err = c.SubmitSpam(r.Context(), comment)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeText(w, protocol.SuccessfulSubmission)
	}
}

func (s *Server) handleVerifyKey(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r, s.settings.MaxBodyBytes)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := s.clientFor(fields)
	if err != nil {
		writeError(w, err)
		return
	}

	valid, err := c.VerifyKey(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if valid {
		writeText(w, "valid")
		return
	}
	writeText(w, "invalid")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "ok")
}

func (s *Server) parseCommentRequest(w http.ResponseWriter, r *http.Request) (*client.Client, *protocol.Comment, error) {
	fields, err := readFields(w, r, s.settings.MaxBodyBytes)
	if err != nil {
		return nil, nil, err
	}
	comment, err := protocol.CommentFromFields(fields)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.clientFor(fields)
	if err != nil {
		return nil, nil, err
	}
	return c, comment, nil
}

// clientFor builds a client for one proxied call. The key, test flag and blog
// given in the request take precedence over the server defaults.
func (s *Server) clientFor(fields map[string]any) (*client.Client, error) {
	cfg := *s.akismet
	if key := firstString(fields, protocol.KeyField, "api_key"); key != "" {
		cfg.APIKey = key
	}
	if isTrue(fields[protocol.TestField]) {
		cfg.IsTest = true
	}

	blog := s.blog
	if _, ok := fields["blog"]; ok {
		parsed, err := protocol.BlogFromFields(fields)
		if err != nil {
			return nil, err
		}
		blog = parsed
	}

	return client.NewClient(&cfg, blog,
		client.WithDoer(s.doer),
		client.WithObserver(s.collector),
		client.WithLogger(s.logger),
	)
}

// readFields decodes a form or JSON body into flat wire fields
func readFields(w http.ResponseWriter, r *http.Request, maxBytes int64) (map[string]any, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		return nil, errors.NewIOError(err)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		fields := make(map[string]any)
		if len(strings.TrimSpace(string(data))) == 0 {
			return fields, nil
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, errors.NewSerdeError(err)
		}
		return fields, nil
	}

	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, errors.NewParseError("body", err)
	}
	fields := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}
	return fields, nil
}

func firstString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func isTrue(v any) bool {
	switch x := v.(type) {
	case string:
		return x == "1" || strings.EqualFold(x, "true")
	case bool:
		return x
	case float64:
		return x == 1
	}
	return false
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}
