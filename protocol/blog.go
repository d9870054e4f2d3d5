package protocol

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/akismet/akismetclient-go/errors"
)

// Blog represents the site or application that submits comments
type Blog struct {
	// Front page of the site
	URL *url.URL
	// Character encoding of the submitted values, e.g. "UTF-8"
	Charset string
	// ISO 639-1 codes of the languages in use on the site
	Languages []string
}

// NewBlog creates a blog for the given front page URL
func NewBlog(rawURL string) (*Blog, error) {
	u, err := ParseURL("blog", rawURL)
	if err != nil {
		return nil, err
	}
	return &Blog{URL: u}, nil
}

// WithCharset sets the character encoding
func (b *Blog) WithCharset(charset string) *Blog {
	b.Charset = charset
	return b
}

// WithLanguages adds language codes, trimmed and without repeats
func (b *Blog) WithLanguages(languages ...string) *Blog {
	b.Languages = normalizeLanguages(append(b.Languages, languages...))
	return b
}

// Fields converts the blog to Akismet wire fields, omitting empty values
func (b *Blog) Fields() map[string]string {
	m := make(map[string]string)
	if b == nil {
		return m
	}
	setIfNotEmpty(m, "blog", formatURL(b.URL))
	setIfNotEmpty(m, "blog_charset", b.Charset)
	setIfNotEmpty(m, "blog_lang", strings.Join(normalizeLanguages(b.Languages), ","))
	return m
}

// BlogFromFields creates a blog from Akismet wire fields
func BlogFromFields(m map[string]any) (*Blog, error) {
	u, err := parseURLField(m, "blog")
	if err != nil {
		return nil, err
	}
	return &Blog{
		URL:       u,
		Charset:   stringValue(m, "blog_charset"),
		Languages: normalizeLanguages(strings.Split(stringValue(m, "blog_lang"), ",")),
	}, nil
}

// normalizeLanguages trims every code and drops blanks and repeats, keeping first-seen order.
// It returns nil when no code is left.
func normalizeLanguages(languages []string) []string {
	out := make([]string, 0, len(languages))
	seen := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		out = append(out, lang)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MarshalJSON encodes the blog as its flat wire fields
func (b Blog) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Fields())
}

// UnmarshalJSON decodes the blog from its flat wire fields
func (b *Blog) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.NewSerdeError(err)
	}
	parsed, err := BlogFromFields(m)
	if err != nil {
		return err
	}
	*b = *parsed
	return nil
}
