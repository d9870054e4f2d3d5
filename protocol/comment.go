package protocol

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/akismet/akismetclient-go/errors"
)

// CommentType classifies a comment. Akismet accepts any value; the constants below
// are the ones it documents.
type CommentType string

const (
	TypeBlogPost    CommentType = "blog-post"
	TypeComment     CommentType = "comment"
	TypeContactForm CommentType = "contact-form"
	TypeForumPost   CommentType = "forum-post"
	TypeMessage     CommentType = "message"
	TypePingback    CommentType = "pingback"
	TypeReply       CommentType = "reply"
	TypeSignup      CommentType = "signup"
	TypeTrackback   CommentType = "trackback"
	TypeTweet       CommentType = "tweet"
)

// Comment represents the content submitted to Akismet
type Comment struct {
	// Optional author of the comment
	Author *Author
	// Content of the comment
	Content string
	// Creation time, zero if unknown
	Date time.Time
	// Permanent location of the entry the comment was submitted to
	Permalink *url.URL
	// Last modification time of the commented post, zero if unknown
	PostModified time.Time
	// Why the comment is being checked again, e.g. "edit"
	RecheckReason string
	// HTTP referrer that led to the comment form
	Referrer *url.URL
	// Comment classification
	Type CommentType
}

// NewComment creates a comment with the given content and author
func NewComment(content string, author *Author) *Comment {
	return &Comment{Content: content, Author: author}
}

// WithType sets the comment type
func (c *Comment) WithType(t CommentType) *Comment {
	c.Type = t
	return c
}

// WithDate sets the creation time
func (c *Comment) WithDate(t time.Time) *Comment {
	c.Date = t
	return c
}

// Fields converts the comment, including its author, to Akismet wire fields
func (c *Comment) Fields() map[string]string {
	if c == nil {
		return make(map[string]string)
	}
	m := c.Author.Fields()
	setIfNotEmpty(m, "comment_content", c.Content)
	setIfNotEmpty(m, "comment_date_gmt", formatDate(c.Date))
	setIfNotEmpty(m, "permalink", formatURL(c.Permalink))
	setIfNotEmpty(m, "comment_post_modified_gmt", formatDate(c.PostModified))
	setIfNotEmpty(m, "recheck_reason", c.RecheckReason)
	setIfNotEmpty(m, "referrer", formatURL(c.Referrer))
	setIfNotEmpty(m, "comment_type", string(c.Type))
	return m
}

// CommentFromFields creates a comment from Akismet wire fields. An author is only
// attached when at least one author field is present.
func CommentFromFields(m map[string]any) (*Comment, error) {
	c := &Comment{
		Content:       stringValue(m, "comment_content"),
		RecheckReason: stringValue(m, "recheck_reason"),
		Type:          CommentType(stringValue(m, "comment_type")),
	}

	var err error
	if HasAuthorFields(m) {
		if c.Author, err = AuthorFromFields(m); err != nil {
			return nil, err
		}
	}
	if c.Date, err = parseDate(m, "comment_date_gmt"); err != nil {
		return nil, err
	}
	if c.PostModified, err = parseDate(m, "comment_post_modified_gmt"); err != nil {
		return nil, err
	}
	if c.Permalink, err = parseURLField(m, "permalink"); err != nil {
		return nil, err
	}
	if c.Referrer, err = parseURLField(m, "referrer"); err != nil {
		return nil, err
	}
	return c, nil
}

// MarshalJSON encodes the comment as its flat wire fields
func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Fields())
}

// UnmarshalJSON decodes the comment from its flat wire fields
func (c *Comment) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.NewSerdeError(err)
	}
	parsed, err := CommentFromFields(m)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}
