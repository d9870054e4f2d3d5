package protocol

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/akismet/akismetclient-go/errors"
)

// RoleAdministrator is the user role that makes Akismet always answer ham
const RoleAdministrator = "administrator"

// Author represents the author of a comment
type Author struct {
	// IP address of the author. Akismet requires it on every check
	IPAddress string
	// User agent string of the author's browser
	UserAgent string
	// Optional email address
	Email string
	// Optional name or nickname
	Name string
	// Optional role, see RoleAdministrator
	Role string
	// Optional home page
	URL *url.URL
}

// Fields converts the author to Akismet wire fields, omitting empty values
func (a *Author) Fields() map[string]string {
	m := make(map[string]string)
	if a == nil {
		return m
	}
	setIfNotEmpty(m, "user_ip", a.IPAddress)
	setIfNotEmpty(m, "user_agent", a.UserAgent)
	setIfNotEmpty(m, "comment_author", a.Name)
	setIfNotEmpty(m, "comment_author_email", a.Email)
	setIfNotEmpty(m, "comment_author_url", formatURL(a.URL))
	setIfNotEmpty(m, "user_role", a.Role)
	return m
}

// HasAuthorFields reports whether m carries any author related key
func HasAuthorFields(m map[string]any) bool {
	for key := range m {
		if strings.HasPrefix(key, "comment_author") || strings.HasPrefix(key, "user") {
			return true
		}
	}
	return false
}

// AuthorFromFields creates an author from Akismet wire fields
func AuthorFromFields(m map[string]any) (*Author, error) {
	u, err := parseURLField(m, "comment_author_url")
	if err != nil {
		return nil, err
	}
	return &Author{
		IPAddress: stringValue(m, "user_ip"),
		UserAgent: stringValue(m, "user_agent"),
		Email:     stringValue(m, "comment_author_email"),
		Name:      stringValue(m, "comment_author"),
		Role:      stringValue(m, "user_role"),
		URL:       u,
	}, nil
}

// MarshalJSON encodes the author as its flat wire fields
func (a Author) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Fields())
}

// UnmarshalJSON decodes the author from its flat wire fields
func (a *Author) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.NewSerdeError(err)
	}
	parsed, err := AuthorFromFields(m)
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}
