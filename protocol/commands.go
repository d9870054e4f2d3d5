// Package protocol contains the Akismet data model, its wire field mapping and
// the commands that can be sent to the service
package protocol

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/akismet/akismetclient-go/errors"
)

// DefaultBaseURL is the Akismet REST root, including the API version segment
const DefaultBaseURL = "https://rest.akismet.com/1.1/"

// SuccessfulSubmission is the body returned by submit-ham and submit-spam
const SuccessfulSubmission = "Thanks for making the web a better place."

// Response headers used by the service
const (
	HeaderProTip    = "X-Akismet-Pro-Tip"
	HeaderAlertCode = "X-Akismet-Alert-Code"
	HeaderAlertMsg  = "X-Akismet-Alert-Msg"
	HeaderDebugHelp = "X-Akismet-Debug-Help"
)

// ProTipDiscard is the pro-tip value flagging pervasive spam
const ProTipDiscard = "discard"

// Request fields that are not part of the data model
const (
	KeyField  = "key"
	TestField = "is_test"
)

// FormContentType is the content type of every request body
const FormContentType = "application/x-www-form-urlencoded"

const maxDNSLabelLength = 63

// AkismetCommand represents commands that can be sent to the server
type AkismetCommand int

const (
	CommentCheck AkismetCommand = iota
	SubmitHam
	SubmitSpam
	VerifyKey
)

// AkismetEndpoint represents an ephemeral endpoint representation
type AkismetEndpoint struct {
	Path    string
	Command AkismetCommand
	// Keyed endpoints are addressed through the API key subdomain
	Keyed bool
}

// FromCommand creates a new endpoint from a command
func FromCommand(command AkismetCommand) AkismetEndpoint {
	switch command {
	case SubmitHam:
		return AkismetEndpoint{Path: "submit-ham", Command: command, Keyed: true}
	case SubmitSpam:
		return AkismetEndpoint{Path: "submit-spam", Command: command, Keyed: true}
	case VerifyKey:
		return AkismetEndpoint{Path: "verify-key", Command: command, Keyed: false}
	default:
		return AkismetEndpoint{Path: "comment-check", Command: CommentCheck, Keyed: true}
	}
}

// String returns the endpoint path of the command
func (c AkismetCommand) String() string {
	return FromCommand(c).Path
}

// ResolveURL computes the absolute URL of command against baseURL. Keyed commands get
// apiKey prepended to the host as a DNS label, whatever host is configured; verify-key
// always targets the base host.
func ResolveURL(baseURL, apiKey string, command AkismetCommand) (*url.URL, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.NewParseError("base_url", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.NewConfigError(fmt.Sprintf("base URL %q must be absolute", baseURL))
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	endpoint := FromCommand(command)
	target := base.ResolveReference(&url.URL{Path: endpoint.Path})
	if endpoint.Keyed {
		if err := validateKeyLabel(apiKey); err != nil {
			return nil, err
		}
		host := target.Hostname()
		if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
			return nil, errors.NewConfigError(fmt.Sprintf("base host %s is an IPv6 address and cannot carry the API key subdomain", host))
		}
		host = apiKey + "." + host
		if port := target.Port(); port != "" {
			host = net.JoinHostPort(host, port)
		}
		target.Host = host
	}
	return target, nil
}

// validateKeyLabel checks that apiKey can be used as a single DNS label
func validateKeyLabel(apiKey string) error {
	if apiKey == "" {
		return errors.NewConfigError("API key is required")
	}
	if len(apiKey) > maxDNSLabelLength {
		return errors.NewConfigError("API key is too long to be used as a host name label")
	}
	for i, r := range apiKey {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' && i > 0 && i < len(apiKey)-1:
		default:
			return errors.NewConfigError(fmt.Sprintf("API key contains invalid character %q", r))
		}
	}
	return nil
}
