package protocol

import (
	"fmt"
	"net/http"
)

// CheckResult is the verdict of a comment check
type CheckResult int

const (
	// Ham means the comment is legitimate
	Ham CheckResult = iota
	// Spam means the comment is spam
	Spam
	// PervasiveSpam means the comment is blatant spam that can be discarded without review
	PervasiveSpam
)

// String returns the wire-friendly name of the result
func (r CheckResult) String() string {
	switch r {
	case Ham:
		return "ham"
	case Spam:
		return "spam"
	case PervasiveSpam:
		return "pervasive_spam"
	default:
		return fmt.Sprintf("CheckResult(%d)", int(r))
	}
}

// IsSpam reports whether the result is Spam or PervasiveSpam
func (r CheckResult) IsSpam() bool {
	return r == Spam || r == PervasiveSpam
}

// MarshalText implements encoding.TextMarshaler
func (r CheckResult) MarshalText() ([]byte, error) {
	switch r {
	case Ham, Spam, PervasiveSpam:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("invalid check result %d", int(r))
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *CheckResult) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ham":
		*r = Ham
	case "spam":
		*r = Spam
	case "pervasive_spam":
		*r = PervasiveSpam
	default:
		return fmt.Errorf("invalid check result %q", text)
	}
	return nil
}

// CheckResultFrom interprets a successful comment-check response. The body "false"
// means ham; otherwise the pro-tip header tells spam and pervasive spam apart.
func CheckResultFrom(body string, header http.Header) CheckResult {
	if body == "false" {
		return Ham
	}
	if header.Get(HeaderProTip) == ProTipDiscard {
		return PervasiveSpam
	}
	return Spam
}
