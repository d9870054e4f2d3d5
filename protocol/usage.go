package protocol

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/akismet/akismetclient-go/errors"
)

// Usage reports the API usage of an Akismet account
type Usage struct {
	// Monthly call limit, -1 if the account has none
	Limit int `json:"limit"`
	// Share of the limit already used, in percent
	Percentage float64 `json:"percentage"`
	// Whether the account is currently throttled
	Throttled bool `json:"throttled"`
	// Calls made in the current period
	Usage int `json:"usage"`
}

// UnmarshalJSON accepts the loosely typed payload returned by the service,
// where limit may be "none" and percentage may be a numeric string.
func (u *Usage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Limit      any  `json:"limit"`
		Percentage any  `json:"percentage"`
		Throttled  bool `json:"throttled"`
		Usage      any  `json:"usage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.NewSerdeError(err)
	}

	*u = Usage{
		Limit:      -1,
		Percentage: toFloat(raw.Percentage),
		Throttled:  raw.Throttled,
	}
	if limit, ok := toInt(raw.Limit); ok {
		u.Limit = limit
	}
	if usage, ok := toInt(raw.Usage); ok {
		u.Usage = usage
	}
	return nil
}

func toInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err == nil {
			return f
		}
	}
	return 0
}
