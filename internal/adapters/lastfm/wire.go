package lastfm

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// looseFloat decodes a JSON number that the service sometimes serializes
// as a string ("match":"0.78"). Anything unparsable decodes as zero.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = looseFloat(v)
	return nil
}

var _ json.Unmarshaler = (*looseFloat)(nil)
