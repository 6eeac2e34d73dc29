package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Param is one query parameter
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list; keys are emitted in insertion order
type Params []Param

// NewParams starts an empty parameter list
func NewParams() Params {
	return Params{}
}

// Add appends key=value. Strings, integers, floats and Stringers are accepted.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: formatValue(value)})
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// BuildURL joins base, endpoint and params:
//
//	base + endpoint + "/"                 when params is empty
//	base + endpoint + "/?k1=v1&...&kn=vn" otherwise
//
// base is used as given and is expected to end with "/".
func BuildURL(base, endpoint string, params Params) (string, error) {
	if endpoint == "" {
		return "", &ValidationError{Field: "endpoint", Message: "expect non-empty endpoint name"}
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString(endpoint)
	b.WriteString("/")

	for i, p := range params {
		if i == 0 {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString(p.Key)
		b.WriteString("=")
		b.WriteString(url.QueryEscape(p.Value))
	}

	return b.String(), nil
}
