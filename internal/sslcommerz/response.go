package sslcommerz

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Response is the loosely typed field mapping SSLCommerz returns from its
// APIs and posts to callback endpoints. Accessors report missing keys
// explicitly instead of handing back silent defaults.
type Response map[string]string

// ParseResponse decodes a gateway JSON body into a Response. Numeric and
// boolean values are flattened to their string form; nested values are kept
// as raw JSON.
func ParseResponse(body []byte) (Response, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("sslcommerz: decode response: %w", err)
	}

	resp := make(Response, len(raw))
	for k, v := range raw {
		resp[k] = stringifyValue(v)
	}
	return resp, nil
}

// FromForm converts a decoded callback form body into a Response. Repeated
// keys keep their first value.
func FromForm(values url.Values) Response {
	resp := make(Response, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			resp[k] = vs[0]
		} else {
			resp[k] = ""
		}
	}
	return resp
}

// Get returns the raw value for key and whether the key exists at all.
func (r Response) Get(key string) (string, bool) {
	v, ok := r[key]
	return v, ok
}

// Float parses the value for key as a float64. A missing key is reported as
// a MissingFieldError, not as zero.
func (r Response) Float(key string) (float64, error) {
	v, ok := r[key]
	if !ok {
		return 0, &MissingFieldError{Field: key}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("sslcommerz: field %q is not numeric: %w", key, err)
	}
	return f, nil
}

// Has reports whether every listed key is present.
func (r Response) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := r[k]; !ok {
			return false
		}
	}
	return true
}

func stringifyValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
