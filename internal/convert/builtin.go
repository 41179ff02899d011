package convert

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

func registerBuiltins(r *Registry) {
	r.converters[String] = stringConverter{}
	r.converters[Bool] = boolConverter{}
	r.converters[Int] = intConverter{}
	r.converters[Float] = floatConverter{}
	r.converters[Duration] = durationConverter{}
	r.converters[Time] = timeConverter{}
	r.converters[URL] = urlConverter{}
}

// Func adapts a pair of functions into a Converter.
type Func struct {
	Parse  func(raw string) (any, error)
	Render func(value any) (string, error)
}

func (f Func) FromText(raw string) (any, error) { return f.Parse(raw) }
func (f Func) ToText(value any) (string, error) { return f.Render(value) }

func wrongType(value any, want string) error {
	return fmt.Errorf("expected %s, got %T", want, value)
}

type stringConverter struct{}

func (stringConverter) FromText(raw string) (any, error) { return raw, nil }

func (stringConverter) ToText(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", wrongType(value, "string")
	}
}

type boolConverter struct{}

func (boolConverter) FromText(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on", "y":
		return true, nil
	case "0", "false", "no", "off", "n":
		return false, nil
	default:
		return nil, fmt.Errorf("must be one of: 1, true, yes, on, 0, false, no, off")
	}
}

func (boolConverter) ToText(value any) (string, error) {
	b, ok := value.(bool)
	if !ok {
		return "", wrongType(value, "bool")
	}
	return strconv.FormatBool(b), nil
}

type intConverter struct{}

func (intConverter) FromText(raw string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("must be an integer")
	}
	return n, nil
}

func (intConverter) ToText(value any) (string, error) {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	default:
		return "", wrongType(value, "integer")
	}
}

type floatConverter struct{}

func (floatConverter) FromText(raw string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("must be a number")
	}
	return f, nil
}

func (floatConverter) ToText(value any) (string, error) {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", wrongType(value, "number")
	}
}

type durationConverter struct{}

func (durationConverter) FromText(raw string) (any, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("must be a Go-style duration (e.g. 30s, 5m)")
	}
	return d, nil
}

func (durationConverter) ToText(value any) (string, error) {
	d, ok := value.(time.Duration)
	if !ok {
		return "", wrongType(value, "duration")
	}
	return d.String(), nil
}

type timeConverter struct{}

func (timeConverter) FromText(raw string) (any, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("must be an RFC3339 timestamp")
	}
	return t, nil
}

func (timeConverter) ToText(value any) (string, error) {
	t, ok := value.(time.Time)
	if !ok {
		return "", wrongType(value, "time")
	}
	return t.Format(time.RFC3339Nano), nil
}

type urlConverter struct{}

func (urlConverter) FromText(raw string) (any, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("URL must have a scheme (e.g., http:// or https://)")
	}
	return u, nil
}

func (urlConverter) ToText(value any) (string, error) {
	switch v := value.(type) {
	case *url.URL:
		return v.String(), nil
	case url.URL:
		return v.String(), nil
	default:
		return "", wrongType(value, "URL")
	}
}
