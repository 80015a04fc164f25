package settings

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseBool converts a raw stored flag. nil yields def; unrecognised values yield def.
func ParseBool(raw any, def bool) bool {
	switch v := raw.(type) {
	case nil:
		return def
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		case "", "0", "false", "no", "off":
			return false
		default:
			return def
		}
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return def
		}
		return f != 0
	default:
		return def
	}
}

// ParsePriority converts a raw taxonomy priority. Anything that is not an
// integer yields UnsetPriority.
func ParsePriority(raw any) int {
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return UnsetPriority
		}
		return int(v)
	case int32:
		return int(v)
	case uint64:
		if v > math.MaxInt32 {
			return UnsetPriority
		}
		return int(v)
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return UnsetPriority
		}
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return UnsetPriority
		}
		return n
	case json.Number:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return UnsetPriority
		}
		return n
	default:
		return UnsetPriority
	}
}

// ParsePostID converts a raw post id. Anything that is not a positive integer yields 0.
func ParsePostID(raw any) int {
	var n int
	switch v := raw.(type) {
	case int:
		n = v
	case int64:
		if v > math.MaxInt32 {
			return 0
		}
		n = int(v)
	case uint64:
		if v > math.MaxInt32 {
			return 0
		}
		n = int(v)
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 {
			return 0
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		n = parsed
	case json.Number:
		parsed, err := strconv.Atoi(string(v))
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}
