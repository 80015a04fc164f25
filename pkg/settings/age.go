package settings

import (
	"encoding/json"
	"math"
	"strconv"
)

// DefaultMaxAge is the max-age advertised when no category overrides it (1 day).
const DefaultMaxAge = 86400

// DefaultKeyword is the stored value meaning "no override from this category".
const DefaultKeyword = "default"

// Age is a configured cache age: either "default" or a non-negative number of seconds.
// The zero value is Default.
type Age struct {
	seconds int
	set     bool
}

// Default is the sentinel age meaning "no override".
var Default = Age{}

// NewAge returns an age of n seconds. Negative values yield Default.
func NewAge(n int) Age {
	if n < 0 {
		return Default
	}
	return Age{seconds: n, set: true}
}

// IsDefault reports whether the age carries no override.
func (a Age) IsDefault() bool {
	return !a.set
}

// Seconds returns the configured seconds, or 0 for Default.
func (a Age) Seconds() int {
	return a.seconds
}

// Or returns the configured seconds, or fallback for Default.
func (a Age) Or(fallback int) int {
	if !a.set {
		return fallback
	}
	return a.seconds
}

// String renders the age the way it is stored ("default" or the number of seconds).
func (a Age) String() string {
	if !a.set {
		return DefaultKeyword
	}
	return strconv.Itoa(a.seconds)
}

// ParseAge converts a raw stored value into an Age.
//
// Integer strings and integer numbers (including integral floats produced by
// JSON decoding) are accepted. Everything else, including negative numbers,
// booleans, nil, lists and the "default" keyword, parses as Default.
func ParseAge(raw any) Age {
	switch v := raw.(type) {
	case string:
		return parseAgeString(v)
	case int:
		return ageFromInt64(int64(v))
	case int8:
		return NewAge(int(v))
	case int16:
		return NewAge(int(v))
	case int32:
		return NewAge(int(v))
	case int64:
		return ageFromInt64(v)
	case uint:
		return ageFromUint64(uint64(v))
	case uint8:
		return NewAge(int(v))
	case uint16:
		return NewAge(int(v))
	case uint32:
		return ageFromUint64(uint64(v))
	case uint64:
		return ageFromUint64(v)
	case float32:
		return ageFromFloat(float64(v))
	case float64:
		return ageFromFloat(v)
	case json.Number:
		return parseAgeString(string(v))
	default:
		return Default
	}
}

// ParseGlobalAge is the stricter parser used for the site-wide front page,
// home page and archive ages: only string values are honoured, so a raw
// number stored in one of those fields is treated as Default.
func ParseGlobalAge(raw any) Age {
	s, ok := raw.(string)
	if !ok {
		return Default
	}
	return parseAgeString(s)
}

func parseAgeString(s string) Age {
	if s == "" || s == DefaultKeyword {
		return Default
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Default
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Default
	}
	return ageFromInt64(n)
}

func ageFromInt64(v int64) Age {
	if v < 0 || v > math.MaxInt32 {
		return Default
	}
	return NewAge(int(v))
}

func ageFromUint64(v uint64) Age {
	if v > math.MaxInt32 {
		return Default
	}
	return NewAge(int(v))
}

func ageFromFloat(v float64) Age {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return Default
	}
	if v < 0 || v > math.MaxInt32 {
		return Default
	}
	return NewAge(int(v))
}

// Choice is one entry of the admin age vocabulary.
type Choice struct {
	Age   Age
	Label string
}

// Choices lists the ages offered to site editors. The resolver accepts any
// non-negative age; this list is informational.
var Choices = []Choice{
	{Default, "Default"},
	{NewAge(120), "2 mins"},
	{NewAge(300), "5 mins"},
	{NewAge(900), "15 mins"},
	{NewAge(1800), "30 mins"},
	{NewAge(3600), "1 hr"},
	{NewAge(7200), "2 hrs"},
	{NewAge(43200), "12 hrs"},
	{NewAge(86400), "1 day"},
	{NewAge(172800), "2 days"},
	{NewAge(604800), "1 week"},
}

// IsChoice reports whether the age is one of Choices.
func (a Age) IsChoice() bool {
	for _, c := range Choices {
		if c.Age == a {
			return true
		}
	}
	return false
}
