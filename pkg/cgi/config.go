package cgi

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Config - parameter name to int, float64 or string
type Config map[string]any

var reNumber = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ParseConfig reads camera "key=value" lines. Lines without "=" are skipped.
func ParseConfig(b []byte) Config {
	config := Config{}

	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		i := strings.IndexByte(line, '=')
		if i <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+1:])
		value = strings.TrimSuffix(value, ";")
		value = strings.Trim(value, `"`)

		config[key] = parseValue(value)
	}

	return config
}

func parseValue(s string) any {
	if !reNumber.MatchString(s) {
		return s
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Merge copies other into c, other wins on the same key
func (c Config) Merge(other Config) {
	for k, v := range other {
		c[k] = v
	}
}

func (c Config) String(key string) string {
	switch v := c[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (c Config) Int(key string) (int, bool) {
	switch v := c[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
