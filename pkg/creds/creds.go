package creds

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Lookup reads a named value from systemd credentials or env and
// registers it as a secret for log output.
func Lookup(name string) (value string, ok bool) {
	if dir, found := os.LookupEnv("CREDENTIALS_DIRECTORY"); found {
		if b, _ := os.ReadFile(filepath.Join(dir, name)); b != nil {
			value, ok = strings.TrimSpace(string(b)), true
		}
	}
	if !ok {
		value, ok = os.LookupEnv(name)
	}
	AddSecret(value)
	return
}

var reVar = regexp.MustCompile(`\${([^}{]+)}`)

// ReplaceVars - support format ${CAMERA_PASSWORD} and ${CAMERA_USER:admin}
func ReplaceVars(data []byte) []byte {
	return reVar.ReplaceAllFunc(data, func(match []byte) []byte {
		key := string(match[2 : len(match)-1])

		def, hasDef := "", false
		if i := strings.IndexByte(key, ':'); i > 0 {
			key, def, hasDef = key[:i], key[i+1:], true
		}

		if value, ok := Lookup(key); ok {
			return []byte(value)
		}
		if hasDef {
			return []byte(def)
		}
		return match
	})
}
