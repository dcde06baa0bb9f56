package creds

import (
	"io"
	"slices"
	"strings"
	"sync"
)

// MinSecretLength - shorter values would mask ordinary log text
const MinSecretLength = 4

// AddSecret - value will be printed as *** by SecretString and SecretWriter
func AddSecret(value string) {
	if len(value) < MinSecretLength {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if slices.Contains(secrets, value) {
		return
	}

	secrets = append(secrets, value)
	replacer = nil
}

var (
	secrets  []string
	mu       sync.Mutex
	replacer *strings.Replacer
)

func getReplacer() *strings.Replacer {
	mu.Lock()
	defer mu.Unlock()

	if replacer == nil {
		oldnew := make([]string, 0, 2*len(secrets))
		for _, s := range secrets {
			oldnew = append(oldnew, s, "***")
		}
		replacer = strings.NewReplacer(oldnew...)
	}

	return replacer
}

func SecretString(s string) string {
	return getReplacer().Replace(s)
}

func SecretWriter(w io.Writer) io.Writer {
	return &secretWriter{w: w}
}

type secretWriter struct {
	w io.Writer
}

// Write reports len(b) so zerolog does not treat a shorter redacted line as a short write
func (s *secretWriter) Write(b []byte) (int, error) {
	if _, err := getReplacer().WriteString(s.w, string(b)); err != nil {
		return 0, err
	}
	return len(b), nil
}
