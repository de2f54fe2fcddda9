package application

import (
	"bytes"
	"io"
	"net/http"
	"strings"
)

const redactedValue = "[redacted]"

func redactSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[http.CanonicalHeaderKey(name)] = struct{}{}
	}
	return set
}

func filterHeaders(h http.Header, redact map[string]struct{}) map[string]string {
	if len(h) == 0 {
		return nil
	}

	out := make(map[string]string, len(h))
	for name, values := range h {
		if _, ok := redact[http.CanonicalHeaderKey(name)]; ok {
			out[name] = redactedValue
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// captureBody drains rc and hands back an equivalent reader so the caller
// still sees the full body. A mid-stream read failure is replayed to the
// caller after the bytes read so far; masking it would let a truncated body
// pass as complete. The returned string is truncated at maxBytes.
func captureBody(rc io.ReadCloser, maxBytes int64) (string, int64, io.ReadCloser, error) {
	if rc == nil || rc == http.NoBody {
		return "", 0, rc, nil
	}

	data, err := io.ReadAll(rc)
	rc.Close()
	size := int64(len(data))

	var restored io.ReadCloser
	if err != nil {
		restored = io.NopCloser(io.MultiReader(bytes.NewReader(data), &errReader{err: err}))
	} else {
		restored = io.NopCloser(bytes.NewReader(data))
	}

	if maxBytes >= 0 && size > maxBytes {
		data = data[:maxBytes]
	}
	return string(data), size, restored, err
}

type errReader struct {
	err error
}

func (r *errReader) Read([]byte) (int, error) {
	return 0, r.err
}
