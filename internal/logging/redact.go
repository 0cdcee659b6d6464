package logging

import (
	"io"
	"regexp"
	"strings"
)

// Redaction replaces the value of every masked field.
const Redaction = "***"

// PIIFields are never written to logs in clear.
var PIIFields = []string{"email", "password", "hashed_password", "new_password", "reset_token", "session_id"}

type redactingWriter struct {
	out     io.Writer
	pattern *regexp.Regexp
}

// NewRedactingWriter masks the string values of the given JSON fields in
// each event before passing it on to out.
func NewRedactingWriter(out io.Writer, fields ...string) io.Writer {
	if len(fields) == 0 {
		return out
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	pattern := regexp.MustCompile(`"(` + strings.Join(quoted, "|") + `)":"(?:[^"\\]|\\.)*"`)
	return &redactingWriter{out: out, pattern: pattern}
}

func (w *redactingWriter) Write(p []byte) (int, error) {
	masked := w.pattern.ReplaceAll(p, []byte(`"$1":"`+Redaction+`"`))
	if _, err := w.out.Write(masked); err != nil {
		return 0, err
	}
	return len(p), nil
}

// FilterDatum masks field=value pairs in a separator-delimited message.
func FilterDatum(fields []string, redaction, message, separator string) string {
	for _, f := range fields {
		re := regexp.MustCompile(regexp.QuoteMeta(f) + `=.*?` + regexp.QuoteMeta(separator))
		message = re.ReplaceAllLiteralString(message, f+"="+redaction+separator)
	}
	return message
}
