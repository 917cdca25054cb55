package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSessionLoggerTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := WithSessionLogger(slog.New(slog.NewJSONHandler(&buf, nil)), "session-abc")

	logger.With("extra", "value").Info("test message")

	output := buf.String()
	if !strings.Contains(output, `"session_id":"session-abc"`) {
		t.Errorf("expected session_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"extra":"value"`) {
		t.Errorf("expected extra attr in output, got: %s", output)
	}
}

func TestSessionLoggerKeepsExplicitSessionID(t *testing.T) {
	var buf bytes.Buffer
	logger := WithSessionLogger(slog.New(slog.NewJSONHandler(&buf, nil)), "outer")

	logger.Info("explicit", slog.String(FieldSessionID, "inner"))

	output := buf.String()
	if strings.Count(output, FieldSessionID) != 1 || !strings.Contains(output, `"session_id":"inner"`) {
		t.Errorf("expected only the explicit session id, got: %s", output)
	}
}

func TestSessionLoggerEmptyIDReturnsBase(t *testing.T) {
	base := NewNop()
	if got := WithSessionLogger(base, ""); got != base {
		t.Error("expected base logger when session id is empty")
	}
}

func TestComposeSubject(t *testing.T) {
	cases := []struct {
		session, element, want string
	}{
		{"", "", ""},
		{"0123456789abcdef", "", "01234567"},
		{"abc", "2", "abc/el2"},
		{"", "4", "el4"},
	}
	for _, tc := range cases {
		if got := composeSubject(tc.session, tc.element); got != tc.want {
			t.Errorf("composeSubject(%q, %q) = %q, want %q", tc.session, tc.element, got, tc.want)
		}
	}
}
