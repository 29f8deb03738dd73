package internal

import (
	"fmt"
	"io"
	"strings"
	"time"
)

func Logf(w io.Writer, prefix string, event *Event, format string, a ...any) {
	parts := []string{}
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if event != nil {
		parts = append(parts, fmt.Sprintf("Event %q (%s):", event.Title, event.ID))
	}
	parts = append(parts, fmt.Sprintf(format, a...))
	fmt.Fprintln(w, strings.Join(parts, " "))
}

// FormatDateTime renders t the way every log line does.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format("02 Jan 06 15:04")
}
