package schemagen

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes reported by descriptor validation.
const (
	CodeNilDescriptor    = "nil_descriptor"
	CodeNonObjectPayload = "non_object_payload"
	CodeMissingTag       = "missing_tag"
	CodeTagContentClash  = "tag_content_clash"
	CodeDuplicateName    = "duplicate_name"
	CodeInvalidDefault   = "invalid_default"
	CodeInvalidShape     = "invalid_shape"
	CodeInlineCycle      = "inline_cycle"
)

// ErrInvalidSettings is wrapped by Settings.Validate failures.
var ErrInvalidSettings = errors.New("schemagen: invalid settings")

// Issue describes one descriptor-shape problem found before generation.
type Issue struct {
	Path    string // JSON Pointer into the descriptor graph (for example: /Shape/cases/Circle).
	Code    string // One of the codes listed above.
	Message string
}

// Issues is a collection of descriptor problems that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, " (%s)", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// IssueAt creates an Issue at the given path.
func IssueAt(path, code, format string, args ...any) Issue {
	return Issue{Path: path, Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
