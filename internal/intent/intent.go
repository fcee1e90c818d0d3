// Package intent models classified user requests and parses classifier output.
package intent

import (
	"regexp"
	"strings"
)

// Task tags understood by the dispatcher.
const (
	TagExit          = "exit"
	TagGeneral       = "general"
	TagRealtime      = "realtime"
	TagTrend         = "trend"
	TagGenerateImage = "generate image"
	TagImage         = "image"
)

// AutomationTags name device and app actions that have no handler yet.
var AutomationTags = []string{
	"open", "close", "play", "system", "content",
	"google search", "youtube search", "reminder",
}

// prefixTags is every leading tag, longest first so "generate image" wins over "general".
var prefixTags = []string{
	TagGenerateImage, "youtube search", "google search",
	TagRealtime, TagGeneral, "reminder", "content", TagTrend,
	"system", "close", "open", "play", TagExit,
}

// Intent is one classified request. Values are immutable once built.
type Intent struct {
	// Task is the normalized task string used for routing.
	Task string
	// Argument is the text after the leading tag, unwrapped from parentheses.
	Argument string
	// Raw is the classifier's original string.
	Raw string
}

func New(raw string) Intent {
	in := Intent{Raw: raw, Task: Normalize(raw)}
	if tag := LeadingTag(in.Task); tag != "" {
		in.Argument = StripPrefix(raw, tag)
	} else {
		in.Argument = StripPrefix(raw, "")
	}
	return in
}

// Tag returns the recognized leading tag, or "" when the task is unknown.
func (i Intent) Tag() string { return LeadingTag(i.Task) }

// Normalize lower-cases s and collapses runs of whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// LeadingTag returns the known tag that task starts with at a word boundary.
func LeadingTag(task string) string {
	for _, tag := range prefixTags {
		if HasWordPrefix(task, tag) {
			return tag
		}
	}
	return ""
}

// HasWordPrefix reports whether normalized task starts with prefix followed by
// a word boundary, so "general" does not match "generalize".
func HasWordPrefix(task, prefix string) bool {
	if !strings.HasPrefix(task, prefix) {
		return false
	}
	if len(task) == len(prefix) {
		return true
	}
	switch task[len(prefix)] {
	case ' ', '(', ':', ',':
		return true
	}
	return false
}

var parenWrapped = regexp.MustCompile(`^\(\s*(.*?)\s*\)$`)

// StripPrefix removes prefix (case-insensitively, once) from the whitespace
// collapsed raw string, then unwraps a surrounding "( ... )".
func StripPrefix(raw, prefix string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if prefix != "" && len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		s = s[len(prefix):]
	}
	s = strings.TrimSpace(strings.TrimLeft(s, ":"))
	s = parenWrapped.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// Recognized reports whether task names something the assistant can route.
func Recognized(task string) bool {
	return LeadingTag(task) != "" || strings.Contains(task, TagImage)
}
