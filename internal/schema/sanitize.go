package schema

import (
	"regexp"
	"strconv"
	"strings"
)

type FieldKind int

const (
	Text FieldKind = iota
	URL
	Number
)

// GateMode decides which presence check guards a field.
type GateMode int

const (
	// GatePerField guards each field on its own presence.
	GatePerField GateMode = iota
	// GateOnName guards every field on the business name being stored at
	// all, even as an empty string, reproducing what legacy renderers emitted.
	GateOnName
)

// Sanitizer extracts option fields as escaped strings. It never fails:
// a missing or malformed value degrades to "".
type Sanitizer struct {
	mode GateMode
	name Field
}

func NewSanitizer(mode GateMode, name Field) Sanitizer {
	return Sanitizer{mode: mode, name: name}
}

// Extract returns the escaped value of f when its gate is open.
func (s Sanitizer) Extract(f Field, k FieldKind) string {
	if s.mode == GateOnName {
		if !s.name.Set {
			return ""
		}
		return format(f.Value, k)
	}
	return s.ExtractOwn(f, k)
}

// ExtractOwn ignores the gate mode and checks f's own presence.
func (s Sanitizer) ExtractOwn(f Field, k FieldKind) string {
	if !f.Present() {
		return ""
	}
	return format(f.Value, k)
}

func format(v string, k FieldKind) string {
	switch k {
	case URL:
		return EscapeURL(v)
	case Number:
		return formatNumber(v)
	}
	return EscapeText(v)
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeText HTML-escapes a plain text value.
func EscapeText(s string) string { return textEscaper.Replace(s) }

var (
	urlDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\-~+_.?#=!&;,/:%@$|*'()\[\]\x{80}-\x{10FFFF}]`)
	urlScheme     = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.\-]*):`)
	phpFile       = regexp.MustCompile(`(?i)^[a-z0-9-]+?\.php`)
	entityAmp     = strings.NewReplacer("&#038;", "&", "&amp;", "&")
	urlEntities   = strings.NewReplacer("&", "&#038;", "'", "&#039;")
)

var allowedSchemes = map[string]bool{
	"http": true, "https": true, "ftp": true, "ftps": true, "mailto": true, "news": true,
	"irc": true, "gopher": true, "nntp": true, "feed": true, "telnet": true, "mms": true,
	"rtsp": true, "sms": true, "svn": true, "tel": true, "fax": true, "xmpp": true,
	"webcal": true, "urn": true,
}

// EscapeURL cleans a URL for output. Unknown schemes yield "", bare hosts
// get an http:// prefix, and ampersands and single quotes become entities.
func EscapeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	u = strings.ReplaceAll(u, " ", "%20")
	u = urlDisallowed.ReplaceAllString(u, "")
	if u == "" {
		return ""
	}
	if !strings.Contains(u, ":") && !strings.ContainsAny(u[:1], "/#?") && !phpFile.MatchString(u) {
		u = "http://" + u
	}
	if m := urlScheme.FindStringSubmatch(u); m != nil && !allowedSchemes[strings.ToLower(m[1])] {
		return ""
	}
	return urlEntities.Replace(entityAmp.Replace(u))
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// formatNumber parses the leading numeric part of v (0 when there is none)
// and renders it in its shortest decimal form.
func formatNumber(v string) string {
	f := 0.0
	if m := numericPrefix.FindString(strings.TrimSpace(v)); m != "" {
		if p, err := strconv.ParseFloat(m, 64); err == nil {
			f = p
		}
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
