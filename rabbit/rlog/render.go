package rlog

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/odit-bit/ddsclog/rabbit/rlog/internal/bpool"
)

// render formats a record on one line:
//
//	2006-01-02T15:04:05.999Z ERROR /src/main.go:12 message key=value group.key="quoted value"
func (h *Handler) render(ev Event, rec slog.Record) []byte {
	buf := bpool.New()
	defer buf.Free()

	// TIME
	if !ev.Time.IsZero() {
		*buf = ev.Time.Round(0).AppendFormat(*buf, time.RFC3339Nano)
		buf.WriteByte(' ')
	}
	// LEVEL
	buf.WriteString(ev.Level.String())
	// SOURCE
	if ev.Source != "" {
		buf.WriteByte(' ')
		buf.WriteString(ev.Source)
		buf.WriteByte(':')
		*buf = strconv.AppendInt(*buf, int64(ev.Line), 10)
	}
	// MESSAGE
	buf.WriteByte(' ')
	buf.WriteString(ev.Message)

	// ATTRS, qualified by the groups opened before them
	prefix := ""
	for _, g := range h.groups {
		if g.name != "" {
			prefix += g.name + "."
			continue
		}
		for _, a := range g.attributes {
			appendTextAttr(buf, prefix, a)
		}
	}
	rec.Attrs(func(a slog.Attr) bool {
		appendTextAttr(buf, prefix, a)
		return true
	})

	return bytes.Clone(*buf)
}

func appendTextAttr(buf *bpool.B, prefix string, a slog.Attr) {
	// Resolve the Attr's value before doing anything else.
	a.Value = a.Value.Resolve()
	// Ignore empty Attrs.
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		// If the key is non-empty, qualify the members with it.
		// Otherwise, inline them.
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range attrs {
			appendTextAttr(buf, prefix, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')

	switch a.Value.Kind() {
	case slog.KindTime:
		// Write times in a standard way, without the monotonic time.
		*buf = a.Value.Time().Round(0).AppendFormat(*buf, time.RFC3339Nano)
	default:
		s := a.Value.String()
		if needsQuoting(s) {
			*buf = strconv.AppendQuote(*buf, s)
		} else {
			buf.WriteString(s)
		}
	}
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r == ' ' || r == '=' || r == '"' || !unicode.IsPrint(r)
	})
}
