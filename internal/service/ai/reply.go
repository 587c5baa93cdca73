package ai

import (
	"fmt"
	"strings"
)

// Reply is the content returned by a text-generation provider. It is one of
// PlainText, FragmentSequence or Unknown.
type Reply interface {
	normalize() string
}

// PlainText is a reply that is already a single string.
type PlainText string

// FragmentSequence is a reply split into ordered content parts.
type FragmentSequence []Fragment

// Unknown wraps a reply whose shape is not recognised.
type Unknown struct {
	Value any
}

// Fragment is one part of a FragmentSequence: TextFragment, KeyedFragment or OpaqueFragment.
type Fragment interface {
	text() string
}

// TextFragment is a bare string part.
type TextFragment string

// KeyedFragment is a structured part such as {"type": "text", "text": "..."}.
type KeyedFragment map[string]any

// OpaqueFragment is any other part value.
type OpaqueFragment struct {
	Value any
}

// Normalize flattens a provider reply into plain text. It never fails.
func Normalize(reply Reply) string {
	if reply == nil {
		return ""
	}
	return reply.normalize()
}

func (p PlainText) normalize() string {
	return string(p)
}

func (s FragmentSequence) normalize() string {
	parts := make([]string, 0, len(s))
	for _, f := range s {
		if f == nil {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, f.text())
	}
	return strings.Join(parts, " ")
}

func (u Unknown) normalize() string {
	return fmt.Sprint(u.Value)
}

func (t TextFragment) text() string {
	return string(t)
}

func (k KeyedFragment) text() string {
	v, ok := k["text"]
	if !ok {
		return fmt.Sprint(map[string]any(k))
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (o OpaqueFragment) text() string {
	return fmt.Sprint(o.Value)
}
