/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package query

import (
	"strings"
)

const (
	// ChunkTag is replaced by the chunk id when a template is instantiated.
	ChunkTag = "%CC%"

	// SubChunkTag is left in the chunk query text, the worker replaces it
	// with each subchunk id carried in the message.
	SubChunkTag = "%SS%"
)

type templateEntry struct {
	text  string
	table bool
}

// QueryTemplate is a rendered statement whose table-name entries are kept
// apart from the rest of the text, so chunk substitution never touches
// literals or column names.
type QueryTemplate struct {
	entries []templateEntry
}

func (t *QueryTemplate) append(s string) {
	if s == "" {
		return
	}
	n := len(t.entries)
	if n > 0 && !t.entries[n-1].table {
		t.entries[n-1].text += s
		return
	}
	t.entries = append(t.entries, templateEntry{text: s})
}

func (t *QueryTemplate) appendTable(s string) {
	t.entries = append(t.entries, templateEntry{text: s, table: true})
}

// String returns the template text with its placeholders untouched.
func (t *QueryTemplate) String() string {
	var b strings.Builder
	for _, e := range t.entries {
		b.WriteString(e.text)
	}
	return b.String()
}

// Generate substitutes the chunk placeholder in every table entry.
func (t *QueryTemplate) Generate(chunkID int32) string {
	var b strings.Builder
	id := itoa32(chunkID)
	for _, e := range t.entries {
		if e.table {
			b.WriteString(strings.Replace(e.text, ChunkTag, id, -1))
			continue
		}
		b.WriteString(e.text)
	}
	return b.String()
}

// SubstituteSubChunk is the worker-side expansion of the subchunk placeholder.
func SubstituteSubChunk(q string, subChunkID int32) string {
	return strings.Replace(q, SubChunkTag, itoa32(subChunkID), -1)
}

// needsQuote reports whether an identifier must be back-quoted.
func needsQuote(name string) bool {
	if name == "" {
		return true
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '$', c == '%':
		default:
			return true
		}
	}
	return false
}

// QuoteIdent back-quotes name when it holds characters outside [A-Za-z0-9_$%].
func QuoteIdent(name string) string {
	if needsQuote(name) {
		return BackQuote(name)
	}
	return name
}

// BackQuote always back-quotes name.
func BackQuote(name string) string {
	return "`" + strings.Replace(name, "`", "``", -1) + "`"
}
