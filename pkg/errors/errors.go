// Package errors provides structured error handling for the Weft toolkit.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindFont indicates a font loading or parsing failure.
	KindFont
	// KindGlyph indicates a glyph lookup or rasterization failure.
	KindGlyph
	// KindEffect indicates an illegal effect configuration.
	KindEffect
	// KindCache indicates a glyph cache production failure.
	KindCache
	// KindConfig indicates an invalid configuration value.
	KindConfig
	// KindDispatch indicates a recovered touch dispatch failure.
	KindDispatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindFont:
		return "font"
	case KindGlyph:
		return "glyph"
	case KindEffect:
		return "effect"
	case KindCache:
		return "cache"
	case KindConfig:
		return "config"
	case KindDispatch:
		return "dispatch"
	default:
		return "unknown"
	}
}

// WeftError represents a structured error in the Weft toolkit.
type WeftError struct {
	// Op is the operation that failed (e.g., "font.NewOutlineBackend").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *WeftError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *WeftError) Unwrap() error {
	return e.Err
}

// GlyphNotFoundError reports a character that the bitmap backend's atlas
// does not declare. It is recoverable: label layout proceeds with the
// caller-chosen placeholder or omission policy.
type GlyphNotFoundError struct {
	// Char is the requested character.
	Char rune
	// Source identifies the atlas or font the character was requested from.
	Source string
}

func (e *GlyphNotFoundError) Error() string {
	return fmt.Sprintf("glyph %q not declared by %s", e.Char, e.Source)
}

// UnsupportedEffectError reports an effect applied to a backend that cannot
// render it. It is raised at configuration time, never at render time, and
// fails the whole label configuration.
type UnsupportedEffectError struct {
	// Backend names the font backend (bitmap, outline, system).
	Backend string
	// Effect names the rejected effect (shadow, outline, glow).
	Effect string
}

func (e *UnsupportedEffectError) Error() string {
	return fmt.Sprintf("effect %s is not supported by the %s backend", e.Effect, e.Backend)
}

// ProductionError reports a glyph cache production failure, e.g. corrupt
// font data. The cache records it as a negative entry for a short duration
// so repeated requests do not hot-loop the failing producer.
type ProductionError struct {
	// Key describes the cache key whose production failed.
	Key string
	// Err is the underlying rasterization error.
	Err error
}

func (e *ProductionError) Error() string {
	return fmt.Sprintf("glyph production failed for %s: %v", e.Key, e.Err)
}

func (e *ProductionError) Unwrap() error {
	return e.Err
}
