// Package mmdberrors defines the structural error types shared across the
// decoder, trie walker, metadata locator, and address parser.
package mmdberrors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// InvalidDatabaseError is returned when the database contains invalid data
// and cannot be parsed. Reads past the end of the database (OutOfBounds)
// are reported as an InvalidDatabaseError; the other structural decode
// errors (UnsupportedTag, MalformedMapKey, InvalidNodeSize,
// PointerOutOfRange, DepthExceeded) are reported as one of the typed
// errors below, each its own type implementing error.
type InvalidDatabaseError struct {
	message string
	cause   error
}

// NewOutOfBoundsError reports a read that would run past the end of the
// database.
func NewOutOfBoundsError() InvalidDatabaseError {
	return InvalidDatabaseError{message: "unexpected end of database"}
}

// NewInvalidDatabaseError builds a formatted InvalidDatabaseError, attaching
// a stack trace via github.com/pkg/errors so structural-corruption failures
// carry enough context to diagnose a bad database file.
func NewInvalidDatabaseError(format string, args ...any) InvalidDatabaseError {
	msg := fmt.Sprintf(format, args...)
	return InvalidDatabaseError{message: msg, cause: pkgerrors.New(msg)}
}

func (e InvalidDatabaseError) Error() string {
	return e.message
}

func (e InvalidDatabaseError) Unwrap() error {
	return e.cause
}

// UnsupportedTagError is returned when the decoder encounters a control byte
// whose tag has no data representation (CacheContainer, EndMarker) outside a
// tolerated position.
type UnsupportedTagError struct {
	Tag int
}

func NewUnsupportedTagError(tag int) UnsupportedTagError {
	return UnsupportedTagError{Tag: tag}
}

func (e UnsupportedTagError) Error() string {
	return fmt.Sprintf("unsupported MMDB type tag: %d", e.Tag)
}

// MalformedMapKeyError is returned when a map's key does not decode to a
// String after pointer following.
type MalformedMapKeyError struct{}

func (MalformedMapKeyError) Error() string {
	return "map key did not decode to a string"
}

// DepthExceededError is returned when recursive value decoding exceeds the
// configured maximum depth, guarding against cyclic or adversarially deep
// pointer graphs.
type DepthExceededError struct {
	Max int
}

func NewDepthExceededError(max int) DepthExceededError {
	return DepthExceededError{Max: max}
}

func (e DepthExceededError) Error() string {
	return fmt.Sprintf("exceeded maximum decode depth of %d; database is likely corrupt", e.Max)
}

// InvalidPayloadSizeError is returned when a fixed-width kind's payload
// size falls outside what that kind permits (an integer wider than its
// type, a double that is not 8 bytes, a float that is not 4).
type InvalidPayloadSizeError struct {
	Kind string
	Size uint
}

func NewInvalidPayloadSizeError(kind string, size uint) InvalidPayloadSizeError {
	return InvalidPayloadSizeError{Kind: kind, Size: size}
}

func (e InvalidPayloadSizeError) Error() string {
	return fmt.Sprintf("invalid payload size %d for %s", e.Size, e.Kind)
}

// PointerOutOfRangeError is returned when a pointer's resolved target falls
// outside the backing buffer.
type PointerOutOfRangeError struct {
	Target uint
}

func NewPointerOutOfRangeError(target uint) PointerOutOfRangeError {
	return PointerOutOfRangeError{Target: target}
}

func (e PointerOutOfRangeError) Error() string {
	return fmt.Sprintf("pointer target %d is out of range", e.Target)
}

// InvalidNodeSizeError is returned when a database's record_size is not one
// of the three values the format defines.
type InvalidNodeSizeError struct {
	RecordSize uint
}

func NewInvalidNodeSizeError(recordSize uint) InvalidNodeSizeError {
	return InvalidNodeSizeError{RecordSize: recordSize}
}

func (e InvalidNodeSizeError) Error() string {
	return fmt.Sprintf("unsupported record_size: %d (must be 24, 28, or 32)", e.RecordSize)
}

// MetadataMarkerMissingError is returned when Open cannot find the MaxMind
// magic marker within the trailing search window.
type MetadataMarkerMissingError struct{}

func (MetadataMarkerMissingError) Error() string {
	return "invalid MaxMind DB file: metadata marker not found"
}

// MetadataFieldMissingError is returned when a required metadata field is
// absent from the decoded metadata map.
type MetadataFieldMissingError struct {
	Field string
}

func NewMetadataFieldMissingError(field string) MetadataFieldMissingError {
	return MetadataFieldMissingError{Field: field}
}

func (e MetadataFieldMissingError) Error() string {
	return fmt.Sprintf("metadata field %q is missing", e.Field)
}

// MetadataFieldTypeError is returned when a metadata field decodes to a Kind
// the projection does not expect.
type MetadataFieldTypeError struct {
	Field    string
	Expected string
	Actual   string
}

func NewMetadataFieldTypeError(field, expected, actual string) MetadataFieldTypeError {
	return MetadataFieldTypeError{Field: field, Expected: expected, Actual: actual}
}

func (e MetadataFieldTypeError) Error() string {
	return fmt.Sprintf("metadata field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// AddressSyntaxError is returned when an address string does not match the
// accepted IPv4 or IPv6 grammar.
type AddressSyntaxError struct {
	Input string
}

func NewAddressSyntaxError(input string) AddressSyntaxError {
	return AddressSyntaxError{Input: input}
}

func (e AddressSyntaxError) Error() string {
	return fmt.Sprintf("invalid address syntax: %q", e.Input)
}

// TooManyColonsError is returned when an IPv6 literal contains more than two
// consecutive colons, or more than one "::" compression marker.
type TooManyColonsError struct {
	Input string
}

func NewTooManyColonsError(input string) TooManyColonsError {
	return TooManyColonsError{Input: input}
}

func (e TooManyColonsError) Error() string {
	return fmt.Sprintf("too many colons in address: %q", e.Input)
}

// UnsupportedAddressFamilyError is returned when an IPv6 address is looked
// up against an IPv4-only database.
type UnsupportedAddressFamilyError struct {
	Input string
}

func NewUnsupportedAddressFamilyError(input string) UnsupportedAddressFamilyError {
	return UnsupportedAddressFamilyError{Input: input}
}

func (e UnsupportedAddressFamilyError) Error() string {
	return fmt.Sprintf(
		"error looking up %q: you attempted to look up an IPv6 address in an IPv4-only database",
		e.Input,
	)
}
