package errors

import stdErrors "errors"

// EngineError covers the two codec-level failure kinds the storage engine's
// core recognizes beyond plain storage I/O: malformed byte streams and
// id-space overflow. It follows the same embed-and-fluent-chain shape as
// StorageError and IndexError.
type EngineError struct {
	*baseError

	// byteOffset is the position in the stream where decoding failed, if
	// known.
	byteOffset int64

	// variant names the record kind being processed (node/way/relation/
	// field/string/page) when the error occurred.
	variant string

	// id is the offending record id, for IdOverflow errors.
	id uint64
}

// NewEngineError creates a new engine-level error with the provided context.
func NewEngineError(err error, code ErrorCode, msg string) *EngineError {
	return &EngineError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while preserving the EngineError type.
func (ee *EngineError) WithMessage(msg string) *EngineError {
	ee.baseError.WithMessage(msg)
	return ee
}

// WithCode sets the error code while preserving the EngineError type.
func (ee *EngineError) WithCode(code ErrorCode) *EngineError {
	ee.baseError.WithCode(code)
	return ee
}

// WithDetail adds contextual information while preserving the EngineError type.
func (ee *EngineError) WithDetail(key string, value any) *EngineError {
	ee.baseError.WithDetail(key, value)
	return ee
}

// WithByteOffset records where in the stream decoding failed.
func (ee *EngineError) WithByteOffset(offset int64) *EngineError {
	ee.byteOffset = offset
	return ee
}

// WithVariant records which record kind was being decoded.
func (ee *EngineError) WithVariant(variant string) *EngineError {
	ee.variant = variant
	return ee
}

// WithID records the offending record id.
func (ee *EngineError) WithID(id uint64) *EngineError {
	ee.id = id
	return ee
}

// ByteOffset returns the stream position where decoding failed.
func (ee *EngineError) ByteOffset() int64 { return ee.byteOffset }

// Variant returns the record kind being processed.
func (ee *EngineError) Variant() string { return ee.variant }

// ID returns the offending record id.
func (ee *EngineError) ID() uint64 { return ee.id }

// NewMalformedInputError reports a byte stream that did not conform to the
// expected wire format: an unknown variant tag, a truncated varint, or
// invalid UTF-8 in a string field. Fatal for the affected record only; the
// store continues operating.
func NewMalformedInputError(cause error, variant string, offset int64) *EngineError {
	return NewEngineError(cause, ErrorCodeMalformedInput, "malformed input while decoding "+variant).
		WithVariant(variant).
		WithByteOffset(offset)
}

// NewIdOverflowError reports that a record's id required bits reserved by
// the flattened cross-kind id scheme. The record is skipped; the caller is
// informed via this error.
func NewIdOverflowError(id uint64, variant string) *EngineError {
	return NewEngineError(nil, ErrorCodeIdOverflow, "id overflows reserved variant-tag bits").
		WithVariant(variant).
		WithID(id)
}

// AsEngineError extracts EngineError context from an error chain.
func AsEngineError(err error) (*EngineError, bool) {
	var ee *EngineError
	if stdErrors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
