// Package wireformat implements the little-endian binary encodings shared by
// host and guest: the mutation stream the guest flushes, the event payloads
// the host delivers, and the sanitized markup stream produced by parse-html.
//
// Decoding is strictly sequential. A decoder never reads past the end of its
// buffer; a value that would cross the end is reported as a protocol
// violation wrapping errors.ErrTruncated.
package wireformat
