// Package ldif implements a streaming codec for the LDIF interchange
// format (RFC 2849), covering exactly what the diff engine needs.
//
// Reader decodes one record at a time from a content stream: records are
// separated by blank lines, long lines are unfolded (a continuation line
// starts with a single space), values may be base64-encoded with the
// "attr::" form, and comment lines and a leading "version:" line are
// ignored. URL-valued attributes ("attr:<") are not supported and produce
// a per-record DecodeError.
//
// Writer serializes change records back into the same wire format:
// changetype add/delete/modify, with modify sub-operations separated by
// "-" lines. Values that are not safe strings under RFC 2849 are
// base64-encoded, and output lines are folded at 76 columns.
//
// The codec never interprets attribute semantics. Attribute names are
// case-normalized to lowercase on ingest so that lookups and comparisons
// elsewhere never need to worry about case.
package ldif
