// Package koda implements KODA, a compact data-interchange format with a
// human-editable text syntax (.koda) and a canonical binary encoding (.kod).
//
// # Data Model
//
// Values are one of: null, bool, int (int64), float (binary64), string,
// array, object. Objects preserve insertion order in memory; the binary
// encoder re-sorts every object's entries into UTF-8 byte order so that
// structurally equal values always produce byte-identical output.
//
// # Text Syntax
//
//	{name: "my-app" version: 1 enabled: true}
//	name: "my-app" version: 1 enabled: true   // implicit root object
//	[1 2 3]
//
// Colons are optional, and so are commas between the members of a braced
// object or array; whitespace alone separates tokens. The implicit root
// object takes no commas between its pairs.
// Bare identifiers in value position become strings.
//
// # Binary Format
//
//	"KODA" (4 bytes) | version (1 byte) | dict_len (u32-BE) | dict entries | root value
//
// Every value is a tag byte followed by its payload; object members
// reference the document-wide key dictionary by index. See Encode and
// Decode.
//
// # Round-Trip
//
// Decode(Encode(v)) reproduces v up to object key order (binary always
// canonicalizes). Parse(Stringify(v)) reproduces v exactly for any v with
// no non-finite floats.
package koda
