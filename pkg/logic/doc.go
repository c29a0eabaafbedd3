// Package logic implements the serializable rule grammar used to gate form
// fields. A Rule is a tagged value, {"operator": "<name>", "args": [...]},
// that round-trips through encoding/json without loss. Evaluate resolves a
// rule against a flat record of field values. Field names are plain keys, so
// "profile.city" names a field called profile.city and never walks into a
// nested map. Fields missing from the record read as nil and never produce an
// error.
//
// The and/or/not combinators nest rules and coerce results to booleans with
// Truthy: nil, false, numeric zero, NaN and the empty string are false, and
// every other value is true, empty slices and maps included.
package logic
