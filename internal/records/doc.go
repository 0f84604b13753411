// Package records implements the per-container blob manifest.
//
// A manifest file starts with a version (always 4) and a record count,
// followed by fixed-size records. Each record carries a blob name in a
// zero-filled 128-byte UTF-16LE field, an atom id and the file id that names
// the blob's data file inside the container directory.
package records
