// Package statement builds SQL text and bind arguments from untyped table,
// column and row descriptions, and guards free-form queries by intent.
//
// Identifiers (table and column names) are validated against a conservative
// pattern and emitted unquoted. Column data types and constraints are
// appended verbatim. Row values are never interpolated; BulkInsert returns
// them as positional arguments.
//
// The intent guard is a prefix check on the trimmed, uppercased statement. It
// is not a parser: leading comments and multi-statement strings are not
// recognised.
package statement
