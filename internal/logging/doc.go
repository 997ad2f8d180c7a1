// Package logging constructs the application's slog loggers.
//
// Two output formats are supported: a human-oriented console format
// (timestamp, level, component, message, key=value pairs) and line-delimited
// JSON. Attr helpers and standardized field names keep structured keys
// consistent across packages, and WithContext derives run/stage fields from
// a context annotated by the services package.
package logging
