// Package logtail reads the tail of tinsel's JSON log file for display in the TUI.
//
// Read uses a ring buffer of maxLines entries so large files are scanned once
// with bounded memory. A missing file is not an error: Read returns nil, nil.
//
// Parse understands the encoder settings from package logging (ts, level, msg).
// Any other keys are kept as Fields; caller and stacktrace are dropped. Lines
// that are not JSON, such as a panic trace, are returned with Raw set.
package logtail
