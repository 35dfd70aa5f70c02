// Package model defines the data structures shared across the stripping pipeline.
package model

// Path represents a file system path.
type Path string

// RustFileExt is the file extension selected during directory walks.
const RustFileExt = ".rs"
