// Package convert composes format readers into per-session container
// conversions.
//
// Each data interface wraps one reader behind a uniform "add data to the
// container" contract; the set is closed (one concrete type per raw
// format) because the supported formats are fixed. The Converter owns an
// ordered list of interfaces for one session, resolves the shared time
// origin (the first recording sample) once, runs every interface
// sequentially, and persists the container atomically at the end. If any
// interface fails the whole session aborts and no output file is left
// behind.
package convert
