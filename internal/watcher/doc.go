// Package watcher follows a set of files for appended lines and hands every
// completed line to a notification sink.
//
// Files that do not exist yet, get truncated in place, or get deleted and
// recreated are tolerated: a missing file is picked up through a watch on its
// immediate parent directory, truncation restarts reading at offset zero, and
// a recreated file is re-armed at its current end so old content is never
// replayed. Only the immediate parent is tracked; if that directory is also
// missing, recreation cannot be detected.
//
// A Watcher is not safe for concurrent use. Run drives it from a single
// goroutine and every state change happens inside batch handling.
package watcher
