// Package scan collects a file listing from a directory, archive, git
// revision or registry image and classifies it against an engine set. No
// file contents are read. This package is internal; external consumers should
// use the stable facade in pkg/core.
package scan
