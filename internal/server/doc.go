// Package server exposes classification over HTTP. One engine set is loaded
// at startup and shared read-only by every request.
package server
