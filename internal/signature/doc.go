// Package signature defines the closed set of path-matching rules used to
// recognise a game engine from a file listing. Each rule kind exposes a single
// Matches predicate over a lower-cased path; callers never branch on the kind.
package signature
