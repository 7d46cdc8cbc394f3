// Package classify scores a file listing against weighted engine signatures
// and picks the best-scoring engine. It is pure and safe for concurrent use
// as long as the engine set is not mutated.
package classify
