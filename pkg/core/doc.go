// Package core provides a small, stable facade over enginesniff's internal
// packages for external integrations.
//
// Example:
//
//	res := core.Classify(files, core.DefaultEngines())
//	if res.Engine != core.Unknown { /* ... */ }
//	_ = core.MarshalResult(os.Stdout, res)
package core
