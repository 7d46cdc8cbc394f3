// Package enginesniff provides the command-line interface for the enginesniff
// tool. It configures subcommands (scan, identify, serve, etc.), parses flags,
// and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/enginesniff/enginesniff/cmd/enginesniff"
//	func main() { enginesniff.Execute() }
package enginesniff
