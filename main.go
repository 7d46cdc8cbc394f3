package main

import "github.com/enginesniff/enginesniff/cmd/enginesniff"

func main() { enginesniff.Execute() }
