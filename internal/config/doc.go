// Package config loads enginesniff settings from local and global YAML files
// with precedence rules, and loads the engine signature set the classifier
// runs against. It is internal; CLI code maps flags and files into scan and
// server configuration.
package config
