// Package config provides configuration structures for jobguard: classifier
// connection settings, text extraction limits, report output options and the
// optional .jobguard YAML file with per-site overrides.
package config
