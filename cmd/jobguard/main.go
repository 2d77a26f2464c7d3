// Package main provides the entry point for the jobguard CLI.
//
// jobguard checks job postings for scam signals. It sends the posting text
// to a classifier service and marks the suspicious phrases the classifier
// returns directly in the page HTML.
//
// Usage:
//
//	jobguard scan <url|file>...
//	jobguard highlight <file> --phrases phrases.json
//	jobguard serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
