// Package server exposes the highlight engine and the scan pipeline over
// HTTP for browser extensions and other local tools.
//
// Every request works on its own parsed document, so handlers never share
// engine state between goroutines.
package server
