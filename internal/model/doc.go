// Package model defines the core data structures used throughout jobguard.
//
// This package contains the following main types:
//   - Phrase and RiskLevel: what to mark on a page and how it looks
//   - AnalysisRequest/AnalysisResult: the classifier wire format
//   - Request/Response: the page-side message contract
//   - PageScan: the accumulated result of scanning one posting
//   - ScanSummary: a curated, human-readable view of a PageScan
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The highlight engine, the classifier client, the pipeline and
// the report writers all use these types.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
