// Package database provides SQLite-based storage for jobguard's history.
//
// The HistoryDB stores:
//   - Analyses: one classifier verdict per scanned page, with the full
//     result as JSON
//   - Reports: postings the user submitted as scams
//
// The most recent analysis plays the role of a "last result" that later
// commands (report, history) can refer back to without scanning again.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. The history is a single file under the XDG data directory
// 2. The CGO-free driver keeps cross-compilation easy
// 3. WAL mode lets `jobguard history` read during a batch scan
package database
