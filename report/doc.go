/*
Package report provides I/O operations for outcomes of settlement runs.

Every run is dumped into two human-readable files named after the run ID:

	'<run>-outcomes.json': JSON array of outcomes
	'<run>-outcomes.csv': CSV of outcomes

CSV records are 'reference,status,reason,accounts,rent' where accounts are
space-separated base58 addresses and rent is in lamports.

Use Read or IterateReports to access existing reports.
*/
package report
