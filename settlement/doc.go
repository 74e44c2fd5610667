/*
Package settlement drives closing of the user's empty token accounts.

A Session holds candidate accounts found by the scanner, the user's selection
among them and the append-only log of submission outcomes. Executor turns the
selection into BatchClean transactions of at most
janitorconst.MaxAccountsPerCall accounts each and submits them one by one
through the user's wallet. A failed transaction does not stop the run: its
outcome is recorded and the next one is submitted.

Executor lifecycle:

	idle --start--> running --submit--> submitting --record--> recorded
	                                         ^                     |
	                                         +-------submit--------+
	running, recorded --cancel--> cancelling
	running, recorded, cancelling --finish--> idle

Cancellation is honored between transactions only. Transactions not submitted
because of it still get an outcome with ReasonCancelled.
*/
package settlement
