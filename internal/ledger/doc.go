/*
Package ledger implements an in-process ledger runtime following the Solana
account model. It hosts on-chain programs for tests and local simulation.

A Ledger keeps accounts (lamports, owner program, data), issues short-lived
recent blockhashes and executes signed transactions. Every transaction runs
against a working copy of the touched accounts and is committed only when all
its instructions succeed, so a failing instruction leaves no trace.

After each instruction the runtime checks that:
  - the sum of lamports over the instruction accounts did not change;
  - only the owning program debited an account or changed its data;
  - only writable accounts changed.

Programs call each other through InvokeContext.InvokeSigned. Derived
addresses of the calling program sign such calls when the caller passes the
derivation seeds.

The read surface (GetLatestBlockhash, GetTokenAccountsByOwner, GetBalance) and
SendTransactionWithOpts mirror the signatures of the solana-go RPC client, so
client code runs against a node and against a Ledger unchanged.
*/
package ledger
