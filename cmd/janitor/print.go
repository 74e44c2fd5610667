package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/zera-labs/janitor/common"
	"github.com/zera-labs/janitor/history"
	"github.com/zera-labs/janitor/settlement"
)

func printCandidates(w io.Writer, cs []settlement.CandidateAccount) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tACCOUNT\tMINT\tRENT (SOL)")
	for i, c := range cs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, c.Address, c.Mint, common.FormatSOL(c.HeldValue))
	}
	_ = tw.Flush()
}

func printEstimate(w io.Writer, e settlement.Estimate) {
	fmt.Fprintf(w, "accounts: %d, transactions: %d\n", e.Accounts, e.Transactions)
	fmt.Fprintf(w, "rent: %s SOL, fee: %s SOL, payout: %s SOL\n",
		common.FormatSOL(e.Rent), common.FormatSOL(e.Fee), common.FormatSOL(e.Payout))
}

func printReport(w io.Writer, rep settlement.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTATUS\tREASON\tACCOUNTS\tRENT (SOL)\tREFERENCE")
	for i, o := range rep.Outcomes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i, o.Status, o.Reason, len(o.Accounts), common.FormatSOL(o.Rent), o.Reference)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "run %s: %d confirmed, %d errored, %d removed in %s\n",
		rep.RunID, rep.Confirmed, rep.Errored, rep.Removed,
		rep.Finished.Sub(rep.Started).Round(time.Millisecond))
}

func printHistory(w io.Writer, recs []history.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\t#\tSAVED\tSTATUS\tREASON\tACCOUNTS\tRENT (SOL)\tREFERENCE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Run, r.Index, r.Saved.Format(time.RFC3339), r.Status, r.Reason,
			len(r.Accounts), common.FormatSOL(r.Rent), r.Reference)
	}
	_ = tw.Flush()
}
