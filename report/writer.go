package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/zera-labs/janitor/settlement"
)

// Write dumps outcomes of the run into the given directory. The directory
// must exist. Write fails if a report of the same run already exists.
func Write(dir string, rep settlement.Report) error {
	var s reportStreams

	err := initReportStreams(&s, dir, rep.RunID, false)
	if err != nil {
		return err
	}
	defer s.close()

	outcomes := rep.Outcomes
	if outcomes == nil {
		outcomes = []settlement.Outcome{}
	}

	jEnc := json.NewEncoder(s.json)
	jEnc.SetIndent("", " ")

	err = jEnc.Encode(outcomes)
	if err != nil {
		return fmt.Errorf("encode outcomes to JSON: %w", err)
	}

	w := csv.NewWriter(s.csv)

	err = w.Write(csvHeader)
	if err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for i := range outcomes {
		err = w.Write(csvRecord(outcomes[i]))
		if err != nil {
			return fmt.Errorf("write outcome #%d as CSV data: %w", i, err)
		}
	}

	w.Flush()

	err = w.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

func csvRecord(o settlement.Outcome) []string {
	accs := make([]string, len(o.Accounts))
	for i := range o.Accounts {
		accs[i] = o.Accounts[i].String()
	}

	return []string{
		o.Reference,
		o.Status.String(),
		o.Reason.String(),
		strings.Join(accs, " "),
		strconv.FormatUint(o.Rent, 10),
	}
}
