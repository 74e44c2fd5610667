package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/zera-labs/janitor/settlement"
)

// Read returns outcomes of the run stored in the given directory.
func Read(dir string, run uuid.UUID) ([]settlement.Outcome, error) {
	var s reportStreams

	err := initReportStreams(&s, dir, run, true)
	if err != nil {
		return nil, err
	}
	defer s.close()

	var res []settlement.Outcome

	err = json.NewDecoder(s.json).Decode(&res)
	if err != nil {
		return nil, fmt.Errorf("decode outcomes from JSON: %w", err)
	}

	return res, nil
}

// IterateReports passes ID of each run reported in the specified directory
// into f. Missing directory means no reports.
func IterateReports(dir string, f func(uuid.UUID)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read report directory: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, sep+jsonFileSuffix) {
			continue
		}

		run, err := uuid.Parse(strings.TrimSuffix(name, sep+jsonFileSuffix))
		if err != nil {
			return fmt.Errorf("decode run ID from file name '%s': %w", name, err)
		}

		f(run)
	}

	return nil
}
