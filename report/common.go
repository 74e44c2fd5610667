package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// word separator used in report file naming
	sep = "-"
	// suffix of file with JSON outcomes
	jsonFileSuffix = "outcomes.json"
	// suffix of file with CSV outcomes
	csvFileSuffix = "outcomes.csv"
)

// csvHeader is the first record of every CSV report.
var csvHeader = []string{"reference", "status", "reason", "accounts", "rent"}

// reportStreams groups data streams of a single report.
type reportStreams struct {
	json, csv io.ReadWriteCloser
}

// close closes all streams.
func (x *reportStreams) close() {
	if x.csv != nil {
		_ = x.csv.Close()
	}
	if x.json != nil {
		_ = x.json.Close()
	}
}

func fileName(run uuid.UUID, suffix string) string {
	return strings.Join([]string{run.String(), suffix}, sep)
}

// initReportStreams opens data streams for the report files located in the
// specified directory. If read flag is set, streams are read-only. Otherwise,
// files must not exist, and streams are write only.
func initReportStreams(s *reportStreams, dir string, run uuid.UUID, read bool) error {
	var err error

	pathJSON := filepath.Join(dir, fileName(run, jsonFileSuffix))
	pathCSV := filepath.Join(dir, fileName(run, csvFileSuffix))

	if !read {
		if err = checkFileNotExists(pathJSON); err != nil {
			return err
		}
		if err = checkFileNotExists(pathCSV); err != nil {
			return err
		}
	}

	var flag int
	var perm os.FileMode

	if read {
		flag = os.O_RDONLY
	} else {
		flag = os.O_CREATE | os.O_WRONLY
		perm = 0600
	}

	s.json, err = os.OpenFile(pathJSON, flag, perm)
	if err != nil {
		return fmt.Errorf("open file with JSON outcomes: %w", err)
	}

	s.csv, err = os.OpenFile(pathCSV, flag, perm)
	if err != nil {
		s.close()
		return fmt.Errorf("open file with CSV outcomes: %w", err)
	}

	return nil
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}
