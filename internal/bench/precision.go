package bench

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/captcha-tools-mcp/internal/imaging"
	"github.com/ironsheep/captcha-tools-mcp/internal/logging"
)

// MinAnswerLength is the shortest file stem treated as a labelled sample.
const MinAnswerLength = 6

// Resolver turns an image into its answer.
type Resolver interface {
	Resolve(img image.Image) string
}

// Failure is a sample whose answer did not match its label.
type Failure struct {
	File     string `json:"file"`
	Expected string `json:"expected"`
	Got      string `json:"got"`
	// Err is set when the file could not be decoded.
	Err string `json:"error,omitempty"`
}

// Report summarises a precision run.
type Report struct {
	Total    int           `json:"total"`
	Solved   int           `json:"solved"`
	Skipped  int           `json:"skipped"`
	Failures []Failure     `json:"failures"`
	Solving  time.Duration `json:"solving_ns"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// Precision returns the solved share in percent, 0 for an empty run.
func (r *Report) Precision() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Solved) / float64(r.Total) * 100
}

// AverageTime is the mean per-sample load and solve time.
func (r *Report) AverageTime() time.Duration {
	if r.Total == 0 {
		return 0
	}
	return r.Solving / time.Duration(r.Total)
}

// Write prints the report in the benchmark's plain text format.
func (r *Report) Write(w io.Writer) {
	for _, f := range r.Failures {
		if f.Err != "" {
			fmt.Fprintf(w, "%s: failed to load: %s\n", f.File, f.Err)
			continue
		}
		fmt.Fprintf(w, "%s: expected %q, got %q\n", f.File, f.Expected, f.Got)
	}
	fmt.Fprintf(w, "Solved: %d/%d\n", r.Solved, r.Total)
	fmt.Fprintf(w, "Precision: %.2f%%\n", r.Precision())
	fmt.Fprintf(w, "Average time: %.2fms\n", float64(r.AverageTime().Microseconds())/1000)
	fmt.Fprintf(w, "Total time: %.2fs\n", r.Elapsed.Seconds())
}

// ExpectedAnswer derives the label from a file name: everything before the
// first dot. ok is false for stems shorter than MinAnswerLength.
func ExpectedAnswer(name string) (string, bool) {
	stem := filepath.Base(name)
	if i := strings.IndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}
	return stem, len(stem) >= MinAnswerLength
}

// RunPrecision solves every labelled image in dir and compares each answer
// with its file stem. Files are visited in name order. Unreadable images
// count as failures; the run stops early only when ctx is done.
func RunPrecision(ctx context.Context, r Resolver, dir string, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logging.WithOperation(logger, "precision", "")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, logging.NewOperationError("precision", "", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	start := time.Now()
	report := &Report{Failures: make([]Failure, 0)}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, logging.NewOperationError("precision", "", err)
		}
		if entry.IsDir() {
			continue
		}

		expected, ok := ExpectedAnswer(entry.Name())
		if !ok {
			report.Skipped++
			continue
		}
		report.Total++

		path := filepath.Join(dir, entry.Name())
		sampleStart := time.Now()

		img, err := imaging.LoadFile(path)
		if err != nil {
			report.Solving += time.Since(sampleStart)
			report.Failures = append(report.Failures, Failure{File: path, Expected: expected, Err: err.Error()})
			logger.Warn("unreadable sample", zap.String("file", path), zap.Error(err))
			continue
		}

		got := r.Resolve(img)
		report.Solving += time.Since(sampleStart)

		if got == expected {
			report.Solved++
			continue
		}
		report.Failures = append(report.Failures, Failure{File: path, Expected: expected, Got: got})
		logger.Debug("mismatch", zap.String("file", path), zap.String("expected", expected), zap.String("got", got))
	}

	report.Elapsed = time.Since(start)
	logger.Info("precision run finished",
		zap.Int("total", report.Total),
		zap.Int("solved", report.Solved),
		zap.Float64("precision", report.Precision()),
	)
	return report, nil
}
