// Package report persists the per-run reduction summary to ClickHouse.
package report

import (
	"time"

	"github.com/ava-labs/readreducer/pkg/reduce"
)

// Report is the summary of one reduction run.
type Report struct {
	RunID          string `json:"run_id"`
	Input          string `json:"input"`
	Output         string `json:"output"`
	TotalReads     uint64 `json:"total_reads"`
	FilteredReads  uint64 `json:"filtered_reads"`
	DroppedReads   uint64 `json:"dropped_reads"`
	EmittedReads   uint64 `json:"emitted_reads"`
	ConsensusReads uint64 `json:"consensus_reads"`
	VariableReads  uint64 `json:"variable_reads"`
	Timestamp      int64  `json:"timestamp"`
}

// FromStats builds the report for a finished run.
func FromStats(runID, input, output string, s reduce.Stats, at time.Time) *Report {
	return &Report{
		RunID:          runID,
		Input:          input,
		Output:         output,
		TotalReads:     uint64(s.TotalReads),
		FilteredReads:  uint64(s.FilteredReads),
		DroppedReads:   uint64(s.DroppedReads),
		EmittedReads:   uint64(s.EmittedReads),
		ConsensusReads: uint64(s.ConsensusReads),
		VariableReads:  uint64(s.OriginalReads),
		Timestamp:      at.Unix(),
	}
}
