// Package traverse discovers the closure of cross-referenced records in a
// keyed record store.
//
// Starting from a seed path, a RecordWalker drains a FIFO frontier in
// rounds, fetching each record, extracting confirmed references from its
// content, and expanding newly seen record categories until the frontier
// empties or a traversal bound is hit.
package traverse

import (
	"fmt"
	"time"

	orderedmap "github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/refdump/internal/record"
)

// FailureKind classifies a non-fatal failure recorded during a run.
type FailureKind string

const (
	FailureFetch      FailureKind = "fetch"
	FailureExtraction FailureKind = "extraction"
	FailureExpansion  FailureKind = "expansion"
	FailureWrite      FailureKind = "write"
)

// RunError is one non-fatal failure accumulated during a run. Subject names
// the record path, category, or output file the failure relates to.
type RunError struct {
	Kind    FailureKind
	Subject string
	Err     error
}

func (e RunError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Subject, e.Err)
}

func (e RunError) Unwrap() error {
	return e.Err
}

// ErrorLog accumulates non-fatal failures across traversal and export so
// the run summary can enumerate them. The zero value is ready to use.
//
// RD-P2-F4-T3: run-scoped error accumulation
type ErrorLog struct {
	entries []RunError
}

// Append records one failure.
func (l *ErrorLog) Append(kind FailureKind, subject string, err error) {
	l.entries = append(l.entries, RunError{Kind: kind, Subject: subject, Err: err})
}

// Entries returns the recorded failures in append order.
func (l *ErrorLog) Entries() []RunError {
	return append([]RunError(nil), l.entries...)
}

// Len returns the number of recorded failures.
func (l *ErrorLog) Len() int {
	return len(l.entries)
}

// CountKind returns how many failures of the given kind were recorded.
func (l *ErrorLog) CountKind(kind FailureKind) int {
	n := 0
	for _, e := range l.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// WalkStats summarizes one traversal run.
//
// RD-P2-F1-T5: traversal statistics
type WalkStats struct {
	RecordsVisited      int
	Rounds              int
	CandidatesChecked   int
	ReferencesConfirmed int
	TypesExpanded       int
	NamespacesExpanded  int
	Duration            time.Duration
}

// Result holds everything a walk produced: the visited records keyed by
// path in first-visit order, the confirmed reference adjacency, the run
// statistics, and the error log.
type Result struct {
	RunID   string
	Seed    string
	Visited *orderedmap.OrderedMap[string, *record.Record]
	Refs    *orderedmap.OrderedMap[string, []string]
	Stats   WalkStats
	Errors  *ErrorLog
}

// Paths returns the visited record paths in visit order.
func (r *Result) Paths() []string {
	return r.Visited.Keys()
}

// Records returns the visited records in visit order.
func (r *Result) Records() []*record.Record {
	out := make([]*record.Record, 0, r.Visited.Len())
	for el := r.Visited.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}
