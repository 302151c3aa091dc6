package traverse

import (
	"context"
	"fmt"

	orderedmap "github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/refdump/internal/record"
	"github.com/dbsmedya/refdump/internal/store"
)

// ReferenceExtractor finds confirmed record references inside decoded
// record content.
//
// Extraction runs as two independent stages. The shape stage walks the
// content tree and collects string leaves that look like record
// identifiers; it is a performance filter that keeps existence probes off
// ordinary prose. The confirmation stage asks the store whether each
// candidate actually exists, and only confirmed candidates become
// references. The two stages are kept separate so each can be tested on
// its own.
//
// RD-P2-F2-T1: Two-stage reference extraction
type ReferenceExtractor struct {
	store store.Store
}

// NewReferenceExtractor creates an extractor backed by the given store's
// existence oracle.
func NewReferenceExtractor(s store.Store) (*ReferenceExtractor, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &ReferenceExtractor{store: s}, nil
}

// Candidates walks the content tree and returns every string leaf that
// passes the reference shape rules, deduplicated in first-seen order so
// discovery order stays deterministic for a given tree.
//
// Arrays and nested objects are descended into; numbers, booleans and
// nulls never produce candidates.
//
// RD-P2-F2-T2: Shape stage
func (x *ReferenceExtractor) Candidates(content interface{}) []string {
	seen := make(map[string]bool)
	var out []string
	collectCandidates(content, seen, &out)
	return out
}

func collectCandidates(v interface{}, seen map[string]bool, out *[]string) {
	switch node := v.(type) {
	case *orderedmap.OrderedMap[string, interface{}]:
		for el := node.Front(); el != nil; el = el.Next() {
			collectCandidates(el.Value, seen, out)
		}
	case []interface{}:
		for _, item := range node {
			collectCandidates(item, seen, out)
		}
	case string:
		if record.IsCandidate(node) && !seen[node] {
			seen[node] = true
			*out = append(*out, node)
		}
	}
}

// Confirm keeps the candidates the store recognizes as record identifiers.
// The existence oracle is the authority; a candidate that fails the probe
// is dropped. Probe errors are returned alongside the confirmed set so the
// caller can record them without aborting the walk.
//
// RD-P2-F2-T3: Confirmation stage
func (x *ReferenceExtractor) Confirm(ctx context.Context, candidates []string) ([]string, []error) {
	var confirmed []string
	var errs []error

	for _, candidate := range candidates {
		ok, err := x.store.Exists(ctx, candidate)
		if err != nil {
			errs = append(errs, fmt.Errorf("confirm %s: %w", candidate, err))
			continue
		}
		if ok {
			confirmed = append(confirmed, candidate)
		}
	}
	return confirmed, errs
}

// Extract runs both stages over decoded record content.
func (x *ReferenceExtractor) Extract(ctx context.Context, content interface{}) ([]string, []error) {
	return x.Confirm(ctx, x.Candidates(content))
}
