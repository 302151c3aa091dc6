package traverse

import (
	"context"
	"fmt"
	"time"

	orderedmap "github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"

	"github.com/dbsmedya/refdump/internal/config"
	"github.com/dbsmedya/refdump/internal/logger"
	"github.com/dbsmedya/refdump/internal/record"
	"github.com/dbsmedya/refdump/internal/store"
)

// ProgressFunc receives the visited-record count after each new record.
// The count only ever grows.
type ProgressFunc func(visited int)

// Walker owns the traversal state of one run: the FIFO frontier of pending
// paths, the visited set, and the category memo held by its expander. The
// extractor and expander are read-only collaborators; nothing else mutates
// traversal state.
//
// Bounds are orthogonal: MaxRounds limits processing rounds (one increment
// per batch, NOT per reference hop), BatchSize limits paths per round,
// CategoryCap limits each category expansion, and MaxRecords caps the whole
// visited set (0 = unbounded).
//
// RD-P2-F1-T1: Frontier controller with owned traversal state
type Walker struct {
	store     store.Store
	extractor *ReferenceExtractor
	expander  *CategoryExpander
	bounds    config.TraversalConfig
	logger    *logger.Logger
	progress  ProgressFunc

	frontier *orderedmap.OrderedMap[string, bool]
	visited  *orderedmap.OrderedMap[string, *record.Record]
	refs     *orderedmap.OrderedMap[string, []string]
	errors   *ErrorLog
	stats    WalkStats
}

// NewWalker creates a walker over a store with the given traversal bounds.
// Non-positive MaxRounds and BatchSize fall back to the packaged defaults.
func NewWalker(s store.Store, bounds config.TraversalConfig, log *logger.Logger) (*Walker, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	if bounds.MaxRounds <= 0 {
		bounds.MaxRounds = 10
	}
	if bounds.BatchSize <= 0 {
		bounds.BatchSize = 25
	}

	extractor, err := NewReferenceExtractor(s)
	if err != nil {
		return nil, err
	}
	expander, err := NewCategoryExpander(s, bounds.CategoryCap)
	if err != nil {
		return nil, err
	}
	expander.SetLogger(log)

	return &Walker{
		store:     s,
		extractor: extractor,
		expander:  expander,
		bounds:    bounds,
		logger:    log,
	}, nil
}

// SetProgress registers a callback invoked after every newly visited record.
func (w *Walker) SetProgress(fn ProgressFunc) {
	w.progress = fn
}

// Run drains the frontier starting from seed and returns the visited record
// set. It aborts with an error before any traversal work when the store is
// unreachable or the seed is unknown; every later failure is non-fatal and
// lands in the result's error log instead.
//
// Each round removes up to BatchSize paths from the front of the frontier,
// first enqueued first. Traversal stops when the frontier empties or the
// round counter reaches MaxRounds, whichever comes first. On context
// cancellation the partial result is returned together with ctx.Err().
//
// RD-P2-F1-T2: Round loop, one counter increment per batch
// RD-P2-F1-T6: Graceful shutdown between rounds
func (w *Walker) Run(ctx context.Context, seed string) (*Result, error) {
	start := time.Now()

	if err := store.Preflight(ctx, w.store, seed); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := w.logger.WithFields(map[string]interface{}{"run": runID, "seed": seed})

	log.Infow("Starting traversal",
		"max_rounds", w.bounds.MaxRounds,
		"batch_size", w.bounds.BatchSize,
		"category_cap", w.bounds.CategoryCap,
		"max_records", w.bounds.MaxRecords,
	)

	w.frontier = orderedmap.NewOrderedMap[string, bool]()
	w.visited = orderedmap.NewOrderedMap[string, *record.Record]()
	w.refs = orderedmap.NewOrderedMap[string, []string]()
	w.errors = &ErrorLog{}
	w.stats = WalkStats{}
	w.enqueue(seed)

	rounds := 0
	var runErr error

	for w.frontier.Len() > 0 && rounds < w.bounds.MaxRounds {
		// RD-P2-F1-T6: stop between batches, never mid-batch
		select {
		case <-ctx.Done():
			log.Warnf("Traversal interrupted: %v", ctx.Err())
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}
		if w.capReached() {
			log.Warnf("Record cap %d reached, stopping traversal", w.bounds.MaxRecords)
			break
		}

		rounds++
		roundLog := log.WithRound(rounds)

		batch := w.dequeueBatch()
		roundLog.Debugf("Processing round %d with %d pending paths", rounds, len(batch))

		for _, path := range batch {
			if w.capReached() {
				break
			}
			w.processPath(ctx, roundLog, path)
		}

		roundLog.Infof("Round %d complete: %d visited, %d pending, %d errors",
			rounds, w.visited.Len(), w.frontier.Len(), w.errors.Len())

		if w.bounds.SleepSeconds > 0 && w.frontier.Len() > 0 {
			select {
			case <-ctx.Done():
				log.Warnf("Traversal interrupted during sleep: %v", ctx.Err())
				runErr = ctx.Err()
			case <-time.After(time.Duration(w.bounds.SleepSeconds * float64(time.Second))):
			}
			if runErr != nil {
				break
			}
		}
	}

	w.stats.RecordsVisited = w.visited.Len()
	w.stats.Rounds = rounds
	w.stats.TypesExpanded = w.expander.TypesExpanded()
	w.stats.NamespacesExpanded = w.expander.NamespacesExpanded()
	w.stats.Duration = time.Since(start)

	log.Infow("Traversal complete",
		"visited", w.stats.RecordsVisited,
		"rounds", w.stats.Rounds,
		"references", w.stats.ReferencesConfirmed,
		"types_expanded", w.stats.TypesExpanded,
		"namespaces_expanded", w.stats.NamespacesExpanded,
		"errors", w.errors.Len(),
		"duration", w.stats.Duration,
	)

	return &Result{
		RunID:   runID,
		Seed:    seed,
		Visited: w.visited,
		Refs:    w.refs,
		Stats:   w.stats,
		Errors:  w.errors,
	}, runErr
}

// processPath fetches one record, extracts its confirmed references, and
// triggers category expansion for its type tag and namespace. A failed
// fetch is recorded and skipped; the run continues.
//
// RD-P2-F1-T3: Fetch failure tolerance
func (w *Walker) processPath(ctx context.Context, log *logger.Logger, path string) {
	if _, done := w.visited.Get(path); done {
		return
	}

	content, err := w.store.Fetch(ctx, path)
	if err != nil {
		w.errors.Append(FailureFetch, path, err)
		log.WithRecord(path).Warnf("Fetch failed: %v", err)
		return
	}

	rec := record.New(path, content)
	w.visited.Set(path, rec)
	if w.progress != nil {
		w.progress(w.visited.Len())
	}

	candidates := w.extractor.Candidates(content)
	w.stats.CandidatesChecked += len(candidates)

	confirmed, probeErrs := w.extractor.Confirm(ctx, candidates)
	for _, probeErr := range probeErrs {
		w.errors.Append(FailureExtraction, path, probeErr)
	}
	w.refs.Set(path, confirmed)
	w.stats.ReferencesConfirmed += len(confirmed)

	enqueued := 0
	for _, ref := range confirmed {
		if w.enqueue(ref) {
			enqueued++
		}
	}
	log.WithRecord(path).Debugf("Extracted %d candidates, %d confirmed, %d enqueued",
		len(candidates), len(confirmed), enqueued)

	w.expandCategories(ctx, rec)
}

// expandCategories enqueues every member of the record's type tag and
// namespace the first time each is seen. The expander's memo makes repeat
// calls no-ops, so newly seen categories are detected here for free.
//
// RD-P2-F1-T4: Category expansion triggers
func (w *Walker) expandCategories(ctx context.Context, rec *record.Record) {
	tag := rec.TypeTag()
	byType, err := w.expander.ExpandType(ctx, tag)
	if err != nil {
		w.errors.Append(FailureExpansion, tag, err)
	}
	for _, path := range byType {
		w.enqueue(path)
	}

	ns := rec.Namespace()
	byNamespace, err := w.expander.ExpandNamespace(ctx, ns)
	if err != nil {
		w.errors.Append(FailureExpansion, ns, err)
	}
	for _, path := range byNamespace {
		w.enqueue(path)
	}
}

// enqueue appends a path to the frontier unless it is already pending or
// already visited. A path enters the frontier at most once per run; this
// is what keeps reference cycles from looping.
//
// RD-P2-F1-T1: Frontier dedup invariant
func (w *Walker) enqueue(path string) bool {
	if path == "" {
		return false
	}
	if _, seen := w.visited.Get(path); seen {
		return false
	}
	if _, pending := w.frontier.Get(path); pending {
		return false
	}
	w.frontier.Set(path, true)
	return true
}

// dequeueBatch removes up to BatchSize paths from the front of the
// frontier in insertion order.
func (w *Walker) dequeueBatch() []string {
	batch := make([]string, 0, w.bounds.BatchSize)
	for len(batch) < w.bounds.BatchSize {
		el := w.frontier.Front()
		if el == nil {
			break
		}
		batch = append(batch, el.Key)
		w.frontier.Delete(el.Key)
	}
	return batch
}

func (w *Walker) capReached() bool {
	return w.bounds.MaxRecords > 0 && w.visited.Len() >= w.bounds.MaxRecords
}
