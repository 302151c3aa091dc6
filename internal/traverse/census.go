package traverse

import (
	"context"
	"fmt"
	"time"

	orderedmap "github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/refdump/internal/logger"
	"github.com/dbsmedya/refdump/internal/record"
	"github.com/dbsmedya/refdump/internal/store"
)

// Census tallies one full scan of the store: how many records carry each
// type tag and how many live under each namespace. Tallies keep first-seen
// order so repeated scans over the same store list identically.
type Census struct {
	Records         int
	FetchFailures   int
	TypeCounts      *orderedmap.OrderedMap[string, int]
	NamespaceCounts *orderedmap.OrderedMap[string, int]
	Duration        time.Duration
}

// Types returns the tallied type tags in first-seen order.
func (c *Census) Types() []string {
	return c.TypeCounts.Keys()
}

// Namespaces returns the tallied namespaces in first-seen order.
func (c *Census) Namespaces() []string {
	return c.NamespaceCounts.Keys()
}

// TakeCensus lists every record in the store and fetches each to derive its
// type tag. Records that fail to fetch are counted but otherwise skipped;
// their namespace still tallies because it derives from the identifier
// alone. This is the same bulk scan the category expander performs,
// surfaced as a standalone report.
func TakeCensus(ctx context.Context, s store.Store, log *logger.Logger) (*Census, error) {
	if log == nil {
		log = logger.NewDefault()
	}
	start := time.Now()

	paths, err := s.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("census scan: %w", err)
	}

	census := &Census{
		TypeCounts:      orderedmap.NewOrderedMap[string, int](),
		NamespaceCounts: orderedmap.NewOrderedMap[string, int](),
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return census, fmt.Errorf("census interrupted: %w", err)
		}

		census.Records++
		ns := record.Namespace(path)
		if n, ok := census.NamespaceCounts.Get(ns); ok {
			census.NamespaceCounts.Set(ns, n+1)
		} else {
			census.NamespaceCounts.Set(ns, 1)
		}

		content, err := s.Fetch(ctx, path)
		if err != nil {
			census.FetchFailures++
			log.Debugf("Skipping %s during census: %v", path, err)
			continue
		}
		tag := record.New(path, content).TypeTag()
		if n, ok := census.TypeCounts.Get(tag); ok {
			census.TypeCounts.Set(tag, n+1)
		} else {
			census.TypeCounts.Set(tag, 1)
		}
	}

	census.Duration = time.Since(start)
	log.Infof("Census complete: %d records, %d types, %d namespaces, %d fetch failures, duration: %s",
		census.Records, census.TypeCounts.Len(), census.NamespaceCounts.Len(),
		census.FetchFailures, census.Duration)

	return census, nil
}
