package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	orderedmap "github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/refdump/internal/logger"
	"github.com/dbsmedya/refdump/internal/record"
	"github.com/dbsmedya/refdump/internal/traverse"
)

const (
	outputExt       = ".txt"
	summaryFileName = "summary" + outputExt
)

// Writer renders a finished traversal into per-type outputs, a consolidated
// output, and a plaintext summary. A failed write is recorded in the run's
// error log and does not stop the remaining outputs.
type Writer struct {
	sink Sink
	log  *logger.Logger
	now  func() time.Time
}

// NewWriter creates an export writer emitting into sink.
func NewWriter(sink Sink, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Writer{
		sink: sink,
		log:  log,
		now:  time.Now,
	}
}

// ExportReport summarizes one export pass.
type ExportReport struct {
	Records      int
	Groups       int
	FilesWritten int
	FilesFailed  int
	Consolidated string
	Summary      string
}

// Write emits one file per discovered type tag, one consolidated file named
// after the seed, and a summary file. Write failures are logged, appended to
// the run's error log, and skipped over.
//
// RD-P3-F2-T1: Per-type grouped outputs
// RD-P3-F2-T3: Consolidated output sorted by tag
// RD-P3-F2-T4: Plaintext run summary
func (w *Writer) Write(res *traverse.Result) *ExportReport {
	report := &ExportReport{Records: res.Visited.Len()}
	generated := w.now()

	groups := GroupByTag(res.Records())
	report.Groups = groups.Len()

	for el := groups.Front(); el != nil; el = el.Next() {
		name := SanitizeName(el.Key) + outputExt
		w.emit(res, report, name, renderGroup(el.Key, el.Value, generated))
	}

	report.Consolidated = SanitizeName(res.Seed) + outputExt
	w.emit(res, report, report.Consolidated, renderConsolidated(res.Seed, groups, generated))

	report.Summary = summaryFileName
	w.emit(res, report, summaryFileName, renderSummary(res, generated))

	w.log.Infof("Export complete: %d records, %d type groups, %d files written, %d failed",
		report.Records, report.Groups, report.FilesWritten, report.FilesFailed)
	return report
}

// emit writes one output, absorbing failures into the error log.
//
// RD-P3-F2-T5: Write failures never abort the export
func (w *Writer) emit(res *traverse.Result, report *ExportReport, name, text string) {
	if err := w.sink.Write(name, text); err != nil {
		w.log.Errorf("Failed to write %s: %v", name, err)
		res.Errors.Append(traverse.FailureWrite, name, err)
		report.FilesFailed++
		return
	}
	report.FilesWritten++
}

// GroupByTag groups records by their type tag. Group order is the first
// visitation of each tag; records within a group keep visitation order.
func GroupByTag(records []*record.Record) *orderedmap.OrderedMap[string, []*record.Record] {
	groups := orderedmap.NewOrderedMap[string, []*record.Record]()
	for _, rec := range records {
		tag := rec.TypeTag()
		members, _ := groups.Get(tag)
		groups.Set(tag, append(members, rec))
	}
	return groups
}

// renderGroup renders one type group: a header comment, then each record as
// "path:" followed by its formatted content.
//
// RD-P3-F2-T2: Group file header
func renderGroup(tag string, records []*record.Record, generated time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Type: %s\n", tag)
	fmt.Fprintf(&b, "# Records: %d\n", len(records))
	fmt.Fprintf(&b, "# Generated: %s\n", generated.Format(time.RFC3339))

	for _, rec := range records {
		b.WriteString("\n")
		writeRecordEntry(&b, rec)
	}
	return b.String()
}

// renderConsolidated renders all groups into one output, sorted by tag name
// for human scanning. Per-group record order stays visitation order.
func renderConsolidated(seed string, groups *orderedmap.OrderedMap[string, []*record.Record], generated time.Time) string {
	tags := groups.Keys()
	sort.Strings(tags)

	total := 0
	for el := groups.Front(); el != nil; el = el.Next() {
		total += len(el.Value)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Export: %s\n", seed)
	fmt.Fprintf(&b, "# Types: %d\n", groups.Len())
	fmt.Fprintf(&b, "# Records: %d\n", total)
	fmt.Fprintf(&b, "# Generated: %s\n", generated.Format(time.RFC3339))

	for _, tag := range tags {
		members, _ := groups.Get(tag)
		b.WriteString("\n")
		b.WriteString(renderGroup(tag, members, generated))
	}
	return b.String()
}

// writeRecordEntry renders one record as "path:" plus its content block.
func writeRecordEntry(b *strings.Builder, rec *record.Record) {
	b.WriteString(rec.Path)
	b.WriteString(":")
	if isInline(rec.Content) {
		b.WriteString(" ")
		b.WriteString(Format(rec.Content, 0))
		b.WriteString("\n")
		return
	}
	b.WriteString("\n")
	b.WriteString(Format(rec.Content, 1))
	b.WriteString("\n")
}

// renderSummary produces the plaintext run summary: totals, bounds hit,
// enumerated tags and namespaces, and every accumulated run error.
func renderSummary(res *traverse.Result, generated time.Time) string {
	tagCounts := orderedmap.NewOrderedMap[string, int]()
	nsCounts := orderedmap.NewOrderedMap[string, int]()
	for el := res.Visited.Front(); el != nil; el = el.Next() {
		tag := el.Value.TypeTag()
		n, _ := tagCounts.Get(tag)
		tagCounts.Set(tag, n+1)

		ns := record.Namespace(el.Key)
		n, _ = nsCounts.Get(ns)
		nsCounts.Set(ns, n+1)
	}

	var b strings.Builder
	b.WriteString("=== Export Summary ===\n\n")
	fmt.Fprintf(&b, "Run ID: %s\n", res.RunID)
	fmt.Fprintf(&b, "Seed: %s\n", res.Seed)
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format(time.RFC3339))
	fmt.Fprintf(&b, "Records: %d\n", res.Visited.Len())
	fmt.Fprintf(&b, "Type tags: %d\n", tagCounts.Len())
	fmt.Fprintf(&b, "Namespaces: %d\n", nsCounts.Len())
	fmt.Fprintf(&b, "Rounds: %d\n", res.Stats.Rounds)
	fmt.Fprintf(&b, "References confirmed: %d\n", res.Stats.ReferencesConfirmed)
	fmt.Fprintf(&b, "Elapsed: %s\n", res.Stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Errors: %d\n", res.Errors.Len())

	b.WriteString("\nType tags:\n")
	for _, tag := range sortedKeys(tagCounts) {
		n, _ := tagCounts.Get(tag)
		fmt.Fprintf(&b, "  %s (%d)\n", tag, n)
	}

	b.WriteString("\nNamespaces:\n")
	for _, ns := range sortedKeys(nsCounts) {
		n, _ := nsCounts.Get(ns)
		fmt.Fprintf(&b, "  %s (%d)\n", ns, n)
	}

	if res.Errors.Len() > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range res.Errors.Entries() {
			fmt.Fprintf(&b, "  %s\n", e.Error())
		}
	}
	return b.String()
}

func sortedKeys(m *orderedmap.OrderedMap[string, int]) []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}
