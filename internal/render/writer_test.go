package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	orderedmap "github.com/elliotchance/orderedmap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/refdump/internal/record"
	"github.com/dbsmedya/refdump/internal/traverse"
)

// memSink collects outputs in memory and can reject selected names.
type memSink struct {
	files  map[string]string
	order  []string
	failOn map[string]error
}

func newMemSink() *memSink {
	return &memSink{
		files:  make(map[string]string),
		failOn: make(map[string]error),
	}
}

func (s *memSink) Write(name, text string) error {
	if err, ok := s.failOn[name]; ok {
		return err
	}
	s.files[name] = text
	s.order = append(s.order, name)
	return nil
}

func mustRecord(t *testing.T, path, raw string) *record.Record {
	t.Helper()
	content, err := record.DecodeContent([]byte(raw))
	require.NoError(t, err)
	return record.New(path, content)
}

func exportResult(seed string, recs ...*record.Record) *traverse.Result {
	visited := orderedmap.NewOrderedMap[string, *record.Record]()
	for _, r := range recs {
		visited.Set(r.Path, r)
	}
	return &traverse.Result{
		RunID:   "run-0001",
		Seed:    seed,
		Visited: visited,
		Refs:    orderedmap.NewOrderedMap[string, []string](),
		Stats: traverse.WalkStats{
			RecordsVisited: len(recs),
			Rounds:         2,
			Duration:       1234 * time.Millisecond,
		},
		Errors: &traverse.ErrorLog{},
	}
}

func testWriter(sink Sink) *Writer {
	w := NewWriter(sink, nil)
	w.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	return w
}

// Two Weapon records and one Armor record produce two per-type files plus a
// consolidated file where Armor precedes Weapon alphabetically.
func TestWriteGroupsAndConsolidated(t *testing.T) {
	res := exportResult("Items.sword",
		mustRecord(t, "Items.sword", `{"$type":"Weapon","damage":42}`),
		mustRecord(t, "Items.axe", `{"$type":"Weapon","damage":17}`),
		mustRecord(t, "Gear.helm", `{"$type":"Armor","defense":10}`),
	)
	sink := newMemSink()

	report := testWriter(sink).Write(res)

	assert.Equal(t, 3, report.Records)
	assert.Equal(t, 2, report.Groups)
	assert.Equal(t, 4, report.FilesWritten)
	assert.Equal(t, 0, report.FilesFailed)

	// Per-type files named after the tag, emitted in tag-first-seen order.
	assert.Equal(t, []string{"Weapon.txt", "Armor.txt", "Items.sword.txt", "summary.txt"}, sink.order)

	weapon := sink.files["Weapon.txt"]
	assert.Less(t, strings.Index(weapon, "Items.sword:"), strings.Index(weapon, "Items.axe:"),
		"group preserves visitation order")

	cons := sink.files["Items.sword.txt"]
	armorAt := strings.Index(cons, "# Type: Armor")
	weaponAt := strings.Index(cons, "# Type: Weapon")
	require.GreaterOrEqual(t, armorAt, 0)
	require.GreaterOrEqual(t, weaponAt, 0)
	assert.Less(t, armorAt, weaponAt, "consolidated output sorts tags alphabetically")
	assert.Contains(t, cons, "Gear.helm:")
}

func TestWriteGroupFileLayout(t *testing.T) {
	res := exportResult("Gear.helm",
		mustRecord(t, "Gear.helm", `{"$type":"Armor","defense":10}`),
	)
	sink := newMemSink()

	testWriter(sink).Write(res)

	want := "# Type: Armor\n" +
		"# Records: 1\n" +
		"# Generated: 2026-03-14T09:30:00Z\n" +
		"\n" +
		"Gear.helm:\n" +
		"  $type: \"Armor\"\n" +
		"  defense: 10\n"
	assert.Equal(t, want, sink.files["Armor.txt"])
}

func TestWriteRecordsWithoutTypeGroupAsUnknown(t *testing.T) {
	res := exportResult("Misc.note",
		mustRecord(t, "Misc.note", `{"text":"hello"}`),
	)
	sink := newMemSink()

	report := testWriter(sink).Write(res)

	assert.Equal(t, 1, report.Groups)
	assert.Contains(t, sink.files, "Unknown.txt")
}

// A rejected write is logged and recorded, and every remaining output is
// still attempted.
func TestWriteFailureDoesNotAbort(t *testing.T) {
	res := exportResult("Items.sword",
		mustRecord(t, "Items.sword", `{"$type":"Weapon","damage":42}`),
		mustRecord(t, "Gear.helm", `{"$type":"Armor","defense":10}`),
	)
	sink := newMemSink()
	sink.failOn["Weapon.txt"] = errors.New("disk full")

	report := testWriter(sink).Write(res)

	assert.Equal(t, 3, report.FilesWritten)
	assert.Equal(t, 1, report.FilesFailed)
	assert.Contains(t, sink.files, "Armor.txt")
	assert.Contains(t, sink.files, "Items.sword.txt")
	assert.Contains(t, sink.files, "summary.txt")

	require.Equal(t, 1, res.Errors.Len())
	entry := res.Errors.Entries()[0]
	assert.Equal(t, traverse.FailureWrite, entry.Kind)
	assert.Equal(t, "Weapon.txt", entry.Subject)

	// The failure surfaced before the summary was rendered.
	assert.Contains(t, sink.files["summary.txt"], "[write] Weapon.txt: disk full")
}

func TestWriteSummaryContents(t *testing.T) {
	res := exportResult("Items.sword",
		mustRecord(t, "Items.sword", `{"$type":"Weapon","damage":42}`),
		mustRecord(t, "Items.axe", `{"$type":"Weapon","damage":17}`),
		mustRecord(t, "Gear.helm", `{"$type":"Armor","defense":10}`),
	)
	res.Stats.ReferencesConfirmed = 4
	sink := newMemSink()

	testWriter(sink).Write(res)

	summary := sink.files["summary.txt"]
	assert.Contains(t, summary, "Run ID: run-0001")
	assert.Contains(t, summary, "Seed: Items.sword")
	assert.Contains(t, summary, "Records: 3")
	assert.Contains(t, summary, "Type tags: 2")
	assert.Contains(t, summary, "Namespaces: 2")
	assert.Contains(t, summary, "Rounds: 2")
	assert.Contains(t, summary, "References confirmed: 4")
	assert.Contains(t, summary, "Elapsed: 1.234s")
	assert.Contains(t, summary, "Errors: 0")
	assert.Contains(t, summary, "  Armor (1)")
	assert.Contains(t, summary, "  Weapon (2)")
	assert.Contains(t, summary, "  Gear (1)")
	assert.Contains(t, summary, "  Items (2)")
}

func TestWriteSanitizesOutputNames(t *testing.T) {
	res := exportResult("Items.sword",
		mustRecord(t, "Items.sword", `{"$type":"Melee / Two Handed","damage":42}`),
	)
	sink := newMemSink()

	testWriter(sink).Write(res)

	assert.Contains(t, sink.files, "Melee___Two_Handed.txt")
}

func TestGroupByTagOrder(t *testing.T) {
	records := []*record.Record{
		mustRecord(t, "Items.sword", `{"$type":"Weapon"}`),
		mustRecord(t, "Gear.helm", `{"$type":"Armor"}`),
		mustRecord(t, "Items.axe", `{"$type":"Weapon"}`),
	}

	groups := GroupByTag(records)

	assert.Equal(t, []string{"Weapon", "Armor"}, groups.Keys())
	weapons, _ := groups.Get("Weapon")
	require.Len(t, weapons, 2)
	assert.Equal(t, "Items.sword", weapons[0].Path)
	assert.Equal(t, "Items.axe", weapons[1].Path)
}
