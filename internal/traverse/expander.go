package traverse

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbsmedya/refdump/internal/logger"
	"github.com/dbsmedya/refdump/internal/record"
	"github.com/dbsmedya/refdump/internal/store"
)

// CategoryExpander pulls whole record categories into a walk.
//
// When the walker sees a type tag or namespace for the first time it asks
// the expander for every record in that category. A memo guarantees each
// distinct tag and each distinct namespace is expanded at most once per
// run, no matter how many later records carry it. Expansion results are
// capped per category and returned in store listing order.
//
// RD-P2-F3-T1: Category expansion with memo
type CategoryExpander struct {
	store       store.Store
	categoryCap int
	logger      *logger.Logger

	expandedTypes      map[string]bool
	expandedNamespaces map[string]bool
}

// NewCategoryExpander creates an expander over a store. A non-positive cap
// falls back to the packaged default.
func NewCategoryExpander(s store.Store, categoryCap int) (*CategoryExpander, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if categoryCap <= 0 {
		categoryCap = 50 // Default per-category allowance
	}

	return &CategoryExpander{
		store:              s,
		categoryCap:        categoryCap,
		logger:             logger.NewDefault(),
		expandedTypes:      make(map[string]bool),
		expandedNamespaces: make(map[string]bool),
	}, nil
}

// SetLogger sets a custom logger for the expander.
func (e *CategoryExpander) SetLogger(log *logger.Logger) {
	e.logger = log
}

// ExpandType returns every record whose content declares the given type
// tag, capped at the category allowance, in store listing order. A second
// call for the same tag returns nothing: the memo check runs before any
// store work, so the bulk scan happens at most once per tag per run.
//
// The scan fetches each listed record to derive its tag. Records that fail
// to fetch are skipped without being reported; a category scan is bulk
// discovery, not a primary traversal step.
//
// RD-P2-F3-T2: Type tag expansion
func (e *CategoryExpander) ExpandType(ctx context.Context, tag string) ([]string, error) {
	if tag == "" || tag == record.UnknownType {
		// Untyped records form no meaningful category.
		return nil, nil
	}
	if e.expandedTypes[tag] {
		return nil, nil
	}
	e.expandedTypes[tag] = true

	paths, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("expand type %s: %w", tag, err)
	}

	var matched []string
	for _, path := range paths {
		if len(matched) >= e.categoryCap {
			break
		}
		content, err := e.store.Fetch(ctx, path)
		if err != nil {
			e.logger.Debugf("Skipping %s during type scan: %v", path, err)
			continue
		}
		if record.New(path, content).TypeTag() == tag {
			matched = append(matched, path)
		}
	}

	e.logger.Debugf("Expanded type %q to %d records", tag, len(matched))
	return matched, nil
}

// ExpandNamespace returns every record under the given namespace, capped
// at the category allowance, in store listing order. Matching is a literal
// prefix comparison against prefix + "."; the namespace is derivable from
// the identifier alone, so nothing is fetched. Memoized like ExpandType.
//
// RD-P2-F3-T3: Namespace expansion
func (e *CategoryExpander) ExpandNamespace(ctx context.Context, prefix string) ([]string, error) {
	if prefix == "" {
		return nil, nil
	}
	if e.expandedNamespaces[prefix] {
		return nil, nil
	}
	e.expandedNamespaces[prefix] = true

	paths, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("expand namespace %s: %w", prefix, err)
	}

	needle := prefix + "."
	var matched []string
	for _, path := range paths {
		if len(matched) >= e.categoryCap {
			break
		}
		if strings.HasPrefix(path, needle) {
			matched = append(matched, path)
		}
	}

	e.logger.Debugf("Expanded namespace %q to %d records", prefix, len(matched))
	return matched, nil
}

// TypesExpanded returns how many distinct type tags were expanded.
func (e *CategoryExpander) TypesExpanded() int {
	return len(e.expandedTypes)
}

// NamespacesExpanded returns how many distinct namespaces were expanded.
func (e *CategoryExpander) NamespacesExpanded() int {
	return len(e.expandedNamespaces)
}
