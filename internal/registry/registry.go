// Package registry holds the curated, dated model recommendations and the
// pure lookups over them. A Registry never changes after construction and
// every accessor hands out copies, so it is safe for concurrent use.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"modelpicker/internal/core"
)

// Registry is an immutable set of snapshots keyed by date.
type Registry struct {
	snapshots map[string]core.Snapshot
	dates     []string // descending
}

// New builds a registry from in-memory snapshots after checking that every
// snapshot is complete and every model is well formed. The input is copied.
func New(snapshots map[string]core.Snapshot) (*Registry, error) {
	if len(snapshots) == 0 {
		return nil, errors.New("registry has no snapshots")
	}

	var problems []error
	for date, snapshot := range snapshots {
		if _, err := time.Parse(core.SnapshotDateLayout, date); err != nil {
			problems = append(problems, fmt.Errorf("snapshot %q: date must be YYYY-MM-DD", date))
			continue
		}
		problems = append(problems, checkSnapshot(date, snapshot)...)
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}

	return newUnchecked(snapshots), nil
}

func newUnchecked(snapshots map[string]core.Snapshot) *Registry {
	r := &Registry{
		snapshots: make(map[string]core.Snapshot, len(snapshots)),
		dates:     make([]string, 0, len(snapshots)),
	}
	for date, snapshot := range snapshots {
		r.snapshots[date] = snapshot.Clone()
		r.dates = append(r.dates, date)
	}
	// YYYY-MM-DD sorts lexically in chronological order.
	slices.SortFunc(r.dates, func(a, b string) int { return strings.Compare(b, a) })
	return r
}

func checkSnapshot(date string, snapshot core.Snapshot) []error {
	var problems []error
	for _, category := range core.Categories() {
		selection, ok := snapshot[category]
		if !ok {
			problems = append(problems, fmt.Errorf("snapshot %s: missing category %s", date, category))
			continue
		}

		seen := make(map[string]bool, 1+len(selection.Fallbacks))
		for i, model := range selection.Models() {
			where := fmt.Sprintf("snapshot %s/%s model #%d", date, category, i)
			if model.ID != model.Provider+"/"+model.ModelID {
				problems = append(problems, fmt.Errorf("%s: id %q must equal provider/modelId", where, model.ID))
			}
			if seen[model.ID] {
				problems = append(problems, fmt.Errorf("%s: duplicate id %q", where, model.ID))
			}
			seen[model.ID] = true
			for _, tag := range model.FallbackProviders {
				if !slices.Contains(core.FallbackProviders, tag) {
					problems = append(problems, fmt.Errorf("%s: unknown fallback provider %q", where, tag))
				}
			}
		}
	}
	for category := range snapshot {
		if _, err := ValidateCategory(string(category)); err != nil {
			problems = append(problems, fmt.Errorf("snapshot %s: %w", date, err))
		}
	}
	return problems
}

// SupportedCategories returns the fixed category enumeration in declaration
// order, independent of any dataset.
func SupportedCategories() []core.Category {
	return core.Categories()
}

// SupportedVersions returns the API versions the service claims to support.
func SupportedVersions() []string {
	return slices.Clone(core.SupportedVersions)
}

// ValidateCategory returns value as a Category when it is byte-for-byte one
// of the supported categories. No trimming or case folding is applied.
func ValidateCategory(value string) (core.Category, error) {
	for _, category := range core.Categories() {
		if string(category) == value {
			return category, nil
		}
	}
	return "", &CategoryNotSupportedError{Category: value}
}

// SnapshotDates returns every snapshot date, most recent first.
func (r *Registry) SnapshotDates() []string {
	return slices.Clone(r.dates)
}

// Len returns the number of snapshots.
func (r *Registry) Len() int {
	return len(r.dates)
}

// LatestSnapshotDate returns the most recent snapshot date.
func (r *Registry) LatestSnapshotDate() string {
	return r.dates[0]
}

// ResolveSnapshot resolves "latest" or a literal date to a concrete date and
// a copy of its snapshot. The returned date is never "latest".
func (r *Registry) ResolveSnapshot(id string) (string, core.Snapshot, error) {
	date, snapshot, err := r.resolve(id)
	if err != nil {
		return "", nil, err
	}
	return date, snapshot.Clone(), nil
}

// ResolveDate is ResolveSnapshot without the snapshot copy.
func (r *Registry) ResolveDate(id string) (string, error) {
	date, _, err := r.resolve(id)
	return date, err
}

func (r *Registry) resolve(id string) (string, core.Snapshot, error) {
	if id == core.LatestSnapshotAlias {
		date := r.LatestSnapshotDate()
		return date, r.snapshots[date], nil
	}
	snapshot, ok := r.snapshots[id]
	if !ok {
		return "", nil, &SnapshotNotFoundError{Snapshot: id}
	}
	return id, snapshot, nil
}

// CategorySelection looks up the recommendation for a snapshot identifier and
// category. The category is checked before the snapshot, so an invalid
// category is reported even when the snapshot is also unknown.
func (r *Registry) CategorySelection(date, category string) (core.Selection, error) {
	validated, err := ValidateCategory(category)
	if err != nil {
		return core.Selection{}, err
	}

	resolvedDate, snapshot, err := r.resolve(date)
	if err != nil {
		return core.Selection{}, err
	}

	entry, ok := snapshot[validated]
	if !ok {
		return core.Selection{}, fmt.Errorf("%w: snapshot %s has no %s selection", ErrIntegrity, resolvedDate, validated)
	}

	entry = entry.Clone()
	return core.Selection{
		Date:      resolvedDate,
		Category:  validated,
		Primary:   entry.Primary,
		Fallbacks: entry.Fallbacks,
	}, nil
}

// SnapshotMap returns a copy of every snapshot keyed by date.
func (r *Registry) SnapshotMap() map[string]core.Snapshot {
	out := make(map[string]core.Snapshot, len(r.snapshots))
	for date, snapshot := range r.snapshots {
		out[date] = snapshot.Clone()
	}
	return out
}
