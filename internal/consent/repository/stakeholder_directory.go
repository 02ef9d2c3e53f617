package repository

import (
	"context"
	"sort"
	"strings"
)

// StaticStakeholderDirectory returns the same configured stakeholders for
// every owner.
type StaticStakeholderDirectory struct {
	stakeholders []string
}

// NewStaticStakeholderDirectory creates a directory from ids, dropping blanks
// and duplicates.
func NewStaticStakeholderDirectory(ids []string) *StaticStakeholderDirectory {
	seen := make(map[string]struct{}, len(ids))
	stakeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		stakeholders = append(stakeholders, id)
	}
	sort.Strings(stakeholders)
	return &StaticStakeholderDirectory{stakeholders: stakeholders}
}

// Stakeholders returns a copy of the configured ids.
func (d *StaticStakeholderDirectory) Stakeholders(_ context.Context, _ string) ([]string, error) {
	return append([]string(nil), d.stakeholders...), nil
}
