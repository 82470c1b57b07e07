// Package catalog fetches pages of catalog entities and narrows them.
//
// Structural filters (category, owner, radius) select a different upstream
// query and replace the page.  The free-text term only narrows the page
// already fetched and never triggers another request.
package catalog

import (
	"strings"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

// Filter keeps the items for which any of fields(item) contains term,
// case-insensitively.  A blank term returns items unchanged.  The result is
// recomputed on every call; nothing is cached.
func Filter[T any](items []T, term string, fields func(T) []string) []T {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields(it) {
			if f != "" && strings.Contains(strings.ToLower(f), needle) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// ServiceFields: name, description, owner and category names.
func ServiceFields(s model.Service) []string {
	f := []string{s.Name, s.Description, s.Location}
	if s.Enterprise != nil {
		f = append(f, s.Enterprise.Name)
	}
	for _, c := range s.Categories {
		f = append(f, c.Name)
	}
	return f
}

// EnterpriseFields: name, description, category and association.
func EnterpriseFields(e model.Enterprise) []string {
	f := []string{e.Name, e.Description, e.Category, e.Location}
	if e.Association != nil {
		f = append(f, e.Association.Name)
	}
	return f
}

// EventFields: name, description, type and organiser.
func EventFields(e model.Event) []string {
	f := []string{e.Name, e.Description, e.Type}
	if e.Enterprise != nil {
		f = append(f, e.Enterprise.Name)
	}
	return f
}

func CategoryFields(c model.Category) []string { return []string{c.Name, c.Description} }

func AssociationFields(a model.Association) []string { return []string{a.Name, a.Description} }

func MunicipalityFields(m model.Municipality) []string { return []string{m.Name, m.Description} }
