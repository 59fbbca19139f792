package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/propimport/internal/i18n"
)

// CategoryLabel pairs a human-readable building type label with its code.
type CategoryLabel struct {
	Label string
	Code  BuildingCategory
}

// CategoryMap is an immutable label ↔ code bijection.
// Build one with NewCategoryMap and pass it to the Validator.
type CategoryMap struct {
	byLabel map[string]BuildingCategory
	labels  []string // ordered by code
}

// JapaneseCategories is the label set used by the Japanese CSV template.
var JapaneseCategories = []CategoryLabel{
	{Label: "アパート", Code: CategoryApartment},
	{Label: "一戸建て", Code: CategoryHouse},
	{Label: "マンション", Code: CategoryMansion},
}

// EnglishCategories is the label set used by the English CSV template.
var EnglishCategories = []CategoryLabel{
	{Label: "apartment", Code: CategoryApartment},
	{Label: "house", Code: CategoryHouse},
	{Label: "mansion", Code: CategoryMansion},
}

// CategoriesFor returns the label set of the CSV template for locale:
// English labels for English, Japanese for everything else.
func CategoriesFor(locale *i18n.Locale) []CategoryLabel {
	if base, _ := locale.Tag().Base(); base.String() == "en" {
		return EnglishCategories
	}
	return JapaneseCategories
}

// NewCategoryMap builds a CategoryMap. Every label and every code must be
// unique and labels must be non-blank.
func NewCategoryMap(entries []CategoryLabel) (*CategoryMap, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("category map: no labels")
	}

	sorted := make([]CategoryLabel, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Code < sorted[j].Code
	})

	m := &CategoryMap{
		byLabel: make(map[string]BuildingCategory, len(sorted)),
		labels:  make([]string, 0, len(sorted)),
	}
	seenCodes := make(map[BuildingCategory]string, len(sorted))

	for _, e := range sorted {
		label := strings.TrimSpace(e.Label)
		if label == "" {
			return nil, fmt.Errorf("category map: blank label for code %d", e.Code)
		}
		if _, dup := m.byLabel[label]; dup {
			return nil, fmt.Errorf("category map: duplicate label %q", label)
		}
		if other, dup := seenCodes[e.Code]; dup {
			return nil, fmt.Errorf("category map: code %d used by both %q and %q", e.Code, other, label)
		}
		seenCodes[e.Code] = label
		m.byLabel[label] = e.Code
		m.labels = append(m.labels, label)
	}

	return m, nil
}

// MustCategoryMap is like NewCategoryMap but panics on error.
// Use it only for the package-level label sets.
func MustCategoryMap(entries []CategoryLabel) *CategoryMap {
	m, err := NewCategoryMap(entries)
	if err != nil {
		panic(err)
	}
	return m
}

// Lookup returns the code for label. Matching is exact after trimming.
func (m *CategoryMap) Lookup(label string) (BuildingCategory, bool) {
	code, ok := m.byLabel[strings.TrimSpace(label)]
	return code, ok
}

// Label returns the label registered for code.
func (m *CategoryMap) Label(code BuildingCategory) (string, bool) {
	for label, c := range m.byLabel {
		if c == code {
			return label, true
		}
	}
	return "", false
}

// Labels returns every label ordered by code. The slice is a copy.
func (m *CategoryMap) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Len returns the number of labels.
func (m *CategoryMap) Len() int {
	return len(m.labels)
}
