package core

import (
	"reflect"
	"testing"

	"github.com/JonMunkholm/propimport/internal/i18n"
)

func TestNewCategoryMap(t *testing.T) {
	tests := []struct {
		name    string
		entries []CategoryLabel
		wantErr bool
	}{
		{name: "japanese", entries: JapaneseCategories},
		{name: "english", entries: EnglishCategories},
		{name: "empty", entries: nil, wantErr: true},
		{
			name:    "blank label",
			entries: []CategoryLabel{{Label: " ", Code: CategoryHouse}},
			wantErr: true,
		},
		{
			name: "duplicate label",
			entries: []CategoryLabel{
				{Label: "house", Code: CategoryHouse},
				{Label: "house", Code: CategoryMansion},
			},
			wantErr: true,
		},
		{
			name: "duplicate code",
			entries: []CategoryLabel{
				{Label: "house", Code: CategoryHouse},
				{Label: "detached", Code: CategoryHouse},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewCategoryMap(tt.entries)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCategoryMap() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && m.Len() != len(tt.entries) {
				t.Errorf("Len() = %d, want %d", m.Len(), len(tt.entries))
			}
		})
	}
}

func TestCategoryMap_Lookup(t *testing.T) {
	m := MustCategoryMap(JapaneseCategories)

	tests := []struct {
		label  string
		want   BuildingCategory
		wantOK bool
	}{
		{"アパート", CategoryApartment, true},
		{"一戸建て", CategoryHouse, true},
		{"マンション", CategoryMansion, true},
		{" マンション ", CategoryMansion, true},
		{"まんしょん", 0, false},
		{"mansion", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := m.Lookup(tt.label)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.label, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCategoryMap_LabelsOrderedByCode(t *testing.T) {
	m := MustCategoryMap([]CategoryLabel{
		{Label: "マンション", Code: CategoryMansion},
		{Label: "アパート", Code: CategoryApartment},
		{Label: "一戸建て", Code: CategoryHouse},
	})

	want := []string{"アパート", "一戸建て", "マンション"}
	if got := m.Labels(); !reflect.DeepEqual(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}

	// Labels returns a copy
	m.Labels()[0] = "changed"
	if m.Labels()[0] != "アパート" {
		t.Error("Labels() exposed internal state")
	}

	if label, ok := m.Label(CategoryHouse); !ok || label != "一戸建て" {
		t.Errorf("Label(house) = %q, %v", label, ok)
	}
	if _, ok := m.Label(BuildingCategory(9)); ok {
		t.Error("Label(9) should not be found")
	}
}

func TestCategoriesFor(t *testing.T) {
	if got := CategoriesFor(i18n.Japanese()); !reflect.DeepEqual(got, JapaneseCategories) {
		t.Errorf("CategoriesFor(ja) = %v", got)
	}
	if got := CategoriesFor(i18n.English()); !reflect.DeepEqual(got, EnglishCategories) {
		t.Errorf("CategoriesFor(en) = %v", got)
	}
}
