package application

import (
	"bytes"
	"context"
	"testing"

	"github.com/JonMunkholm/propimport/internal/config"
	"github.com/JonMunkholm/propimport/internal/core"
)

// emptyStore fails the test if the importer tries to write.
type emptyStore struct{ t *testing.T }

func (s emptyStore) Begin(context.Context) (core.Tx, error) {
	s.t.Fatal("Begin called for an import with no records")
	return nil, nil
}

func TestNewImporter_Locale(t *testing.T) {
	tests := []struct {
		locale  string
		wantTag string
		wantErr bool
	}{
		{locale: "ja", wantTag: "ja"},
		{locale: "en", wantTag: "en"},
		{locale: "en-US", wantTag: "en"},
		{locale: "fr", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			cfg := &config.Config{App: config.AppConfig{Locale: tt.locale}}
			imp, err := NewImporter(emptyStore{t}, cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewImporter() error: %v", err)
			}
			if got := imp.Locale().Tag().String(); got != tt.wantTag {
				t.Errorf("locale = %q, want %q", got, tt.wantTag)
			}
		})
	}
}

func TestNewImporter_EnglishLabels(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Locale: "en"}}
	imp, err := NewImporter(emptyStore{t}, cfg)
	if err != nil {
		t.Fatal(err)
	}

	src := bytes.NewBufferString("ID,Name,Address,Room number,Rent,Area,Building type\n" +
		"1,Sample,,,,,castle\n")
	result, err := imp.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.SkippedCount != 1 || len(result.DisplayedErrors) != 1 {
		t.Fatalf("result = %+v, want one skipped row", result)
	}
	want := `ID 1: "castle" is not an allowed building type (apartment, house, mansion)`
	if result.DisplayedErrors[0] != want {
		t.Errorf("error = %q, want %q", result.DisplayedErrors[0], want)
	}
}
