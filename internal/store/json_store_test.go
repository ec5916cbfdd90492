package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/msto63/kurswerk/internal/prereq"
	kwerror "github.com/msto63/kurswerk/pkg/core/error"
)

func sampleRecords() []Record {
	return []Record{
		{Code: "CSE 12", Title: "Computer Systems", Credits: 7, Requirements: "CSE 5J or CSE 20",
			Prerequisites: prereq.Parse("CSE 5J or CSE 20")},
		{Code: "CSE 20", Title: "Beginning Programming", Credits: 5, Requirements: prereq.NoneMarker,
			Prerequisites: prereq.None{}},
		{Code: "CSE 101", Title: "Data Structures", Credits: 5, Requirements: "CSE 12; and CSE 13S; and MATH 19A",
			Prerequisites: prereq.Parse("CSE 12; and CSE 13S; and MATH 19A")},
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(sampleRecords())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	expected := `{
  "CSE 12": {
    "OR": [
      "CSE 5J",
      "CSE 20"
    ]
  },
  "CSE 20": "None",
  "CSE 101": {
    "AND": [
      "CSE 12",
      "CSE 13S",
      "MATH 19A"
    ]
  }
}
`
	if string(data) != expected {
		t.Errorf("Encode() =\n%s\nwant\n%s", data, expected)
	}
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("Encode(nil) = %q, want {}", data)
	}
}

func TestEncode_DuplicateCode(t *testing.T) {
	records := []Record{
		{Code: "CSE 12", Prerequisites: prereq.NewCourse("CSE 5J")},
		{Code: "CSE 20"},
		{Code: "CSE 12", Prerequisites: prereq.NewCourse("CSE 30")},
	}

	data, err := Encode(records)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	expected := "{\n  \"CSE 12\": \"CSE 30\",\n  \"CSE 20\": \"None\"\n}\n"
	if string(data) != expected {
		t.Errorf("Encode() = %q, want %q", data, expected)
	}
}

func TestJSONStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "courses.json")
	s := NewJSONStore(path)
	defer s.Close()

	ctx := context.Background()
	if err := s.Save(ctx, &Run{Records: sampleRecords()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	rec, err := s.Load(ctx, "CSE 12")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec.Prerequisites.String() != "CSE 5J OR CSE 20" {
		t.Errorf("Prerequisites = %v", rec.Prerequisites)
	}

	if _, err := s.Load(ctx, "CSE 999"); !kwerror.HasCode(err, kwerror.CodeNotFound) {
		t.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestJSONStore_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	s := NewJSONStore(path)
	ctx := context.Background()

	if err := s.Save(ctx, &Run{Records: sampleRecords()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, &Run{Records: []Record{{Code: "CSE 30"}}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "{\n  \"CSE 30\": \"None\"\n}\n" {
		t.Errorf("file = %q", content)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestJSONStore_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewJSONStore(filepath.Join(t.TempDir(), "courses.json"))
	if err := s.Save(ctx, &Run{}); !kwerror.HasCode(err, kwerror.CodeCanceled) {
		t.Errorf("Save() error = %v, want CANCELED", err)
	}
}

func TestJSONStore_LoadMissingFile(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "none.json"))
	if _, err := s.Load(context.Background(), "CSE 12"); !kwerror.HasCode(err, kwerror.CodeNotFound) {
		t.Errorf("Load() error = %v, want NOT_FOUND", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format  string
		path    string
		wantErr bool
	}{
		{FormatJSON, filepath.Join(dir, "courses.json"), false},
		{FormatSQLite, filepath.Join(dir, "courses.db"), false},
		{"csv", filepath.Join(dir, "courses.csv"), true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			s, err := Open(tt.format, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				s.Close()
			}
		})
	}
}
