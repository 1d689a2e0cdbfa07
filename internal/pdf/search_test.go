package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func setupSearchDir(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	writeMinimalPDF(t, filepath.Join(tempDir, "600000_浦发银行_对外投资公告.pdf"))
	writeMinimalPDF(t, filepath.Join(tempDir, "000002_万科A_海外子公司公告.pdf"))

	subDir := filepath.Join(tempDir, "2024")
	if err := os.Mkdir(subDir, 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}
	writeMinimalPDF(t, filepath.Join(subDir, "600584_长电科技_收购公告.pdf"))

	// Not part of the corpus: wrong extension and empty file.
	if err := os.WriteFile(filepath.Join(tempDir, "readme.txt"), []byte("text"), 0o644); err != nil {
		t.Fatalf("Failed to create txt file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "empty.pdf"), nil, 0o644); err != nil {
		t.Fatalf("Failed to create empty file: %v", err)
	}

	return tempDir
}

func TestSearch_SearchDirectory(t *testing.T) {
	tempDir := setupSearchDir(t)
	search := NewSearch(1024 * 1024)

	t.Run("finds valid PDFs recursively", func(t *testing.T) {
		result, err := search.SearchDirectory(SearchDirectoryRequest{Directory: tempDir})
		if err != nil {
			t.Fatalf("SearchDirectory() unexpected error: %v", err)
		}
		if result.TotalCount != 3 {
			t.Errorf("Expected 3 PDF files, got %d", result.TotalCount)
		}
		for _, file := range result.Files {
			if file.Size == 0 {
				t.Errorf("File %s has zero size in listing", file.Name)
			}
			if file.ModifiedTime == "" {
				t.Errorf("File %s has empty modified time", file.Name)
			}
		}
	})

	t.Run("query filters by filename", func(t *testing.T) {
		result, err := search.SearchDirectory(SearchDirectoryRequest{
			Directory: tempDir,
			Query:     "600000",
		})
		if err != nil {
			t.Fatalf("SearchDirectory() unexpected error: %v", err)
		}
		if result.TotalCount != 1 {
			t.Fatalf("Expected 1 match for stock code query, got %d", result.TotalCount)
		}
		if result.Files[0].Name != "600000_浦发银行_对外投资公告.pdf" {
			t.Errorf("Unexpected match: %s", result.Files[0].Name)
		}
		if result.SearchQuery != "600000" {
			t.Errorf("Expected search query to round-trip, got %q", result.SearchQuery)
		}
	})

	t.Run("query with no match", func(t *testing.T) {
		result, err := search.SearchDirectory(SearchDirectoryRequest{
			Directory: tempDir,
			Query:     "999999",
		})
		if err != nil {
			t.Fatalf("SearchDirectory() unexpected error: %v", err)
		}
		if result.TotalCount != 0 {
			t.Errorf("Expected no matches, got %d", result.TotalCount)
		}
	})

	t.Run("empty directory argument", func(t *testing.T) {
		if _, err := search.SearchDirectory(SearchDirectoryRequest{}); err == nil {
			t.Error("Expected error for empty directory")
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		req := SearchDirectoryRequest{Directory: filepath.Join(tempDir, "missing")}
		if _, err := search.SearchDirectory(req); err == nil {
			t.Error("Expected error for missing directory")
		}
	})
}

func TestSearch_FindPDFsInDirectory(t *testing.T) {
	tempDir := setupSearchDir(t)
	search := NewSearch(1024 * 1024)

	files, err := search.FindPDFsInDirectory(tempDir)
	if err != nil {
		t.Fatalf("FindPDFsInDirectory() unexpected error: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("Expected 3 files, got %d", len(files))
	}
}

func TestSearch_FindPDFsInDirectoryLimited(t *testing.T) {
	tempDir := setupSearchDir(t)
	search := NewSearch(1024 * 1024)

	files, err := search.FindPDFsInDirectoryLimited(tempDir, 2)
	if err != nil {
		t.Fatalf("FindPDFsInDirectoryLimited() unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected limit of 2 files, got %d", len(files))
	}
}

func TestSearch_MatchesQuery(t *testing.T) {
	search := NewSearch(1024 * 1024)

	tests := []struct {
		name     string
		filename string
		query    string
		want     bool
	}{
		{
			name:     "substring of stock code",
			filename: "600000_浦发银行_对外投资公告.pdf",
			query:    "600000",
			want:     true,
		},
		{
			name:     "chinese company name",
			filename: "600000_浦发银行_对外投资公告.pdf",
			query:    "浦发银行",
			want:     true,
		},
		{
			name:     "word split on underscore",
			filename: "600000_pufa_announcement.pdf",
			query:    "announcement pufa",
			want:     true,
		},
		{
			name:     "no match",
			filename: "600000_浦发银行_对外投资公告.pdf",
			query:    "000002",
			want:     false,
		},
		{
			name:     "empty query matches everything",
			filename: "anything.pdf",
			query:    "",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := search.matchesQuery(tt.filename, tt.query); got != tt.want {
				t.Errorf("matchesQuery(%q, %q) = %v, want %v", tt.filename, tt.query, got, tt.want)
			}
		})
	}
}
