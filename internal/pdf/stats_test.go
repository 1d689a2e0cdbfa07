package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStats_GetFileStats(t *testing.T) {
	tempDir := t.TempDir()

	pdfPath := filepath.Join(tempDir, "announcement.pdf")
	writeMinimalPDF(t, pdfPath)

	stats := NewStats(1024 * 1024)

	t.Run("valid file", func(t *testing.T) {
		result, err := stats.GetFileStats(StatsFileRequest{Path: pdfPath})
		if err != nil {
			t.Fatalf("GetFileStats() unexpected error: %v", err)
		}
		if result.Path != pdfPath {
			t.Errorf("Expected path %q, got %q", pdfPath, result.Path)
		}
		if result.Pages != 1 {
			t.Errorf("Expected 1 page, got %d", result.Pages)
		}
		if result.Size != int64(len(minimalPDF)) {
			t.Errorf("Expected size %d, got %d", len(minimalPDF), result.Size)
		}
		if result.ModifiedDate == "" {
			t.Error("Expected modified date to be set")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, err := stats.GetFileStats(StatsFileRequest{}); err == nil {
			t.Error("Expected error for empty path")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		req := StatsFileRequest{Path: filepath.Join(tempDir, "missing.pdf")}
		_, err := stats.GetFileStats(req)
		if err == nil {
			t.Fatal("Expected error for missing file")
		}
		if !strings.Contains(err.Error(), "file does not exist") {
			t.Errorf("Expected existence error, got: %v", err)
		}
	})
}

func TestStats_GetDirectoryStats(t *testing.T) {
	tempDir := t.TempDir()

	writeMinimalPDF(t, filepath.Join(tempDir, "a.pdf"))
	writeMinimalPDF(t, filepath.Join(tempDir, "b.pdf"))

	// Invalid entries ignored by the aggregate.
	if err := os.WriteFile(filepath.Join(tempDir, "empty.pdf"), nil, 0o644); err != nil {
		t.Fatalf("Failed to create empty file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatalf("Failed to create txt file: %v", err)
	}

	stats := NewStats(1024 * 1024)

	result, err := stats.GetDirectoryStats(StatsDirectoryRequest{Directory: tempDir})
	if err != nil {
		t.Fatalf("GetDirectoryStats() unexpected error: %v", err)
	}

	if result.TotalFiles != 2 {
		t.Errorf("Expected 2 valid PDFs, got %d", result.TotalFiles)
	}
	wantTotal := int64(2 * len(minimalPDF))
	if result.TotalSize != wantTotal {
		t.Errorf("Expected total size %d, got %d", wantTotal, result.TotalSize)
	}
	if result.AverageFileSize != int64(len(minimalPDF)) {
		t.Errorf("Expected average size %d, got %d", len(minimalPDF), result.AverageFileSize)
	}
	if result.LargestFileSize != int64(len(minimalPDF)) {
		t.Errorf("Expected largest size %d, got %d", len(minimalPDF), result.LargestFileSize)
	}
}

func TestStats_GetDirectoryStatsEmptyDirectory(t *testing.T) {
	tempDir := t.TempDir()
	stats := NewStats(1024 * 1024)

	result, err := stats.GetDirectoryStats(StatsDirectoryRequest{Directory: tempDir})
	if err != nil {
		t.Fatalf("GetDirectoryStats() unexpected error: %v", err)
	}
	if result.TotalFiles != 0 {
		t.Errorf("Expected 0 files, got %d", result.TotalFiles)
	}
	if result.SmallestFileSize != 0 {
		t.Errorf("Expected smallest size reset to 0, got %d", result.SmallestFileSize)
	}
}

func TestStats_GetDirectoryStatsErrors(t *testing.T) {
	stats := NewStats(1024 * 1024)

	if _, err := stats.GetDirectoryStats(StatsDirectoryRequest{}); err == nil {
		t.Error("Expected error for empty directory")
	}
	if _, err := stats.GetDirectoryStats(StatsDirectoryRequest{Directory: "/non/existent"}); err == nil {
		t.Error("Expected error for missing directory")
	}
}
