package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// minimalPDF is a structurally complete single-page PDF with no content
// streams, enough for open/page-count paths without a real disclosure file.
var minimalPDF = []byte(`%PDF-1.4
1 0 obj
<<
/Type /Catalog
/Pages 2 0 R
>>
endobj
2 0 obj
<<
/Type /Pages
/Kids [3 0 R]
/Count 1
>>
endobj
3 0 obj
<<
/Type /Page
/Parent 2 0 R
/MediaBox [0 0 612 792]
>>
endobj
xref
0 4
0000000000 65535 f
0000000009 00000 n
0000000058 00000 n
0000000115 00000 n
trailer
<<
/Size 4
/Root 1 0 R
>>
startxref
186
%%EOF`)

func writeMinimalPDF(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, minimalPDF, 0o644); err != nil {
		t.Fatalf("Failed to create test PDF file: %v", err)
	}
}

func TestNewReader(t *testing.T) {
	tests := []struct {
		name        string
		maxFileSize int64
	}{
		{
			name:        "standard max file size",
			maxFileSize: 100 * 1024 * 1024,
		},
		{
			name:        "small max file size",
			maxFileSize: 1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewReader(tt.maxFileSize)
			if got.maxFileSize != tt.maxFileSize {
				t.Errorf("NewReader() maxFileSize = %v, want %v", got.maxFileSize, tt.maxFileSize)
			}
			if got.maxTextSize != 10*1024*1024 {
				t.Errorf("NewReader() maxTextSize = %v, want %v", got.maxTextSize, 10*1024*1024)
			}
		})
	}
}

func TestReader_ReadFile(t *testing.T) {
	tempDir := t.TempDir()

	testPDFPath := filepath.Join(tempDir, "600000_公司公告.pdf")
	testTxtPath := filepath.Join(tempDir, "notes.txt")
	testDirPath := filepath.Join(tempDir, "subdir")
	largePDFPath := filepath.Join(tempDir, "large.pdf")

	if err := os.WriteFile(testTxtPath, []byte("This is not a PDF"), 0o644); err != nil {
		t.Fatalf("Failed to create test txt file: %v", err)
	}
	if err := os.Mkdir(testDirPath, 0o755); err != nil {
		t.Fatalf("Failed to create test directory: %v", err)
	}
	largeContent := make([]byte, 1024*1024+1)
	if err := os.WriteFile(largePDFPath, largeContent, 0o644); err != nil {
		t.Fatalf("Failed to create large test file: %v", err)
	}
	writeMinimalPDF(t, testPDFPath)

	reader := NewReader(1024 * 1024)

	tests := []struct {
		name        string
		req         ReadFileRequest
		wantErr     bool
		errContains string
	}{
		{
			name:        "empty path",
			req:         ReadFileRequest{Path: ""},
			wantErr:     true,
			errContains: "path cannot be empty",
		},
		{
			name:        "non-existent file",
			req:         ReadFileRequest{Path: "/non/existent/file.pdf"},
			wantErr:     true,
			errContains: "file does not exist",
		},
		{
			name:        "directory instead of file",
			req:         ReadFileRequest{Path: testDirPath},
			wantErr:     true,
			errContains: "path is a directory",
		},
		{
			name:        "non-PDF file",
			req:         ReadFileRequest{Path: testTxtPath},
			wantErr:     true,
			errContains: "file is not a PDF",
		},
		{
			name:        "file too large",
			req:         ReadFileRequest{Path: largePDFPath},
			wantErr:     true,
			errContains: "file too large",
		},
		{
			name:    "valid minimal PDF",
			req:     ReadFileRequest{Path: testPDFPath},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := reader.ReadFile(tt.req)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ReadFile() expected error but got none")
					return
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("ReadFile() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Errorf("ReadFile() unexpected error: %v", err)
				return
			}
			if result == nil {
				t.Fatal("ReadFile() returned nil result")
			}
			if result.Path != tt.req.Path {
				t.Errorf("ReadFile() path = %v, want %v", result.Path, tt.req.Path)
			}
			if result.Pages != 1 {
				t.Errorf("ReadFile() pages = %v, want 1", result.Pages)
			}
			if result.Size != int64(len(minimalPDF)) {
				t.Errorf("ReadFile() size = %v, want %v", result.Size, len(minimalPDF))
			}
			// The fixture has no text and no images.
			if result.ContentType != ContentTypeEmpty {
				t.Errorf("ReadFile() content type = %v, want %v", result.ContentType, ContentTypeEmpty)
			}
		})
	}
}

func TestClassifyContent(t *testing.T) {
	longText := strings.Repeat("本公司拟在境外设立全资子公司。", 10)

	tests := []struct {
		name      string
		text      string
		hasImages bool
		want      string
	}{
		{
			name:      "meaningful text only",
			text:      longText,
			hasImages: false,
			want:      ContentTypeText,
		},
		{
			name:      "meaningful text with images",
			text:      longText,
			hasImages: true,
			want:      ContentTypeMixed,
		},
		{
			name:      "no text with images is a scan",
			text:      "",
			hasImages: true,
			want:      ContentTypeScanned,
		},
		{
			name:      "no text and no images",
			text:      "",
			hasImages: false,
			want:      ContentTypeEmpty,
		},
		{
			name:      "short text below threshold counts as scan when images exist",
			text:      "公告",
			hasImages: true,
			want:      ContentTypeScanned,
		},
		{
			name:      "whitespace only",
			text:      "   \n\t  ",
			hasImages: false,
			want:      ContentTypeEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyContent(tt.text, tt.hasImages); got != tt.want {
				t.Errorf("classifyContent() = %v, want %v", got, tt.want)
			}
		})
	}
}
