package pdf

// Content type classification for extracted documents. Scanned announcements
// carry no extractable text and cannot go through rule screening.
const (
	ContentTypeText    = "text"
	ContentTypeScanned = "scanned_images"
	ContentTypeMixed   = "mixed"
	ContentTypeEmpty   = "no_content"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// ReadFileRequest represents a request to extract text from a PDF file
type ReadFileRequest struct {
	Path string `json:"path"`
}

// ValidateFileRequest represents a request to validate a PDF file
type ValidateFileRequest struct {
	Path string `json:"path"`
	Deep bool   `json:"deep,omitempty"`
}

// StatsFileRequest represents a request to get stats about a PDF file
type StatsFileRequest struct {
	Path string `json:"path"`
}

// SearchDirectoryRequest represents a request to search for PDF files in a directory
type SearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// StatsDirectoryRequest represents a request to get directory statistics
type StatsDirectoryRequest struct {
	Directory string `json:"directory"`
}

// Response Types

// ReadFileResult represents the result of a text extraction operation.
// Content is empty for scanned documents; ContentType tells them apart from
// genuinely empty files.
type ReadFileResult struct {
	Content     string `json:"content"`
	Path        string `json:"path"`
	Pages       int    `json:"pages"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	ImageCount  int    `json:"image_count,omitempty"`
}

// ValidateFileResult represents the result of a PDF validation operation.
// Deep validation adds page count, version and encryption details from a
// full structural parse.
type ValidateFileResult struct {
	Valid     bool   `json:"valid"`
	Path      string `json:"path"`
	Message   string `json:"message,omitempty"`
	Deep      bool   `json:"deep,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	Version   string `json:"version,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`
}

// StatsFileResult represents the result of a PDF file stats operation
type StatsFileResult struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Pages        int    `json:"pages"`
	CreatedDate  string `json:"created_date,omitempty"`
	ModifiedDate string `json:"modified_date"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Producer     string `json:"producer,omitempty"`
}

// SearchDirectoryResult represents the result of a PDF search operation
type SearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// StatsDirectoryResult represents the result of directory statistics
type StatsDirectoryResult struct {
	Directory        string `json:"directory"`
	TotalFiles       int    `json:"total_files"`
	TotalSize        int64  `json:"total_size"`
	LargestFileSize  int64  `json:"largest_file_size"`
	LargestFileName  string `json:"largest_file_name"`
	SmallestFileSize int64  `json:"smallest_file_size"`
	SmallestFileName string `json:"smallest_file_name"`
	AverageFileSize  int64  `json:"average_file_size"`
}
