// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size for JSON API request bodies.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxNoteLength is the maximum length of a transaction note after
	// sanitization.
	MaxNoteLength = 2000

	// MaxImagesPerTransaction caps the number of receipt image URLs
	// attached to a single transaction.
	MaxImagesPerTransaction = 10

	// MaxExportRows caps a single CSV export.
	MaxExportRows = 10000
)
