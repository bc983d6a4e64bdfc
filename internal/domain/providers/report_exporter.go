package providers

import "github.com/fonoclinic/backend/internal/domain/entities"

// ReportExporter renders the pending-invoice list as a downloadable artifact
type ReportExporter interface {
	// Export renders one row per item, in the given order
	Export(items []*entities.JoinedSession) ([]byte, error)

	// FileName is the suggested download name
	FileName() string

	// ContentType is the media type of the artifact
	ContentType() string
}
