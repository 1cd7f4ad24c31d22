package dto

// ReportFormat is the rendering requested for a run's summary export.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "CSV"
	ReportFormatPDF ReportFormat = "PDF"
)

// ExportReportRequest captures POST /runs/{id}/report/export payload.
type ExportReportRequest struct {
	Format ReportFormat `json:"format" validate:"required,oneof=CSV PDF"`
}

// ExportReportResponse hands back a signed, expiring download link for the
// rendered report.
type ExportReportResponse struct {
	DownloadURL string       `json:"downloadUrl"`
	ExpiresAt   string       `json:"expiresAt"`
	Format      ReportFormat `json:"format"`
}
