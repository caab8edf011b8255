package dto

import "github.com/Teo-Te/ClassSync-sub001/internal/models"

// ExportRequest captures POST /exports payload.
type ExportRequest struct {
	ScheduleID string                `json:"scheduleId" validate:"required"`
	Scope      models.TimetableScope `json:"scope" validate:"required"`
	TargetID   string                `json:"targetId" validate:"required_unless=Scope all"`
	Format     models.ExportFormat   `json:"format" validate:"required"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ExportStatus `json:"status"`
}

// ExportStatusResponse exposes job state and the download link once the
// renderer finished.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
