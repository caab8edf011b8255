package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	"github.com/Teo-Te/ClassSync-sub001/pkg/export"
	"github.com/Teo-Te/ClassSync-sub001/pkg/storage"
)

type exportScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.GeneratedSchedule, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export rendering and result lifetime.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful render metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService turns a stored schedule into a scoped timetable dataset and
// persists the rendered file.
type ExportService struct {
	schedules exportScheduleReader
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.DownloadTokenSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(schedules exportScheduleReader, files fileStorage, signer *storage.DownloadTokenSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		schedules: schedules,
		storage:   files,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate renders the job's timetable view and stores the file. Errors are
// returned raw, the worker records the message on the job row.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	schedule, err := s.schedules.FindByID(ctx, job.ScheduleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("schedule %s not found", job.ScheduleID)
		}
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	dataset, title := buildTimetableDataset(schedule, job.Params)

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := buildExportFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	signedURL := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured
// ResultTTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

var exportHeaders = []string{"Day", "Start", "End", "Class", "Course", "Teacher", "Room", "Type"}

// buildTimetableDataset flattens the schedule into rows ordered by day and
// start hour, narrowed to the job's scope.
func buildTimetableDataset(schedule *models.GeneratedSchedule, params models.ExportJobParams) (export.Dataset, string) {
	sessions := make([]models.ScheduleSession, 0, len(schedule.Sessions))
	for _, session := range schedule.Sessions {
		if sessionInScope(session, params.Scope, params.TargetID) {
			sessions = append(sessions, session)
		}
	}
	sort.SliceStable(sessions, func(a, b int) bool {
		if sessions[a].Day != sessions[b].Day {
			return sessions[a].Day < sessions[b].Day
		}
		if sessions[a].StartHour != sessions[b].StartHour {
			return sessions[a].StartHour < sessions[b].StartHour
		}
		return sessions[a].ID < sessions[b].ID
	})

	rows := make([]map[string]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, map[string]string{
			"Day":     weekdayNames[session.Day],
			"Start":   fmt.Sprintf("%02d:00", session.StartHour),
			"End":     fmt.Sprintf("%02d:00", session.EndHour()),
			"Class":   session.ClassName,
			"Course":  session.CourseName,
			"Teacher": session.TeacherName,
			"Room":    session.RoomName,
			"Type":    string(session.Type),
		})
	}
	dataset := export.Dataset{Headers: exportHeaders, Rows: rows}

	title := fmt.Sprintf("Timetable %s", schedule.Name)
	if label := scopeLabel(sessions, params); label != "" {
		title = fmt.Sprintf("%s (%s)", title, label)
	}
	return dataset, title
}

// scopeLabel resolves the display name of the narrowed entity from the first
// in-scope session, falling back to the raw target id.
func scopeLabel(sessions []models.ScheduleSession, params models.ExportJobParams) string {
	switch params.Scope {
	case models.TimetableScopeClass:
		if len(sessions) > 0 {
			return sessions[0].ClassName
		}
	case models.TimetableScopeTeacher:
		if len(sessions) > 0 {
			return sessions[0].TeacherName
		}
	case models.TimetableScopeRoom:
		if len(sessions) > 0 {
			return sessions[0].RoomName
		}
	default:
		return ""
	}
	return params.TargetID
}

func buildExportFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scopePart := sanitizeFilename(string(job.Params.Scope))
	if job.Params.TargetID != "" {
		scopePart = fmt.Sprintf("%s_%s", scopePart, sanitizeFilename(job.Params.TargetID))
	}
	return fmt.Sprintf("timetable_%s_%s.%s", scopePart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
