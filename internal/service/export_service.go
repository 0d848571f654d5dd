package service

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/metrics"
	"alcyxob/weekly-routines/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrExportDisabled = errors.New("export storage is not configured")

// ExportService writes a JSON snapshot of an owner's routines and week to
// object storage and hands back a short-lived download link.
type ExportService interface {
	ExportSchedule(ctx context.Context, ownerID primitive.ObjectID) (*ExportResult, error)
}

type ExportResult struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ScheduleSnapshot is the document stored for an export.
type ScheduleSnapshot struct {
	OwnerID     string           `json:"ownerId"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Routines    []domain.Routine `json:"routines"`
	Week        []DaySnapshot    `json:"week"`
}

type DaySnapshot struct {
	DayOfWeek   domain.DayOfWeek `json:"dayOfWeek"`
	DayName     string           `json:"dayName"`
	RoutineID   *string          `json:"routineId"`
	RoutineName string           `json:"routineName,omitempty"`
}

type exportService struct {
	routines  RoutineService
	schedule  ScheduleService
	files     storage.FileStorage
	urlExpiry time.Duration
	logger    *zap.Logger
}

// NewExportService creates the export service. files may be nil, in which case
// every export fails with ErrExportDisabled.
func NewExportService(routines RoutineService, schedule ScheduleService, files storage.FileStorage, urlExpiry time.Duration, logger *zap.Logger) ExportService {
	return &exportService{
		routines:  routines,
		schedule:  schedule,
		files:     files,
		urlExpiry: urlExpiry,
		logger:    logger.Named("export"),
	}
}

func (s *exportService) ExportSchedule(ctx context.Context, ownerID primitive.ObjectID) (_ *ExportResult, err error) {
	if s.files == nil {
		return nil, ErrExportDisabled
	}
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFailure
		}
		metrics.ExportsTotal.WithLabelValues(result).Inc()
	}()

	snapshot, err := s.buildSnapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", ownerID.Hex(), uuid.NewString())
	if err := s.files.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, storeError("put export", err)
	}

	expiry := s.urlExpiry
	if expiry <= 0 {
		expiry = storage.DefaultPresignedURLExpiry
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, expiry)
	if err != nil {
		// Nobody can reach the object without a link.
		if delErr := s.files.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove unreachable export", zap.String("key", key), zap.Error(delErr))
		}
		return nil, storeError("presign export", err)
	}

	s.logger.Info("schedule exported", zap.String("ownerId", ownerID.Hex()), zap.String("key", key))
	return &ExportResult{
		ObjectKey:   key,
		DownloadURL: url,
		ExpiresAt:   time.Now().UTC().Add(expiry),
	}, nil
}

func (s *exportService) buildSnapshot(ctx context.Context, ownerID primitive.ObjectID) (*ScheduleSnapshot, error) {
	routines, err := s.routines.ListRoutines(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	week, err := s.schedule.CurrentWeek(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	snapshot := &ScheduleSnapshot{
		OwnerID:     ownerID.Hex(),
		GeneratedAt: time.Now().UTC(),
		Routines:    routines,
		Week:        make([]DaySnapshot, 0, domain.DaysPerWeek),
	}
	for d := domain.Sunday; d <= domain.Saturday; d++ {
		day := DaySnapshot{DayOfWeek: d, DayName: d.String()}
		if r := week.Day(d); r != nil {
			id := r.ID.Hex()
			day.RoutineID = &id
			day.RoutineName = r.Name
		}
		snapshot.Week = append(snapshot.Week, day)
	}
	return snapshot, nil
}
