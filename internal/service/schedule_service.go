package service

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/metrics"
	"alcyxob/weekly-routines/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RoutineLookup is what the schedule needs from the routine store.
type RoutineLookup interface {
	GetRoutineByID(ctx context.Context, routineID primitive.ObjectID) (*domain.Routine, error)
}

// ScheduleService maps each day of an owner's week to at most one routine.
type ScheduleService interface {
	Assign(ctx context.Context, ownerID primitive.ObjectID, day domain.DayOfWeek, routineID primitive.ObjectID) (*domain.ScheduledAssignment, error)
	// Unassign turns the day into a rest day; an empty day is left as is.
	Unassign(ctx context.Context, ownerID primitive.ObjectID, day domain.DayOfWeek) error
	CascadeOnRoutineDelete(ctx context.Context, routineID primitive.ObjectID) error
	CurrentWeek(ctx context.Context, ownerID primitive.ObjectID) (domain.WeekSchedule, error)
}

type scheduleService struct {
	scheduleRepo repository.ScheduleRepository
	routines     RoutineLookup
	logger       *zap.Logger
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(scheduleRepo repository.ScheduleRepository, routines RoutineLookup, logger *zap.Logger) ScheduleService {
	return &scheduleService{
		scheduleRepo: scheduleRepo,
		routines:     routines,
		logger:       logger.Named("schedule"),
	}
}

// Assign binds day to routineID, replacing whatever was bound before. The
// routine must exist and belong to the owner.
func (s *scheduleService) Assign(ctx context.Context, ownerID primitive.ObjectID, day domain.DayOfWeek, routineID primitive.ObjectID) (_ *domain.ScheduledAssignment, err error) {
	defer func() { countChange(metrics.ChangeAssign, err) }()

	if !day.Valid() {
		return nil, dayError(day)
	}
	routine, err := s.routines.GetRoutineByID(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if routine == nil || routine.OwnerID != ownerID {
		return nil, &domain.NotFoundError{Resource: resourceRoutine, ID: routineID.Hex()}
	}

	assignment := &domain.ScheduledAssignment{
		OwnerID:   ownerID,
		RoutineID: routineID,
		DayOfWeek: day,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.scheduleRepo.Replace(ctx, assignment); err != nil {
		return nil, storeError("assign day", err)
	}

	s.logger.Debug("day assigned",
		zap.String("ownerId", ownerID.Hex()),
		zap.Stringer("day", day),
		zap.String("routineId", routineID.Hex()))
	return assignment, nil
}

func (s *scheduleService) Unassign(ctx context.Context, ownerID primitive.ObjectID, day domain.DayOfWeek) (err error) {
	var removed int64
	defer func() {
		if err == nil && removed == 0 {
			metrics.ScheduleChangesTotal.WithLabelValues(metrics.ChangeUnassign, metrics.ResultNoop).Inc()
			return
		}
		countChange(metrics.ChangeUnassign, err)
	}()

	if !day.Valid() {
		return dayError(day)
	}
	removed, err = s.scheduleRepo.DeleteSlot(ctx, ownerID, day)
	if err != nil {
		return storeError("unassign day", err)
	}
	return nil
}

// CascadeOnRoutineDelete removes every assignment for the routine, for all owners.
func (s *scheduleService) CascadeOnRoutineDelete(ctx context.Context, routineID primitive.ObjectID) (err error) {
	defer func() { countChange(metrics.ChangeCascade, err) }()

	removed, err := s.scheduleRepo.DeleteByRoutineID(ctx, routineID)
	if err != nil {
		return storeError("cascade routine delete", err)
	}
	if removed > 0 {
		s.logger.Info("removed assignments of deleted routine",
			zap.String("routineId", routineID.Hex()),
			zap.Int64("count", removed))
	}
	return nil
}

// CurrentWeek rebuilds the week from the stored assignments. An assignment
// whose routine no longer resolves is treated as a rest day.
func (s *scheduleService) CurrentWeek(ctx context.Context, ownerID primitive.ObjectID) (domain.WeekSchedule, error) {
	var week domain.WeekSchedule

	assignments, err := s.scheduleRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return week, storeError("list assignments", err)
	}

	// If a racing writer briefly left two rows for one day, the newest wins.
	var slots [domain.DaysPerWeek]*domain.ScheduledAssignment
	for i := range assignments {
		a := &assignments[i]
		if !a.DayOfWeek.Valid() {
			continue
		}
		if cur := slots[a.DayOfWeek]; cur == nil || !a.CreatedAt.Before(cur.CreatedAt) {
			slots[a.DayOfWeek] = a
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for day, slot := range slots {
		if slot == nil {
			continue
		}
		day, slot := day, slot
		g.Go(func() error {
			routine, err := s.routines.GetRoutineByID(gctx, slot.RoutineID)
			if err != nil {
				return err
			}
			if routine == nil || routine.OwnerID != ownerID {
				metrics.DanglingAssignmentsTotal.Inc()
				s.logger.Warn("assignment points at a missing routine, treating as rest day",
					zap.String("ownerId", ownerID.Hex()),
					zap.Stringer("day", domain.DayOfWeek(day)),
					zap.String("routineId", slot.RoutineID.Hex()))
				return nil
			}
			week[day] = routine
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.WeekSchedule{}, err
	}
	return week, nil
}

func dayError(day domain.DayOfWeek) error {
	_, err := domain.ParseDayOfWeek(int(day))
	return err
}

func countChange(change string, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}
	metrics.ScheduleChangesTotal.WithLabelValues(change, result).Inc()
}
