package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayOfWeek follows time.Weekday numbering: 0 is Sunday, 6 is Saturday.
type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// DaysPerWeek is the number of schedulable slots per owner.
const DaysPerWeek = 7

// ParseDayOfWeek converts a raw day index, rejecting anything outside 0..6.
func ParseDayOfWeek(day int) (DayOfWeek, error) {
	d := DayOfWeek(day)
	if !d.Valid() {
		return 0, newValidationError("dayOfWeek", fmt.Sprintf("must be between 0 and 6, got %d", day))
	}
	return d, nil
}

func (d DayOfWeek) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return time.Weekday(d).String()
}

// ScheduledAssignment binds one day of one owner's week to a routine.
type ScheduledAssignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	RoutineID primitive.ObjectID `bson:"routineId" json:"routineId"`
	DayOfWeek DayOfWeek          `bson:"dayOfWeek" json:"dayOfWeek"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// WeekSchedule is the derived view of a week. A nil entry is a rest day.
// It is rebuilt from assignments and routines on every read and never stored.
type WeekSchedule [DaysPerWeek]*Routine

// Day returns the routine for d, or nil for a rest day or an invalid day.
func (w WeekSchedule) Day(d DayOfWeek) *Routine {
	if !d.Valid() {
		return nil
	}
	return w[d]
}

// IsRestDay reports whether nothing is scheduled on d.
func (w WeekSchedule) IsRestDay(d DayOfWeek) bool {
	return w.Day(d) == nil
}
