package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a single movement target inside a Routine. It has no lifecycle of
// its own; it is replaced together with the routine's whole exercise list.
type Exercise struct {
	ID     string  `bson:"id" json:"id"`
	Name   string  `bson:"name" json:"name"`
	Sets   int     `bson:"sets" json:"sets"`
	Reps   int     `bson:"reps" json:"reps"`
	Weight float64 `bson:"weight" json:"weight"`
}

// NewExercise is the validating constructor used at the request boundary.
func NewExercise(id, name string, sets, reps int, weight float64) (Exercise, error) {
	ex := Exercise{
		ID:     strings.TrimSpace(id),
		Name:   strings.TrimSpace(name),
		Sets:   sets,
		Reps:   reps,
		Weight: weight,
	}
	if err := ex.Validate(); err != nil {
		return Exercise{}, err
	}
	return ex, nil
}

// Validate checks the exercise's own fields. The id may be empty here; the
// routine service assigns one before persisting.
func (e Exercise) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return newValidationError("name", "must not be empty")
	}
	if e.Sets <= 0 {
		return newValidationError("sets", "must be greater than zero")
	}
	if e.Reps <= 0 {
		return newValidationError("reps", "must be greater than zero")
	}
	if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) || e.Weight < 0 {
		return newValidationError("weight", "must be a non-negative number")
	}
	return nil
}

// Routine is a named, ordered list of exercises owned by one user.
type Routine struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name      string             `bson:"name" json:"name"`
	Exercises []Exercise         `bson:"exercises" json:"exercises"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseIndex returns the position of the exercise with the given id, or -1.
func (r *Routine) ExerciseIndex(exerciseID string) int {
	for i, ex := range r.Exercises {
		if ex.ID == exerciseID {
			return i
		}
	}
	return -1
}

// NormalizeRoutineName trims the name and rejects blank names.
func NormalizeRoutineName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", newValidationError("name", "must not be empty")
	}
	return trimmed, nil
}

// ValidateExercises checks every exercise and that ids are present and unique
// within the list. It reports the first offending position.
func ValidateExercises(exercises []Exercise) error {
	seen := make(map[string]struct{}, len(exercises))
	for i, ex := range exercises {
		if err := ex.Validate(); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return newValidationError(fmt.Sprintf("exercises[%d].%s", i, ve.Field), ve.Message)
			}
			return err
		}
		if ex.ID == "" {
			return newValidationError(fmt.Sprintf("exercises[%d].id", i), "must not be empty")
		}
		if _, dup := seen[ex.ID]; dup {
			return newValidationError(fmt.Sprintf("exercises[%d].id", i), "duplicates another exercise in the routine")
		}
		seen[ex.ID] = struct{}{}
	}
	return nil
}
