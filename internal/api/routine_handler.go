package api

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/service"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
)

// RoutineHandler serves the caller's routines and their exercises.
type RoutineHandler struct {
	routineService service.RoutineService
}

// NewRoutineHandler creates a new RoutineHandler.
func NewRoutineHandler(routineService service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

// --- DTOs ---

type CreateRoutineRequest struct {
	Name string `json:"name" binding:"required"`
}

// ExerciseRequest carries one exercise. ID may be omitted; the server assigns one.
// Range checks live in the domain so every entry point reports them the same way.
type ExerciseRequest struct {
	ID     string  `json:"id"`
	Name   string  `json:"name" binding:"required"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// UpdateRoutineRequest replaces the routine's name and whole exercise list.
type UpdateRoutineRequest struct {
	Name      string            `json:"name" binding:"required"`
	Exercises []ExerciseRequest `json:"exercises" binding:"dive"`
}

type ExerciseResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

type RoutineResponse struct {
	ID        string             `json:"id"`
	OwnerID   string             `json:"ownerId"`
	Name      string             `json:"name"`
	Exercises []ExerciseResponse `json:"exercises"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func (r ExerciseRequest) toDomain() domain.Exercise {
	return domain.Exercise{ID: r.ID, Name: r.Name, Sets: r.Sets, Reps: r.Reps, Weight: r.Weight}
}

// MapRoutineToResponse converts a domain.Routine to RoutineResponse DTO.
func MapRoutineToResponse(routine *domain.Routine) RoutineResponse {
	if routine == nil {
		return RoutineResponse{}
	}
	exercises := make([]ExerciseResponse, len(routine.Exercises))
	for i, ex := range routine.Exercises {
		exercises[i] = ExerciseResponse{ID: ex.ID, Name: ex.Name, Sets: ex.Sets, Reps: ex.Reps, Weight: ex.Weight}
	}
	return RoutineResponse{
		ID:        routine.ID.Hex(),
		OwnerID:   routine.OwnerID.Hex(),
		Name:      routine.Name,
		Exercises: exercises,
		CreatedAt: routine.CreatedAt,
		UpdatedAt: routine.UpdatedAt,
	}
}

// --- Handler Methods ---

// CreateRoutine godoc
// @Summary Create a routine
// @Tags Routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param routine body CreateRoutineRequest true "Routine name"
// @Success 201 {object} RoutineResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /routines [post]
func (h *RoutineHandler) CreateRoutine(c *gin.Context) {
	var req CreateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	routine, err := h.routineService.CreateRoutine(c.Request.Context(), ownerID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapRoutineToResponse(routine))
}

// ListRoutines godoc
// @Summary List the caller's routines, oldest first
// @Tags Routines
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RoutineResponse
// @Router /routines [get]
func (h *RoutineHandler) ListRoutines(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	routines, err := h.routineService.ListRoutines(c.Request.Context(), ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	slices.SortStableFunc(routines, func(a, b domain.Routine) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	resp := make([]RoutineResponse, len(routines))
	for i := range routines {
		resp[i] = MapRoutineToResponse(&routines[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetRoutine godoc
// @Summary Get one routine
// @Tags Routines
// @Produce json
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Success 200 {object} RoutineResponse
// @Failure 404 {object} gin.H "Routine not found"
// @Router /routines/{id} [get]
func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	routine, ok := h.ownedRoutine(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, MapRoutineToResponse(routine))
}

// UpdateRoutine godoc
// @Summary Replace a routine's name and exercises
// @Tags Routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param routine body UpdateRoutineRequest true "New name and exercises"
// @Success 200 {object} RoutineResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 404 {object} gin.H "Routine not found"
// @Router /routines/{id} [put]
func (h *RoutineHandler) UpdateRoutine(c *gin.Context) {
	var req UpdateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	routine, ok := h.ownedRoutine(c)
	if !ok {
		return
	}

	exercises := make([]domain.Exercise, len(req.Exercises))
	for i, ex := range req.Exercises {
		exercises[i] = ex.toDomain()
	}
	updated, err := h.routineService.SetExercises(c.Request.Context(), routine.ID, req.Name, exercises)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapRoutineToResponse(updated))
}

// DeleteRoutine godoc
// @Summary Delete a routine and clear it from the week
// @Tags Routines
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Success 204 "Routine deleted"
// @Failure 404 {object} gin.H "Routine not found"
// @Router /routines/{id} [delete]
func (h *RoutineHandler) DeleteRoutine(c *gin.Context) {
	routine, ok := h.ownedRoutine(c)
	if !ok {
		return
	}
	if err := h.routineService.DeleteRoutine(c.Request.Context(), routine.ID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise godoc
// @Summary Append an exercise to a routine
// @Tags Routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param exercise body ExerciseRequest true "Exercise"
// @Success 201 {object} RoutineResponse
// @Router /routines/{id}/exercises [post]
func (h *RoutineHandler) AddExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	routine, ok := h.ownedRoutine(c)
	if !ok {
		return
	}

	updated, err := h.routineService.AddExercise(c.Request.Context(), routine.ID, req.toDomain())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapRoutineToResponse(updated))
}

// UpdateExercise godoc
// @Summary Edit one exercise in place
// @Tags Routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param exerciseId path string true "Exercise ID"
// @Param exercise body ExerciseRequest true "Exercise"
// @Success 200 {object} RoutineResponse
// @Router /routines/{id}/exercises/{exerciseId} [put]
func (h *RoutineHandler) UpdateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if req.ID != "" && req.ID != c.Param("exerciseId") {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Body id %q does not match path", req.ID))
		return
	}
	routine, ok := h.ownedRoutine(c)
	if !ok {
		return
	}

	exercise := req.toDomain()
	exercise.ID = c.Param("exerciseId")
	updated, err := h.routineService.UpdateExercise(c.Request.Context(), routine.ID, exercise)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapRoutineToResponse(updated))
}

// RemoveExercise godoc
// @Summary Remove one exercise
// @Tags Routines
// @Produce json
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} RoutineResponse
// @Router /routines/{id}/exercises/{exerciseId} [delete]
func (h *RoutineHandler) RemoveExercise(c *gin.Context) {
	routine, ok := h.ownedRoutine(c)
	if !ok {
		return
	}
	updated, err := h.routineService.RemoveExercise(c.Request.Context(), routine.ID, c.Param("exerciseId"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapRoutineToResponse(updated))
}

// ownedRoutine loads the :id routine and checks it belongs to the caller.
func (h *RoutineHandler) ownedRoutine(c *gin.Context) (*domain.Routine, bool) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return nil, false
	}
	routineID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return nil, false
	}
	routine, err := h.routineService.GetOwnedRoutine(c.Request.Context(), ownerID, routineID)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	return routine, true
}
