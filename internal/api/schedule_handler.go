package api

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler serves the caller's week.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

type AssignDayRequest struct {
	RoutineID string `json:"routineId" binding:"required"`
}

type AssignmentResponse struct {
	ID        string    `json:"id"`
	RoutineID string    `json:"routineId"`
	DayOfWeek int       `json:"dayOfWeek"`
	DayName   string    `json:"dayName"`
	CreatedAt time.Time `json:"createdAt"`
}

// DayResponse is one day of the week; Routine is null on a rest day.
type DayResponse struct {
	DayOfWeek int              `json:"dayOfWeek"`
	DayName   string           `json:"dayName"`
	Routine   *RoutineResponse `json:"routine"`
}

type WeekResponse struct {
	Days []DayResponse `json:"days"`
}

// MapWeekToResponse lists all seven days, Sunday first.
func MapWeekToResponse(week domain.WeekSchedule) WeekResponse {
	resp := WeekResponse{Days: make([]DayResponse, 0, domain.DaysPerWeek)}
	for d := domain.Sunday; d <= domain.Saturday; d++ {
		day := DayResponse{DayOfWeek: int(d), DayName: d.String()}
		if r := week.Day(d); r != nil {
			mapped := MapRoutineToResponse(r)
			day.Routine = &mapped
		}
		resp.Days = append(resp.Days, day)
	}
	return resp
}

// GetWeek godoc
// @Summary The caller's current week
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} WeekResponse
// @Router /schedule [get]
func (h *ScheduleHandler) GetWeek(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	week, err := h.scheduleService.CurrentWeek(c.Request.Context(), ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWeekToResponse(week))
}

// AssignDay godoc
// @Summary Put a routine on a day, replacing the previous one
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param day path int true "Day of week, 0 = Sunday"
// @Param assignment body AssignDayRequest true "Routine to assign"
// @Success 200 {object} AssignmentResponse
// @Failure 400 {object} gin.H "Invalid day or routine id"
// @Failure 404 {object} gin.H "Routine not found"
// @Router /schedule/{day} [put]
func (h *ScheduleHandler) AssignDay(c *gin.Context) {
	var req AssignDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	day, ok := parseDayParam(c)
	if !ok {
		return
	}
	routineID, err := primitive.ObjectIDFromHex(req.RoutineID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid routineId format")
		return
	}

	assignment, err := h.scheduleService.Assign(c.Request.Context(), ownerID, day, routineID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, AssignmentResponse{
		ID:        assignment.ID.Hex(),
		RoutineID: assignment.RoutineID.Hex(),
		DayOfWeek: int(assignment.DayOfWeek),
		DayName:   assignment.DayOfWeek.String(),
		CreatedAt: assignment.CreatedAt,
	})
}

// UnassignDay godoc
// @Summary Make a day a rest day
// @Tags Schedule
// @Security BearerAuth
// @Param day path int true "Day of week, 0 = Sunday"
// @Success 204 "Day cleared"
// @Router /schedule/{day} [delete]
func (h *ScheduleHandler) UnassignDay(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	day, ok := parseDayParam(c)
	if !ok {
		return
	}
	if err := h.scheduleService.Unassign(c.Request.Context(), ownerID, day); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseDayParam(c *gin.Context) (domain.DayOfWeek, bool) {
	raw, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Day must be a number between 0 and 6")
		return 0, false
	}
	// Range is left to the service so the error is a ValidationError.
	return domain.DayOfWeek(raw), true
}
