package attendance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/attendance/", h.ListAttendance)
	r.POST("/attendance/", h.MarkAttendance)
	r.PUT("/attendance/", h.UpdateAttendance)
}

// ---------- handlers ----------

// ListAttendance godoc
// @Summary  List attendance records
// @Produce  json
// @Param    employee_id query int    false "employee surrogate id"
// @Param    date_from   query string false "inclusive lower bound, YYYY-MM-DD"
// @Param    date_to     query string false "inclusive upper bound, YYYY-MM-DD"
// @Success  200 {array}  attendance.AttendanceResponse
// @Failure  400 {object} attendance.errorDTO
// @Router   /attendance/ [get]
func (h *Handler) ListAttendance(c *gin.Context) {
	var q ListQuery
	if v := c.Query("employee_id"); v != "" {
		pk, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("employee_id must be an integer"))
			return
		}
		q.EmployeePK = &pk
	}
	if v := c.Query("date_from"); v != "" {
		q.From = &v
	}
	if v := c.Query("date_to"); v != "" {
		q.To = &v
	}

	resp, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarkAttendance godoc
// @Summary  Mark attendance for an employee on a date
// @Accept   json
// @Produce  json
// @Param    attendance body attendance.CreateAttendanceRequest true "employee_ref, date, status"
// @Success  201 {object} attendance.AttendanceResponse
// @Failure  400 {object} attendance.errorDTO
// @Router   /attendance/ [post]
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateAttendance godoc
// @Summary  Correct an existing attendance record (partial update)
// @Accept   json
// @Produce  json
// @Param    attendance body attendance.UpdateAttendanceRequest true "id plus any of employee_ref, date, status"
// @Success  200 {object} attendance.AttendanceResponse
// @Failure  400 {object} attendance.errorDTO
// @Failure  404 {object} attendance.errorDTO
// @Router   /attendance/ [put]
func (h *Handler) UpdateAttendance(c *gin.Context) {
	var req UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ---------- helpers ----------

type errorDTO struct {
	Error string `json:"error"`
}

func errorBody(msg string) errorDTO { return errorDTO{Error: msg} }

func errorFromErr(err error) errorDTO {
	var api *APIError
	if errors.As(err, &api) {
		return errorBody(api.Message)
	}
	return errorBody(err.Error())
}
