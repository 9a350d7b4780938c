package employee

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/employees/", h.ListEmployees)
	r.POST("/employees/", h.CreateEmployee)
	r.GET("/employees/:id/", h.GetEmployee)
	r.DELETE("/employees/:id/", h.DeleteEmployee)
}

// ---------- handlers ----------

// ListEmployees godoc
// @Summary  List all employees
// @Produce  json
// @Success  200 {array} employee.EmployeeResponse
// @Router   /employees/ [get]
func (h *Handler) ListEmployees(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateEmployee godoc
// @Summary  Create an employee
// @Accept   json
// @Produce  json
// @Param    employee body employee.CreateEmployeeRequest true "employee fields"
// @Success  201 {object} employee.EmployeeResponse
// @Failure  400 {object} employee.errorDTO
// @Router   /employees/ [post]
func (h *Handler) CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
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

// GetEmployee godoc
// @Summary  Get one employee
// @Produce  json
// @Param    id path int true "employee surrogate id"
// @Success  200 {object} employee.EmployeeResponse
// @Failure  404 {object} employee.errorDTO
// @Router   /employees/{id}/ [get]
func (h *Handler) GetEmployee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteEmployee godoc
// @Summary  Delete an employee and its attendance records
// @Param    id path int true "employee surrogate id"
// @Success  204
// @Failure  404 {object} employee.errorDTO
// @Router   /employees/{id}/ [delete]
func (h *Handler) DeleteEmployee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- helpers ----------

// A non-numeric id could never match a row, so it reads as not-found rather
// than a malformed request.
func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, errorBody(msgNotFound))
		return 0, false
	}
	return id, true
}

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
