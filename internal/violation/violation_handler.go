package violation

import (
	"net/http"
	"strconv"
	"time"

	"gigpay/internal/shared/apperror"
	"gigpay/internal/shared/response"
	vioerrors "gigpay/internal/violation/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("violation.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("violation.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("violation request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.service.GetAll(c.Request.Context(), filter, page, limit)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Review(c *gin.Context) {
	var req ReviewViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Transition(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func parseListFilter(c *gin.Context) (ListFilter, error) {
	var f ListFilter
	for key, dst := range map[string]**string{
		"worker_id":         &f.WorkerID,
		"rule_code":         &f.RuleCode,
		"jurisdiction_code": &f.JurisdictionCode,
		"status":            &f.Status,
		"severity":          &f.Severity,
	} {
		if v := c.Query(key); v != "" {
			s := v
			*dst = &s
		}
	}
	for key, dst := range map[string]**time.Time{
		"from": &f.From,
		"to":   &f.To,
	} {
		if v := c.Query(key); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return ListFilter{}, vioerrors.ErrInvalidDateRange
			}
			*dst = &t
		}
	}
	return f, nil
}
