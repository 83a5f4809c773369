package jurisdiction

import (
	"encoding/json"
	"net/http"
	"time"

	"gigpay/internal/shared/apperror"
	"gigpay/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const resolveCacheTTL = 10 * time.Minute

type Handler struct {
	service  Service
	resolver Resolver
	rdb      *redis.Client
	logger   *zap.Logger
}

func NewHandler(service Service, resolver Resolver, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("jurisdiction.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("jurisdiction.handler")
	}
	return &Handler{service: service, resolver: resolver, logger: l}
}

func NewHandlerWithRedis(service Service, resolver Resolver, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	h := NewHandler(service, resolver, logger...)
	h.rdb = rdb
	return h
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("jurisdiction request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	actorID := c.GetString("user_id")

	var req CreateJurisdictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	actorID := c.GetString("user_id")
	id := c.Param("id")

	var req UpdateJurisdictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Deactivate(c *gin.Context) {
	actorID := c.GetString("user_id")
	resp, err := h.service.Deactivate(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// Resolve mengekspos hasil resolusi lokasi -> yurisdiksi. Konfigurasi
// yurisdiksi jarang berubah, jadi hasilnya di-cache di Redis sebentar.
func (h *Handler) Resolve(c *gin.Context) {
	var q ResolveQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	cacheKey := "jurisdiction:resolve:" + q.Country + ":" + q.State + ":" + q.City
	if h.rdb != nil {
		if val, err := h.rdb.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var cached JurisdictionResponse
			if json.Unmarshal([]byte(val), &cached) == nil {
				response.Success(c, http.StatusOK, cached, nil)
				return
			}
		}
	}

	state := optionalParam(q.State)
	city := optionalParam(q.City)

	j, err := h.resolver.ResolveTax(c.Request.Context(), q.Country, state, city)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp := mapToResponse(*j)
	if h.rdb != nil {
		if payload, err := json.Marshal(resp); err == nil {
			_ = h.rdb.Set(c.Request.Context(), cacheKey, payload, resolveCacheTTL).Err()
		}
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func optionalParam(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
