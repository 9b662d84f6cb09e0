package game

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"github.com/SlpAus/sistatistics-backend/internal/packagestats"
	"github.com/SlpAus/sistatistics-backend/internal/platform/apierr"
	"github.com/SlpAus/sistatistics-backend/internal/question"
	"github.com/SlpAus/sistatistics-backend/internal/source"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// toAPIError 把领域错误映射为客户端错误码，无法识别的错误原样返回
func toAPIError(err error) error {
	switch {
	case errors.Is(err, ErrGameInfoNotFound):
		return apierr.BadRequest(apierr.CodeGameInfoNotFound, err)
	case errors.Is(err, ErrInvalidFinishTime):
		return apierr.BadRequest(apierr.CodeInvalidFinishTime, err)
	case errors.Is(err, ErrInvalidDuration):
		return apierr.BadRequest(apierr.CodeInvalidDuration, err)
	case errors.Is(err, ErrUnsupportedPlatform):
		return apierr.BadRequest(apierr.CodeUnsupportedPlatform, err)
	case errors.Is(err, ErrMissingPackageHash):
		return apierr.BadRequest(apierr.CodeMissingPackageHash, err)
	case errors.Is(err, source.ErrInvalidSource):
		return apierr.BadRequest(apierr.CodeInvalidSource, err)
	case errors.Is(err, identity.ErrLimitExceeded), errors.Is(err, question.ErrUnsupportedReportType):
		return apierr.BadRequest(apierr.CodeInvalidRequest, err)
	case errors.Is(err, packagestats.ErrMergeConflict):
		return apierr.New(http.StatusServiceUnavailable, apierr.CodeServiceUnavailable, err)
	}
	return err
}

func parseTime(c *gin.Context, name string) (time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

// bindFilter 从查询参数读取 platform、from、to、languageCode 和 count
func bindFilter(c *gin.Context) (StatisticFilter, error) {
	var filter StatisticFilter
	var err error
	if filter.Platform, err = ParsePlatforms(c.Query("platform")); err != nil {
		return filter, err
	}
	if filter.From, err = parseTime(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = parseTime(c, "to"); err != nil {
		return filter, err
	}
	if count := c.Query("count"); count != "" {
		if filter.Count, err = strconv.Atoi(count); err != nil {
			return filter, err
		}
	}
	filter.LanguageCode = c.Query("languageCode")
	return filter, nil
}

// GetResults GET /games/results
func (h *Handler) GetResults(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		_ = c.Error(apierr.BadRequest(apierr.CodeInvalidRequest, err))
		return
	}
	resp, err := h.service.QueryGames(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStatistic GET /games/stats
func (h *Handler) GetStatistic(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		_ = c.Error(apierr.BadRequest(apierr.CodeInvalidRequest, err))
		return
	}
	resp, err := h.service.QueryGameStatistic(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPackages GET /games/packages?source=&fallbackSource=
func (h *Handler) GetPackages(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		_ = c.Error(apierr.BadRequest(apierr.CodeInvalidRequest, err))
		return
	}
	resp, err := h.service.QueryPackageStatistics(c.Request.Context(), filter, c.Query("source"), c.Query("fallbackSource"))
	if err != nil {
		_ = c.Error(toAPIError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PostPackageStats POST /games/packages/stats
func (h *Handler) PostPackageStats(c *gin.Context) {
	var key identity.PackageKey
	if err := c.ShouldBindJSON(&key); err != nil {
		_ = c.Error(apierr.BadRequest(apierr.CodeInvalidRequest, err))
		return
	}
	stats, err := h.service.QueryPackageStats(c.Request.Context(), key)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if stats == nil {
		_ = c.Error(apierr.New(http.StatusNotFound, apierr.CodeNotFound, nil))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetPackageInfo GET /games/packages/info?name=&hash=&authors=&source=&includeStats=
func (h *Handler) GetPackageInfo(c *gin.Context) {
	req := PackageInfoRequest{
		Name:    c.Query("name"),
		Hash:    c.Query("hash"),
		Authors: c.QueryArray("authors"),
		Source:  c.Query("source"),
	}
	if req.Name == "" || req.Hash == "" {
		_ = c.Error(apierr.BadRequest(apierr.CodeInvalidRequest, errors.New("name and hash are required")))
		return
	}
	if v := c.Query("includeStats"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			_ = c.Error(apierr.BadRequest(apierr.CodeInvalidRequest, err))
			return
		}
		req.IncludeStats = include
	}

	resp, err := h.service.GetPackageInfo(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(toAPIError(err))
		return
	}
	if resp == nil {
		_ = c.Error(apierr.New(http.StatusNotFound, apierr.CodeNotFound, nil))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) submit(c *gin.Context, public bool) {
	var report GameReport
	if err := c.ShouldBindJSON(&report); err != nil {
		_ = c.Error(apierr.BadRequest(apierr.CodeInvalidRequest, err))
		return
	}
	if err := h.service.Validate(report, public); err != nil {
		_ = c.Error(toAPIError(err))
		return
	}
	if err := h.service.SubmitReport(c.Request.Context(), report); err != nil {
		_ = c.Error(toAPIError(err))
		return
	}
	c.Status(http.StatusAccepted)
}

// PostReport POST /games/reports，公开接口，只接受刚结束的本地游戏
func (h *Handler) PostReport(c *gin.Context) {
	h.submit(c, true)
}

// PostAdminReport POST /admin/reports
func (h *Handler) PostAdminReport(c *gin.Context) {
	h.submit(c, false)
}
