package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/service"
)

// EventHandler 日历查询接口（给前端页面和日历订阅用）
type EventHandler struct {
	eventService *service.EventService
	logger       *logrus.Logger
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(eventService *service.EventService, logger *logrus.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

// Calendar 日历视图（含过去的条目）
// GET /api/calendar?months_before=1&months_after=2
func (h *EventHandler) Calendar(c *gin.Context) {
	monthsBefore, _ := strconv.Atoi(c.DefaultQuery("months_before", "1"))
	monthsAfter, _ := strconv.Atoi(c.DefaultQuery("months_after", "2"))

	days, err := h.eventService.CalendarEvents(c.Request.Context(), monthsBefore, monthsAfter)
	if err != nil {
		h.logger.WithError(err).Error("查询日历失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

// Upcoming "即将到来"视图（只含今天及以后）
// GET /api/events/upcoming?months=2
func (h *EventHandler) Upcoming(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months", "2"))

	days, err := h.eventService.UpcomingEvents(c.Request.Context(), months)
	if err != nil {
		h.logger.WithError(err).Error("查询即将到来的活动失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

// ICSFeed iCalendar 订阅源
// GET /api/calendar.ics
func (h *EventHandler) ICSFeed(c *gin.Context) {
	monthsBefore, _ := strconv.Atoi(c.DefaultQuery("months_before", "1"))
	monthsAfter, _ := strconv.Atoi(c.DefaultQuery("months_after", "2"))

	body, err := h.eventService.ICalendar(c.Request.Context(), monthsBefore, monthsAfter)
	if err != nil {
		h.logger.WithError(err).Error("生成ICS失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
