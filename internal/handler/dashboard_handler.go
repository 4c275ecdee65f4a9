package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	session := sessions.Default(c)
	username := session.Get("username")

	stats, err := a.dashboard.Stats(time.Now())
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "dashboard.html", gin.H{
			"title": "管理面板",
			"error": "加载统计数据失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":    "管理面板",
		"username": username,
		"stats":    stats,
	})
}

// GetDashboardStats returns the dashboard aggregation as JSON.
func (a *API) GetDashboardStats(c *gin.Context) {
	stats, err := a.dashboard.Stats(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "加载统计数据失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
