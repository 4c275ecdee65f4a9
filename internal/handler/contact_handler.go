package handler

import (
	"errors"
	"net/http"

	"github.com/devfolio/internal/service"
	"github.com/gin-gonic/gin"
)

type contactStatusPayload struct {
	Status string `json:"status"`
}

// SubmitContactMessage 接收公开联系表单的提交。
func (a *API) SubmitContactMessage(c *gin.Context) {
	item, err := a.contacts.Create(service.ContactInput{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Subject: c.PostForm("subject"),
		Message: c.PostForm("message"),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "留言提交失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "留言已提交，感谢联系", "item": item})
}

// ShowContactManagement renders the admin contact message page.
func (a *API) ShowContactManagement(c *gin.Context) {
	result, err := a.contacts.List(service.ContactFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Page:    parseIntQuery(c, "page"),
		PerPage: parseIntQuery(c, "per_page"),
	})
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "contact_manage.html", gin.H{
			"title": "留言管理",
			"error": "加载留言列表失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "contact_manage.html", gin.H{
		"title":  "留言管理",
		"result": result,
	})
}

// ListContactMessages returns contact messages matching the query filters.
func (a *API) ListContactMessages(c *gin.Context) {
	result, err := a.contacts.List(service.ContactFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Page:    parseIntQuery(c, "page"),
		PerPage: parseIntQuery(c, "per_page"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取留言列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// GetContactMessage returns one message and marks it read.
func (a *API) GetContactMessage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的留言ID")
		return
	}

	item, err := a.contacts.MarkRead(id)
	if err != nil {
		if errors.Is(err, service.ErrContactMessageNotFound) {
			respondError(c, http.StatusNotFound, "留言不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取留言失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// UpdateContactMessageStatus sets the triage status of a message.
func (a *API) UpdateContactMessageStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的留言ID")
		return
	}

	var payload contactStatusPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	item, err := a.contacts.UpdateStatus(id, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContactMessageNotFound):
			respondError(c, http.StatusNotFound, "留言不存在")
		case errors.Is(err, service.ErrContactStatusInvalid):
			respondError(c, http.StatusBadRequest, "留言状态无效")
		default:
			respondError(c, http.StatusInternalServerError, "更新留言状态失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "留言状态已更新", "item": item})
}

// DeleteContactMessage removes a message.
func (a *API) DeleteContactMessage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的留言ID")
		return
	}

	if err := a.contacts.Delete(id); err != nil {
		if errors.Is(err, service.ErrContactMessageNotFound) {
			respondError(c, http.StatusNotFound, "留言不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除留言失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "留言已删除"})
}
