package handler

import (
	"errors"
	"net/http"

	"github.com/devfolio/internal/service"
	"github.com/gin-gonic/gin"
)

type technologyPayload struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
	Color       string `json:"color"`
	Proficiency *int   `json:"proficiency"`
	IsFeatured  *bool  `json:"is_featured"`
	SortOrder   *int   `json:"sort_order"`
}

func (p technologyPayload) toInput() service.TechnologyInput {
	return service.TechnologyInput{
		Name:        p.Name,
		Slug:        p.Slug,
		Type:        p.Type,
		Color:       p.Color,
		Proficiency: p.Proficiency,
		IsFeatured:  p.IsFeatured,
		SortOrder:   p.SortOrder,
	}
}

// ShowTechnologyManagement renders the admin technology management page.
func (a *API) ShowTechnologyManagement(c *gin.Context) {
	result, err := a.technologies.List(service.TechnologyFilter{
		Search:  c.Query("search"),
		Type:    c.Query("type"),
		Page:    parseIntQuery(c, "page"),
		PerPage: parseIntQuery(c, "per_page"),
	})
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "technology_manage.html", gin.H{
			"title": "技术管理",
			"error": "加载技术列表失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "technology_manage.html", gin.H{
		"title":  "技术管理",
		"result": result,
	})
}

// ListTechnologies returns technologies matching the query filters.
func (a *API) ListTechnologies(c *gin.Context) {
	result, err := a.technologies.List(service.TechnologyFilter{
		Search:   c.Query("search"),
		Type:     c.Query("type"),
		Featured: parseBoolQuery(c, "featured"),
		Page:     parseIntQuery(c, "page"),
		PerPage:  parseIntQuery(c, "per_page"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取技术列表失败")
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

// GetTechnology returns one technology.
func (a *API) GetTechnology(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的技术ID")
		return
	}

	item, err := a.technologies.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrTechnologyNotFound) {
			respondError(c, http.StatusNotFound, "技术不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取技术失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// CreateTechnology creates a new technology.
func (a *API) CreateTechnology(c *gin.Context) {
	var payload technologyPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	item, err := a.technologies.Create(payload.toInput())
	if err != nil {
		a.respondTechnologyError(c, err, "创建技术失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "技术已创建", "item": item})
}

// UpdateTechnology updates an existing technology.
func (a *API) UpdateTechnology(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的技术ID")
		return
	}

	var payload technologyPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	item, err := a.technologies.Update(id, payload.toInput())
	if err != nil {
		a.respondTechnologyError(c, err, "更新技术失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "技术已更新", "item": item})
}

// DeleteTechnology removes a technology unless projects still reference it.
func (a *API) DeleteTechnology(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的技术ID")
		return
	}

	if err := a.technologies.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrTechnologyNotFound):
			respondError(c, http.StatusNotFound, "技术不存在")
		case errors.Is(err, service.ErrTechnologyInUse):
			// 业务规则拒绝，提示用户先解除项目引用
			respondError(c, http.StatusConflict, "该技术仍被项目引用，无法删除")
		default:
			respondError(c, http.StatusInternalServerError, "删除技术失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "技术已删除"})
}

// ReorderTechnologies applies the submitted {id, order} pairs.
func (a *API) ReorderTechnologies(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.technologies.Reorder(payload.toUpdates()); err != nil {
		switch {
		case errors.Is(err, service.ErrReorderInvalid):
			respondError(c, http.StatusBadRequest, "排序参数不合法")
		case errors.Is(err, service.ErrTechnologyNotFound):
			respondError(c, http.StatusNotFound, "技术不存在")
		default:
			respondError(c, http.StatusInternalServerError, "保存排序失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "排序已保存"})
}

// ToggleTechnologyFeatured flips the featured flag.
func (a *API) ToggleTechnologyFeatured(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的技术ID")
		return
	}

	item, err := a.technologies.ToggleFeatured(id)
	if err != nil {
		if errors.Is(err, service.ErrTechnologyNotFound) {
			respondError(c, http.StatusNotFound, "技术不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "切换推荐状态失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "推荐状态已更新", "item": item})
}

func (a *API) respondTechnologyError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTechnologyNotFound):
		respondError(c, http.StatusNotFound, "技术不存在")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTechnologySlugTaken):
		respondError(c, http.StatusConflict, "Slug 已被占用")
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
