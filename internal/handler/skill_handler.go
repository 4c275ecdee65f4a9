package handler

import (
	"errors"
	"net/http"

	"github.com/devfolio/internal/service"
	"github.com/gin-gonic/gin"
)

type skillPayload struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	YearsExperience *int   `json:"years_experience"`
	Level           *int   `json:"level"`
	IsHighlighted   *bool  `json:"is_highlighted"`
	SortOrder       *int   `json:"sort_order"`
}

func (p skillPayload) toInput() service.SkillInput {
	return service.SkillInput{
		Name:            p.Name,
		Category:        p.Category,
		YearsExperience: p.YearsExperience,
		Level:           p.Level,
		IsHighlighted:   p.IsHighlighted,
		SortOrder:       p.SortOrder,
	}
}

// ShowSkillManagement renders the admin skill management page.
func (a *API) ShowSkillManagement(c *gin.Context) {
	groups, err := a.skills.ListGrouped()
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "skill_manage.html", gin.H{
			"title": "技能管理",
			"error": "加载技能列表失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "skill_manage.html", gin.H{
		"title":  "技能管理",
		"groups": groups,
	})
}

// ListSkills returns every skill in display order.
func (a *API) ListSkills(c *gin.Context) {
	items, err := a.skills.ListAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取技能列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateSkill creates a new skill.
func (a *API) CreateSkill(c *gin.Context) {
	var payload skillPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	item, err := a.skills.Create(payload.toInput())
	if err != nil {
		a.respondSkillError(c, err, "创建技能失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "技能已创建", "item": item})
}

// UpdateSkill updates an existing skill.
func (a *API) UpdateSkill(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的技能ID")
		return
	}

	var payload skillPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	item, err := a.skills.Update(id, payload.toInput())
	if err != nil {
		a.respondSkillError(c, err, "更新技能失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "技能已更新", "item": item})
}

// DeleteSkill removes a skill.
func (a *API) DeleteSkill(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的技能ID")
		return
	}

	if err := a.skills.Delete(id); err != nil {
		if errors.Is(err, service.ErrSkillNotFound) {
			respondError(c, http.StatusNotFound, "技能不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除技能失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "技能已删除"})
}

// ReorderSkills applies the submitted {id, order} pairs.
func (a *API) ReorderSkills(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.skills.Reorder(payload.toUpdates()); err != nil {
		switch {
		case errors.Is(err, service.ErrReorderInvalid):
			respondError(c, http.StatusBadRequest, "排序参数不合法")
		case errors.Is(err, service.ErrSkillNotFound):
			respondError(c, http.StatusNotFound, "技能不存在")
		default:
			respondError(c, http.StatusInternalServerError, "保存排序失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "排序已保存"})
}

// ToggleSkillHighlighted flips the highlighted flag.
func (a *API) ToggleSkillHighlighted(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的技能ID")
		return
	}

	item, err := a.skills.ToggleHighlighted(id)
	if err != nil {
		if errors.Is(err, service.ErrSkillNotFound) {
			respondError(c, http.StatusNotFound, "技能不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "切换高亮状态失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "高亮状态已更新", "item": item})
}

func (a *API) respondSkillError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrSkillNotFound):
		respondError(c, http.StatusNotFound, "技能不存在")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
