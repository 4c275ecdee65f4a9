package handler

import (
	"errors"
	"net/http"

	"github.com/devfolio/internal/service"
	"github.com/gin-gonic/gin"
)

// experienceInputFromForm 从 multipart 表单组装工作经历输入。
func experienceInputFromForm(c *gin.Context) (service.ExperienceInput, error) {
	startDate, err := formDate(c, "start_date")
	if err != nil {
		return service.ExperienceInput{}, err
	}
	endDate, err := formOptionalDate(c, "end_date")
	if err != nil {
		return service.ExperienceInput{}, err
	}

	return service.ExperienceInput{
		Title:            formString(c, "title"),
		Company:          formString(c, "company"),
		Location:         formString(c, "location"),
		Responsibilities: formLines(c, "responsibilities"),
		Achievements:     formLines(c, "achievements"),
		StartDate:        startDate,
		EndDate:          endDate,
		IsCurrent:        formBool(c, "is_current"),
		SortOrder:        formOptionalInt(c, "sort_order"),
		CompanyLogo:      formImagePatch(c, "company_logo"),
	}, nil
}

// ShowExperienceManagement renders the admin experience management page.
func (a *API) ShowExperienceManagement(c *gin.Context) {
	items, err := a.experiences.ListAll()
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "experience_manage.html", gin.H{
			"title": "工作经历",
			"error": "加载工作经历失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "experience_manage.html", gin.H{
		"title": "工作经历",
		"items": items,
	})
}

// ListExperiences returns every experience entry in display order.
func (a *API) ListExperiences(c *gin.Context) {
	items, err := a.experiences.ListAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取工作经历失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateExperience creates a new experience entry.
func (a *API) CreateExperience(c *gin.Context) {
	input, err := experienceInputFromForm(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "日期格式不合法")
		return
	}

	item, err := a.experiences.Create(input)
	if err != nil {
		a.respondExperienceError(c, err, "创建工作经历失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "工作经历已创建", "item": item})
}

// UpdateExperience updates an existing experience entry.
func (a *API) UpdateExperience(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的经历ID")
		return
	}

	input, err := experienceInputFromForm(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "日期格式不合法")
		return
	}

	item, err := a.experiences.Update(id, input)
	if err != nil {
		a.respondExperienceError(c, err, "更新工作经历失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "工作经历已更新", "item": item})
}

// DeleteExperience removes an experience entry and its logo file.
func (a *API) DeleteExperience(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的经历ID")
		return
	}

	if err := a.experiences.Delete(id); err != nil {
		if errors.Is(err, service.ErrExperienceNotFound) {
			respondError(c, http.StatusNotFound, "工作经历不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除工作经历失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "工作经历已删除"})
}

// ReorderExperiences applies the submitted {id, order} pairs.
func (a *API) ReorderExperiences(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.experiences.Reorder(payload.toUpdates()); err != nil {
		switch {
		case errors.Is(err, service.ErrReorderInvalid):
			respondError(c, http.StatusBadRequest, "排序参数不合法")
		case errors.Is(err, service.ErrExperienceNotFound):
			respondError(c, http.StatusNotFound, "工作经历不存在")
		default:
			respondError(c, http.StatusInternalServerError, "保存排序失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "排序已保存"})
}

func (a *API) respondExperienceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrExperienceNotFound):
		respondError(c, http.StatusNotFound, "工作经历不存在")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
