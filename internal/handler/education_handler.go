package handler

import (
	"errors"
	"net/http"

	"github.com/devfolio/internal/service"
	"github.com/gin-gonic/gin"
)

// educationInputFromForm 从 multipart 表单组装教育经历输入。
func educationInputFromForm(c *gin.Context) (service.EducationInput, error) {
	startDate, err := formDate(c, "start_date")
	if err != nil {
		return service.EducationInput{}, err
	}
	endDate, err := formOptionalDate(c, "end_date")
	if err != nil {
		return service.EducationInput{}, err
	}

	return service.EducationInput{
		Degree:          formString(c, "degree"),
		Institution:     formString(c, "institution"),
		FieldOfStudy:    formString(c, "field_of_study"),
		Description:     formString(c, "description"),
		StartDate:       startDate,
		EndDate:         endDate,
		IsCurrent:       formBool(c, "is_current"),
		SortOrder:       formOptionalInt(c, "sort_order"),
		InstitutionLogo: formImagePatch(c, "institution_logo"),
	}, nil
}

// ShowEducationManagement renders the admin education management page.
func (a *API) ShowEducationManagement(c *gin.Context) {
	items, err := a.educations.ListAll()
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "education_manage.html", gin.H{
			"title": "教育经历",
			"error": "加载教育经历失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "education_manage.html", gin.H{
		"title": "教育经历",
		"items": items,
	})
}

// ListEducations returns every education entry in display order.
func (a *API) ListEducations(c *gin.Context) {
	items, err := a.educations.ListAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取教育经历失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateEducation creates a new education entry.
func (a *API) CreateEducation(c *gin.Context) {
	input, err := educationInputFromForm(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "日期格式不合法")
		return
	}

	item, err := a.educations.Create(input)
	if err != nil {
		a.respondEducationError(c, err, "创建教育经历失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "教育经历已创建", "item": item})
}

// UpdateEducation updates an existing education entry.
func (a *API) UpdateEducation(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教育经历ID")
		return
	}

	input, err := educationInputFromForm(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "日期格式不合法")
		return
	}

	item, err := a.educations.Update(id, input)
	if err != nil {
		a.respondEducationError(c, err, "更新教育经历失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "教育经历已更新", "item": item})
}

// DeleteEducation removes an education entry and its logo file.
func (a *API) DeleteEducation(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教育经历ID")
		return
	}

	if err := a.educations.Delete(id); err != nil {
		if errors.Is(err, service.ErrEducationNotFound) {
			respondError(c, http.StatusNotFound, "教育经历不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除教育经历失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "教育经历已删除"})
}

// ReorderEducations applies the submitted {id, order} pairs.
func (a *API) ReorderEducations(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.educations.Reorder(payload.toUpdates()); err != nil {
		switch {
		case errors.Is(err, service.ErrReorderInvalid):
			respondError(c, http.StatusBadRequest, "排序参数不合法")
		case errors.Is(err, service.ErrEducationNotFound):
			respondError(c, http.StatusNotFound, "教育经历不存在")
		default:
			respondError(c, http.StatusInternalServerError, "保存排序失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "排序已保存"})
}

func (a *API) respondEducationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEducationNotFound):
		respondError(c, http.StatusNotFound, "教育经历不存在")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
