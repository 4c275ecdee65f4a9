package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/devfolio/internal/service"
	"github.com/gin-gonic/gin"
)

// testimonialInputFromForm 从 multipart 表单组装客户评价输入。
func testimonialInputFromForm(c *gin.Context) service.TestimonialInput {
	rating, _ := strconv.Atoi(formString(c, "rating"))

	return service.TestimonialInput{
		ClientName:    formString(c, "client_name"),
		ClientTitle:   formString(c, "client_title"),
		ClientCompany: formString(c, "client_company"),
		Content:       formString(c, "content"),
		Rating:        rating,
		ProjectID:     formOptionalUint(c, "project_id"),
		IsFeatured:    formOptionalBool(c, "is_featured"),
		IsPublished:   formOptionalBool(c, "is_published"),
		SortOrder:     formOptionalInt(c, "sort_order"),
		ClientAvatar:  formImagePatch(c, "client_avatar"),
	}
}

// ShowTestimonialManagement renders the admin testimonial management page.
func (a *API) ShowTestimonialManagement(c *gin.Context) {
	result, err := a.testimonials.List(service.TestimonialFilter{
		Search:  c.Query("search"),
		Page:    parseIntQuery(c, "page"),
		PerPage: parseIntQuery(c, "per_page"),
	})
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "testimonial_manage.html", gin.H{
			"title": "评价管理",
			"error": "加载评价列表失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "testimonial_manage.html", gin.H{
		"title":  "评价管理",
		"result": result,
	})
}

// ListTestimonials returns testimonials matching the query filters.
func (a *API) ListTestimonials(c *gin.Context) {
	result, err := a.testimonials.List(service.TestimonialFilter{
		Search:    c.Query("search"),
		Rating:    parseIntQuery(c, "rating"),
		ProjectID: parseUintQuery(c, "project_id"),
		Published: parseBoolQuery(c, "published"),
		Featured:  parseBoolQuery(c, "featured"),
		Page:      parseIntQuery(c, "page"),
		PerPage:   parseIntQuery(c, "per_page"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取评价列表失败")
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

// CreateTestimonial creates a new testimonial.
func (a *API) CreateTestimonial(c *gin.Context) {
	item, err := a.testimonials.Create(testimonialInputFromForm(c))
	if err != nil {
		a.respondTestimonialError(c, err, "创建评价失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "评价已创建", "item": item})
}

// UpdateTestimonial updates an existing testimonial.
func (a *API) UpdateTestimonial(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的评价ID")
		return
	}

	item, err := a.testimonials.Update(id, testimonialInputFromForm(c))
	if err != nil {
		a.respondTestimonialError(c, err, "更新评价失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "评价已更新", "item": item})
}

// DeleteTestimonial removes a testimonial and its avatar file.
func (a *API) DeleteTestimonial(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的评价ID")
		return
	}

	if err := a.testimonials.Delete(id); err != nil {
		if errors.Is(err, service.ErrTestimonialNotFound) {
			respondError(c, http.StatusNotFound, "评价不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除评价失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "评价已删除"})
}

// ReorderTestimonials applies the submitted {id, order} pairs.
func (a *API) ReorderTestimonials(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.testimonials.Reorder(payload.toUpdates()); err != nil {
		switch {
		case errors.Is(err, service.ErrReorderInvalid):
			respondError(c, http.StatusBadRequest, "排序参数不合法")
		case errors.Is(err, service.ErrTestimonialNotFound):
			respondError(c, http.StatusNotFound, "评价不存在")
		default:
			respondError(c, http.StatusInternalServerError, "保存排序失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "排序已保存"})
}

// ToggleTestimonialFeatured flips the featured flag.
func (a *API) ToggleTestimonialFeatured(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的评价ID")
		return
	}

	item, err := a.testimonials.ToggleFeatured(id)
	if err != nil {
		if errors.Is(err, service.ErrTestimonialNotFound) {
			respondError(c, http.StatusNotFound, "评价不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "切换推荐状态失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "推荐状态已更新", "item": item})
}

// ToggleTestimonialPublished flips the published flag.
func (a *API) ToggleTestimonialPublished(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的评价ID")
		return
	}

	item, err := a.testimonials.TogglePublished(id)
	if err != nil {
		if errors.Is(err, service.ErrTestimonialNotFound) {
			respondError(c, http.StatusNotFound, "评价不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "切换发布状态失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "发布状态已更新", "item": item})
}

func (a *API) respondTestimonialError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTestimonialNotFound):
		respondError(c, http.StatusNotFound, "评价不存在")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTestimonialProjectRef):
		respondError(c, http.StatusBadRequest, "关联的项目不存在")
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
