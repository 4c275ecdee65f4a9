package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/devfolio/internal/service"
	"github.com/gin-gonic/gin"
)

// certificationInputFromForm 从 multipart 表单组装证书输入。
func certificationInputFromForm(c *gin.Context) (service.CertificationInput, error) {
	issueDate, err := formDate(c, "issue_date")
	if err != nil {
		return service.CertificationInput{}, err
	}
	expiryDate, err := formOptionalDate(c, "expiry_date")
	if err != nil {
		return service.CertificationInput{}, err
	}

	return service.CertificationInput{
		Name:                formString(c, "name"),
		IssuingOrganization: formString(c, "issuing_organization"),
		CredentialID:        formString(c, "credential_id"),
		CredentialURL:       formString(c, "credential_url"),
		IssueDate:           issueDate,
		ExpiryDate:          expiryDate,
		DoesNotExpire:       formBool(c, "does_not_expire"),
		SortOrder:           formOptionalInt(c, "sort_order"),
		BadgeImage:          formImagePatch(c, "badge_image"),
	}, nil
}

// ShowCertificationManagement renders the admin certification management page.
func (a *API) ShowCertificationManagement(c *gin.Context) {
	items, err := a.certifications.ListAll()
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "certification_manage.html", gin.H{
			"title": "证书管理",
			"error": "加载证书列表失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "certification_manage.html", gin.H{
		"title": "证书管理",
		"items": items,
	})
}

// ListCertifications returns certifications, optionally filtered by validity.
func (a *API) ListCertifications(c *gin.Context) {
	items, err := a.certifications.List(c.Query("filter"), time.Now())
	if err != nil {
		if errors.Is(err, service.ErrCertificationFilterInvalid) {
			respondError(c, http.StatusBadRequest, "筛选条件无效")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取证书列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateCertification creates a new certification.
func (a *API) CreateCertification(c *gin.Context) {
	input, err := certificationInputFromForm(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "日期格式不合法")
		return
	}

	item, err := a.certifications.Create(input)
	if err != nil {
		a.respondCertificationError(c, err, "创建证书失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "证书已创建", "item": item})
}

// UpdateCertification updates an existing certification.
func (a *API) UpdateCertification(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的证书ID")
		return
	}

	input, err := certificationInputFromForm(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "日期格式不合法")
		return
	}

	item, err := a.certifications.Update(id, input)
	if err != nil {
		a.respondCertificationError(c, err, "更新证书失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "证书已更新", "item": item})
}

// DeleteCertification removes a certification and its badge file.
func (a *API) DeleteCertification(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的证书ID")
		return
	}

	if err := a.certifications.Delete(id); err != nil {
		if errors.Is(err, service.ErrCertificationNotFound) {
			respondError(c, http.StatusNotFound, "证书不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除证书失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "证书已删除"})
}

// ReorderCertifications applies the submitted {id, order} pairs.
func (a *API) ReorderCertifications(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.certifications.Reorder(payload.toUpdates()); err != nil {
		switch {
		case errors.Is(err, service.ErrReorderInvalid):
			respondError(c, http.StatusBadRequest, "排序参数不合法")
		case errors.Is(err, service.ErrCertificationNotFound):
			respondError(c, http.StatusNotFound, "证书不存在")
		default:
			respondError(c, http.StatusInternalServerError, "保存排序失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "排序已保存"})
}

func (a *API) respondCertificationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrCertificationNotFound):
		respondError(c, http.StatusNotFound, "证书不存在")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
