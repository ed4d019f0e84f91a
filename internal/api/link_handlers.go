package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axellelanca/linkshelf/internal/services"
)

type createLinksRequest struct {
	Links []services.LinkInput `json:"links" binding:"required"`
}

// CreateLinksHandler creates several links at once.
// Body: {"links": [{"title", "url", "description", "collection"}]}
func CreateLinksHandler(svc *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createLinksRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadBody(c, err)
			return
		}
		out, err := svc.CreateLinks(c.Request.Context(), viewerFrom(c), req.Links)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"links": out})
	}
}

// BatchLinksHandler applies additions, updates and deletions in one transaction.
func BatchLinksHandler(svc *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadBody(c, err)
			return
		}
		res, err := svc.ApplyBatch(c.Request.Context(), viewerFrom(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func GetLinkHandler(svc *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		out, err := svc.GetLink(c.Request.Context(), viewerFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func UpdateLinkHandler(svc *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var in services.LinkUpdate
		if err := c.ShouldBindJSON(&in); err != nil {
			respondBadBody(c, err)
			return
		}
		out, err := svc.UpdateLink(c.Request.Context(), viewerFrom(c), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func DeleteLinkHandler(svc *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := svc.DeleteLink(c.Request.Context(), viewerFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
