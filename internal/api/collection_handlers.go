package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/services"
)

// ListOwnedCollectionsHandler lists the caller's collections, newest first.
func ListOwnedCollectionsHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListOwned(c.Request.Context(), viewerFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func CreateCollectionHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.CollectionInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respondBadBody(c, err)
			return
		}
		out, err := svc.Create(c.Request.Context(), viewerFrom(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

func GetCollectionHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		out, err := svc.Get(c.Request.Context(), viewerFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func UpdateCollectionHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var in services.CollectionInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respondBadBody(c, err)
			return
		}
		out, err := svc.Update(c.Request.Context(), viewerFrom(c), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func DeleteCollectionHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := svc.Delete(c.Request.Context(), viewerFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// PublicFeedHandler serves public collections plus the caller's own.
// Query: filter=likes|views|latest (default likes), search, page.
func PublicFeedHandler(svc *services.CollectionService) gin.HandlerFunc {
	return feedHandler(svc, models.ScopePublicOrOwned, models.SortLikes)
}

// MyFeedHandler serves the caller's collections, latest first by default.
func MyFeedHandler(svc *services.CollectionService) gin.HandlerFunc {
	return feedHandler(svc, models.ScopeOwned, models.SortLatest)
}

// BookmarkFeedHandler serves the collections in the caller's bookmark.
func BookmarkFeedHandler(svc *services.CollectionService) gin.HandlerFunc {
	return feedHandler(svc, models.ScopeBookmarked, models.SortLatest)
}

func feedHandler(svc *services.CollectionService, scope models.FeedScope, defaultSort models.FeedSort) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := feedQuery(c, scope, defaultSort)
		if err != nil {
			respondError(c, err)
			return
		}
		page, err := svc.BuildFeed(c.Request.Context(), viewerFrom(c), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func ToggleLikeHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		created, err := svc.ToggleLike(c.Request.Context(), viewerFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		msg := "Like deleted."
		if created {
			msg = "Like created."
		}
		c.JSON(http.StatusOK, gin.H{"message": msg, "liked": created})
	}
}

func ToggleBookmarkHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		added, err := svc.ToggleBookmark(c.Request.Context(), viewerFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		status := "removed"
		if added {
			status = "added"
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	}
}

type generateShareLinkRequest struct {
	ExpireDate *int `json:"expireDate"`
}

// GenerateShareLinkHandler issues or renews a share link. Body (optional):
// {"expireDate": days}.
func GenerateShareLinkHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req generateShareLinkRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			respondBadBody(c, err)
			return
		}
		link, err := svc.GenerateShareLink(c.Request.Context(), viewerFrom(c), id, req.ExpireDate)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, link)
	}
}

func RevokeShareLinkHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := svc.RevokeShareLink(c.Request.Context(), viewerFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Share link disabled."})
	}
}

func ResolveShareLinkHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ResolveShareLink(c.Request.Context(), c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func PresignThumbnailHandler(svc *services.CollectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.UploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadBody(c, err)
			return
		}
		up, err := svc.PresignThumbnail(c.Request.Context(), viewerFrom(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, up)
	}
}
