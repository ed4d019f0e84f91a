package api

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/services"
)

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return uint(id), nil
}

func feedQuery(c *gin.Context, scope models.FeedScope, defaultSort models.FeedSort) (services.FeedQuery, error) {
	q := services.FeedQuery{
		Scope:  scope,
		Search: c.Query("search"),
		Sort:   models.ParseFeedSort(c.Query("filter"), defaultSort),
		Page:   1,
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperrors.ValidationError{Field: "page", Reason: "must be a positive integer"}
		}
		q.Page = page
	}
	return q, nil
}

// bindOptionalJSON binds the body into dst, accepting an empty body.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
