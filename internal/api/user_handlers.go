package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axellelanca/linkshelf/internal/services"
)

func MeHandler(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Me(c.Request.Context(), viewerFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// UpdateMeHandler renames the caller and/or swaps their avatar.
func UpdateMeHandler(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ProfileUpdate
		if err := c.ShouldBindJSON(&in); err != nil {
			respondBadBody(c, err)
			return
		}
		out, err := svc.UpdateMe(c.Request.Context(), viewerFrom(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

type checkNicknameRequest struct {
	Nickname string `json:"nickname"`
}

func CheckNicknameHandler(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkNicknameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadBody(c, err)
			return
		}
		out, err := svc.CheckNickname(c.Request.Context(), viewerFrom(c), req.Nickname)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func PresignAvatarHandler(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.UploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadBody(c, err)
			return
		}
		up, err := svc.PresignAvatar(c.Request.Context(), viewerFrom(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, up)
	}
}
