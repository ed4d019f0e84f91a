package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axellelanca/linkshelf/internal/services"
)

func RedirectURIHandler(svc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uri": svc.RedirectURI()})
	}
}

func LogoutRedirectURIHandler(svc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uri": svc.LogoutURI()})
	}
}

type loginRequest struct {
	Code string `json:"code"`
}

// LoginHandler exchanges an authorization code for a session token.
func LoginHandler(svc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadBody(c, err)
			return
		}
		res, err := svc.Login(c.Request.Context(), req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func LogoutHandler(svc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Logout(c.Request.Context(), c.GetString(sessionTokenKey)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}
