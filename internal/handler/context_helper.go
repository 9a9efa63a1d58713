package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/praesidion/wpbr-intake/internal/middleware"
	"github.com/praesidion/wpbr-intake/internal/models"
)

func principalFromContext(c *gin.Context) (models.Principal, bool) {
	return middleware.PrincipalFromContext(c)
}
