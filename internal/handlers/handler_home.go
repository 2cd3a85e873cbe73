package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerHomeRoutes registers the informational landing route.
func registerHomeRoutes(rg *gin.RouterGroup) {
	rg.GET("/welcome", welcome)
}

// welcome godoc
// @Summary API welcome message
// @Tags home
// @Produce json
// @Success 200 {object} map[string]string
// @Router /welcome [get]
func welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the bank account API"})
}
