package controllers

import (
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/gateway"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/settlement"
	"github.com/learnsphere/learnsphere/utils"
)

// currentUser pulls the authenticated user set by the auth middleware.
// Writes the 401 response itself when missing.
func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	if !ok {
		utils.LogError("Invalid user type in context")
		utils.BadRequest(c, "Invalid user in context", nil)
		return models.User{}, false
	}
	return user, true
}

func newGateway() gateway.Gateway {
	return gateway.NewRazorpay(os.Getenv("RAZORPAY_KEY"), os.Getenv("RAZORPAY_SECRET"))
}

func newOrchestrator() *settlement.Orchestrator {
	return settlement.NewOrchestrator(settlement.NewStore(config.DB), newGateway(), os.Getenv("RAZORPAY_SECRET"))
}

// paramUint parses a numeric path parameter, writing the 400 itself on
// bad input.
func paramUint(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
