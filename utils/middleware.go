package utils

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// OrganizerOnlyMiddleware ensures the requester can edit convention schedules
func OrganizerOnlyMiddleware(ctx iris.Context) {
	claims, ok := jwt.Get(ctx).(*AccessToken)
	if !ok || claims == nil {
		ctx.StatusCode(iris.StatusUnauthorized)
		ctx.JSON(iris.Map{"success": false, "error": "unauthorized"})
		return
	}
	role := claims.Role
	if role != "organizer" && role != "admin" {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"success": false, "error": "forbidden", "message": "organizer access required"})
		return
	}
	// Ensure organizerID is available to downstream handlers
	ctx.Values().Set("organizerID", claims.ID)
	ctx.Next()
}
