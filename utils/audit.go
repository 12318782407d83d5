package utils

import (
	"convention-scheduler-server/models"
	"convention-scheduler-server/storage"
	"encoding/json"
	"log"
	"net"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// Audit records a schedule change. Nothing is written when the server runs
// without a database.
func Audit(ctx iris.Context, conventionID uint, action, resourceType string, resourceID uint, before interface{}, after interface{}) {
	if storage.DB == nil {
		return
	}
	var beforeStr, afterStr string
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			beforeStr = string(b)
		}
	}
	if after != nil {
		if a, err := json.Marshal(after); err == nil {
			afterStr = string(a)
		}
	}
	var organizerID uint
	if tok := jsonWT.Get(ctx); tok != nil {
		if at, ok := tok.(*AccessToken); ok {
			organizerID = at.ID
		}
	}
	entry := models.AuditLog{
		OrganizerID:  organizerID,
		ConventionID: conventionID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BeforeJSON:   beforeStr,
		AfterJSON:    afterStr,
		IPAddress:    clientIP(ctx),
	}
	if err := storage.DB.Create(&entry).Error; err != nil {
		log.Printf("❌ Failed to write audit log: %v", err)
	}
}

func clientIP(ctx iris.Context) string {
	if ip := ctx.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	ip, _, _ := net.SplitHostPort(ctx.RemoteAddr())
	return ip
}
