package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/salon-booking-api/internal/models"
)

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// recordAudit writes an audit entry after the change it describes has been
// committed. Failures are logged and never surface to the caller.
func recordAudit(ctx context.Context, audit auditRecorder, logger *zap.Logger, actor *models.JWTClaims, action, resource, resourceID string, oldValues, newValues interface{}) {
	if audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		OldValues:  marshalAudit(oldValues),
		NewValues:  marshalAudit(newValues),
	}
	if actor != nil && actor.UserID != "" {
		userID := actor.UserID
		entry.UserID = &userID
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to write audit log", zap.String("action", action), zap.String("resource_id", resourceID), zap.Error(err))
	}
}

func marshalAudit(v interface{}) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
