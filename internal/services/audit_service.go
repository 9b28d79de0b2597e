package services

import (
	"go.uber.org/zap"

	"pocketledger/internal/logger"
)

// auditService writes one structured line per mutating action to the
// "audit" logger.
type auditService struct {
	log *zap.SugaredLogger
}

// NewAuditService creates a new AuditServicer.
func NewAuditService() AuditServicer {
	return &auditService{log: logger.Named("audit")}
}

func (s *auditService) Log(userID, action, resourceType, resourceID string, changes map[string]any) {
	kv := []any{
		"user_id", userID,
		"action", action,
		"resource", resourceType + "/" + resourceID,
	}
	if len(changes) > 0 {
		kv = append(kv, zap.Any("changes", changes))
	}
	s.log.Infow(action, kv...)
}
