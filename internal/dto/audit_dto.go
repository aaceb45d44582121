package dto

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is the message published to the audit topic. UserId is a
// pointer so anonymized and pre-auth entries (failed logins) can omit it.
type AuditEntry struct {
	UserId       *uuid.UUID             `json:"user_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceId   string                 `json:"resource_id"`
	IpAddress    string                 `json:"ip_address"`
	UserAgent    string                 `json:"user_agent"`
	Metadata     map[string]interface{} `json:"metadata"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

type AuditLogResponse struct {
	Id           uuid.UUID              `json:"id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resourceType"`
	ResourceId   string                 `json:"resourceId"`
	IpAddress    string                 `json:"ipAddress"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    time.Time              `json:"createdAt"`
}
