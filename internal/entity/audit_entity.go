package entity

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionRegister          AuditAction = "register"
	AuditActionLogin             AuditAction = "login"
	AuditActionLoginFailed       AuditAction = "login_failed"
	AuditActionLogout            AuditAction = "logout"
	AuditActionAccessUserData    AuditAction = "access_user_data"
	AuditActionExportUserData    AuditAction = "export_user_data"
	AuditActionDeleteUserAccount AuditAction = "delete_user_account"
	AuditActionCreateNote        AuditAction = "create_note"
	AuditActionUpdateNote        AuditAction = "update_note"
	AuditActionDeleteNote        AuditAction = "delete_note"
	AuditActionUploadFile        AuditAction = "upload_file"
	AuditActionDeleteFile        AuditAction = "delete_file"
)

// AuditLog rows survive the user they reference: when the owning account is
// gone the UserId is nulled rather than the entry dropped.
type AuditLog struct {
	Id           uuid.UUID
	UserId       *uuid.UUID
	Action       AuditAction
	ResourceType string
	ResourceId   string
	IpAddress    string
	UserAgent    string
	Metadata     map[string]interface{}
	CreatedAt    time.Time
}
