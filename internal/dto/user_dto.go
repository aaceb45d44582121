package dto

import "time"

// UserDataExport is the GDPR export bundle: everything the system holds
// about one account, serialized as a single JSON document.
type UserDataExport struct {
	ExportedAt time.Time           `json:"exportedAt"`
	User       UserResponse        `json:"user"`
	Notes      []*NoteResponse     `json:"notes"`
	Files      []ExportedFile      `json:"files"`
	AuditTrail []*AuditLogResponse `json:"auditTrail"`
}

type ExportedFile struct {
	Url       string    `json:"url"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

type DeleteAccountResponse struct {
	Message string `json:"message"`
}
