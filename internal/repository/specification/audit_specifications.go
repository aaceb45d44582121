package specification

import "gorm.io/gorm"

// ByAction filters audit logs by action code
type ByAction struct {
	Action string
}

func (s ByAction) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("action = ?", s.Action)
}
