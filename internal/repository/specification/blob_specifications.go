package specification

import "gorm.io/gorm"

// ByURL filters blob metadata by its exact URL
type ByURL struct {
	URL string
}

func (s ByURL) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("url = ?", s.URL)
}

// ByURLs filters blob metadata by a list of URLs
type ByURLs struct {
	URLs []string
}

func (s ByURLs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("url IN ?", s.URLs)
}
