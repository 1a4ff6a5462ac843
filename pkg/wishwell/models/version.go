package models

// Version is a release note shown to users once per release
type Version struct {
	VersionID   uint   `gorm:"primaryKey" json:"version_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"not null;default:false;index" json:"is_active"`
}
