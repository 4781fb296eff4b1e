package database

import (
	"time"
)

// Game Model. One catalog entry per Roblox title, keyed externally by the
// place id shown in game URLs. Inactive games are pending admin review and
// hidden from every public listing
type Game struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(128); not null" json:"name"`
	GameID        int64     `gorm:"not null; uniqueIndex" json:"gameid"`
	ImageURL      string    `gorm:"type:text" json:"image"`
	Robux         int       `gorm:"not null; default:0" json:"robux"`
	ServerCount   int       `gorm:"not null; default:0" json:"serverCount"`
	IsActive      bool      `gorm:"not null; default:false" json:"isActive"`
	RequestedByID *uint     `json:"-"`
	RequestedBy   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Server Model. A submitted private-server link. The name is generated, never
// user supplied. Rows are write-once; editing and deletion are admin
// operations outside this service
type Server struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(64); not null" json:"name"`
	Link      string    `gorm:"type:text; not null" json:"link"`
	GameID    uint      `gorm:"not null; index" json:"-"`
	Game      Game      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatorID *uint     `gorm:"index" json:"-"`
	Creator   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	CheckedAt time.Time `json:"checkedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(32); not null; uniqueIndex" json:"username"`
	Email     string    `gorm:"type:varchar(128); not null; uniqueIndex" json:"email"`
	Password  []byte    `gorm:"type:bytea; not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session Model. One row per logged-in device. The token is the cookie
// secret; the id is what the settings UI exposes for per-session revocation
type Session struct {
	ID        string    `gorm:"type:varchar(36); primaryKey" json:"id"`
	Token     string    `gorm:"type:varchar(64); not null; uniqueIndex" json:"-"`
	UserID    uint      `gorm:"not null; index" json:"userId"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	UserAgent string    `gorm:"type:text" json:"userAgent"`
	IPAddress string    `gorm:"type:varchar(64)" json:"ipAddress"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
