package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Area is an organizational unit. Director and C-Level are the designated
// approvers for steps targeting the area; Leader is informational only and
// never grants approval rights.
type Area struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	DirectorID *uuid.UUID `gorm:"type:uuid" json:"director_id"`
	Director   *User      `gorm:"foreignKey:DirectorID" json:"director,omitempty"`
	CLevelID   *uuid.UUID `gorm:"type:uuid" json:"c_level_id"`
	CLevel     *User      `gorm:"foreignKey:CLevelID" json:"c_level,omitempty"`
	LeaderID   *uuid.UUID `gorm:"type:uuid" json:"leader_id"`
	Leader     *User      `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (a *Area) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
