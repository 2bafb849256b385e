package models

import (
	"strings"
	"time"
	"unicode"
)

// Institution is a college that students and alumni are affiliated with.
// MatchKey is the only thing compared when deciding whether two accounts share a college.
type Institution struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	MatchKey  string    `gorm:"size:100;uniqueIndex;not null" json:"match_key"`
	Students  []Student `gorm:"foreignKey:InstitutionID" json:"-"`
	Alumni    []Alumni  `gorm:"foreignKey:InstitutionID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeInstitutionName lowercases the name and strips every whitespace rune.
func NormalizeInstitutionName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}
