// Package model defines the persisted records of storerate: users, stores and
// ratings, plus the role enumeration used for access control.
package model

import (
	"fmt"
	"math"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleUser, RoleOwner}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleOwner:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts s into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

type User struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:60;not null;check:chk_users_name,length(name) >= 2 AND length(name) <= 60"`
	Email     string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password  string    `json:"-" gorm:"column:password;not null"`
	Address   string    `json:"address" gorm:"size:400"`
	Role      Role      `json:"role" gorm:"size:16;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerId   int       `json:"ownerId" gorm:"not null;index"`
	Owner     *User     `json:"-" gorm:"foreignKey:OwnerId;constraint:OnDelete:CASCADE"`
	Name      string    `json:"name" gorm:"size:60;not null"`
	Email     string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Address   string    `json:"address" gorm:"size:400;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Rating struct {
	Id                int        `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId            int        `json:"userId" gorm:"not null;uniqueIndex:idx_ratings_user_store"`
	User              *User      `json:"-" gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	StoreId           int        `json:"storeId" gorm:"not null;uniqueIndex:idx_ratings_user_store;index"`
	Store             *Store     `json:"-" gorm:"foreignKey:StoreId;constraint:OnDelete:CASCADE"`
	Score             int        `json:"score" gorm:"not null;check:chk_ratings_score,score >= 1 AND score <= 5"`
	OwnerResponse     *string    `json:"ownerResponse" gorm:"size:1000"`
	OwnerResponseDate *time.Time `json:"ownerResponseDate"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// RoundAverage rounds a mean score to two decimals, half away from zero.
func RoundAverage(avg float64) float64 {
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return 0
	}
	return math.Round(avg*100) / 100
}
