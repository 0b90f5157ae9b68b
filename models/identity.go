package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Identity is the persisted account document shared by all three roles.
// Role-specific fields are omitempty so an admin document never carries
// patient vitals and vice versa. A session is valid only while its token
// string is present in Tokens.
type Identity struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	// NameKey is the accent-folded lowercase name; maintained by the store
	// for case/accent-insensitive find-by-name.
	NameKey      string        `bson:"nameKey,omitempty" json:"-"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash" json:"-"` // never expose
	Gender       string        `bson:"gender,omitempty" json:"gender,omitempty"`
	PictureURL   string        `bson:"pictureUrl,omitempty" json:"pictureUrl,omitempty"`
	Address      string        `bson:"address,omitempty" json:"address,omitempty"`
	City         string        `bson:"city,omitempty" json:"city,omitempty"`
	PhoneNumber  string        `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	DateOfBirth  string        `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`

	// Patient vitals.
	Weight    float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	Height    float64 `bson:"height,omitempty" json:"height,omitempty"`
	BloodType string  `bson:"bloodType,omitempty" json:"bloodType,omitempty"`

	// Doctor clinic details.
	ClinicName     string  `bson:"clinicName,omitempty" json:"clinicName,omitempty"`
	ClinicAddress  string  `bson:"clinicAddress,omitempty" json:"clinicAddress,omitempty"`
	WorkHours      string  `bson:"workHours,omitempty" json:"workHours,omitempty"`
	Rate           float64 `bson:"rate,omitempty" json:"rate,omitempty"`
	Specialization string  `bson:"specialization,omitempty" json:"specialization,omitempty"`

	// Status is the doctor activation flag: false means pending approval.
	Status bool `bson:"status" json:"status"`
	// IsBlocked gates patient login, self-update and self-delete.
	IsBlocked bool `bson:"isBlocked" json:"isBlocked"`

	Tokens []string `bson:"tokens" json:"-"`

	// Password-reset flow state (patients only).
	PasswordResetToken string `bson:"passwordResetToken,omitempty" json:"-"`
	ChangePassword     bool   `bson:"changePassword" json:"-"`

	LastLogin time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasToken reports whether the given session token is still listed.
func (i *Identity) HasToken(token string) bool {
	for _, t := range i.Tokens {
		if t == token {
			return true
		}
	}
	return false
}
