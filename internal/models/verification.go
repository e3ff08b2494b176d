package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContactTypeEmail = "email"
	ContactTypePhone = "phone"
)

// VerificationRequest is one issuance cycle: a code bound to a contact,
// with its own attempt and expiry state. Contact, contact type and code
// are fixed at creation; only attempts, is_verified and verified_at change.
type VerificationRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Contact     string             `bson:"contact" json:"contact"`
	ContactType string             `bson:"contact_type" json:"contact_type"`
	Code        string             `bson:"code" json:"-"`
	IsVerified  bool               `bson:"is_verified" json:"is_verified"`
	Attempts    int                `bson:"attempts" json:"attempts"`
	ExpiresAt   *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	VerifiedAt  *time.Time         `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
