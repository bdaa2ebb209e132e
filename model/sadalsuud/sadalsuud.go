// Package sadalsuud defines the entities of the volunteer-registration tool.
package sadalsuud

import (
	"errors"

	"github.com/jacentio/constellation/store"
)

// Partitions of the sadalsuud project.
const (
	EntityTrip   store.Entity = "sadalsuud-trip"
	EntitySign   store.Entity = "sadalsuud-sign"
	EntityTarget store.Entity = "sadalsuud-target"
	EntityUser   store.Entity = "sadalsuud-user"
	EntityStar   store.Entity = "sadalsuud-star"
)

// Role is a volunteer's role.
type Role string

const (
	RoleStarRain Role = "STAR_RAIN"
	RolePlanet   Role = "PLANET"
)

// User is a registered volunteer, linked to a LINE account.
type User struct {
	store.DbKey
	LineUserID  string `dynamodbav:"lineUserId" json:"lineUserId"`
	Role        Role   `dynamodbav:"role" json:"role"`
	JoinSession int    `dynamodbav:"joinSession" json:"joinSession"`
	Phone       string `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
	Name        string `dynamodbav:"name" json:"name"`
	Status      string `dynamodbav:"status,omitempty" json:"status,omitempty"`
}

// Trip is an activity volunteers sign up for.
type Trip struct {
	store.DbKey
	OwnerID string `dynamodbav:"ownerId" json:"ownerId"`
	Topic   string `dynamodbav:"topic" json:"topic"`
	Date    string `dynamodbav:"date" json:"date"`
	Place   string `dynamodbav:"place,omitempty" json:"place,omitempty"`
}

// Sign is one user's registration for a trip.
type Sign struct {
	store.DbKey
	TripID  string `dynamodbav:"tripId" json:"tripId"`
	UserID  string `dynamodbav:"userId" json:"userId"`
	Comment string `dynamodbav:"comment,omitempty" json:"comment,omitempty"`
}

// Register declares every sadalsuud entity kind in r.
func Register(r *store.Registry) error {
	return errors.Join(
		store.RegisterEntity[User](r, EntityUser),
		store.RegisterPrimaryAttribute[User](r, store.AttrCreationID),
		store.RegisterRelatedAttributeMany[User](r, "lineUserId", EntityUser),

		store.RegisterEntity[Trip](r, EntityTrip),
		store.RegisterPrimaryAttribute[Trip](r, store.AttrCreationID),
		store.RegisterRelatedAttributeOne[Trip](r, "ownerId", EntityUser),

		store.RegisterEntity[Sign](r, EntitySign),
		store.RegisterPrimaryAttribute[Sign](r, store.AttrCreationID),
		store.RegisterRelatedAttributeMany[Sign](r, "tripId", EntityTrip),
		store.RegisterRelatedAttributeOne[Sign](r, "userId", EntityUser),
	)
}
