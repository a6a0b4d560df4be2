package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh 24-hex object id. Every store driver uses the same
// id shape so a malformed id is detectable before any query runs.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
