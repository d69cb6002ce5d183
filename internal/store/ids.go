package store

import "go.mongodb.org/mongo-driver/bson/primitive"

// newChildID mints a push id: a hex object id, unique and ordered by creation time.
func newChildID(parent string) (string, error) {
	if _, err := Split(parent); err != nil {
		return "", err
	}
	return primitive.NewObjectID().Hex(), nil
}
