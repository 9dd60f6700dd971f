package chat

import "github.com/google/uuid"

// IDSource produces session identifiers. It is called exactly once per
// controller.
type IDSource func() string

// UUIDSource returns random (v4) UUIDs backed by crypto/rand.
func UUIDSource() string {
	return uuid.NewString()
}
