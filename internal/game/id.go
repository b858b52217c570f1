package game

import "github.com/google/uuid"

// newPlayerId mints a player identity. original_source assigns player ids
// via uuid::Uuid::new_v4(); google/uuid is the idiomatic Go equivalent.
func newPlayerId() string {
	return uuid.NewString()
}
