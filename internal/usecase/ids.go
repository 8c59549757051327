package usecase

import "github.com/oklog/ulid/v2"

// newID returns a ulid. Ids are lexicographically ordered by creation time,
// which the oldest-first listing queries depend on.
func newID() string {
	return ulid.Make().String()
}
