package redisstore

import (
	"context"
	"strconv"

	"github.com/platinummonkey/pulse/pkg/api"
	"github.com/platinummonkey/pulse/pkg/storage"
)

// ProfileStore is the authoritative per-user record storage. It is the
// sole source of truth; cache entries are derived, never authoritative.
type ProfileStore struct {
	client *Client
}

// NewProfileStore creates a profile store on the shared store client.
func NewProfileStore(client *Client) *ProfileStore {
	return &ProfileStore{client: client}
}

// Save overwrites the full record for the profile's user. There is no
// partial-field update path.
func (s *ProfileStore) Save(ctx context.Context, profile *api.Profile) error {
	fields := map[string]interface{}{
		"user_id": profile.UserID,
		"name":    profile.Name,
		"age":     profile.Age,
		"city":    profile.City,
	}
	if err := s.client.rdb.HSet(ctx, profileKey(profile.UserID), fields).Err(); err != nil {
		return storage.Unavailable("save profile", err)
	}
	return nil
}

// Get reads the authoritative record, bypassing any cache. An absent
// user returns ErrNotFound, distinguishable from a store failure.
func (s *ProfileStore) Get(ctx context.Context, userID int64) (*api.Profile, error) {
	fields, err := s.client.rdb.HGetAll(ctx, profileKey(userID)).Result()
	if err != nil {
		return nil, storage.Unavailable("get profile", err)
	}
	if len(fields) == 0 {
		return nil, storage.ErrNotFound
	}

	profile := &api.Profile{UserID: userID}
	profile.Name = fields["name"]
	profile.City = fields["city"]
	if v, err := strconv.Atoi(fields["age"]); err == nil {
		profile.Age = v
	}
	return profile, nil
}
