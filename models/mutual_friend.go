package models

// MutualFriend is an account present in both the followers and followings of a
// queried handle. Derived on every request, never persisted.
type MutualFriend struct {
	Handle    string `json:"handle"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
