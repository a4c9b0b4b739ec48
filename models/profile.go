package models

import "time"

// Profile is the locally cached copy of a GitHub account's public data.
// Handle is the unique business key; ID is assigned by the repository at insert.
type Profile struct {
	ID             string    `json:"id"`
	Handle         string    `json:"handle"`
	Bio            string    `json:"bio,omitempty"`
	Location       string    `json:"location,omitempty"`
	Blog           string    `json:"blog,omitempty"`
	PublicRepos    int       `json:"publicRepos"`
	PublicGists    int       `json:"publicGists"`
	FollowerCount  int       `json:"followerCount"`
	FollowingCount int       `json:"followingCount"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	FollowersURL   string    `json:"followersUrl,omitempty"`
	FollowingURL   string    `json:"followingUrl,omitempty"`
	ReposURL       string    `json:"reposUrl,omitempty"`
	IsDeleted      bool      `json:"isDeleted"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
