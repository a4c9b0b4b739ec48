package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"profile-service/cache"
	"profile-service/github"
	"profile-service/models"
	"profile-service/repository"
)

var (
	// ErrInvalidHandle rejects empty or whitespace-only handles before any
	// store or source access.
	ErrInvalidHandle = errors.New("handle must not be empty")

	// ErrInvalidSortField rejects sort fields outside the whitelist.
	ErrInvalidSortField = errors.New("unsupported sort field")
)

// Source is the remote profile source consumed by the sync engine and the
// mutual-friends resolver.
type Source interface {
	GetUser(ctx context.Context, handle string) (github.User, error)
	GetFollowers(ctx context.Context, handle string) ([]github.Account, error)
	GetFollowing(ctx context.Context, handle string) ([]github.Account, error)
	GetRepos(ctx context.Context, handle string) ([]models.Repo, error)
}

// ProfileService reconciles handles against the local store and the remote
// source. It holds no persistent state of its own; the store owns the rows and
// the caches only hold expiring copies of remote list reads.
type ProfileService struct {
	repo     repository.ProfileRepository
	source   Source
	repos    *cache.TTL[[]models.Repo]
	accounts *cache.TTL[[]github.Account]
}

func NewProfileService(repo repository.ProfileRepository, source Source, cacheTTL time.Duration) *ProfileService {
	return &ProfileService{
		repo:     repo,
		source:   source,
		repos:    cache.NewTTL[[]models.Repo](cacheTTL),
		accounts: cache.NewTTL[[]github.Account](cacheTTL),
	}
}

// Lookup returns the non-deleted profile for handle from the local store
// only. A miss is repository.ErrNotFound; no remote call is made.
func (s *ProfileService) Lookup(ctx context.Context, handle string) (models.Profile, error) {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return models.Profile{}, err
	}
	return s.repo.FindByHandle(ctx, handle)
}

// FetchOrCreate looks the handle up locally and, on a miss, fetches the
// profile from the remote source once and persists it. The remote call is not
// retried; its failure propagates to the caller.
func (s *ProfileService) FetchOrCreate(ctx context.Context, handle string) (models.Profile, error) {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return models.Profile{}, err
	}

	profile, err := s.repo.FindByHandle(ctx, handle)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.Profile{}, err
	}

	user, err := s.source.GetUser(ctx, handle)
	if err != nil {
		return models.Profile{}, err
	}
	return s.repo.FindOrCreate(ctx, mapSourceUser(user))
}

// Create upserts the supplied profile with find-or-create semantics: an
// existing handle returns the stored row untouched.
func (s *ProfileService) Create(ctx context.Context, profile models.Profile) (models.Profile, error) {
	handle, err := normalizeHandle(profile.Handle)
	if err != nil {
		return models.Profile{}, err
	}
	profile.Handle = handle
	return s.repo.FindOrCreate(ctx, profile)
}

// Update merges only the supplied fields into the profile for handle.
func (s *ProfileService) Update(ctx context.Context, handle string, patch repository.ProfilePatch) (models.Profile, error) {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return models.Profile{}, err
	}
	return s.repo.Update(ctx, handle, patch)
}

func (s *ProfileService) SoftDelete(ctx context.Context, handle string) error {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, handle)
}

func (s *ProfileService) Search(ctx context.Context, filter repository.Filter, sortBy string) ([]models.Profile, error) {
	if err := validateSortBy(sortBy); err != nil {
		return nil, err
	}
	if filter.Handle != nil {
		trimmed := strings.TrimSpace(*filter.Handle)
		filter.Handle = &trimmed
	}
	return s.repo.Search(ctx, filter, sortBy)
}

func (s *ProfileService) ListAll(ctx context.Context, sortBy string) ([]models.Profile, error) {
	if err := validateSortBy(sortBy); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx, sortBy)
}

// MutualFriends computes the accounts present in both the followers and
// followings of handle, in followers-list order. Both lists come straight from
// the remote source on every call; nothing is cached and nothing is retried.
func (s *ProfileService) MutualFriends(ctx context.Context, handle string) ([]models.MutualFriend, error) {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return nil, err
	}

	followers, err := s.source.GetFollowers(ctx, handle)
	if err != nil {
		return nil, err
	}
	following, err := s.source.GetFollowing(ctx, handle)
	if err != nil {
		return nil, err
	}

	followed := make(map[string]struct{}, len(following))
	for _, account := range following {
		followed[account.Login] = struct{}{}
	}

	mutual := []models.MutualFriend{}
	for _, account := range followers {
		if _, ok := followed[account.Login]; ok {
			mutual = append(mutual, models.MutualFriend{
				Handle:    account.Login,
				AvatarURL: account.AvatarURL,
			})
		}
	}
	return mutual, nil
}

// Repos returns the handle's repository summaries through the TTL cache.
func (s *ProfileService) Repos(ctx context.Context, handle string) ([]models.Repo, error) {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return nil, err
	}
	return s.repos.GetOrFetch(ctx, handle, func(ctx context.Context) ([]models.Repo, error) {
		return s.source.GetRepos(ctx, handle)
	})
}

// Followers returns the handle's followers through the TTL cache.
func (s *ProfileService) Followers(ctx context.Context, handle string) ([]github.Account, error) {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return nil, err
	}
	return s.accounts.GetOrFetch(ctx, "followers:"+handle, func(ctx context.Context) ([]github.Account, error) {
		return s.source.GetFollowers(ctx, handle)
	})
}

// Following returns the handle's followings through the TTL cache.
func (s *ProfileService) Following(ctx context.Context, handle string) ([]github.Account, error) {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return nil, err
	}
	return s.accounts.GetOrFetch(ctx, "following:"+handle, func(ctx context.Context) ([]github.Account, error) {
		return s.source.GetFollowing(ctx, handle)
	})
}

func normalizeHandle(handle string) (string, error) {
	trimmed := strings.TrimSpace(handle)
	if trimmed == "" {
		return "", ErrInvalidHandle
	}
	return trimmed, nil
}

func validateSortBy(sortBy string) error {
	if sortBy == "" {
		return nil
	}
	if _, ok := repository.SortColumn(sortBy); !ok {
		return ErrInvalidSortField
	}
	return nil
}

func mapSourceUser(user github.User) models.Profile {
	return models.Profile{
		Handle:         user.Login,
		Bio:            user.Bio,
		Location:       user.Location,
		Blog:           user.Blog,
		PublicRepos:    user.PublicRepos,
		PublicGists:    user.PublicGists,
		FollowerCount:  user.Followers,
		FollowingCount: user.Following,
		AvatarURL:      user.AvatarURL,
		FollowersURL:   user.FollowersURL,
		FollowingURL:   user.FollowingURL,
		ReposURL:       user.ReposURL,
	}
}
