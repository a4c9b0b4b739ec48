package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"profile-service/models"

	"github.com/google/uuid"
)

// ErrNotFound reports that no non-deleted profile matches the requested
// handle. It is a normal outcome for lookups, not an exceptional one.
var ErrNotFound = errors.New("profile not found")

// ProfilePatch carries the fields of a partial update. Nil fields are left
// unchanged.
type ProfilePatch struct {
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	Blog           *string `json:"blog"`
	PublicRepos    *int    `json:"publicRepos"`
	PublicGists    *int    `json:"publicGists"`
	FollowerCount  *int    `json:"followerCount"`
	FollowingCount *int    `json:"followingCount"`
	AvatarURL      *string `json:"avatarUrl"`
	FollowersURL   *string `json:"followersUrl"`
	FollowingURL   *string `json:"followingUrl"`
	ReposURL       *string `json:"reposUrl"`
}

// Filter is an exact-match search filter. Nil fields do not constrain the
// result; the zero Filter matches every non-deleted profile.
type Filter struct {
	Handle         *string
	Bio            *string
	Location       *string
	Blog           *string
	PublicRepos    *int
	PublicGists    *int
	FollowerCount  *int
	FollowingCount *int
}

// ProfileRepository is the store behind the sync engine: one durable table of
// profiles keyed by handle, with soft delete.
type ProfileRepository interface {
	FindByHandle(ctx context.Context, handle string) (models.Profile, error)
	FindOrCreate(ctx context.Context, profile models.Profile) (models.Profile, error)
	Update(ctx context.Context, handle string, patch ProfilePatch) (models.Profile, error)
	SoftDelete(ctx context.Context, handle string) error
	Search(ctx context.Context, filter Filter, sortBy string) ([]models.Profile, error)
	ListAll(ctx context.Context, sortBy string) ([]models.Profile, error)
}

// sortColumns maps the JSON field names accepted in sortBy to their columns.
// Anything outside this map never reaches ORDER BY.
var sortColumns = map[string]string{
	"handle":         "handle",
	"publicRepos":    "public_repos",
	"publicGists":    "public_gists",
	"followerCount":  "follower_count",
	"followingCount": "following_count",
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
}

// SortColumn resolves a sortBy field name to its column.
func SortColumn(field string) (string, bool) {
	column, ok := sortColumns[field]
	return column, ok
}

const profileColumns = "id, handle, bio, location, blog, public_repos, public_gists, follower_count, following_count, avatar_url, followers_url, following_url, repos_url, is_deleted, created_at, updated_at"

type PostgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(database *sql.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: database}
}

func (r *PostgresProfileRepository) FindByHandle(ctx context.Context, handle string) (models.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE handle = $1 AND NOT is_deleted", handle)
	return scanProfile(row)
}

// FindOrCreate returns the existing non-deleted row for the profile's handle
// untouched, or inserts a new row from every supplied field. Existing rows are
// never merged with the incoming data; that keeps locally edited fields from
// being clobbered by stale remote data.
func (r *PostgresProfileRepository) FindOrCreate(ctx context.Context, profile models.Profile) (models.Profile, error) {
	existing, err := r.FindByHandle(ctx, profile.Handle)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.Profile{}, err
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, handle, bio, location, blog, public_repos, public_gists, follower_count, following_count, avatar_url, followers_url, following_url, repos_url, is_deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, FALSE, $14, $14)
		 ON CONFLICT DO NOTHING`,
		uuid.NewString(), profile.Handle, profile.Bio, profile.Location, profile.Blog,
		profile.PublicRepos, profile.PublicGists, profile.FollowerCount, profile.FollowingCount,
		profile.AvatarURL, profile.FollowersURL, profile.FollowingURL, profile.ReposURL, now)
	if err != nil {
		return models.Profile{}, fmt.Errorf("error inserting profile: %w", err)
	}

	// Read back so the loser of a concurrent create observes the winner's row.
	return r.FindByHandle(ctx, profile.Handle)
}

func (r *PostgresProfileRepository) Update(ctx context.Context, handle string, patch ProfilePatch) (models.Profile, error) {
	assignments := []string{"updated_at = now()"}
	args := []interface{}{}

	addAssignment := func(column string, value interface{}) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Bio != nil {
		addAssignment("bio", *patch.Bio)
	}
	if patch.Location != nil {
		addAssignment("location", *patch.Location)
	}
	if patch.Blog != nil {
		addAssignment("blog", *patch.Blog)
	}
	if patch.PublicRepos != nil {
		addAssignment("public_repos", *patch.PublicRepos)
	}
	if patch.PublicGists != nil {
		addAssignment("public_gists", *patch.PublicGists)
	}
	if patch.FollowerCount != nil {
		addAssignment("follower_count", *patch.FollowerCount)
	}
	if patch.FollowingCount != nil {
		addAssignment("following_count", *patch.FollowingCount)
	}
	if patch.AvatarURL != nil {
		addAssignment("avatar_url", *patch.AvatarURL)
	}
	if patch.FollowersURL != nil {
		addAssignment("followers_url", *patch.FollowersURL)
	}
	if patch.FollowingURL != nil {
		addAssignment("following_url", *patch.FollowingURL)
	}
	if patch.ReposURL != nil {
		addAssignment("repos_url", *patch.ReposURL)
	}

	args = append(args, handle)
	query := fmt.Sprintf(
		"UPDATE profiles SET %s WHERE handle = $%d AND NOT is_deleted RETURNING %s",
		strings.Join(assignments, ", "), len(args), profileColumns)

	row := r.db.QueryRowContext(ctx, query, args...)
	return scanProfile(row)
}

func (r *PostgresProfileRepository) SoftDelete(ctx context.Context, handle string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET is_deleted = TRUE, updated_at = now() WHERE handle = $1 AND NOT is_deleted", handle)
	if err != nil {
		return fmt.Errorf("error soft-deleting profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) Search(ctx context.Context, filter Filter, sortBy string) ([]models.Profile, error) {
	conditions := []string{"NOT is_deleted"}
	args := []interface{}{}

	addCondition := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Handle != nil {
		addCondition("handle", *filter.Handle)
	}
	if filter.Bio != nil {
		addCondition("bio", *filter.Bio)
	}
	if filter.Location != nil {
		addCondition("location", *filter.Location)
	}
	if filter.Blog != nil {
		addCondition("blog", *filter.Blog)
	}
	if filter.PublicRepos != nil {
		addCondition("public_repos", *filter.PublicRepos)
	}
	if filter.PublicGists != nil {
		addCondition("public_gists", *filter.PublicGists)
	}
	if filter.FollowerCount != nil {
		addCondition("follower_count", *filter.FollowerCount)
	}
	if filter.FollowingCount != nil {
		addCondition("following_count", *filter.FollowingCount)
	}

	query := "SELECT " + profileColumns + " FROM profiles WHERE " + strings.Join(conditions, " AND ")
	if sortBy != "" {
		column, ok := SortColumn(sortBy)
		if !ok {
			return nil, fmt.Errorf("unsupported sort field: %s", sortBy)
		}
		query += " ORDER BY " + column + " DESC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error searching profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		profile, err := scanProfileRow(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (r *PostgresProfileRepository) ListAll(ctx context.Context, sortBy string) ([]models.Profile, error) {
	return r.Search(ctx, Filter{}, sortBy)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row *sql.Row) (models.Profile, error) {
	profile, err := scanProfileRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrNotFound
	}
	return profile, err
}

func scanProfileRow(scanner rowScanner) (models.Profile, error) {
	var p models.Profile
	err := scanner.Scan(
		&p.ID, &p.Handle, &p.Bio, &p.Location, &p.Blog,
		&p.PublicRepos, &p.PublicGists, &p.FollowerCount, &p.FollowingCount,
		&p.AvatarURL, &p.FollowersURL, &p.FollowingURL, &p.ReposURL,
		&p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
