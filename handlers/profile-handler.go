package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"profile-service/github"
	"profile-service/middleware"
	"profile-service/models"
	"profile-service/repository"
	"profile-service/service"

	"github.com/gorilla/mux"
)

type JSONResponse map[string]interface{}

type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// GetByHandleHandler serves GET /users/name/{handle}: a local lookup that
// transparently populates the store from the remote source on first sight. A
// failed source fetch on the miss path is reported as not found, not retried.
func (h *ProfileHandler) GetByHandleHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	handle := mux.Vars(r)["handle"]

	profile, err := h.svc.FetchOrCreate(r.Context(), handle)
	if err != nil {
		if errors.Is(err, service.ErrInvalidHandle) {
			return middleware.NewAppError(http.StatusBadRequest, "Handle is required", err)
		}
		var sourceErr *github.SourceError
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, github.ErrUserNotFound) || errors.As(err, &sourceErr) {
			return middleware.NewAppError(http.StatusNotFound, "User not found", err)
		}
		log.Printf("Error fetching profile %q: %v", handle, err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	return json.NewEncoder(w).Encode(profile)
}

// CreateHandler serves POST /users. An already-existing handle is not a
// conflict; the stored row is returned untouched.
func (h *ProfileHandler) CreateHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")

	var profile models.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}

	created, err := h.svc.Create(r.Context(), profile)
	if err != nil {
		if errors.Is(err, service.ErrInvalidHandle) {
			return middleware.NewAppError(http.StatusBadRequest, "Handle is required", err)
		}
		log.Printf("Error creating profile: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(created)
}

// UpdateHandler serves PUT /users/{handle}: a partial merge of only the
// supplied fields.
func (h *ProfileHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	handle := mux.Vars(r)["handle"]

	var patch repository.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}

	updated, err := h.svc.Update(r.Context(), handle, patch)
	if err != nil {
		return mapProfileError(err, handle)
	}

	return json.NewEncoder(w).Encode(updated)
}

// DeleteHandler serves DELETE /users/{handle}: soft delete, the row is
// retained but excluded from every read.
func (h *ProfileHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) error {
	handle := mux.Vars(r)["handle"]

	if err := h.svc.SoftDelete(r.Context(), handle); err != nil {
		return mapProfileError(err, handle)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// SearchHandler serves GET /users/search with exact-match query filters and an
// optional sortBy field.
func (h *ProfileHandler) SearchHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")

	filter, err := filterFromQuery(r)
	if err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid filter value", err)
	}

	profiles, err := h.svc.Search(r.Context(), filter, r.URL.Query().Get("sortBy"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidSortField) {
			return middleware.NewAppError(http.StatusBadRequest, "Unsupported sort field", err)
		}
		log.Printf("Error searching profiles: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	return json.NewEncoder(w).Encode(profiles)
}

// ListHandler serves GET /users with an optional sortBy field.
func (h *ProfileHandler) ListHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")

	profiles, err := h.svc.ListAll(r.Context(), r.URL.Query().Get("sortBy"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidSortField) {
			return middleware.NewAppError(http.StatusBadRequest, "Unsupported sort field", err)
		}
		log.Printf("Error listing profiles: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	return json.NewEncoder(w).Encode(profiles)
}

// MutualFriendsHandler serves GET /users/mutual-friends/{handle}.
func (h *ProfileHandler) MutualFriendsHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	handle := mux.Vars(r)["handle"]

	mutual, err := h.svc.MutualFriends(r.Context(), handle)
	if err != nil {
		return mapSourceError(err, handle)
	}

	return json.NewEncoder(w).Encode(JSONResponse{"mutual": mutual})
}

// ReposHandler serves GET /users/repos/{handle} from the TTL cache.
func (h *ProfileHandler) ReposHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	handle := mux.Vars(r)["handle"]

	repos, err := h.svc.Repos(r.Context(), handle)
	if err != nil {
		return mapSourceError(err, handle)
	}

	return json.NewEncoder(w).Encode(repos)
}

// FollowersHandler serves GET /users/followers/{handle} from the TTL cache.
func (h *ProfileHandler) FollowersHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	handle := mux.Vars(r)["handle"]

	followers, err := h.svc.Followers(r.Context(), handle)
	if err != nil {
		return mapSourceError(err, handle)
	}

	return json.NewEncoder(w).Encode(followers)
}

// FollowingHandler serves GET /users/following/{handle} from the TTL cache.
func (h *ProfileHandler) FollowingHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	handle := mux.Vars(r)["handle"]

	following, err := h.svc.Following(r.Context(), handle)
	if err != nil {
		return mapSourceError(err, handle)
	}

	return json.NewEncoder(w).Encode(following)
}

func mapProfileError(err error, handle string) error {
	switch {
	case errors.Is(err, service.ErrInvalidHandle):
		return middleware.NewAppError(http.StatusBadRequest, "Handle is required", err)
	case errors.Is(err, repository.ErrNotFound):
		return middleware.NewAppError(http.StatusNotFound, "User not found", err)
	default:
		log.Printf("Error handling profile %q: %v", handle, err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}

func mapSourceError(err error, handle string) error {
	switch {
	case errors.Is(err, service.ErrInvalidHandle):
		return middleware.NewAppError(http.StatusBadRequest, "Handle is required", err)
	case errors.Is(err, github.ErrUserNotFound):
		return middleware.NewAppError(http.StatusNotFound, "User not found", err)
	default:
		log.Printf("Source error for %q: %v", handle, err)
		return middleware.NewAppError(http.StatusBadGateway, "Could not reach the profile source, try again later", err)
	}
}

func filterFromQuery(r *http.Request) (repository.Filter, error) {
	query := r.URL.Query()
	var filter repository.Filter

	setString := func(key string, target **string) {
		if query.Has(key) {
			value := query.Get(key)
			*target = &value
		}
	}
	setString("handle", &filter.Handle)
	setString("bio", &filter.Bio)
	setString("location", &filter.Location)
	setString("blog", &filter.Blog)

	setInt := func(key string, target **int) error {
		if !query.Has(key) {
			return nil
		}
		value, err := strconv.Atoi(query.Get(key))
		if err != nil {
			return err
		}
		*target = &value
		return nil
	}
	for key, target := range map[string]**int{
		"publicRepos":    &filter.PublicRepos,
		"publicGists":    &filter.PublicGists,
		"followerCount":  &filter.FollowerCount,
		"followingCount": &filter.FollowingCount,
	} {
		if err := setInt(key, target); err != nil {
			return repository.Filter{}, err
		}
	}

	return filter, nil
}
