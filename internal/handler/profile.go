package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devconnector/internal/httputil"
	"devconnector/internal/model"
)

// Profiles is implemented by service.ProfileService.
type Profiles interface {
	List(ctx context.Context) ([]model.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	Create(ctx context.Context, userID string, req *model.ProfileRequest) (*model.Profile, error)
	Update(ctx context.Context, userID string, req *model.ProfileRequest) (*model.Profile, error)
	AddExperience(ctx context.Context, userID string, req *model.ExperienceRequest) (*model.Profile, error)
	UpdateExperience(ctx context.Context, userID, experienceID string, req *model.ExperienceRequest) (*model.Profile, error)
	DeleteExperience(ctx context.Context, userID, experienceID string) (*model.Profile, error)
	AddEducation(ctx context.Context, userID string, req *model.EducationRequest) (*model.Profile, error)
	UpdateEducation(ctx context.Context, userID, educationID string, req *model.EducationRequest) (*model.Profile, error)
	DeleteEducation(ctx context.Context, userID, educationID string) (*model.Profile, error)
}

// Repos lists a GitHub user's latest repositories.
type Repos interface {
	Repos(ctx context.Context, username string) ([]model.GithubRepo, error)
}

type ProfileHandler struct {
	profiles Profiles
	github   Repos
}

func NewProfileHandler(profiles Profiles, github Repos) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, github: github}
}

// List handles GET /profiles/all
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Get all profiles successfully", httputil.Envelope{"profiles": profiles})
}

// Me handles GET /profiles/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Get the user's profile successfully", httputil.Envelope{"profile": profile})
}

// ByUser handles GET /profiles/{userId}
func (h *ProfileHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetByUserID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "Profile not found")
			return
		}
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Get the user's profile successfully", httputil.Envelope{"profile": profile})
}

// Create handles POST /profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profiles.Create(r.Context(), userID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, "Created a new profile successfully", httputil.Envelope{"profile": profile})
}

// Update handles PUT /profiles
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profiles.Update(r.Context(), userID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "You have successfully updated your profile", httputil.Envelope{"profile": profile})
}

// AddExperience handles POST /profiles/experience
func (h *ProfileHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.ExperienceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profiles.AddExperience(r.Context(), userID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "You have successfully created an experience to your profile", httputil.Envelope{"profile": profile})
}

// UpdateExperience handles PUT /profiles/experience/{id}
func (h *ProfileHandler) UpdateExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.ExperienceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profiles.UpdateExperience(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "You have successfully updated an experience", httputil.Envelope{"profile": profile})
}

// DeleteExperience handles DELETE /profiles/experience/{id}
func (h *ProfileHandler) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.DeleteExperience(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "You have successfully deleted an experience", httputil.Envelope{"profile": profile})
}

// AddEducation handles POST /profiles/education
func (h *ProfileHandler) AddEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.EducationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profiles.AddEducation(r.Context(), userID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "You have successfully created an education to your profile", httputil.Envelope{"profile": profile})
}

// UpdateEducation handles PUT /profiles/education/{id}
func (h *ProfileHandler) UpdateEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.EducationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profiles.UpdateEducation(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "You have successfully updated an education", httputil.Envelope{"profile": profile})
}

// DeleteEducation handles DELETE /profiles/education/{id}
func (h *ProfileHandler) DeleteEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.DeleteEducation(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "You have successfully deleted an education", httputil.Envelope{"profile": profile})
}

// Github handles GET /profiles/github/{username}
func (h *ProfileHandler) Github(w http.ResponseWriter, r *http.Request) {
	repos, err := h.github.Repos(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Get the user's five latest repositories successfully", httputil.Envelope{"repos": repos})
}
