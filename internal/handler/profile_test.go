package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/handler"
	"devconnector/internal/model"
	"devconnector/internal/transport/http/middleware"
)

// memProfiles keeps one profile per user id.
type memProfiles struct {
	byUser map[string]*model.Profile
}

func (m *memProfiles) List(ctx context.Context) ([]model.Profile, error) {
	out := []model.Profile{}
	for _, p := range m.byUser {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProfiles) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	p, ok := m.byUser[userID]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return p, nil
}

func (m *memProfiles) Create(ctx context.Context, userID string, req *model.ProfileRequest) (*model.Profile, error) {
	if _, ok := m.byUser[userID]; ok {
		return nil, model.ErrProfileExists
	}
	p, err := req.ToProfile(userID)
	if err != nil {
		return nil, err
	}
	m.byUser[userID] = p
	return p, nil
}

func (m *memProfiles) Update(ctx context.Context, userID string, req *model.ProfileRequest) (*model.Profile, error) {
	existing, err := m.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := req.ToProfile(userID)
	if err != nil {
		return nil, err
	}
	p.Experience, p.Education = existing.Experience, existing.Education
	m.byUser[userID] = p
	return p, nil
}

func (m *memProfiles) AddExperience(ctx context.Context, userID string, req *model.ExperienceRequest) (*model.Profile, error) {
	p, err := m.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	exp, err := req.ToExperience()
	if err != nil {
		return nil, err
	}
	exp.ID = "e1"
	p.Experience = append([]model.Experience{*exp}, p.Experience...)
	return p, nil
}

func (m *memProfiles) UpdateExperience(ctx context.Context, userID, experienceID string, req *model.ExperienceRequest) (*model.Profile, error) {
	p, err := m.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range p.Experience {
		if p.Experience[i].ID == experienceID {
			exp, err := req.ToExperience()
			if err != nil {
				return nil, err
			}
			exp.ID = experienceID
			p.Experience[i] = *exp
			return p, nil
		}
	}
	return nil, model.ErrExperienceNotFound
}

func (m *memProfiles) DeleteExperience(ctx context.Context, userID, experienceID string) (*model.Profile, error) {
	p, err := m.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range p.Experience {
		if p.Experience[i].ID == experienceID {
			p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)
			return p, nil
		}
	}
	return nil, model.ErrExperienceNotFound
}

func (m *memProfiles) AddEducation(ctx context.Context, userID string, req *model.EducationRequest) (*model.Profile, error) {
	p, err := m.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	edu, err := req.ToEducation()
	if err != nil {
		return nil, err
	}
	edu.ID = "d1"
	p.Education = append([]model.Education{*edu}, p.Education...)
	return p, nil
}

func (m *memProfiles) UpdateEducation(ctx context.Context, userID, educationID string, req *model.EducationRequest) (*model.Profile, error) {
	return nil, model.ErrEducationNotFound
}

func (m *memProfiles) DeleteEducation(ctx context.Context, userID, educationID string) (*model.Profile, error) {
	p, err := m.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range p.Education {
		if p.Education[i].ID == educationID {
			p.Education = append(p.Education[:i], p.Education[i+1:]...)
			return p, nil
		}
	}
	return nil, model.ErrEducationNotFound
}

type stubRepos struct {
	repos []model.GithubRepo
	err   error
}

func (s stubRepos) Repos(ctx context.Context, username string) ([]model.GithubRepo, error) {
	return s.repos, s.err
}

func profileRouter(profiles handler.Profiles, repos handler.Repos) http.Handler {
	h := handler.NewProfileHandler(profiles, repos)
	r := chi.NewRouter()
	r.Get("/profiles/all", h.List)
	r.Get("/profiles/github/{username}", h.Github)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(fixedTokens{}))
		r.Get("/profiles/me", h.Me)
		r.Post("/profiles", h.Create)
		r.Put("/profiles", h.Update)
		r.Post("/profiles/experience", h.AddExperience)
		r.Put("/profiles/experience/{id}", h.UpdateExperience)
		r.Delete("/profiles/experience/{id}", h.DeleteExperience)
		r.Post("/profiles/education", h.AddEducation)
		r.Put("/profiles/education/{id}", h.UpdateEducation)
		r.Delete("/profiles/education/{id}", h.DeleteEducation)
	})
	r.Get("/profiles/{userId}", h.ByUser)
	return r
}

var validProfile = map[string]string{"status": "Developer", "skills": "Go, SQL"}

func TestProfiles_CreateAndFetch(t *testing.T) {
	h := profileRouter(&memProfiles{byUser: map[string]*model.Profile{}}, stubRepos{})

	rec, resp := do(t, h, http.MethodGet, "/profiles/me", nil, "good-u1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "There is no profile for this user", resp.Msg)

	rec, resp = do(t, h, http.MethodPost, "/profiles", validProfile, "good-u1")
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, []string{"Go", "SQL"}, []string(resp.Profile.Skills))

	rec, _ = do(t, h, http.MethodPost, "/profiles", validProfile, "good-u1")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = do(t, h, http.MethodGet, "/profiles/u1", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "Developer", resp.Profile.Status)

	rec, resp = do(t, h, http.MethodGet, "/profiles/nobody", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Profile not found", resp.Msg)
}

func TestProfiles_CreateValidation(t *testing.T) {
	h := profileRouter(&memProfiles{byUser: map[string]*model.Profile{}}, stubRepos{})

	rec, resp := do(t, h, http.MethodPost, "/profiles", map[string]string{"skills": " , "}, "good-u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	params := []string{}
	for _, fe := range resp.Errors {
		params = append(params, fe.Param)
	}
	assert.ElementsMatch(t, []string{"status", "skills"}, params)
}

func TestProfiles_ListEmpty(t *testing.T) {
	h := profileRouter(&memProfiles{byUser: map[string]*model.Profile{}}, stubRepos{})

	rec, _ := do(t, h, http.MethodGet, "/profiles/all", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"profiles":[]`)
}

func TestProfiles_Experience(t *testing.T) {
	profiles := &memProfiles{byUser: map[string]*model.Profile{}}
	h := profileRouter(profiles, stubRepos{})
	_, _ = do(t, h, http.MethodPost, "/profiles", validProfile, "good-u1")

	exp := map[string]interface{}{"title": "Engineer", "company": "Acme", "from": "2020-01-01", "current": true}
	rec, resp := do(t, h, http.MethodPost, "/profiles/experience", exp, "good-u1")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Profile)
	require.Len(t, resp.Profile.Experience, 1)
	assert.Nil(t, resp.Profile.Experience[0].To)

	bad := map[string]interface{}{"title": "Engineer", "company": "Acme", "from": "2021-01-01", "to": "2020-01-01"}
	rec, _ = do(t, h, http.MethodPut, "/profiles/experience/e1", bad, "good-u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/profiles/experience/missing", nil, "good-u1")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = do(t, h, http.MethodDelete, "/profiles/experience/e1", nil, "good-u1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Profile.Experience)
}

func TestProfiles_Education(t *testing.T) {
	profiles := &memProfiles{byUser: map[string]*model.Profile{}}
	h := profileRouter(profiles, stubRepos{})

	edu := map[string]interface{}{"school": "MIT", "degree": "BSc", "fieldofstudy": "CS", "from": "2015-09-01", "to": "2019-06-01"}
	rec, _ := do(t, h, http.MethodPost, "/profiles/education", edu, "good-u1")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no profile yet")

	_, _ = do(t, h, http.MethodPost, "/profiles", validProfile, "good-u1")
	rec, resp := do(t, h, http.MethodPost, "/profiles/education", edu, "good-u1")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Profile.Education, 1)

	rec, resp = do(t, h, http.MethodPut, "/profiles/education/zzz", edu, "good-u1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Education not found", resp.Msg)

	rec, _ = do(t, h, http.MethodDelete, "/profiles/education/d1", nil, "good-u1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfiles_Github(t *testing.T) {
	repos := []model.GithubRepo{{ID: 1, Name: "api"}, {ID: 2, Name: "web"}}
	h := profileRouter(&memProfiles{}, stubRepos{repos: repos})

	rec, resp := do(t, h, http.MethodGet, "/profiles/github/octocat", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Repos, 2)

	h = profileRouter(&memProfiles{}, stubRepos{err: model.ErrGithubNotFound})
	rec, resp = do(t, h, http.MethodGet, "/profiles/github/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Github profile not found", resp.Msg)

	h = profileRouter(&memProfiles{}, stubRepos{err: model.ErrGithubUnavailable})
	rec, _ = do(t, h, http.MethodGet, "/profiles/github/octocat", nil, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
