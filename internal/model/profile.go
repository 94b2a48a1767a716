package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"devconnector/internal/validation"
)

// Social holds optional social network links. Stored as JSONB in Postgres
// and as an embedded document in Mongo.
type Social struct {
	Youtube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Linkedin  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Weibo     string `bson:"weibo,omitempty" json:"weibo,omitempty"`
}

func (s Social) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Social) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = Social{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("social: unsupported scan type %T", src)
	}
}

// Experience is one job entry of a profile.
type Experience struct {
	ID          string     `db:"id" bson:"_id" json:"_id"`
	ProfileID   string     `db:"profile_id" bson:"-" json:"-"`
	Title       string     `db:"title" bson:"title" json:"title"`
	Company     string     `db:"company" bson:"company" json:"company"`
	Location    string     `db:"location" bson:"location,omitempty" json:"location,omitempty"`
	From        time.Time  `db:"from_date" bson:"from" json:"from"`
	To          *time.Time `db:"to_date" bson:"to" json:"to"`
	Current     bool       `db:"is_current" bson:"current" json:"current"`
	Description string     `db:"description" bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time  `db:"created_at" bson:"created_at" json:"-"`
}

// Education is one school entry of a profile.
type Education struct {
	ID           string     `db:"id" bson:"_id" json:"_id"`
	ProfileID    string     `db:"profile_id" bson:"-" json:"-"`
	School       string     `db:"school" bson:"school" json:"school"`
	Degree       string     `db:"degree" bson:"degree" json:"degree"`
	FieldOfStudy string     `db:"field_of_study" bson:"fieldofstudy" json:"fieldofstudy"`
	From         time.Time  `db:"from_date" bson:"from" json:"from"`
	To           *time.Time `db:"to_date" bson:"to" json:"to"`
	Current      bool       `db:"is_current" bson:"current" json:"current"`
	Description  string     `db:"description" bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt    time.Time  `db:"created_at" bson:"created_at" json:"-"`
}

// Profile is a developer profile. One per user.
// Experience and Education are ordered newest first.
type Profile struct {
	ID             string         `db:"id" bson:"_id" json:"_id"`
	UserID         string         `db:"user_id" bson:"user" json:"-"`
	Status         string         `db:"status" bson:"status" json:"status"`
	Company        string         `db:"company" bson:"company,omitempty" json:"company,omitempty"`
	Website        string         `db:"website" bson:"website,omitempty" json:"website,omitempty"`
	Location       string         `db:"location" bson:"location,omitempty" json:"location,omitempty"`
	Skills         pq.StringArray `db:"skills" bson:"skills" json:"skills"`
	GithubUsername string         `db:"github_username" bson:"githubusername,omitempty" json:"githubusername,omitempty"`
	Bio            string         `db:"bio" bson:"bio,omitempty" json:"bio,omitempty"`
	Social         Social         `db:"social" bson:"social" json:"social"`
	Experience     []Experience   `db:"-" bson:"experience" json:"experience"`
	Education      []Education    `db:"-" bson:"education" json:"education"`
	CreatedAt      time.Time      `db:"created_at" bson:"date" json:"date"`

	// Joined field
	User *UserSummary `db:"-" bson:"-" json:"user"`
}

// ProfileRequest is the body of create and update profile. Skills arrive as
// a comma separated string.
type ProfileRequest struct {
	Status         string `json:"status"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Skills         string `json:"skills"`
	GithubUsername string `json:"githubusername"`
	Bio            string `json:"bio"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
	Weibo          string `json:"weibo"`
}

// ToProfile validates the request and builds the top-level profile fields.
func (r *ProfileRequest) ToProfile(userID string) (*Profile, error) {
	var errs validation.Errors
	validation.Required(&errs, "status", r.Status, validation.MsgStatusRequired)
	skills := validation.ParseSkills(r.Skills)
	if len(skills) == 0 {
		errs.Add("skills", validation.MsgSkillsRequired, r.Skills)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &Profile{
		UserID:         userID,
		Status:         strings.TrimSpace(r.Status),
		Company:        strings.TrimSpace(r.Company),
		Website:        strings.TrimSpace(r.Website),
		Location:       strings.TrimSpace(r.Location),
		Skills:         skills,
		GithubUsername: strings.TrimSpace(r.GithubUsername),
		Bio:            strings.TrimSpace(r.Bio),
		Social: Social{
			Youtube:   strings.TrimSpace(r.Youtube),
			Twitter:   strings.TrimSpace(r.Twitter),
			Facebook:  strings.TrimSpace(r.Facebook),
			Linkedin:  strings.TrimSpace(r.Linkedin),
			Instagram: strings.TrimSpace(r.Instagram),
			Weibo:     strings.TrimSpace(r.Weibo),
		},
		Experience: []Experience{},
		Education:  []Education{},
	}, nil
}

// ExperienceRequest is the body of add and update experience.
type ExperienceRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// ToExperience validates the request. When Current is set, To is dropped.
func (r *ExperienceRequest) ToExperience() (*Experience, error) {
	var errs validation.Errors
	validation.Required(&errs, "title", r.Title, validation.MsgTitleRequired)
	validation.Required(&errs, "company", r.Company, validation.MsgCompanyRequired)
	from, to := validation.CheckDateRange(&errs, r.From, r.To, r.Current)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &Experience{
		Title:       strings.TrimSpace(r.Title),
		Company:     strings.TrimSpace(r.Company),
		Location:    strings.TrimSpace(r.Location),
		From:        from,
		To:          to,
		Current:     r.Current,
		Description: strings.TrimSpace(r.Description),
	}, nil
}

// EducationRequest is the body of add and update education.
type EducationRequest struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func (r *EducationRequest) ToEducation() (*Education, error) {
	var errs validation.Errors
	validation.Required(&errs, "school", r.School, validation.MsgSchoolRequired)
	validation.Required(&errs, "degree", r.Degree, validation.MsgDegreeRequired)
	validation.Required(&errs, "fieldofstudy", r.FieldOfStudy, validation.MsgFieldOfStudyRequired)
	from, to := validation.CheckDateRange(&errs, r.From, r.To, r.Current)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &Education{
		School:       strings.TrimSpace(r.School),
		Degree:       strings.TrimSpace(r.Degree),
		FieldOfStudy: strings.TrimSpace(r.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      r.Current,
		Description:  strings.TrimSpace(r.Description),
	}, nil
}

// GithubRepo is the subset of the GitHub repository payload relayed to clients.
type GithubRepo struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	HTMLURL         string `json:"html_url"`
	Description     string `json:"description"`
	Language        string `json:"language"`
	StargazersCount int    `json:"stargazers_count"`
	WatchersCount   int    `json:"watchers_count"`
	ForksCount      int    `json:"forks_count"`
	CreatedAt       string `json:"created_at"`
}

// Profile errors
var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileExists      = errors.New("profile already exists")
	ErrExperienceNotFound = errors.New("experience not found")
	ErrEducationNotFound  = errors.New("education not found")
	ErrGithubNotFound     = errors.New("github profile not found")
	ErrGithubUnavailable  = errors.New("github api unavailable")
)
