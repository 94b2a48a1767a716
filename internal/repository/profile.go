package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devconnector/internal/model"
)

const profileSelect = `
	SELECT p.id, p.user_id, p.status, p.company, p.website, p.location, p.skills,
	       p.github_username, p.bio, p.social, p.created_at,
	       u.avatar AS user_avatar, u.email AS user_email, u.username AS user_username
	FROM profiles p
	JOIN users u ON u.id = p.user_id
`

// profileRow is a profile joined with its owner.
type profileRow struct {
	model.Profile
	UserAvatar   string `db:"user_avatar"`
	UserEmail    string `db:"user_email"`
	UserUsername string `db:"user_username"`
}

func (row *profileRow) toModel() model.Profile {
	p := row.Profile
	p.User = &model.UserSummary{
		ID:       p.UserID,
		Avatar:   row.UserAvatar,
		Email:    row.UserEmail,
		Username: row.UserUsername,
	}
	p.Experience = []model.Experience{}
	p.Education = []model.Education{}
	if p.Skills == nil {
		p.Skills = pq.StringArray{}
	}
	return p
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO profiles (id, user_id, status, company, website, location, skills, github_username, bio, social, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.UserID, p.Status, p.Company, p.Website, p.Location,
		p.Skills, p.GithubUsername, p.Bio, p.Social,
	).Scan(&p.CreatedAt)
	if err != nil {
		if uniqueViolation(err) == "profiles_user_id_key" {
			return model.ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles
		SET status = $1, company = $2, website = $3, location = $4, skills = $5,
		    github_username = $6, bio = $7, social = $8
		WHERE user_id = $9
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.Status, p.Company, p.Website, p.Location, p.Skills,
		p.GithubUsername, p.Bio, p.Social, p.UserID,
	).Scan(&p.ID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrProfileNotFound
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// GetByUserID retrieves a populated profile with experience and education.
func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if !validID(userID) {
		return nil, model.ErrProfileNotFound
	}

	var row profileRow
	err := r.db.GetContext(ctx, &row, profileSelect+` WHERE p.user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profiles := []model.Profile{row.toModel()}
	if err := r.loadEntries(ctx, profiles); err != nil {
		return nil, err
	}
	return &profiles[0], nil
}

func (r *profileRepository) List(ctx context.Context) ([]model.Profile, error) {
	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, profileSelect+` ORDER BY p.created_at DESC`); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	profiles := make([]model.Profile, len(rows))
	for i := range rows {
		profiles[i] = rows[i].toModel()
	}
	if err := r.loadEntries(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// loadEntries batch loads experience and education for the given profiles.
func (r *profileRepository) loadEntries(ctx context.Context, profiles []model.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	ids := make([]string, len(profiles))
	index := make(map[string]int, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
		index[p.ID] = i
	}

	var exps []model.Experience
	err := r.db.SelectContext(ctx, &exps, `
		SELECT id, profile_id, title, company, location, from_date, to_date, is_current, description, created_at
		FROM profile_experience
		WHERE profile_id = ANY($1)
		ORDER BY created_at DESC, id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("get profile experience: %w", err)
	}
	for _, e := range exps {
		i := index[e.ProfileID]
		profiles[i].Experience = append(profiles[i].Experience, e)
	}

	var edus []model.Education
	err = r.db.SelectContext(ctx, &edus, `
		SELECT id, profile_id, school, degree, field_of_study, from_date, to_date, is_current, description, created_at
		FROM profile_education
		WHERE profile_id = ANY($1)
		ORDER BY created_at DESC, id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("get profile education: %w", err)
	}
	for _, e := range edus {
		i := index[e.ProfileID]
		profiles[i].Education = append(profiles[i].Education, e)
	}

	return nil
}

func (r *profileRepository) AddExperience(ctx context.Context, userID string, e *model.Experience) error {
	return r.withProfile(ctx, userID, func(tx *sqlx.Tx, profileID string) error {
		e.ID = uuid.NewString()
		e.ProfileID = profileID
		e.CreatedAt = time.Now().UTC()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profile_experience (id, profile_id, title, company, location, from_date, to_date, is_current, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, e.ID, profileID, e.Title, e.Company, e.Location, e.From, e.To, e.Current, e.Description, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert experience: %w", err)
		}
		return nil
	})
}

// UpdateExperience replaces the entry's fields. Its position is kept.
func (r *profileRepository) UpdateExperience(ctx context.Context, userID string, e *model.Experience) error {
	if !validID(e.ID) {
		return model.ErrExperienceNotFound
	}
	return r.withProfile(ctx, userID, func(tx *sqlx.Tx, profileID string) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE profile_experience
			SET title = $1, company = $2, location = $3, from_date = $4, to_date = $5, is_current = $6, description = $7
			WHERE id = $8 AND profile_id = $9
		`, e.Title, e.Company, e.Location, e.From, e.To, e.Current, e.Description, e.ID, profileID)
		if err != nil {
			return fmt.Errorf("update experience: %w", err)
		}
		return expectRow(res, model.ErrExperienceNotFound)
	})
}

func (r *profileRepository) DeleteExperience(ctx context.Context, userID, experienceID string) error {
	if !validID(experienceID) {
		return model.ErrExperienceNotFound
	}
	return r.withProfile(ctx, userID, func(tx *sqlx.Tx, profileID string) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM profile_experience WHERE id = $1 AND profile_id = $2`, experienceID, profileID)
		if err != nil {
			return fmt.Errorf("delete experience: %w", err)
		}
		return expectRow(res, model.ErrExperienceNotFound)
	})
}

func (r *profileRepository) AddEducation(ctx context.Context, userID string, e *model.Education) error {
	return r.withProfile(ctx, userID, func(tx *sqlx.Tx, profileID string) error {
		e.ID = uuid.NewString()
		e.ProfileID = profileID
		e.CreatedAt = time.Now().UTC()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profile_education (id, profile_id, school, degree, field_of_study, from_date, to_date, is_current, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, e.ID, profileID, e.School, e.Degree, e.FieldOfStudy, e.From, e.To, e.Current, e.Description, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert education: %w", err)
		}
		return nil
	})
}

func (r *profileRepository) UpdateEducation(ctx context.Context, userID string, e *model.Education) error {
	if !validID(e.ID) {
		return model.ErrEducationNotFound
	}
	return r.withProfile(ctx, userID, func(tx *sqlx.Tx, profileID string) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE profile_education
			SET school = $1, degree = $2, field_of_study = $3, from_date = $4, to_date = $5, is_current = $6, description = $7
			WHERE id = $8 AND profile_id = $9
		`, e.School, e.Degree, e.FieldOfStudy, e.From, e.To, e.Current, e.Description, e.ID, profileID)
		if err != nil {
			return fmt.Errorf("update education: %w", err)
		}
		return expectRow(res, model.ErrEducationNotFound)
	})
}

func (r *profileRepository) DeleteEducation(ctx context.Context, userID, educationID string) error {
	if !validID(educationID) {
		return model.ErrEducationNotFound
	}
	return r.withProfile(ctx, userID, func(tx *sqlx.Tx, profileID string) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM profile_education WHERE id = $1 AND profile_id = $2`, educationID, profileID)
		if err != nil {
			return fmt.Errorf("delete education: %w", err)
		}
		return expectRow(res, model.ErrEducationNotFound)
	})
}

// withProfile runs fn in a transaction holding the row lock of the user's
// profile.
func (r *profileRepository) withProfile(ctx context.Context, userID string, fn func(tx *sqlx.Tx, profileID string) error) error {
	if !validID(userID) {
		return model.ErrProfileNotFound
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var profileID string
	err = tx.GetContext(ctx, &profileID, `SELECT id FROM profiles WHERE user_id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrProfileNotFound
	}
	if err != nil {
		return fmt.Errorf("lock profile: %w", err)
	}

	if err := fn(tx, profileID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
