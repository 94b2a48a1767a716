package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devconnector/internal/docstore"
	"devconnector/internal/model"
	"devconnector/internal/repository"
)

type profileRepository struct {
	profiles *mongo.Collection
	users    *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &profileRepository{
		profiles: db.Collection(docstore.Profiles),
		users:    db.Collection(docstore.Users),
	}
}

func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now()
	if p.Experience == nil {
		p.Experience = []model.Experience{}
	}
	if p.Education == nil {
		p.Education = []model.Education{}
	}

	if _, err := r.profiles.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// Update replaces the top-level fields and leaves the entries untouched.
func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	var updated model.Profile
	err := r.profiles.FindOneAndUpdate(ctx,
		bson.M{"user": p.UserID},
		bson.M{"$set": bson.M{
			"status":         p.Status,
			"company":        p.Company,
			"website":        p.Website,
			"location":       p.Location,
			"skills":         p.Skills,
			"githubusername": p.GithubUsername,
			"bio":            p.Bio,
			"social":         p.Social,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ErrProfileNotFound
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	p.ID = updated.ID
	p.CreatedAt = updated.CreatedAt
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := r.profiles.FindOne(ctx, bson.M{"user": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	profiles := []model.Profile{p}
	if err := r.populate(ctx, profiles); err != nil {
		return nil, err
	}
	return &profiles[0], nil
}

func (r *profileRepository) List(ctx context.Context) ([]model.Profile, error) {
	cur, err := r.profiles.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}

	profiles := []model.Profile{}
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	if err := r.populate(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// populate attaches the owning user summaries with one $in query.
func (r *profileRepository) populate(ctx context.Context, profiles []model.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	ids := make([]string, len(profiles))
	for i := range profiles {
		ids[i] = profiles[i].UserID
		if profiles[i].Experience == nil {
			profiles[i].Experience = []model.Experience{}
		}
		if profiles[i].Education == nil {
			profiles[i].Education = []model.Education{}
		}
	}

	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"avatar": 1, "email": 1, "username": 1}))
	if err != nil {
		return fmt.Errorf("find profile users: %w", err)
	}
	var users []model.UserSummary
	if err := cur.All(ctx, &users); err != nil {
		return fmt.Errorf("decode profile users: %w", err)
	}

	byID := make(map[string]*model.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range profiles {
		profiles[i].User = byID[profiles[i].UserID]
	}
	return nil
}

func (r *profileRepository) AddExperience(ctx context.Context, userID string, e *model.Experience) error {
	e.ID = uuid.NewString()
	e.CreatedAt = now()
	return r.pushEntry(ctx, userID, "experience", e)
}

func (r *profileRepository) UpdateExperience(ctx context.Context, userID string, e *model.Experience) error {
	existing, err := r.entryCreatedAt(ctx, userID, "experience", e.ID, model.ErrExperienceNotFound)
	if err != nil {
		return err
	}
	e.CreatedAt = existing
	return r.setEntry(ctx, userID, "experience", e.ID, e, model.ErrExperienceNotFound)
}

func (r *profileRepository) DeleteExperience(ctx context.Context, userID, experienceID string) error {
	return r.pullEntry(ctx, userID, "experience", experienceID, model.ErrExperienceNotFound)
}

func (r *profileRepository) AddEducation(ctx context.Context, userID string, e *model.Education) error {
	e.ID = uuid.NewString()
	e.CreatedAt = now()
	return r.pushEntry(ctx, userID, "education", e)
}

func (r *profileRepository) UpdateEducation(ctx context.Context, userID string, e *model.Education) error {
	existing, err := r.entryCreatedAt(ctx, userID, "education", e.ID, model.ErrEducationNotFound)
	if err != nil {
		return err
	}
	e.CreatedAt = existing
	return r.setEntry(ctx, userID, "education", e.ID, e, model.ErrEducationNotFound)
}

func (r *profileRepository) DeleteEducation(ctx context.Context, userID, educationID string) error {
	return r.pullEntry(ctx, userID, "education", educationID, model.ErrEducationNotFound)
}

// pushEntry prepends entry to the named array so the newest comes first.
func (r *profileRepository) pushEntry(ctx context.Context, userID, field string, entry interface{}) error {
	res, err := r.profiles.UpdateOne(ctx,
		bson.M{"user": userID},
		prependTo(field, entry),
	)
	if err != nil {
		return fmt.Errorf("push %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}

// setEntry replaces the matched array element in place.
func (r *profileRepository) setEntry(ctx context.Context, userID, field, entryID string, entry interface{}, notFound error) error {
	res, err := r.profiles.UpdateOne(ctx,
		elemFilter("user", userID, field, entryID),
		bson.M{"$set": bson.M{field + ".$": entry}},
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return r.missing(ctx, userID, notFound)
	}
	return nil
}

func (r *profileRepository) pullEntry(ctx context.Context, userID, field, entryID string, notFound error) error {
	res, err := r.profiles.UpdateOne(ctx,
		elemFilter("user", userID, field, entryID),
		pullByID(field, entryID),
	)
	if err != nil {
		return fmt.Errorf("pull %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return r.missing(ctx, userID, notFound)
	}
	return nil
}

func (r *profileRepository) entryCreatedAt(ctx context.Context, userID, field, entryID string, notFound error) (time.Time, error) {
	var doc struct {
		Entries []struct {
			CreatedAt time.Time `bson:"created_at"`
		} `bson:"entries"`
	}
	err := r.profiles.FindOne(ctx,
		elemFilter("user", userID, field, entryID),
		options.FindOne().SetProjection(bson.M{"entries": bson.M{"$filter": bson.M{
			"input": "$" + field,
			"cond":  bson.M{"$eq": bson.A{"$$this._id", entryID}},
		}}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, r.missing(ctx, userID, notFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("find %s: %w", field, err)
	}
	if len(doc.Entries) == 0 {
		return time.Time{}, notFound
	}
	return doc.Entries[0].CreatedAt, nil
}

// missing tells a missing profile apart from a missing entry.
func (r *profileRepository) missing(ctx context.Context, userID string, notFound error) error {
	n, err := r.profiles.CountDocuments(ctx, bson.M{"user": userID})
	if err != nil {
		return fmt.Errorf("count profiles: %w", err)
	}
	if n == 0 {
		return model.ErrProfileNotFound
	}
	return notFound
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
