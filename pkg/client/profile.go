package client

import "context"

type ProfileState struct {
	Profile       *Profile
	Profiles      []Profile
	Repos         []Repo
	DataLoading   bool
	SubmitLoading bool
}

type ProfileActionType int

const (
	ProfileDataLoading ProfileActionType = iota + 1
	ProfileSubmitLoading
	ProfileReposLoaded
	ProfilesLoaded
	ProfileLoaded // own profile fetched or changed
	ProfileViewed // another user's profile
	ProfileCleared
	ProfileFailed
	ProfileAccountDeleted
)

type ProfileAction struct {
	Type     ProfileActionType
	Profile  *Profile
	Profiles []Profile
	Repos    []Repo
}

// ReduceProfile is the profile reducer.
func ReduceProfile(s ProfileState, a ProfileAction) ProfileState {
	switch a.Type {
	case ProfileDataLoading:
		s.DataLoading = true
	case ProfileSubmitLoading:
		s.SubmitLoading = true
	case ProfileReposLoaded:
		s.Repos = a.Repos
		s.DataLoading = false
	case ProfilesLoaded:
		s.Profiles = a.Profiles
		s.DataLoading = false
	case ProfileLoaded:
		s.Profile = a.Profile
		s.DataLoading = false
		s.SubmitLoading = false
	case ProfileViewed:
		s.Profile = a.Profile
		s.DataLoading = false
	case ProfileCleared, ProfileFailed, ProfileAccountDeleted:
		s.Profile = nil
		s.Repos = []Repo{}
		s.DataLoading = false
		s.SubmitLoading = false
	}
	return s
}

func cloneProfile(s ProfileState) ProfileState {
	if s.Profile != nil {
		s.Profile = copyProfile(s.Profile)
	}
	if s.Profiles != nil {
		profiles := make([]Profile, len(s.Profiles))
		for i := range s.Profiles {
			profiles[i] = *copyProfile(&s.Profiles[i])
		}
		s.Profiles = profiles
	}
	if s.Repos != nil {
		s.Repos = append([]Repo{}, s.Repos...)
	}
	return s
}

func copyProfile(p *Profile) *Profile {
	cp := *p
	if p.User != nil {
		u := *p.User
		cp.User = &u
	}
	if p.Skills != nil {
		cp.Skills = append([]string{}, p.Skills...)
	}
	if p.Experience != nil {
		cp.Experience = append([]Experience{}, p.Experience...)
	}
	if p.Education != nil {
		cp.Education = append([]Education{}, p.Education...)
	}
	return &cp
}

// ProfileContainer caches the viewed profile, the profile list and GitHub
// repositories.
type ProfileContainer struct {
	*Store[ProfileState, ProfileAction]
	api *Client
}

func NewProfileContainer(api *Client) *ProfileContainer {
	initial := ProfileState{Profiles: []Profile{}, Repos: []Repo{}, DataLoading: true}
	return &ProfileContainer{
		Store: NewStore(initial, ReduceProfile, cloneProfile),
		api:   api,
	}
}

func (c *ProfileContainer) GetRepos(ctx context.Context, username string) error {
	repos, err := c.api.GithubRepos(ctx, username)
	if err != nil {
		c.Dispatch(ProfileAction{Type: ProfileFailed})
		return err
	}
	c.Dispatch(ProfileAction{Type: ProfileReposLoaded, Repos: repos})
	return nil
}

func (c *ProfileContainer) GetAll(ctx context.Context) error {
	c.Dispatch(ProfileAction{Type: ProfileDataLoading})
	profiles, err := c.api.Profiles(ctx)
	if err != nil {
		c.Dispatch(ProfileAction{Type: ProfileFailed})
		return err
	}
	c.Dispatch(ProfileAction{Type: ProfilesLoaded, Profiles: profiles})
	return nil
}

func (c *ProfileContainer) GetByUser(ctx context.Context, userID string) error {
	c.Dispatch(ProfileAction{Type: ProfileDataLoading})
	profile, err := c.api.ProfileByUser(ctx, userID)
	if err != nil {
		c.Dispatch(ProfileAction{Type: ProfileFailed})
		return err
	}
	c.Dispatch(ProfileAction{Type: ProfileViewed, Profile: profile})
	return nil
}

// GetCurrent loads the signed-in user's profile. A 404 leaves Profile nil.
func (c *ProfileContainer) GetCurrent(ctx context.Context) error {
	c.Dispatch(ProfileAction{Type: ProfileDataLoading})
	return c.submitResult(c.api.MyProfile(ctx))
}

func (c *ProfileContainer) Create(ctx context.Context, in ProfileInput) error {
	c.Dispatch(ProfileAction{Type: ProfileSubmitLoading})
	return c.submitResult(c.api.CreateProfile(ctx, in))
}

func (c *ProfileContainer) Update(ctx context.Context, in ProfileInput) error {
	c.Dispatch(ProfileAction{Type: ProfileSubmitLoading})
	return c.submitResult(c.api.UpdateProfile(ctx, in))
}

func (c *ProfileContainer) AddExperience(ctx context.Context, in ExperienceInput) error {
	c.Dispatch(ProfileAction{Type: ProfileSubmitLoading})
	return c.submitResult(c.api.AddExperience(ctx, in))
}

func (c *ProfileContainer) UpdateExperience(ctx context.Context, id string, in ExperienceInput) error {
	c.Dispatch(ProfileAction{Type: ProfileSubmitLoading})
	return c.submitResult(c.api.UpdateExperience(ctx, id, in))
}

func (c *ProfileContainer) DeleteExperience(ctx context.Context, id string) error {
	return c.submitResult(c.api.DeleteExperience(ctx, id))
}

func (c *ProfileContainer) AddEducation(ctx context.Context, in EducationInput) error {
	c.Dispatch(ProfileAction{Type: ProfileSubmitLoading})
	return c.submitResult(c.api.AddEducation(ctx, in))
}

func (c *ProfileContainer) UpdateEducation(ctx context.Context, id string, in EducationInput) error {
	c.Dispatch(ProfileAction{Type: ProfileSubmitLoading})
	return c.submitResult(c.api.UpdateEducation(ctx, id, in))
}

func (c *ProfileContainer) DeleteEducation(ctx context.Context, id string) error {
	return c.submitResult(c.api.DeleteEducation(ctx, id))
}

// Clear drops the cached profile, typically on logout.
func (c *ProfileContainer) Clear() {
	c.Dispatch(ProfileAction{Type: ProfileCleared})
}

// DeleteAccount removes the account server side and clears the session
// token. Callers should also Logout their AuthContainer.
func (c *ProfileContainer) DeleteAccount(ctx context.Context) error {
	if err := c.api.DeleteAccount(ctx); err != nil {
		c.Dispatch(ProfileAction{Type: ProfileFailed})
		return err
	}
	c.api.Tokens().ClearToken()
	c.Dispatch(ProfileAction{Type: ProfileAccountDeleted})
	return nil
}

func (c *ProfileContainer) submitResult(profile *Profile, err error) error {
	if err != nil {
		c.Dispatch(ProfileAction{Type: ProfileFailed})
		return err
	}
	c.Dispatch(ProfileAction{Type: ProfileLoaded, Profile: profile})
	return nil
}
