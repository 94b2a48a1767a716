package client

import "context"

type AuthState struct {
	Token           string
	User            *User
	IsAuthenticated bool
	DataLoading     bool
	SubmitLoading   bool
}

type AuthActionType int

const (
	AuthDataLoading AuthActionType = iota + 1
	AuthSubmitLoading
	AuthUserLoaded
	AuthLoggedIn // login and register
	AuthResetEmailSent
	AuthLoggedOut
	AuthFailed
)

type AuthAction struct {
	Type  AuthActionType
	Token string
	User  *User
}

// ReduceAuth is the auth reducer.
func ReduceAuth(s AuthState, a AuthAction) AuthState {
	switch a.Type {
	case AuthDataLoading:
		s.DataLoading = true
	case AuthSubmitLoading:
		s.SubmitLoading = true
	case AuthUserLoaded:
		s.User = a.User
		s.IsAuthenticated = true
		s.DataLoading = false
	case AuthLoggedIn:
		s.Token = a.Token
		s.IsAuthenticated = true
		s.SubmitLoading = false
	case AuthResetEmailSent:
		s.SubmitLoading = false
	case AuthLoggedOut, AuthFailed:
		s.Token = ""
		s.User = nil
		s.IsAuthenticated = false
		s.DataLoading = false
		s.SubmitLoading = false
	}
	return s
}

func cloneAuth(s AuthState) AuthState {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// AuthContainer holds the session: token, current user and loading flags.
type AuthContainer struct {
	*Store[AuthState, AuthAction]
	api *Client
}

// NewAuthContainer starts from the token already in the client's store.
// DataLoading starts true until LoadUser resolves.
func NewAuthContainer(api *Client) *AuthContainer {
	initial := AuthState{Token: api.Tokens().Token(), DataLoading: true}
	return &AuthContainer{
		Store: NewStore(initial, ReduceAuth, cloneAuth),
		api:   api,
	}
}

// LoadUser fetches the current user. Any failure ends the session.
func (c *AuthContainer) LoadUser(ctx context.Context) error {
	c.Dispatch(AuthAction{Type: AuthDataLoading})

	user, err := c.api.Me(ctx)
	if err != nil {
		c.fail()
		return err
	}
	c.Dispatch(AuthAction{Type: AuthUserLoaded, User: user})
	return nil
}

func (c *AuthContainer) Login(ctx context.Context, in LoginInput) error {
	c.Dispatch(AuthAction{Type: AuthSubmitLoading})

	token, err := c.api.Login(ctx, in)
	if err != nil {
		c.fail()
		return err
	}
	c.signedIn(token)
	return nil
}

func (c *AuthContainer) Register(ctx context.Context, in RegisterInput) error {
	c.Dispatch(AuthAction{Type: AuthSubmitLoading})

	token, err := c.api.Register(ctx, in)
	if err != nil {
		c.fail()
		return err
	}
	c.signedIn(token)
	return nil
}

// SendResetEmail requests a recovery email. A failure does not end the
// session.
func (c *AuthContainer) SendResetEmail(ctx context.Context, email string) error {
	c.Dispatch(AuthAction{Type: AuthSubmitLoading})
	err := c.api.ForgotPassword(ctx, email)
	c.Dispatch(AuthAction{Type: AuthResetEmailSent})
	return err
}

func (c *AuthContainer) Logout() {
	c.api.Tokens().ClearToken()
	c.Dispatch(AuthAction{Type: AuthLoggedOut})
}

func (c *AuthContainer) signedIn(token string) {
	c.api.Tokens().SetToken(token)
	c.Dispatch(AuthAction{Type: AuthLoggedIn, Token: token})
}

func (c *AuthContainer) fail() {
	c.api.Tokens().ClearToken()
	c.Dispatch(AuthAction{Type: AuthFailed})
}
