package client

import "context"

type PostState struct {
	Post          *Post
	Posts         []Post
	DataLoading   bool
	SubmitLoading bool
}

type PostActionType int

const (
	PostDataLoading PostActionType = iota + 1
	PostSubmitLoading
	PostsLoaded
	PostLoaded
	PostCreated
	PostDeleted
	PostUpdated // likes or comments changed
	PostSubmitDone
	PostFailed
)

type PostAction struct {
	Type   PostActionType
	PostID string
	Post   *Post
	Posts  []Post
}

// ReducePost is the post reducer. Lists are rebuilt, never edited in place.
func ReducePost(s PostState, a PostAction) PostState {
	switch a.Type {
	case PostDataLoading:
		s.DataLoading = true
	case PostSubmitLoading:
		s.SubmitLoading = true
	case PostsLoaded:
		s.Posts = a.Posts
		s.DataLoading = false
	case PostLoaded:
		s.Post = a.Post
		s.DataLoading = false
	case PostCreated:
		posts := make([]Post, 0, len(s.Posts)+1)
		posts = append(posts, *a.Post)
		s.Posts = append(posts, s.Posts...)
		s.DataLoading = false
		s.SubmitLoading = false
	case PostDeleted:
		posts := make([]Post, 0, len(s.Posts))
		for _, p := range s.Posts {
			if p.ID != a.PostID {
				posts = append(posts, p)
			}
		}
		s.Posts = posts
		if s.Post != nil && s.Post.ID == a.PostID {
			s.Post = nil
		}
	case PostUpdated:
		posts := make([]Post, len(s.Posts))
		for i, p := range s.Posts {
			if p.ID == a.PostID {
				p = *a.Post
			}
			posts[i] = p
		}
		s.Posts = posts
		if s.Post != nil && s.Post.ID == a.PostID {
			s.Post = a.Post
		}
		s.SubmitLoading = false
	case PostSubmitDone:
		s.SubmitLoading = false
	case PostFailed:
		s.Post = nil
		s.Posts = []Post{}
		s.DataLoading = false
		s.SubmitLoading = false
	}
	return s
}

func clonePost(s PostState) PostState {
	if s.Post != nil {
		s.Post = copyPost(s.Post)
	}
	if s.Posts != nil {
		posts := make([]Post, len(s.Posts))
		for i := range s.Posts {
			posts[i] = *copyPost(&s.Posts[i])
		}
		s.Posts = posts
	}
	return s
}

func copyPost(p *Post) *Post {
	cp := *p
	if p.Likes != nil {
		cp.Likes = append([]Like{}, p.Likes...)
	}
	if p.Comments != nil {
		cp.Comments = append([]Comment{}, p.Comments...)
	}
	return &cp
}

// PostContainer caches the post list and the post being viewed.
type PostContainer struct {
	*Store[PostState, PostAction]
	api *Client
}

func NewPostContainer(api *Client) *PostContainer {
	initial := PostState{Posts: []Post{}, DataLoading: true}
	return &PostContainer{
		Store: NewStore(initial, ReducePost, clonePost),
		api:   api,
	}
}

func (c *PostContainer) GetAll(ctx context.Context) error {
	c.Dispatch(PostAction{Type: PostDataLoading})
	posts, err := c.api.Posts(ctx)
	if err != nil {
		c.Dispatch(PostAction{Type: PostFailed})
		return err
	}
	c.Dispatch(PostAction{Type: PostsLoaded, Posts: posts})
	return nil
}

func (c *PostContainer) Get(ctx context.Context, id string) error {
	c.Dispatch(PostAction{Type: PostDataLoading})
	post, err := c.api.Post(ctx, id)
	if err != nil {
		c.Dispatch(PostAction{Type: PostFailed})
		return err
	}
	c.Dispatch(PostAction{Type: PostLoaded, Post: post})
	return nil
}

// Create keeps the loaded list when the server refuses the post.
func (c *PostContainer) Create(ctx context.Context, in PostInput) error {
	c.Dispatch(PostAction{Type: PostSubmitLoading})
	post, err := c.api.CreatePost(ctx, in)
	if err != nil {
		c.Dispatch(PostAction{Type: PostSubmitDone})
		return err
	}
	c.Dispatch(PostAction{Type: PostCreated, Post: post})
	return nil
}

// Delete leaves the cached state untouched when the server refuses.
func (c *PostContainer) Delete(ctx context.Context, id string) error {
	if err := c.api.DeletePost(ctx, id); err != nil {
		return err
	}
	c.Dispatch(PostAction{Type: PostDeleted, PostID: id})
	return nil
}

func (c *PostContainer) Like(ctx context.Context, id string) error {
	return c.updated(id)(c.api.Like(ctx, id))
}

func (c *PostContainer) Unlike(ctx context.Context, id string) error {
	return c.updated(id)(c.api.Unlike(ctx, id))
}

func (c *PostContainer) Comment(ctx context.Context, postID, text string) error {
	c.Dispatch(PostAction{Type: PostSubmitLoading})
	return c.updated(postID)(c.api.Comment(ctx, postID, text))
}

func (c *PostContainer) DeleteComment(ctx context.Context, postID, commentID string) error {
	return c.updated(postID)(c.api.DeleteComment(ctx, postID, commentID))
}

// updated applies a post returned by a like, unlike or comment call. A
// refused request leaves the cache alone.
func (c *PostContainer) updated(id string) func(*Post, error) error {
	return func(post *Post, err error) error {
		if err != nil {
			c.Dispatch(PostAction{Type: PostSubmitDone})
			return err
		}
		c.Dispatch(PostAction{Type: PostUpdated, PostID: id, Post: post})
		return nil
	}
}
