package viewmodel

import (
	"context"
	"sync"

	"github.com/DanePascual/studyhall/pkg/client"
	"github.com/DanePascual/studyhall/pkg/domain"
)

// Topics is the view-model for the discussion board: the topic listing plus
// one open topic with its posts.
type Topics struct {
	client *client.Client
	deps   Deps

	mu       sync.Mutex
	topics   []domain.Topic
	topic    *domain.Topic
	posts    []domain.Post
	loading  bool
	inflight map[string]bool
}

// NewTopics creates a topics view-model.
func NewTopics(c *client.Client, deps Deps) *Topics {
	return &Topics{
		client:   c,
		deps:     deps.withDefaults(),
		inflight: make(map[string]bool),
	}
}

// LoadList fetches the topic listing. The listing is itself the fallback
// destination, so a failure notifies without redirecting.
func (vm *Topics) LoadList(ctx context.Context) ([]domain.Topic, error) {
	vm.setLoading(true)
	topics, err := vm.client.ListTopics(ctx)
	vm.setLoading(false)
	if err != nil {
		vm.deps.Notify.Notify("Could not load topics: " + userMessage(err))
		return nil, fetchError(err)
	}

	vm.mu.Lock()
	vm.topics = topics
	vm.mu.Unlock()
	return topics, nil
}

// Load fetches one topic and its posts. Records are rebuilt from scratch on
// every call; nothing fetched earlier survives.
func (vm *Topics) Load(ctx context.Context, topicID string) (*domain.Topic, error) {
	vm.setLoading(true)

	topic, posts, err := vm.fetchTopic(ctx, topicID)
	if err != nil {
		vm.setLoading(false)
		vm.deps.Notify.Notify("Could not load topic: " + userMessage(err))
		vm.deps.Nav.RedirectAfter(vm.deps.RedirectDelay, DestTopics)
		return nil, err
	}

	vm.mu.Lock()
	vm.topic = topic
	vm.posts = posts
	vm.loading = false
	vm.mu.Unlock()
	return topic, nil
}

func (vm *Topics) fetchTopic(ctx context.Context, topicID string) (*domain.Topic, []domain.Post, error) {
	if topicID == "" {
		return nil, nil, ErrMissingIdentifier
	}
	topic, err := vm.client.GetTopic(ctx, topicID)
	if err != nil {
		return nil, nil, fetchError(err)
	}
	posts, err := vm.client.GetTopicPosts(ctx, topicID)
	if err != nil {
		return nil, nil, fetchError(err)
	}
	return topic, posts, nil
}

// CreateTopic creates a topic and prepends it to the listing.
func (vm *Topics) CreateTopic(ctx context.Context, req domain.CreateTopicRequest) (*domain.Topic, error) {
	if req.Title == "" {
		return nil, client.ErrInvalidArgument
	}
	if !vm.begin("create-topic") {
		return nil, ErrMutationInFlight
	}
	defer vm.end("create-topic")

	created, err := vm.client.CreateTopic(ctx, req)
	if err != nil {
		vm.deps.Notify.Notify("Could not create topic: " + userMessage(err))
		return nil, err
	}

	vm.mu.Lock()
	vm.topics = append([]domain.Topic{*created}, vm.topics...)
	vm.mu.Unlock()
	return created, nil
}

// CreatePost posts under the open topic and appends it locally.
func (vm *Topics) CreatePost(ctx context.Context, req domain.CreatePostRequest) (*domain.Post, error) {
	vm.mu.Lock()
	topic := vm.topic
	vm.mu.Unlock()
	if topic == nil {
		return nil, ErrMissingIdentifier
	}
	if req.Content == "" {
		return nil, client.ErrInvalidArgument
	}
	if !vm.begin("create-post") {
		return nil, ErrMutationInFlight
	}
	defer vm.end("create-post")

	created, err := vm.client.CreatePost(ctx, topic.ID, req)
	if err != nil {
		vm.deps.Notify.Notify("Could not post: " + userMessage(err))
		return nil, err
	}

	vm.mu.Lock()
	vm.posts = append(vm.posts, *created)
	if vm.topic != nil {
		vm.topic.PostCount++
	}
	vm.mu.Unlock()
	return created, nil
}

// ToggleLike toggles the like on a post and folds the server's counts back
// into local state. One user action maps to at most one request; the guard
// drops repeats while a toggle for the same post is in flight, because a
// blind retry could flip the toggle twice.
func (vm *Topics) ToggleLike(ctx context.Context, postID string) (*client.LikeResult, error) {
	if postID == "" {
		return nil, client.ErrInvalidArgument
	}
	if !vm.begin("like:" + postID) {
		return nil, ErrMutationInFlight
	}
	defer vm.end("like:" + postID)

	res, err := vm.client.ToggleLike(ctx, postID)
	if err != nil {
		vm.deps.Notify.Notify("Like failed: " + userMessage(err))
		return nil, err
	}

	vm.mu.Lock()
	for i := range vm.posts {
		if vm.posts[i].ID == postID {
			vm.posts[i].Likes = res.Likes
			vm.posts[i].Liked = res.Liked
			break
		}
	}
	vm.mu.Unlock()
	return res, nil
}

// TopicList returns a copy of the topic listing.
func (vm *Topics) TopicList() []domain.Topic {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]domain.Topic, len(vm.topics))
	copy(out, vm.topics)
	return out
}

// Topic returns the open topic, nil when none is loaded.
func (vm *Topics) Topic() *domain.Topic {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.topic
}

// Posts returns a copy of the open topic's posts.
func (vm *Topics) Posts() []domain.Post {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]domain.Post, len(vm.posts))
	copy(out, vm.posts)
	return out
}

// Loading reports whether a load is in progress.
func (vm *Topics) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loading
}

func (vm *Topics) setLoading(v bool) {
	vm.mu.Lock()
	vm.loading = v
	vm.mu.Unlock()
}

func (vm *Topics) begin(kind string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.inflight[kind] {
		return false
	}
	vm.inflight[kind] = true
	return true
}

func (vm *Topics) end(kind string) {
	vm.mu.Lock()
	delete(vm.inflight, kind)
	vm.mu.Unlock()
}
