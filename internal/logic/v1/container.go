package v1

import (
	"context"
	"errors"
	"sync"

	"github.com/vinculo/crm-service/internal/core/domain"
	"github.com/vinculo/crm-service/internal/core/repository"
	pkgzerolog "github.com/vinculo/crm-service/pkg/logger/zerolog"
)

// State is the session container lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateHydrating
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHydrating:
		return "hydrating"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// SessionState is an immutable view of the container handed to callers and
// subscribers.
type SessionState struct {
	State         State
	User          *domain.User
	Token         string
	Profile       *domain.Profile
	Authenticated bool
	Hydrated      bool
}

// ProfileStore is the slice of the profile repository the container needs.
// *repository.Resource[domain.Profile] satisfies it.
type ProfileStore interface {
	FindByID(ctx context.Context, id any) (*domain.Profile, error)
	Create(ctx context.Context, data any) (*domain.Profile, error)
	Update(ctx context.Context, id any, patch any) (*domain.Profile, error)
}

// Container is the single authoritative session state holder. All mutation
// goes through its transition methods; every transition replaces the state
// in one step under the lock and then notifies subscribers. Racing
// transitions (a sign-in against a sign-out) resolve last-writer-wins.
type Container struct {
	provider  domain.Provider
	snapshots domain.SnapshotStore
	profiles  ProfileStore

	mu      sync.RWMutex
	state   State
	user    *domain.User
	token   string
	profile *domain.Profile

	subMu sync.Mutex
	subs  []chan SessionState
}

// NewContainer wires the container to its collaborators. Call Initialize
// before reading state.
func NewContainer(provider domain.Provider, snapshots domain.SnapshotStore, profiles ProfileStore) *Container {
	return &Container{
		provider:  provider,
		snapshots: snapshots,
		profiles:  profiles,
		state:     StateUninitialized,
	}
}

// Initialize hydrates the container: the persisted snapshot is loaded, its
// token revalidated with the provider, and the container lands in either
// Authenticated or Anonymous. Provider or storage failures degrade to
// Anonymous; this method never fails because an unresolved session must not
// block startup. Repeat calls are no-ops.
func (c *Container) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateUninitialized {
		c.mu.Unlock()
		return
	}
	c.state = StateHydrating
	c.mu.Unlock()

	log := pkgzerolog.FromContext(ctx)

	var token string
	snap, err := c.snapshots.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Session snapshot load failed, starting anonymous")
	} else if snap != nil {
		token = snap.Token
	}

	session, err := c.provider.CurrentSession(ctx, token)
	if err != nil {
		log.Warn().Err(err).Msg("Session revalidation failed, starting anonymous")
		session = nil
	}

	if session != nil {
		c.applyAuthenticated(ctx, session)
	} else {
		c.applyAnonymous(ctx, token != "")
	}

	// Out-of-band session changes (external sign-out, credential rotation)
	// go through the same transition logic.
	c.provider.OnSessionChange(func(s *domain.AuthSession) {
		if s != nil {
			c.applyAuthenticated(context.Background(), s)
		} else {
			c.applyAnonymous(context.Background(), true)
		}
	})
}

// SignIn authenticates with the provider. A rejection comes back as a
// non-nil *AuthError; neither local state nor the persisted snapshot is
// touched on failure.
func (c *Container) SignIn(ctx context.Context, email, password string) *AuthError {
	session, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return authErrorFrom(err)
	}
	c.applyAuthenticated(ctx, session)
	return nil
}

// SignUp registers with the provider. When the provider withholds the
// session pending confirmation, the container stays anonymous and no error
// is returned; callers distinguish the two outcomes via IsAuthenticated.
func (c *Container) SignUp(ctx context.Context, email, password, name string) *AuthError {
	session, err := c.provider.SignUp(ctx, email, password, name)
	if err != nil {
		return authErrorFrom(err)
	}
	if session == nil {
		return nil
	}
	c.applyAuthenticated(ctx, session)
	return nil
}

// SignOut invalidates the provider session and clears local state. The
// local clear happens even when the provider call fails, so a backend
// outage can never leave stale credentials behind.
func (c *Container) SignOut(ctx context.Context) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token != "" {
		if err := c.provider.SignOut(ctx, token); err != nil {
			pkgzerolog.FromContext(ctx).Warn().Err(err).Msg("Provider sign-out failed, clearing local session anyway")
		}
	}

	c.applyAnonymous(ctx, true)
}

// UpdateProfile shallow-merges the patch into the current profile. Without
// a session it is a no-op, not an error. A profile row that does not exist
// yet is created from the patch.
func (c *Container) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) error {
	c.mu.RLock()
	user := c.user
	authenticated := c.state == StateAuthenticated
	c.mu.RUnlock()

	if !authenticated || user == nil {
		return nil
	}

	profile, err := c.profiles.Update(ctx, user.ID, patch)
	if err != nil {
		if !isNotFound(err) {
			return err
		}
		profile, err = c.profiles.Create(ctx, createProfileFrom(user, patch))
		if err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.profile = profile
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, state)
	c.notify(state)
	return nil
}

// Current returns a copy of the present session state.
func (c *Container) Current() SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// IsAuthenticated reports whether a session is established.
func (c *Container) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == StateAuthenticated
}

// IsHydrated reports whether Initialize has completed.
func (c *Container) IsHydrated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == StateAnonymous || c.state == StateAuthenticated
}

// Subscribe returns a channel receiving every state transition. Slow
// consumers miss intermediate states rather than block transitions.
func (c *Container) Subscribe() <-chan SessionState {
	ch := make(chan SessionState, 8)
	c.subMu.Lock()
	c.subs = append(c.subs, ch)
	c.subMu.Unlock()
	return ch
}

func (c *Container) applyAuthenticated(ctx context.Context, session *domain.AuthSession) {
	profile := c.loadProfile(ctx, session.User.ID)

	c.mu.Lock()
	c.state = StateAuthenticated
	c.user = session.User
	c.token = session.Token
	c.profile = profile
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, state)
	c.notify(state)
}

// applyAnonymous clears the in-memory state; clearStored controls whether
// the persisted snapshot is removed as well.
func (c *Container) applyAnonymous(ctx context.Context, clearStored bool) {
	c.mu.Lock()
	c.state = StateAnonymous
	c.user = nil
	c.token = ""
	c.profile = nil
	state := c.snapshotLocked()
	c.mu.Unlock()

	if clearStored {
		if err := c.snapshots.Clear(ctx); err != nil {
			pkgzerolog.FromContext(ctx).Warn().Err(err).Msg("Session snapshot clear failed")
		}
	}
	c.notify(state)
}

// loadProfile is best-effort: absence or backend failure yields nil so a
// missing profile never blocks authentication.
func (c *Container) loadProfile(ctx context.Context, userID int64) *domain.Profile {
	profile, err := c.profiles.FindByID(ctx, userID)
	if err != nil {
		pkgzerolog.FromContext(ctx).Warn().Err(err).Int64("user_id", userID).Msg("Profile load failed")
		return nil
	}
	return profile
}

func (c *Container) snapshotLocked() SessionState {
	return SessionState{
		State:         c.state,
		User:          c.user,
		Token:         c.token,
		Profile:       c.profile,
		Authenticated: c.state == StateAuthenticated,
		Hydrated:      c.state == StateAnonymous || c.state == StateAuthenticated,
	}
}

func (c *Container) persist(ctx context.Context, state SessionState) {
	err := c.snapshots.Save(ctx, &domain.SessionSnapshot{
		User:          state.User,
		Token:         state.Token,
		Profile:       state.Profile,
		Authenticated: state.Authenticated,
	})
	if err != nil {
		pkgzerolog.FromContext(ctx).Warn().Err(err).Msg("Session snapshot save failed")
	}
}

func (c *Container) notify(state SessionState) {
	c.subMu.Lock()
	subs := make([]chan SessionState, len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- state:
		default:
		}
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func createProfileFrom(user *domain.User, patch domain.ProfilePatch) domain.CreateProfile {
	create := domain.CreateProfile{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
	if patch.Name != nil {
		create.Name = *patch.Name
	}
	if patch.Company != nil {
		create.Company = *patch.Company
	}
	if patch.Role != nil {
		create.Role = *patch.Role
	}
	if patch.AvatarURL != nil {
		create.AvatarURL = *patch.AvatarURL
	}
	return create
}
