package sessions

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/sportify-auth-client/gateway"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/sessions/storage"
	"github.com/jrsteele09/sportify-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// EventAuthChanged is the single notification the Store broadcasts. It
// carries no payload; subscribers re-read Current().
const EventAuthChanged = "auth changed"

// RootPath is where Logout navigates to.
const RootPath = "/"

// CurrentUserFetcher is the part of the gateway the Store needs to
// re-hydrate a session from a token.
type CurrentUserFetcher interface {
	FetchCurrentUser(ctx context.Context, token string) (gateway.Result, error)
}

// Navigator performs a full navigation, e.g. back to the application root
// after logout.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

type subscriber struct {
	id string
	fn func()
}

// Store is the single authority for the session. The in-memory state is the
// source of truth; storage is a cache that survives restarts.
//
// Transitions are serialized: every subscriber has been notified before the
// next transition starts. Subscribers may read Current() while being
// notified but must not start a transition from inside the callback.
type Store struct {
	storage   storage.Storage
	fetcher   CurrentUserFetcher
	navigator Navigator
	logger    zerolog.Logger
	nowTime   func() time.Time

	transitionMu sync.Mutex
	restoreGroup singleflight.Group

	stateMu sync.RWMutex
	state   State

	subsMu      sync.Mutex
	subscribers []subscriber
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

func WithNavigator(n Navigator) StoreOption {
	return func(s *Store) {
		s.navigator = n
	}
}

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithNowTime sets the clock used for token expiry checks (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// NewStore creates a Store in the LoggedOut state. Call Restore to load the
// persisted session.
func NewStore(store storage.Storage, fetcher CurrentUserFetcher, options ...StoreOption) (*Store, error) {
	if store == nil {
		return nil, errors.New("[sessions.NewStore] storage is required")
	}
	if fetcher == nil {
		return nil, errors.New("[sessions.NewStore] current user fetcher is required")
	}

	s := &Store{
		storage:   store,
		fetcher:   fetcher,
		navigator: NavigatorFunc(func(string) {}),
		logger:    log.Logger,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Current returns a snapshot of the state.
func (s *Store) Current() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Store) IsAuthenticated() bool {
	return s.Current().Authenticated()
}

// Subscribe registers fn for the "auth changed" notification. The returned
// function unsubscribes and may be called more than once.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	id := uuid.NewString()

	s.subsMu.Lock()
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Restore loads the persisted session. A token with a valid cached profile
// is trusted without a network call; a token without one is checked with
// the API. Any failure to re-validate, including an unreadable persisted
// document, leaves the Store LoggedOut with storage cleared and is not
// reported as an error. Only other storage failures are returned.
//
// Concurrent calls share one execution.
func (s *Store) Restore(ctx context.Context) (State, error) {
	v, err, _ := s.restoreGroup.Do("restore", func() (any, error) {
		s.transitionMu.Lock()
		defer s.transitionMu.Unlock()
		return s.restore(ctx)
	})
	if err != nil {
		return s.Current(), err
	}
	return v.(State), nil
}

func (s *Store) restore(ctx context.Context) (State, error) {
	token, err := s.storage.Get(ctx, storage.KeyToken)
	if sperrors.Is(err, storage.ErrNotFound) || (err == nil && token == "") {
		return s.transition(State{}), nil
	}
	if sperrors.Is(err, storage.ErrCorrupt) {
		s.logger.Warn().Err(err).Msg("persisted session is unreadable")
		return s.invalidate(ctx)
	}
	if err != nil {
		return State{}, errors.Wrap(err, "[Store.Restore] storage.Get token")
	}

	if s.tokenExpired(token) {
		s.logger.Debug().Msg("persisted token has expired")
		return s.invalidate(ctx)
	}

	if profile, ok := s.cachedProfile(ctx); ok {
		return s.transition(loggedIn(Session{Token: token, Profile: profile})), nil
	}

	result, err := s.fetcher.FetchCurrentUser(ctx, token)
	if err != nil {
		s.logger.Warn().Err(err).Msg("session re-validation failed")
		return s.invalidate(ctx)
	}
	profile, ok := profileFrom(result)
	if !ok {
		s.logger.Debug().Int("status", result.Status).Msg("session rejected by API")
		return s.invalidate(ctx)
	}

	session := Session{Token: token, Profile: profile}
	if err := s.persist(ctx, session); err != nil {
		return State{}, err
	}
	return s.transition(loggedIn(session)), nil
}

// Commit persists session after a successful login or second factor
// verification and notifies subscribers.
func (s *Store) Commit(ctx context.Context, session Session) error {
	if !session.Valid() {
		return sperrors.Wrapf(sperrors.ErrIncompleteSession, "[Store.Commit]")
	}

	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	if err := s.persist(ctx, session); err != nil {
		return err
	}
	s.set(loggedIn(session))
	s.broadcast(ctx)
	s.logger.Info().Str("role", string(session.Profile.Role)).Msg("session committed")
	return nil
}

// Refresh re-fetches the current user. A rejected token logs the session out
// silently; a transport failure leaves the session untouched and is
// returned.
func (s *Store) Refresh(ctx context.Context) (State, error) {
	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	current := s.Current()
	if !current.Authenticated() {
		return current, nil
	}

	result, err := s.fetcher.FetchCurrentUser(ctx, current.Session.Token)
	if err != nil {
		return current, errors.Wrap(err, "[Store.Refresh] FetchCurrentUser")
	}
	profile, ok := profileFrom(result)
	if !ok {
		s.logger.Debug().Int("status", result.Status).Msg("session invalidated on refresh")
		return s.invalidate(ctx)
	}

	session := Session{Token: current.Session.Token, Profile: profile}
	if err := s.persist(ctx, session); err != nil {
		return current, err
	}
	return s.transition(loggedIn(session)), nil
}

// Logout clears the persisted session, notifies subscribers and navigates to
// the application root. Calling it when already logged out is not an error.
func (s *Store) Logout(ctx context.Context) error {
	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	if err := s.storage.DeleteAll(ctx, storage.KeyToken, storage.KeyUser); err != nil {
		return errors.Wrap(err, "[Store.Logout] storage.DeleteAll")
	}
	s.set(State{})
	s.broadcast(ctx)
	s.navigator.Navigate(RootPath)
	return nil
}

// Watch re-reads the persisted session whenever another process publishes an
// "auth changed" notification, until ctx is done. The storage must implement
// storage.Notifier.
func (s *Store) Watch(ctx context.Context) error {
	notifier, ok := s.storage.(storage.Notifier)
	if !ok {
		return sperrors.Wrapf(sperrors.ErrUnsupported, "[Store.Watch] storage does not publish changes")
	}
	return notifier.Listen(ctx, func() {
		if _, err := s.Restore(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to reload session after remote change")
		}
	})
}

// invalidate is the implicit logout: storage cleared, no navigation.
func (s *Store) invalidate(ctx context.Context) (State, error) {
	if err := s.storage.DeleteAll(ctx, storage.KeyToken, storage.KeyUser); err != nil {
		return State{}, errors.Wrap(err, "[Store] clear invalid session")
	}
	return s.transition(State{}), nil
}

// transition sets next and broadcasts when it differs from the current state.
func (s *Store) transition(next State) State {
	s.stateMu.Lock()
	changed := s.state != next
	s.state = next
	s.stateMu.Unlock()

	if changed {
		s.notify()
	}
	return next
}

func (s *Store) set(next State) {
	s.stateMu.Lock()
	s.state = next
	s.stateMu.Unlock()
}

func (s *Store) broadcast(ctx context.Context) {
	s.notify()
	if notifier, ok := s.storage.(storage.Notifier); ok {
		if err := notifier.Publish(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish auth change")
		}
	}
}

func (s *Store) notify() {
	s.subsMu.Lock()
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *Store) persist(ctx context.Context, session Session) error {
	profile, err := json.Marshal(session.Profile)
	if err != nil {
		return errors.Wrap(err, "[Store] marshal profile")
	}
	err = s.storage.SetAll(ctx, map[string]string{
		storage.KeyToken: session.Token,
		storage.KeyUser:  string(profile),
	})
	return errors.Wrap(err, "[Store] storage.SetAll")
}

func (s *Store) cachedProfile(ctx context.Context) (users.Profile, bool) {
	raw, err := s.storage.Get(ctx, storage.KeyUser)
	if err != nil {
		return users.Profile{}, false
	}
	var profile users.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.Debug().Err(err).Msg("cached profile is corrupt")
		return users.Profile{}, false
	}
	return profile, profile.Valid()
}

// tokenExpired reports whether token is a JWT whose exp has passed. Opaque
// tokens are left to the API to judge.
func (s *Store) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.nowTime().Before(exp.Time)
}

func profileFrom(result gateway.Result) (users.Profile, bool) {
	if !result.Succeeded() {
		return users.Profile{}, false
	}
	profile, err := result.Profile()
	if err != nil {
		return users.Profile{}, false
	}
	return profile, profile.Valid()
}
