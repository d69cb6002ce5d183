package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/soullog/internal/models"
	"github.com/AnshRaj112/soullog/pkg/utils"
)

// DefaultSessionTTL is 7 days
const DefaultSessionTTL = 7 * 24 * time.Hour

// Service issues identities and tracks which one is signed in on each device.
// Every sign-in and sign-out is published to the notifier.
type Service struct {
	identities IdentityStore
	sessions   SessionStore
	notifier   Notifier
	log        *zap.SugaredLogger
	ttl        time.Duration
}

func NewService(identities IdentityStore, sessions SessionStore, notifier Notifier, log *zap.SugaredLogger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		identities: identities,
		sessions:   sessions,
		notifier:   notifier,
		log:        log,
		ttl:        ttl,
	}
}

// CreateIdentity registers email/password and signs the new identity in on device.
func (s *Service) CreateIdentity(ctx context.Context, device, email, password string) (*models.Identity, error) {
	email = utils.NormalizeEmail(email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, errInvalidEmail(err.Error())
	}
	if len(password) < utils.MinPasswordLength {
		return nil, errWeakPassword()
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		s.log.Errorw("failed to hash password", "error", err)
		return nil, errInternal()
	}

	id, err := s.identities.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, errEmailInUse()
		}
		s.log.Errorw("failed to create identity", "error", err)
		return nil, errInternal()
	}

	return s.signIn(ctx, device, id)
}

// Authenticate signs in an existing identity. Unknown emails and wrong passwords
// fail the same way.
func (s *Service) Authenticate(ctx context.Context, device, email, password string) (*models.Identity, error) {
	rec, err := s.identities.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errInvalidCredential()
		}
		s.log.Errorw("failed to look up identity", "error", err)
		return nil, errInternal()
	}

	ok, err := utils.VerifyPassword(password, rec.PasswordHash)
	if err != nil {
		s.log.Errorw("stored password hash is unreadable", "uid", rec.UID, "error", err)
		return nil, errInvalidCredential()
	}
	if !ok {
		return nil, errInvalidCredential()
	}

	return s.signIn(ctx, device, rec.Identity)
}

// AuthenticateAnonymous creates a transient guest identity on device.
func (s *Service) AuthenticateAnonymous(ctx context.Context, device string) (*models.Identity, error) {
	id, err := s.identities.CreateAnonymous(ctx)
	if err != nil {
		s.log.Errorw("failed to create anonymous identity", "error", err)
		return nil, errInternal()
	}
	return s.signIn(ctx, device, id)
}

// Deauthenticate signs device out.
func (s *Service) Deauthenticate(ctx context.Context, device string) error {
	if err := s.sessions.Delete(ctx, device); err != nil {
		return err
	}
	s.publish(ctx, device, nil)
	return nil
}

// Current returns the identity signed in on device, or nil.
func (s *Service) Current(ctx context.Context, device string) (*models.Identity, error) {
	if device == "" {
		return nil, nil
	}
	return s.sessions.Get(ctx, device)
}

// Subscribe registers fn for identity changes on device and calls it right away
// with the current identity. The returned func unsubscribes.
func (s *Service) Subscribe(ctx context.Context, device string, fn Listener) (func(), error) {
	unsubscribe := s.notifier.Subscribe(device, fn)
	current, err := s.Current(ctx, device)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	fn(current)
	return unsubscribe, nil
}

func (s *Service) signIn(ctx context.Context, device string, id models.Identity) (*models.Identity, error) {
	if err := s.sessions.Put(ctx, device, id, s.ttl); err != nil {
		s.log.Errorw("failed to store session", "uid", id.UID, "error", err)
		return nil, errInternal()
	}
	s.publish(ctx, device, &id)
	return &id, nil
}

func (s *Service) publish(ctx context.Context, device string, id *models.Identity) {
	if err := s.notifier.Publish(ctx, device, id); err != nil {
		s.log.Warnw("failed to publish identity change", "error", err)
	}
}
