package rememberme

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/rememberme/core/logger"
)

// DefaultTTL is the lifetime of a chain between two uses.
const DefaultTTL = 10 * 7 * 24 * time.Hour

// Lifecycle validates presented credentials, rotates them on success, revokes
// them on logout or theft, and issues new chains after other logins.
// It implements Authenticator and Listener.
type Lifecycle struct {
	store           Store
	codec           Codec
	now             func() time.Time
	ttl             time.Duration
	logger          *slog.Logger
	userLookup      UserLookup
	sweepOnValidate bool
	issuePolicy     IssuePolicy
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithCodec replaces the default bcrypt codec.
func WithCodec(c Codec) Option {
	return func(l *Lifecycle) {
		if c != nil {
			l.codec = c
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Lifecycle) {
		if now != nil {
			l.now = now
		}
	}
}

// WithTTL sets how long a chain stays valid after issuance or rotation.
func WithTTL(ttl time.Duration) Option {
	return func(l *Lifecycle) {
		l.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Lifecycle) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithUserLookup enables the post-validation user existence check.
func WithUserLookup(fn UserLookup) Option {
	return func(l *Lifecycle) {
		l.userLookup = fn
	}
}

// WithSweepOnValidate toggles the best-effort sweep before every validation.
func WithSweepOnValidate(enabled bool) Option {
	return func(l *Lifecycle) {
		l.sweepOnValidate = enabled
	}
}

// WithIssuePolicy sets when OnLogin starts a new chain.
func WithIssuePolicy(p IssuePolicy) Option {
	return func(l *Lifecycle) {
		l.issuePolicy = p
	}
}

// New creates a Lifecycle on top of store.
func New(store Store, opts ...Option) (*Lifecycle, error) {
	if store == nil {
		return nil, ErrNoStore
	}

	l := &Lifecycle{
		store:           store,
		now:             time.Now,
		ttl:             DefaultTTL,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		sweepOnValidate: true,
		issuePolicy:     IssueOnEveryLogin,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.ttl <= 0 {
		return nil, errors.Join(ErrInvalidConfig, errors.New("ttl must be positive"))
	}

	if l.codec == nil {
		c, err := NewCodec()
		if err != nil {
			return nil, err
		}
		l.codec = c
	}

	return l, nil
}

// TTL returns the chain lifetime, used as the cookie max age.
func (l *Lifecycle) TTL() time.Duration {
	return l.ttl
}

// TryAuthenticate runs one authentication attempt. See Validate.
func (l *Lifecycle) TryAuthenticate(ctx context.Context, cred Credential) Result {
	return l.Validate(ctx, cred)
}

// Validate checks a presented credential and rotates it when it is valid.
// The returned Result never carries a raw error to the end user; infrastructure
// failures surface as StateStoreUnavailable with Err set.
func (l *Lifecycle) Validate(ctx context.Context, cred Credential) Result {
	if !cred.Valid() {
		return unauthenticated(StateNoCredential, !cred.IsZero())
	}

	now := l.now()
	if l.sweepOnValidate {
		l.sweep(ctx, now)
	}

	rec, res, ok := l.lookup(ctx, cred, now)
	if !ok {
		return res
	}

	if !l.codec.Verify(cred.Token, rec.TokenHash) {
		return l.theft(ctx, rec)
	}

	if l.userLookup != nil {
		exists, err := l.userLookup(ctx, rec.UserID)
		if err != nil {
			return l.storeUnavailable(ctx, "user lookup failed", err)
		}
		if !exists {
			l.deleteSeries(ctx, rec.Series)
			l.logger.InfoContext(ctx, "remember-me token for unknown user",
				logger.UserID(rec.UserID),
				logger.Series(rec.Series),
			)
			return unauthenticated(StateUserUnknown, true)
		}
	}

	secret, err := l.codec.GenerateSecret()
	if err != nil {
		return l.rotationFailed(ctx, rec, err)
	}
	hash, err := l.codec.Hash(secret)
	if err != nil {
		return l.rotationFailed(ctx, rec, err)
	}

	rec.TokenHash = hash
	rec.ExpiresAt = now.Add(l.ttl)

	if err := l.store.Save(ctx, &rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Revoked between lookup and save.
			return unauthenticated(StateSeriesUnknown, true)
		}
		return l.storeUnavailable(ctx, "failed to save rotated token", err)
	}

	l.logger.DebugContext(ctx, "remember-me token rotated",
		logger.UserID(rec.UserID),
		logger.Series(rec.Series),
	)

	return Result{
		Outcome: Authenticated,
		State:   StateValid,
		UserID:  rec.UserID,
		Issued:  &Credential{Series: rec.Series, Token: secret},
	}
}

// Revoke handles logout. A valid credential deletes its own series only; a
// mismatching secret is handled as theft. The cookie is always cleared.
func (l *Lifecycle) Revoke(ctx context.Context, cred Credential) Result {
	if !cred.Valid() {
		return unauthenticated(StateNoCredential, true)
	}

	now := l.now()
	rec, res, ok := l.lookup(ctx, cred, now)
	if !ok {
		res.ClearCookie = true
		return res
	}

	if !l.codec.Verify(cred.Token, rec.TokenHash) {
		return l.theft(ctx, rec)
	}

	res = Result{
		Outcome:     Unauthenticated,
		State:       StateValid,
		UserID:      rec.UserID,
		ClearCookie: true,
	}
	if err := l.store.DeleteBySeries(ctx, rec.Series); err != nil {
		res.Err = errors.Join(ErrStoreUnavailable, err)
		l.logger.ErrorContext(ctx, "failed to revoke remember-me token",
			logger.UserID(rec.UserID),
			logger.Series(rec.Series),
			logger.Error(err),
		)
		return res
	}

	l.logger.DebugContext(ctx, "remember-me token revoked",
		logger.UserID(rec.UserID),
		logger.Series(rec.Series),
	)
	return res
}

// OnLogout implements Listener.
func (l *Lifecycle) OnLogout(ctx context.Context, cred Credential) Result {
	return l.Revoke(ctx, cred)
}

// Issue starts a new chain for userID and returns the credential to place in the cookie.
func (l *Lifecycle) Issue(ctx context.Context, userID uuid.UUID) (Credential, error) {
	if userID == uuid.Nil {
		return Credential{}, ErrInvalidUserID
	}

	series, err := l.codec.GenerateSeries()
	if err != nil {
		return Credential{}, err
	}
	secret, err := l.codec.GenerateSecret()
	if err != nil {
		return Credential{}, err
	}
	hash, err := l.codec.Hash(secret)
	if err != nil {
		return Credential{}, err
	}

	rec := Record{
		Series:    series,
		TokenHash: hash,
		UserID:    userID,
		ExpiresAt: l.now().Add(l.ttl),
	}
	if err := l.store.Save(ctx, &rec); err != nil {
		return Credential{}, errors.Join(ErrStoreUnavailable, err)
	}

	l.logger.DebugContext(ctx, "remember-me token issued",
		logger.UserID(userID),
		logger.Series(series),
	)

	return Credential{Series: series, Token: secret}, nil
}

// OnLogin implements Listener. Logins performed by this package never issue a
// second chain in the same request.
func (l *Lifecycle) OnLogin(ctx context.Context, event LoginEvent) (Credential, bool, error) {
	if event.Source == AuthenticatorName {
		return Credential{}, false, nil
	}
	if l.issuePolicy == IssueOncePerSession && event.IssuedThisSession {
		return Credential{}, false, nil
	}

	cred, err := l.Issue(ctx, event.UserID)
	if err != nil {
		return Credential{}, false, err
	}
	return cred, true, nil
}

// Sweep removes expired records and returns how many were deleted.
func (l *Lifecycle) Sweep(ctx context.Context) (int64, error) {
	n, err := l.store.SweepExpired(ctx, l.now())
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return n, nil
}

// lookup loads the record and resolves the not-found, expired and
// store-failure states. ok is false when res is terminal.
func (l *Lifecycle) lookup(ctx context.Context, cred Credential, now time.Time) (Record, Result, bool) {
	rec, err := l.store.FindBySeries(ctx, cred.Series)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, unauthenticated(StateSeriesUnknown, true), false
		}
		return Record{}, l.storeUnavailable(ctx, "failed to load remember-me token", err), false
	}

	if rec.IsExpired(now) {
		l.deleteSeries(ctx, rec.Series)
		return Record{}, unauthenticated(StateSeriesExpired, true), false
	}

	return rec, Result{}, true
}

func (l *Lifecycle) theft(ctx context.Context, rec Record) Result {
	res := Result{
		Outcome:     TheftDetected,
		State:       StateSecretMismatch,
		UserID:      rec.UserID,
		ClearCookie: true,
	}

	n, err := l.store.DeleteAllByUser(ctx, rec.UserID)
	if err != nil {
		res.Err = errors.Join(ErrStoreUnavailable, err)
	}

	l.logger.WarnContext(ctx, "remember-me token theft detected",
		logger.UserID(rec.UserID),
		logger.Series(rec.Series),
		logger.Count("revoked", int(n)),
		logger.Error(err),
	)

	return res
}

func (l *Lifecycle) storeUnavailable(ctx context.Context, msg string, err error) Result {
	l.logger.ErrorContext(ctx, msg, logger.Error(err))
	return Result{
		Outcome: Unauthenticated,
		State:   StateStoreUnavailable,
		Err:     errors.Join(ErrStoreUnavailable, err),
	}
}

func (l *Lifecycle) rotationFailed(ctx context.Context, rec Record, err error) Result {
	l.logger.ErrorContext(ctx, "failed to rotate remember-me token",
		logger.UserID(rec.UserID),
		logger.Series(rec.Series),
		logger.Error(err),
	)
	return Result{
		Outcome: Unauthenticated,
		State:   StateRotationFailed,
		Err:     err,
	}
}

func (l *Lifecycle) deleteSeries(ctx context.Context, series string) {
	if err := l.store.DeleteBySeries(ctx, series); err != nil {
		l.logger.WarnContext(ctx, "failed to delete remember-me token",
			logger.Series(series),
			logger.Error(err),
		)
	}
}

func (l *Lifecycle) sweep(ctx context.Context, now time.Time) {
	n, err := l.store.SweepExpired(ctx, now)
	if err != nil {
		l.logger.WarnContext(ctx, "remember-me sweep failed", logger.Error(err))
		return
	}
	if n > 0 {
		l.logger.DebugContext(ctx, "remember-me sweep", logger.Count("deleted", int(n)))
	}
}
