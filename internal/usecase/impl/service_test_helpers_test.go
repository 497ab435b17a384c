package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"savoro/config"
	"savoro/internal/domain/entity"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/domain/repository"
	"savoro/internal/domain/service"
	"savoro/internal/usecase"

	"github.com/google/uuid"
)

// The services under test only observe repository behavior through the
// interfaces, so the tests run against an in-memory store that mirrors the
// conditional-mutation semantics of the postgres implementations: every
// consume and rotate step either matches exactly one record or reports the
// stale/not-found sentinel.

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:        4,
			AccessTokenTTL:    15 * time.Minute,
			RefreshTokenTTL:   7 * 24 * time.Hour,
			EmailTokenTTL:     24 * time.Hour,
			ResetTokenTTL:     15 * time.Minute,
			OTPTTL:            5 * time.Minute,
			MaxActiveSessions: 3,
		},
		Mail: &config.MailConfig{
			FromEmail:   "noreply@savoro.test",
			FromName:    "Savoro",
			FrontendURL: "https://app.savoro.test",
		},
	}
}

// --- In-memory store and repositories ---

type memoryStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*entity.User
	creds     map[uuid.UUID]*entity.Credential
	sessions  map[uuid.UUID]*entity.RefreshSession
	addresses map[uuid.UUID]*entity.Address
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:     make(map[uuid.UUID]*entity.User),
		creds:     make(map[uuid.UUID]*entity.Credential),
		sessions:  make(map[uuid.UUID]*entity.RefreshSession),
		addresses: make(map[uuid.UUID]*entity.Address),
	}
}

func (s *memoryStore) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(s)
}

func (s *memoryStore) NewUserRepository() repository.UserRepository {
	return &memoryUserRepo{store: s}
}

func (s *memoryStore) NewCredentialRepository() repository.CredentialRepository {
	return &memoryCredentialRepo{store: s}
}

func (s *memoryStore) NewSessionRepository() repository.SessionRepository {
	return &memorySessionRepo{store: s}
}

func (s *memoryStore) NewAddressRepository() repository.AddressRepository {
	return &memoryAddressRepo{store: s}
}

type memoryUserRepo struct{ store *memoryStore }

func (repo *memoryUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	user, ok := repo.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user

	return &copied, nil
}

func (repo *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, user := range repo.store.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (repo *memoryUserRepo) FindByEmailOrPhone(ctx context.Context, email, phone string) (*entity.User, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, user := range repo.store.users {
		if user.Email == email || user.Phone == phone {
			copied := *user
			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (repo *memoryUserRepo) Create(ctx context.Context, user *entity.User) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, existing := range repo.store.users {
		if existing.Email == user.Email || existing.Phone == user.Phone {
			return domainerrors.ErrUserAlreadyExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	repo.store.users[user.ID] = &copied

	return nil
}

func (repo *memoryUserRepo) Update(ctx context.Context, user *entity.User) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, ok := repo.store.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	user.UpdatedAt = time.Now()
	copied := *user
	repo.store.users[user.ID] = &copied

	return nil
}

func (repo *memoryUserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	user, ok := repo.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.IsEmailVerified = true

	return nil
}

func (repo *memoryUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	user, ok := repo.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.LastLoginAt = &at

	return nil
}

type memoryCredentialRepo struct{ store *memoryStore }

func (repo *memoryCredentialRepo) Create(ctx context.Context, cred *entity.Credential) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	copied := *cred
	repo.store.creds[cred.UserID] = &copied

	return nil
}

func (repo *memoryCredentialRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Credential, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	cred, ok := repo.store.creds[userID]
	if !ok {
		return nil, repository.ErrCredentialNotFound
	}
	copied := *cred

	return &copied, nil
}

func (repo *memoryCredentialRepo) FindByResetTokenHash(ctx context.Context, tokenHash string) (*entity.Credential, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, cred := range repo.store.creds {
		if cred.ResetTokenHash == tokenHash && slotLive(cred.ResetTokenExpiresAt) {
			copied := *cred
			return &copied, nil
		}
	}

	return nil, repository.ErrCredentialNotFound
}

func (repo *memoryCredentialRepo) FindByEmailTokenHash(ctx context.Context, tokenHash string) (*entity.Credential, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, cred := range repo.store.creds {
		if cred.EmailTokenHash == tokenHash && slotLive(cred.EmailTokenExpiresAt) {
			copied := *cred
			return &copied, nil
		}
	}

	return nil, repository.ErrCredentialNotFound
}

func (repo *memoryCredentialRepo) StoreResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	cred, ok := repo.store.creds[userID]
	if !ok {
		return repository.ErrCredentialNotFound
	}
	cred.ResetTokenHash = tokenHash
	cred.ResetTokenExpiresAt = &expiresAt

	return nil
}

func (repo *memoryCredentialRepo) StoreEmailToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	cred, ok := repo.store.creds[userID]
	if !ok {
		return repository.ErrCredentialNotFound
	}
	cred.EmailTokenHash = tokenHash
	cred.EmailTokenExpiresAt = &expiresAt

	return nil
}

func (repo *memoryCredentialRepo) StoreOTP(ctx context.Context, userID uuid.UUID, otpHash string, expiresAt time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	cred, ok := repo.store.creds[userID]
	if !ok {
		return repository.ErrCredentialNotFound
	}
	cred.OTPHash = otpHash
	cred.OTPExpiresAt = &expiresAt

	return nil
}

func (repo *memoryCredentialRepo) ConsumeEmailToken(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	cred, ok := repo.store.creds[userID]
	if !ok || cred.EmailTokenHash != tokenHash || !slotLive(cred.EmailTokenExpiresAt) {
		return repository.ErrVerificationSlotStale
	}
	cred.EmailTokenHash = ""
	cred.EmailTokenExpiresAt = nil

	return nil
}

func (repo *memoryCredentialRepo) ConsumeOTP(ctx context.Context, userID uuid.UUID, otpHash string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	cred, ok := repo.store.creds[userID]
	if !ok || cred.OTPHash != otpHash || !slotLive(cred.OTPExpiresAt) {
		return repository.ErrVerificationSlotStale
	}
	cred.OTPHash = ""
	cred.OTPExpiresAt = nil

	return nil
}

func (repo *memoryCredentialRepo) ConsumeResetToken(ctx context.Context, userID uuid.UUID, tokenHash, newPasswordHash string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	cred, ok := repo.store.creds[userID]
	if !ok || cred.ResetTokenHash != tokenHash || !slotLive(cred.ResetTokenExpiresAt) {
		return repository.ErrVerificationSlotStale
	}
	cred.PasswordHash = newPasswordHash
	cred.ResetTokenHash = ""
	cred.ResetTokenExpiresAt = nil

	return nil
}

func slotLive(expiresAt *time.Time) bool {
	return expiresAt != nil && expiresAt.After(time.Now())
}

type memorySessionRepo struct{ store *memoryStore }

func (repo *memorySessionRepo) Create(ctx context.Context, session *entity.RefreshSession) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.CreatedAt = time.Now()
	copied := *session
	repo.store.sessions[session.ID] = &copied

	return nil
}

func (repo *memorySessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.RefreshSession, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, session := range repo.store.sessions {
		if session.TokenHash == tokenHash && session.ExpiresAt.After(time.Now()) {
			copied := *session
			return &copied, nil
		}
	}

	return nil, repository.ErrSessionNotFound
}

func (repo *memorySessionRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.RefreshSession, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	var sessions []entity.RefreshSession
	for _, session := range repo.store.sessions {
		if session.UserID == userID && session.ExpiresAt.After(time.Now()) {
			sessions = append(sessions, *session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	return sessions, nil
}

func (repo *memorySessionRepo) DeleteByTokenHash(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for id, session := range repo.store.sessions {
		if session.UserID == userID && session.TokenHash == tokenHash {
			delete(repo.store.sessions, id)
			return nil
		}
	}

	return repository.ErrSessionNotFound
}

func (repo *memorySessionRepo) DeleteByID(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	session, ok := repo.store.sessions[sessionID]
	if !ok || session.UserID != userID {
		return repository.ErrSessionNotFound
	}
	delete(repo.store.sessions, sessionID)

	return nil
}

func (repo *memorySessionRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	var count int64
	for id, session := range repo.store.sessions {
		if session.UserID == userID {
			delete(repo.store.sessions, id)
			count++
		}
	}

	return count, nil
}

func (repo *memorySessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	var count int64
	for id, session := range repo.store.sessions {
		if session.ExpiresAt.Before(now) {
			delete(repo.store.sessions, id)
			count++
		}
	}

	return count, nil
}

type memoryAddressRepo struct{ store *memoryStore }

func (repo *memoryAddressRepo) Create(ctx context.Context, address *entity.Address) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	if address.CreatedAt.IsZero() {
		address.CreatedAt = time.Now()
	}
	address.UpdatedAt = address.CreatedAt
	copied := *address
	repo.store.addresses[address.ID] = &copied

	return nil
}

func (repo *memoryAddressRepo) FindByID(ctx context.Context, userID uuid.UUID, addressID uuid.UUID) (*entity.Address, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	address, ok := repo.store.addresses[addressID]
	if !ok || address.UserID != userID {
		return nil, repository.ErrAddressNotFound
	}
	copied := *address

	return &copied, nil
}

func (repo *memoryAddressRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Address, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	var addresses []entity.Address
	for _, address := range repo.store.addresses {
		if address.UserID == userID {
			addresses = append(addresses, *address)
		}
	}
	sort.Slice(addresses, func(i, j int) bool {
		if addresses[i].IsDefault != addresses[j].IsDefault {
			return addresses[i].IsDefault
		}
		return addresses[i].CreatedAt.After(addresses[j].CreatedAt)
	})

	return addresses, nil
}

func (repo *memoryAddressRepo) Update(ctx context.Context, address *entity.Address) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	existing, ok := repo.store.addresses[address.ID]
	if !ok || existing.UserID != address.UserID {
		return repository.ErrAddressNotFound
	}
	address.UpdatedAt = time.Now()
	copied := *address
	repo.store.addresses[address.ID] = &copied

	return nil
}

func (repo *memoryAddressRepo) Delete(ctx context.Context, userID uuid.UUID, addressID uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	address, ok := repo.store.addresses[addressID]
	if !ok || address.UserID != userID {
		return repository.ErrAddressNotFound
	}
	delete(repo.store.addresses, addressID)

	return nil
}

func (repo *memoryAddressRepo) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, address := range repo.store.addresses {
		if address.UserID == userID {
			address.IsDefault = false
		}
	}

	return nil
}

func (repo *memoryAddressRepo) SetDefault(ctx context.Context, userID uuid.UUID, addressID uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	address, ok := repo.store.addresses[addressID]
	if !ok || address.UserID != userID {
		return repository.ErrAddressNotFound
	}
	address.IsDefault = true

	return nil
}

func (repo *memoryAddressRepo) FindNewestExcept(ctx context.Context, userID uuid.UUID, excludeID uuid.UUID) (*entity.Address, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	var newest *entity.Address
	for _, address := range repo.store.addresses {
		if address.UserID != userID || address.ID == excludeID {
			continue
		}
		if newest == nil || address.CreatedAt.After(newest.CreatedAt) {
			newest = address
		}
	}
	if newest == nil {
		return nil, repository.ErrAddressNotFound
	}
	copied := *newest

	return &copied, nil
}

// --- Fake domain services ---

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

func (fakeHasher) ValidateStrength(password string) error {
	if len(password) < 8 {
		return domainerrors.ErrPasswordStrength
	}

	return nil
}

type fakeTokenService struct {
	mu     sync.Mutex
	serial int
	claims map[string]*service.Claims
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{claims: make(map[string]*service.Claims)}
}

func (svc *fakeTokenService) GenerateAccessToken(userID uuid.UUID, role string) (string, error) {
	return svc.issue(userID, role, service.TokenTypeAccess), nil
}

func (svc *fakeTokenService) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return svc.issue(userID, "", service.TokenTypeRefresh), nil
}

func (svc *fakeTokenService) issue(userID uuid.UUID, role, tokenType string) string {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.serial++
	token := fmt.Sprintf("%s-token-%d", tokenType, svc.serial)
	svc.claims[token] = &service.Claims{UserID: userID, Role: role, Type: tokenType}

	return token
}

func (svc *fakeTokenService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	return svc.validate(tokenString, service.TokenTypeAccess)
}

func (svc *fakeTokenService) ValidateRefreshToken(tokenString string) (*service.Claims, error) {
	return svc.validate(tokenString, service.TokenTypeRefresh)
}

func (svc *fakeTokenService) validate(tokenString, wantType string) (*service.Claims, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	claims, ok := svc.claims[tokenString]
	if !ok || claims.Type != wantType {
		return nil, domainerrors.ErrAccessTokenInvalid
	}

	return claims, nil
}

func (svc *fakeTokenService) HashToken(token string) string {
	return "sha:" + token
}

func (svc *fakeTokenService) GetAccessTokenDuration() time.Duration {
	return 15 * time.Minute
}

func (svc *fakeTokenService) GetRefreshTokenDuration() time.Duration {
	return 7 * 24 * time.Hour
}

type fakeSecretGenerator struct {
	mu     sync.Mutex
	serial int
	otp    string
}

func newFakeSecretGenerator() *fakeSecretGenerator {
	return &fakeSecretGenerator{otp: "123456"}
}

func (gen *fakeSecretGenerator) VerificationToken() (string, error) {
	gen.mu.Lock()
	defer gen.mu.Unlock()

	gen.serial++

	return fmt.Sprintf("secret-%d", gen.serial), nil
}

func (gen *fakeSecretGenerator) OTP() (string, error) {
	return gen.otp, nil
}

func (gen *fakeSecretGenerator) HashSecret(secret string) string {
	return "sha:" + secret
}

type sentMail struct {
	ToEmail string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failure error
}

func (m *fakeMailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return m.failure
	}
	m.sent = append(m.sent, sentMail{ToEmail: toEmail, Subject: subject, Body: htmlBody})

	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sent)
}

func (m *fakeMailer) lastSent() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sent[len(m.sent)-1]
}

type fakePublisher struct {
	mu      sync.Mutex
	events  []service.AccountEvent
	failure error
}

func (p *fakePublisher) PublishAccountEvent(ctx context.Context, event *service.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failure != nil {
		return p.failure
	}
	p.events = append(p.events, *event)

	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}

	return types
}

// --- Fixtures ---

type accountFixtures struct {
	service   usecase.AccountUsecase
	store     *memoryStore
	tokens    *fakeTokenService
	secrets   *fakeSecretGenerator
	mailer    *fakeMailer
	publisher *fakePublisher
}

func createTestAccountService() accountFixtures {
	store := newMemoryStore()
	tokens := newFakeTokenService()
	secrets := newFakeSecretGenerator()
	mailer := &fakeMailer{}
	publisher := &fakePublisher{}

	svc := NewAccountService(
		store,
		fakeHasher{},
		tokens,
		secrets,
		mailer,
		publisher,
		newTestConfig(),
		newDiscardLogger(),
	)

	return accountFixtures{
		service:   svc,
		store:     store,
		tokens:    tokens,
		secrets:   secrets,
		mailer:    mailer,
		publisher: publisher,
	}
}

type verificationFixtures struct {
	service   usecase.VerificationUsecase
	store     *memoryStore
	secrets   *fakeSecretGenerator
	mailer    *fakeMailer
	publisher *fakePublisher
}

func createTestVerificationService() verificationFixtures {
	store := newMemoryStore()
	secrets := newFakeSecretGenerator()
	mailer := &fakeMailer{}
	publisher := &fakePublisher{}

	svc := NewVerificationService(
		store,
		fakeHasher{},
		secrets,
		mailer,
		publisher,
		newTestConfig(),
		newDiscardLogger(),
	)

	return verificationFixtures{
		service:   svc,
		store:     store,
		secrets:   secrets,
		mailer:    mailer,
		publisher: publisher,
	}
}

// seedUser inserts an active user plus credential directly into the store.
func seedUser(store *memoryStore, email, phone, password string, verified bool) *entity.User {
	user := &entity.User{
		ID:              uuid.New(),
		Name:            "Test User",
		Email:           email,
		Phone:           phone,
		Role:            entity.RoleCustomer,
		IsActive:        true,
		IsEmailVerified: verified,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	store.users[user.ID] = user
	store.creds[user.ID] = &entity.Credential{
		UserID:       user.ID,
		PasswordHash: "hashed:" + password,
	}

	return user
}
