package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeep/service-contacts-go/internal/user/entity"
)

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(sqlx.NewDb(db, "postgres")), mock
}

func userRows(u *entity.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "subscription", "session_token",
		"avatar_url", "verified", "verification_token", "created_at", "updated_at",
	}).AddRow(u.ID, u.Email, u.PasswordHash, string(u.Subscription), u.SessionToken,
		u.AvatarURL, u.Verified, u.VerificationToken, time.Now(), time.Now())
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_users_email"})

	err := repo.Create(context.Background(), &entity.User{
		ID: "u1", Email: "a@x.com", PasswordHash: "h",
		Subscription: entity.SubscriptionStarter, VerificationToken: "vt",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInserts(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "a@x.com", "h", "starter", "", "//www.gravatar.com/avatar/x", false, "vt").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &entity.User{
		ID: "u1", Email: "a@x.com", PasswordHash: "h",
		Subscription: entity.SubscriptionStarter,
		AvatarURL:    "//www.gravatar.com/avatar/x", VerificationToken: "vt",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	want := &entity.User{ID: "u1", Email: "a@x.com", Subscription: entity.SubscriptionStarter, VerificationToken: "vt"}
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WithArgs("a@x.com").
		WillReturnRows(userRows(want))

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "vt", got.VerificationToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSetVerifiedClearsToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET verified=true, verification_token=''").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetVerified(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSubscriptionNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE users SET subscription=").
		WithArgs("ghost", "pro").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateSubscription(context.Background(), "ghost", entity.SubscriptionPro)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
