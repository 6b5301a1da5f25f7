package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core"
	"github.com/belajarku/backend/core/gamification"
	"github.com/belajarku/backend/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var (
	_ user.Repository                = (*userRepository)(nil) // interface compliance check
	_ gamification.ProfileRepository = (*userRepository)(nil)
)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// NewProfileRepository exposes the users table as the gamification profile store.
func NewProfileRepository(db *sqlx.DB) gamification.ProfileRepository {
	return &userRepository{db: db}
}

// dbUser mirrors user.User with driver-friendly column types.
type dbUser struct {
	ID           string         `db:"user_id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	BadgeID      string         `db:"badge_id"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (u dbUser) toCore() user.User {
	usr := user.User{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		IsActive:     u.IsActive,
		Roles:        u.Roles,
		BadgeID:      u.BadgeID,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.LastLogin.Valid {
		usr.LastLogin = u.LastLogin.Time
	}
	return usr
}

func toDBUser(usr user.User) dbUser {
	u := dbUser{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		Roles:        usr.Roles,
		BadgeID:      usr.BadgeID,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
	}
	if !usr.LastLogin.IsZero() {
		u.LastLogin = sql.NullTime{Time: usr.LastLogin, Valid: true}
	}
	return u
}

const userColumns = "user_id, name, username, email, is_active, roles, badge_id, password_hash, created_at, updated_at, last_login"

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	check := func(column, value, match string) (bool, error) {
		if value == "" {
			return false, nil
		}
		q := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM users WHERE %s = $1 AND user_id <> ALL($2))", column)
		var exists bool
		if err := repo.db.GetContext(ctx, &exists, q, value, pq.Array(exclIDs)); err != nil {
			return false, errors.Wrapf(err, "checking %s uniqueness", match)
		}
		return exists, nil
	}

	if exists, err := check("username", username, "username"); err != nil {
		return err
	} else if exists {
		return user.ErrUsernameExists
	}
	if exists, err := check("email", email, "email"); err != nil {
		return err
	} else if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = newID()
	}
	const q = `
	INSERT INTO users (` + userColumns + `)
	VALUES (:user_id, :name, :username, :email, :is_active, :roles, :badge_id, :password_hash, :created_at, :updated_at, :last_login)`

	if _, err := repo.db.NamedExecContext(ctx, q, toDBUser(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		where string
		arg   interface{}
	)
	switch {
	case filter.ID != "":
		where, arg = "user_id = $1", filter.ID
	case filter.Username != "":
		where, arg = "username = $1", filter.Username
	case filter.Email != "":
		where, arg = "email = $1", filter.Email
	case filter.UsernameOrEmail != "":
		where, arg = "(username = $1 OR email = $1)", filter.UsernameOrEmail
	default:
		return user.User{}, user.ErrNotFound
	}

	var u dbUser
	err := repo.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return u.toCore(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	var (
		clauses []string
		args    []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			clauses = append(clauses, fmt.Sprintf("(name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", p))
		}
		if len(filter.Roles) > 0 {
			rolesClauses := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				p := arg(role + "%")
				rolesClauses = append(rolesClauses, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(roles) r WHERE r LIKE %s)", p))
			}
			clauses = append(clauses, "("+strings.Join(rolesClauses, " OR ")+")")
		}
		if filter.IsActive != nil {
			clauses = append(clauses, "is_active = "+arg(*filter.IsActive))
		}
		if !filter.CreatedFrom.IsZero() {
			clauses = append(clauses, "created_at >= "+arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			clauses = append(clauses, "created_at <= "+arg(filter.CreatedTo.UTC()))
		}
	}
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}
	q += orderBy(ordering, "created_at DESC")

	var dbUsers []dbUser
	if err := repo.db.SelectContext(ctx, &dbUsers, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		users = append(users, u.toCore())
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
	UPDATE users
	SET name = :name, username = :username, email = :email, is_active = :is_active,
	    roles = :roles, badge_id = :badge_id, password_hash = :password_hash,
	    updated_at = :updated_at, last_login = :last_login
	WHERE user_id = :user_id`

	res, err := repo.db.NamedExecContext(ctx, q, toDBUser(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM users WHERE user_id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(n), nil
}

// gamification.ProfileRepository

func (repo *userRepository) GetUserBadgeID(ctx context.Context, userID string) (string, error) {
	var badgeID string
	err := repo.db.GetContext(ctx, &badgeID, "SELECT badge_id FROM users WHERE user_id = $1", userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", user.ErrNotFound
		}
		return "", errors.Wrap(err, "getting user badge")
	}
	return badgeID, nil
}

func (repo *userRepository) SetUserBadge(ctx context.Context, userID, badgeID string) error {
	res, err := repo.db.ExecContext(ctx, "UPDATE users SET badge_id = $1 WHERE user_id = $2", badgeID, userID)
	if err != nil {
		return errors.Wrap(err, "setting user badge")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) GetUserContact(ctx context.Context, userID string) (name, email string, err error) {
	var contact struct {
		Name  string `db:"name"`
		Email string `db:"email"`
	}
	err = repo.db.GetContext(ctx, &contact, "SELECT name, email FROM users WHERE user_id = $1", userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", "", user.ErrNotFound
		}
		return "", "", errors.Wrap(err, "getting user contact")
	}
	return contact.Name, contact.Email, nil
}
