package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/reportube/reportube/core/user"
)

const userCols = `id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login`

// userRow maps the "user" table; roles are a Postgres text array.
type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    time.Time      `db:"last_login"`
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		Roles:        usr.Roles,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    usr.LastLogin,
	}
}

func (row userRow) user() user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		IsActive:     row.IsActive,
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	var rows []userRow
	q := `SELECT username, email FROM "user" WHERE (username = $1 OR email = $2) AND NOT (id = ANY ($3))`
	if err := repo.db.SelectContext(ctx, &rows, q, username, email, pq.Array(exclIDs)); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}

	for _, row := range rows {
		if username != "" && row.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && row.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}

	q := `
		INSERT INTO "user" (` + userCols + `)
		VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`

	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, newUserRow(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

// UpdateOrCreateUser matches an existing user on username or email and
// overwrites it; otherwise a new user is created.
func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	active := usr.IsActive
	existing, err := repo.GetUserByUsernameOrEmail(ctx, usr.Username)
	if err == nil {
		usr.ID = existing.ID
		return repo.UpdateUser(ctx, usr, &active)
	}
	if usr.Email != "" {
		if existing, err = repo.GetUserByEmail(ctx, usr.Email); err == nil {
			usr.ID = existing.ID
			return repo.UpdateUser(ctx, usr, &active)
		}
	}
	return repo.CreateUser(ctx, usr)
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	q := `SELECT ` + userCols + ` FROM "user" ORDER BY name`

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.users(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, `SELECT `+userCols+` FROM "user" WHERE id = $1`, id)
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, `SELECT `+userCols+` FROM "user" WHERE username = $1 AND username <> ''`, username)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, `SELECT `+userCols+` FROM "user" WHERE email = $1 AND email <> ''`, email)
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	q := `SELECT ` + userCols + ` FROM "user" WHERE (username = $1 OR email = $1) AND $1 <> ''`
	return repo.getUser(ctx, q, username)
}

func (repo userRepository) getUser(ctx context.Context, q string, args ...interface{}) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.user(), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	q := `SELECT ` + userCols + ` FROM "user" WHERE TRUE`
	args := make([]interface{}, 0, 3)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		arg := dollar(len(args))
		q += ` AND (name ILIKE ` + arg + ` OR username ILIKE ` + arg + ` OR email ILIKE ` + arg + `)`
	}
	if len(filter.Roles) > 0 {
		// prefix roles ("admin:") match any role under them
		conds := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			args = append(args, role+"%")
			conds = append(conds, `EXISTS (SELECT 1 FROM unnest(roles) r WHERE r LIKE `+dollar(len(args))+`)`)
		}
		q += ` AND (` + strings.Join(conds, " OR ") + `)`
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		q += ` AND is_active = ` + dollar(len(args))
	}
	q += ` ORDER BY name`

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return repo.users(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	orig, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		return user.User{}, err
	}

	// zero-value fields keep their stored value
	if usr.Name == "" {
		usr.Name = orig.Name
	}
	if usr.Username == "" {
		usr.Username = orig.Username
	}
	if usr.Email == "" {
		usr.Email = orig.Email
	}
	if usr.Roles == nil {
		usr.Roles = orig.Roles
	}
	if len(usr.PasswordHash) == 0 {
		usr.PasswordHash = orig.PasswordHash
	}
	if usr.LastLogin.IsZero() {
		usr.LastLogin = orig.LastLogin
	}
	if usr.UpdatedAt.IsZero() {
		usr.UpdatedAt = time.Now().UTC()
	}
	usr.IsActive = orig.IsActive
	if isActive != nil {
		usr.IsActive = *isActive
	}
	usr.CreatedAt = orig.CreatedAt

	q := `
		UPDATE "user"
		SET name          = :name,
			username      = :username,
			email         = :email,
			is_active     = :is_active,
			roles         = :roles,
			password_hash = :password_hash,
			updated_at    = :updated_at,
			last_login    = :last_login
		WHERE id = :id`

	if _, err = sqlx.NamedExecContext(ctx, repo.db, q, newUserRow(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY ($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func (repo userRepository) users(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users
}

func dollar(n int) string {
	return "$" + strconv.Itoa(n)
}
