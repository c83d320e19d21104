package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

const (
	uniqueViolation = "23505"

	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"

	userColumns = `id::text, name, username, email, password_hash, followers, following,
		bio, profile_picture, created_at, updated_at`
)

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ProfilePicture == "" {
		u.ProfilePicture = entity.DefaultProfilePicture
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, username, email, password_hash, bio, profile_picture)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at, updated_at
	`, u.Name, u.Username, u.Email, u.PasswordHash, u.Bio, u.ProfilePicture)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) ListExcept(ctx context.Context, id string) ([]*entity.User, error) {
	// an unparsable id excludes nobody: NULL is distinct from every row
	var except any
	if cid, ok := canonicalID(id); ok {
		except = cid
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id IS DISTINCT FROM $1::uuid
		ORDER BY created_at
	`, except)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, p entity.ProfilePatch) (*entity.User, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET name = COALESCE($1, name),
		    username = COALESCE($2, username),
		    bio = COALESCE($3, bio),
		    updated_at = now()
		WHERE id = $4
		RETURNING `+userColumns,
		p.Name, p.Username, p.Bio, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return u, nil
}

func (r *UserRepository) UpdatePicture(ctx context.Context, id, ref string) (*entity.User, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET profile_picture = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+userColumns, ref, id))
}

// Follow appends actorID to the target's followers and targetID to the
// actor's following inside one transaction. Both rows are locked in id order
// so concurrent opposite follows cannot deadlock.
func (r *UserRepository) Follow(ctx context.Context, actorID, targetID string) error {
	return r.mutateEdge(ctx, actorID, targetID, func(actor, target *entity.User) error {
		if target.Followers.Contains(actor.ID) {
			return repository.ErrAlreadyFollowing
		}
		return nil
	}, `array_append`)
}

// Unfollow is the inverse of Follow. The guard checks the actor's following set.
func (r *UserRepository) Unfollow(ctx context.Context, actorID, targetID string) error {
	return r.mutateEdge(ctx, actorID, targetID, func(actor, target *entity.User) error {
		if !actor.Following.Contains(target.ID) {
			return repository.ErrNotFollowing
		}
		return nil
	}, `array_remove`)
}

func (r *UserRepository) mutateEdge(ctx context.Context, actorID, targetID string, guard func(actor, target *entity.User) error, arrayFn string) error {
	actorID, okActor := canonicalID(actorID)
	targetID, okTarget := canonicalID(targetID)
	if !okActor || !okTarget {
		return repository.ErrNotFound
	}
	if actorID == targetID {
		return repository.ErrSelfFollow
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	actor, target, err := lockPair(ctx, tx, actorID, targetID)
	if err != nil {
		return err
	}
	if err := guard(actor, target); err != nil {
		return err
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE users SET followers = `+arrayFn+`(followers, $1), updated_at = $2 WHERE id = $3`,
		actorID, now, targetID); err != nil {
		return fmt.Errorf("update followers: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET following = `+arrayFn+`(following, $1), updated_at = $2 WHERE id = $3`,
		targetID, now, actorID); err != nil {
		return fmt.Errorf("update following: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func lockPair(ctx context.Context, tx pgx.Tx, actorID, targetID string) (*entity.User, *entity.User, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE
	`, []string{actorID, targetID})
	if err != nil {
		return nil, nil, fmt.Errorf("lock users: %w", err)
	}
	defer rows.Close()

	var actor, target *entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, nil, err
		}
		if u.ID == actorID {
			actor = u
		}
		if u.ID == targetID {
			target = u
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("lock users: %w", err)
	}
	if actor == nil || target == nil {
		return nil, nil, repository.ErrNotFound
	}
	return actor, target, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var followers, following []string
	if err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash,
		&followers, &following, &u.Bio, &u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Followers = entity.NewIDSet(followers...)
	u.Following = entity.NewIDSet(following...)
	return u, nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case emailConstraint:
			return repository.ErrEmailTaken
		case usernameConstraint:
			return repository.ErrUsernameTaken
		}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return fmt.Errorf("write user: %w", err)
}

// canonicalID returns id in the lower-case hyphenated form Postgres prints,
// so ids compare equal to the values stored in followers and following.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

var _ repository.UserRepository = (*UserRepository)(nil)
