package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"bookline/internal/domain"
	"bookline/internal/store"
)

type UserRepo struct {
	db *bun.DB
}

func NewUserRepo(db *bun.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) (domain.User, domain.Profile, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&user).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateEmail
			}
			return err
		}
		profile.UserID = user.ID
		if _, err := tx.NewInsert().Model(&profile).Exec(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.User{}, domain.Profile{}, err
	}
	return user, profile, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *UserRepo) ProfileByUserID(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	var p domain.Profile
	err := r.db.NewSelect().
		Model(&p).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, store.ErrNotFound
		}
		return domain.Profile{}, err
	}
	return p, nil
}

func (r *UserRepo) UpdateEmail(ctx context.Context, userID uuid.UUID, email string) error {
	res, err := r.db.NewUpdate().
		Model((*domain.User)(nil)).
		Set("email = ?", email).
		Set("updated_at = now()").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateEmail
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, profile domain.Profile) error {
	res, err := r.db.NewUpdate().
		Model(&profile).
		Column("first_name", "last_name", "time_zone", "updated_at").
		Where("user_id = ?", profile.UserID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
