package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jiwoolee/maru/internal/domain"
	"github.com/jiwoolee/maru/internal/repository"
)

type NeighborRepo struct {
	pool *pgxpool.Pool
}

func NewNeighborRepo(pool *pgxpool.Pool) *NeighborRepo {
	return &NeighborRepo{pool: pool}
}

func (r *NeighborRepo) CreateRequest(ctx context.Context, req *domain.NeighborRequest) error {
	query := `
		INSERT INTO neighbor_requests (id, from_id, to_id, status, request_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.FromID, req.ToID, req.Status, req.RequestMessage, req.CreatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicatePending
	}
	return err
}

func (r *NeighborRepo) GetRequest(ctx context.Context, fromID, toID uuid.UUID) (*domain.NeighborRequest, error) {
	query := `
		SELECT id, from_id, to_id, status, request_message, created_at
		FROM neighbor_requests
		WHERE from_id = $1 AND to_id = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var req domain.NeighborRequest
	err := r.pool.QueryRow(ctx, query, fromID, toID).Scan(
		&req.ID, &req.FromID, &req.ToID, &req.Status, &req.RequestMessage, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &req, err
}

func (r *NeighborRepo) PendingExists(ctx context.Context, fromID, toID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM neighbor_requests WHERE from_id = $1 AND to_id = $2 AND status = 'pending')`,
		fromID, toID,
	).Scan(&exists)
	return exists, err
}

func (r *NeighborRepo) AreMutual(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM neighbor_requests
			WHERE status = 'accepted'
			  AND ((from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1))
		)`,
		userA, userB,
	).Scan(&exists)
	return exists, err
}

func (r *NeighborRepo) AcceptAllPending(ctx context.Context, userA, userB uuid.UUID) (int64, error) {
	var promoted int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockPair(ctx, tx, userA, userB); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE neighbor_requests
			SET status = 'accepted'
			WHERE status = 'pending'
			  AND ((from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1))`,
			userA, userB,
		)
		promoted = tag.RowsAffected()
		return err
	})
	return promoted, err
}

func (r *NeighborRepo) DeletePending(ctx context.Context, fromID, toID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM neighbor_requests WHERE from_id = $1 AND to_id = $2 AND status = 'pending'`,
		fromID, toID,
	)
	return tag.RowsAffected(), err
}

func (r *NeighborRepo) DeleteAccepted(ctx context.Context, userA, userB uuid.UUID) (int64, error) {
	var removed int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockPair(ctx, tx, userA, userB); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			DELETE FROM neighbor_requests
			WHERE status = 'accepted'
			  AND ((from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1))`,
			userA, userB,
		)
		removed = tag.RowsAffected()
		return err
	})
	return removed, err
}

func (r *NeighborRepo) ListIncoming(ctx context.Context, toID uuid.UUID) ([]domain.NeighborRequest, error) {
	query := `
		SELECT r.id, r.from_id, r.to_id, r.status, r.request_message, r.created_at,
			p.urlname, p.username, p.user_pic
		FROM neighbor_requests r
		JOIN profiles p ON p.user_id = r.from_id
		WHERE r.to_id = $1 AND r.status = 'pending'
		ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, toID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.NeighborRequest
	for rows.Next() {
		var req domain.NeighborRequest
		if err := rows.Scan(
			&req.ID, &req.FromID, &req.ToID, &req.Status, &req.RequestMessage, &req.CreatedAt,
			&req.FromUrlname, &req.FromUsername, &req.FromUserPic,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *NeighborRepo) ListNeighborProfiles(ctx context.Context, userID uuid.UUID) ([]domain.Profile, error) {
	// Both directional accepted edges exist per mutual pair, so the other
	// party would come back twice without DISTINCT.
	query := `
		SELECT DISTINCT p.id, p.user_id, p.urlname, p.username, p.blog_title,
			p.user_pic, p.intro, p.neighbor_visibility, p.created_at, p.updated_at
		FROM neighbor_requests r
		JOIN profiles p ON p.user_id = CASE WHEN r.from_id = $1 THEN r.to_id ELSE r.from_id END
		WHERE (r.from_id = $1 OR r.to_id = $1) AND r.status = 'accepted'
		ORDER BY p.username ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := scanProfileRow(rows, &p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *NeighborRepo) ListNeighborIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT CASE WHEN from_id = $1 THEN to_id ELSE from_id END
		FROM neighbor_requests
		WHERE (from_id = $1 OR to_id = $1) AND status = 'accepted'`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *NeighborRepo) CountNeighbors(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT CASE WHEN from_id = $1 THEN to_id ELSE from_id END)
		FROM neighbor_requests
		WHERE (from_id = $1 OR to_id = $1) AND status = 'accepted'`,
		userID,
	).Scan(&count)
	return count, err
}

// lockPair serializes mutations on one unordered pair for the duration of
// the surrounding transaction, keeping the two directional edges from
// diverging under concurrent accept/remove.
func lockPair(ctx context.Context, tx pgx.Tx, userA, userB uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		SELECT pg_advisory_xact_lock(hashtextextended(
			LEAST($1::text, $2::text) || ':' || GREATEST($1::text, $2::text), 0))`,
		userA, userB,
	)
	return err
}
