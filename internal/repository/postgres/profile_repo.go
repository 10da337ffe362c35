package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jiwoolee/maru/internal/domain"
)

const profileColumns = "id, user_id, urlname, username, blog_title, user_pic, intro, neighbor_visibility, created_at, updated_at"

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, user_id, urlname, username, blog_title, user_pic, intro, neighbor_visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.UserID, p.Urlname, p.Username, p.BlogTitle,
		p.UserPic, p.Intro, p.NeighborVisibility, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return r.scanProfile(ctx, "SELECT "+profileColumns+" FROM profiles WHERE user_id = $1", userID)
}

func (r *ProfileRepo) GetByUrlname(ctx context.Context, urlname string) (*domain.Profile, error) {
	return r.scanProfile(ctx, "SELECT "+profileColumns+" FROM profiles WHERE urlname = $1", urlname)
}

func (r *ProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	query := `
		UPDATE profiles
		SET username = $2, blog_title = $3, user_pic = $4, intro = $5,
			neighbor_visibility = $6, updated_at = $7
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Username, p.BlogTitle, p.UserPic, p.Intro,
		p.NeighborVisibility, time.Now(),
	)
	return err
}

func (r *ProfileRepo) SearchByBlogTitle(ctx context.Context, keyword string) ([]domain.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE blog_title ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY urlname ASC`
	return r.queryProfiles(ctx, query, escapeLike(keyword))
}

func (r *ProfileRepo) SearchByNameOrUrlname(ctx context.Context, keyword string) ([]domain.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE urlname ILIKE '%' || $1 || '%' ESCAPE '\'
			OR username ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY urlname ASC`
	return r.queryProfiles(ctx, query, escapeLike(keyword))
}

func (r *ProfileRepo) queryProfiles(ctx context.Context, query string, args ...any) ([]domain.Profile, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

func (r *ProfileRepo) scanProfile(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	var p domain.Profile
	err := scanProfileRow(r.pool.QueryRow(ctx, query, arg), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func scanProfileRow(row pgx.Row, p *domain.Profile) error {
	return row.Scan(
		&p.ID, &p.UserID, &p.Urlname, &p.Username, &p.BlogTitle,
		&p.UserPic, &p.Intro, &p.NeighborVisibility, &p.CreatedAt, &p.UpdatedAt,
	)
}
