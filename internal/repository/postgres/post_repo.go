package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jiwoolee/maru/internal/domain"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO posts (id, author_id, title, visibility, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			post.ID, post.AuthorID, post.Title, post.Visibility, post.CreatedAt,
		)
		if err != nil {
			return err
		}

		for _, t := range post.Texts {
			if _, err := tx.Exec(ctx, `
				INSERT INTO post_texts (id, post_id, content, position)
				VALUES ($1, $2, $3, $4)`,
				t.ID, t.PostID, t.Content, t.Position,
			); err != nil {
				return err
			}
		}

		for _, img := range post.Images {
			if _, err := tx.Exec(ctx, `
				INSERT INTO post_images (id, post_id, image_url, caption, position, is_representative)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				img.ID, img.PostID, img.ImageURL, img.Caption, img.Position, img.IsRepresentative,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostRepo) SearchByAuthor(ctx context.Context, authorID uuid.UUID, keyword string) ([]domain.Post, error) {
	query := `
		SELECT id, author_id, title, visibility, created_at
		FROM posts
		WHERE author_id = $1 AND visibility <> 'me'
		  AND (title ILIKE '%' || $2 || '%' ESCAPE '\'
			OR EXISTS (SELECT 1 FROM post_texts t WHERE t.post_id = posts.id AND t.content ILIKE '%' || $2 || '%' ESCAPE '\')
			OR EXISTS (SELECT 1 FROM post_images i WHERE i.post_id = posts.id AND i.caption ILIKE '%' || $2 || '%' ESCAPE '\'))
		ORDER BY created_at ASC`

	return r.queryPostsWithBlocks(ctx, query, authorID, escapeLike(keyword))
}

func (r *PostRepo) SearchEveryone(ctx context.Context, keyword string) ([]domain.Post, error) {
	query := `
		SELECT id, author_id, title, visibility, created_at
		FROM posts
		WHERE visibility = 'everyone'
		  AND (title ILIKE '%' || $1 || '%' ESCAPE '\'
			OR EXISTS (SELECT 1 FROM post_texts t WHERE t.post_id = posts.id AND t.content ILIKE '%' || $1 || '%' ESCAPE '\')
			OR EXISTS (SELECT 1 FROM post_images i WHERE i.post_id = posts.id AND i.caption ILIKE '%' || $1 || '%' ESCAPE '\'))
		ORDER BY created_at ASC`

	return r.queryPostsWithBlocks(ctx, query, escapeLike(keyword))
}

func (r *PostRepo) queryPostsWithBlocks(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Visibility, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadBlocks(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepo) loadBlocks(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(posts))
	index := make(map[uuid.UUID]*domain.Post, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = &posts[i]
	}

	textRows, err := r.pool.Query(ctx, `
		SELECT id, post_id, content, position
		FROM post_texts
		WHERE post_id = ANY($1)
		ORDER BY post_id, position ASC`, ids)
	if err != nil {
		return err
	}
	defer textRows.Close()

	for textRows.Next() {
		var t domain.PostText
		if err := textRows.Scan(&t.ID, &t.PostID, &t.Content, &t.Position); err != nil {
			return err
		}
		if p, ok := index[t.PostID]; ok {
			p.Texts = append(p.Texts, t)
		}
	}
	if err := textRows.Err(); err != nil {
		return err
	}

	imageRows, err := r.pool.Query(ctx, `
		SELECT id, post_id, image_url, caption, position, is_representative
		FROM post_images
		WHERE post_id = ANY($1)
		ORDER BY post_id, position ASC`, ids)
	if err != nil {
		return err
	}
	defer imageRows.Close()

	for imageRows.Next() {
		var img domain.PostImage
		if err := imageRows.Scan(&img.ID, &img.PostID, &img.ImageURL, &img.Caption, &img.Position, &img.IsRepresentative); err != nil {
			return err
		}
		if p, ok := index[img.PostID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return imageRows.Err()
}
