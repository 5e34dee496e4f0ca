package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blog-api/internal/domain"
)

type BlogRepository interface {
	Create(ctx context.Context, blog domain.Blog) error
	Update(ctx context.Context, blog domain.Blog) error
	GetByID(ctx context.Context, id string) (domain.Blog, error)
	GetBySlug(ctx context.Context, slug string) (domain.Blog, error)
	List(ctx context.Context, q domain.PageQuery) ([]domain.Blog, int, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

type PgBlogRepository struct {
	pool *pgxpool.Pool
}

func NewPgBlogRepository(pool *pgxpool.Pool) *PgBlogRepository {
	return &PgBlogRepository{pool: pool}
}

const blogColumns = `id::text, slug, author_name, banner, title, sub_title, content, read_time, active, published, created_at, updated_at`

func (r *PgBlogRepository) Create(ctx context.Context, blog domain.Blog) error {
	const query = `
		INSERT INTO blogs (id, slug, author_name, banner, title, sub_title, content, read_time, active, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		blog.ID,
		blog.Slug,
		blog.AuthorName,
		blog.Banner,
		blog.Title,
		blog.SubTitle,
		blog.Content,
		blog.ReadTime,
		blog.Active,
		blog.Published,
		blog.CreatedAt,
		blog.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

func (r *PgBlogRepository) Update(ctx context.Context, blog domain.Blog) error {
	const query = `
		UPDATE blogs
		SET slug = $1, author_name = $2, banner = $3, title = $4, sub_title = $5, content = $6, read_time = $7, active = $8, published = $9, updated_at = $10
		WHERE id = $11
	`
	if !validID(blog.ID) {
		return pgx.ErrNoRows
	}
	tag, err := r.pool.Exec(ctx, query,
		blog.Slug,
		blog.AuthorName,
		blog.Banner,
		blog.Title,
		blog.SubTitle,
		blog.Content,
		blog.ReadTime,
		blog.Active,
		blog.Published,
		blog.UpdatedAt,
		blog.ID,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgBlogRepository) GetByID(ctx context.Context, id string) (domain.Blog, error) {
	if !validID(id) {
		return domain.Blog{}, pgx.ErrNoRows
	}
	return scanBlog(r.pool.QueryRow(ctx, `SELECT `+blogColumns+` FROM blogs WHERE id = $1`, id))
}

func (r *PgBlogRepository) GetBySlug(ctx context.Context, slug string) (domain.Blog, error) {
	return scanBlog(r.pool.QueryRow(ctx, `SELECT `+blogColumns+` FROM blogs WHERE slug = $1`, slug))
}

func (r *PgBlogRepository) List(ctx context.Context, q domain.PageQuery) ([]domain.Blog, int, error) {
	q = q.Normalize()
	where := ""
	args := []any{}
	if strings.TrimSpace(q.Search) != "" {
		where = `WHERE title ILIKE $1 OR sub_title ILIKE $1 OR author_name ILIKE $1`
		args = append(args, likePattern(q.Search))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blogs `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + blogColumns + ` FROM blogs ` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.pool.Query(ctx, query, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var blogs []domain.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, b)
	}
	return blogs, total, rows.Err()
}

func (r *PgBlogRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&n)
	return n, err
}

func (r *PgBlogRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanBlog(row pgx.Row) (domain.Blog, error) {
	var b domain.Blog
	err := row.Scan(
		&b.ID,
		&b.Slug,
		&b.AuthorName,
		&b.Banner,
		&b.Title,
		&b.SubTitle,
		&b.Content,
		&b.ReadTime,
		&b.Active,
		&b.Published,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Blog{}, err
	}
	return b, err
}
