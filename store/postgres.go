package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"storefront/filter"
	"storefront/models"
)

const uniqueViolation = "23505"

const productColumns = `p.id, p.name, p.category, p.price, p.description, p.rating,
  p.review_count, p.style, p.badge, p.gender, p.sport, p.shoe_height,
  p.is_highly_rated, p.created_at, p.updated_at`

// Postgres is the Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func scanProduct(row pgx.Row, p *models.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &p.Description, &p.Rating,
		&p.ReviewCount, &p.Style, &p.Badge, &p.Gender, &p.Sport, &p.ShoeHeight,
		&p.IsHighlyRated, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (s *Postgres) ListProducts(ctx context.Context, q filter.Query) ([]models.Product, error) {
	where, args := filter.SQL(q.Where)
	ai := len(args) + 1

	sql := `SELECT ` + productColumns + `
FROM products p
WHERE ` + where + `
ORDER BY p.created_at DESC, p.id DESC
OFFSET $` + itoa(ai) + ` LIMIT $` + itoa(ai+1)
	args = append(args, q.Skip, q.Take)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0, q.Take)
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Images = []models.Image{}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	rows.Close()

	if len(products) == 0 {
		return products, nil
	}
	if err := s.loadListingRelations(ctx, products, q.Shape); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Postgres) CountProducts(ctx context.Context, where filter.Predicate) (int, error) {
	cond, args := filter.SQL(where)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p WHERE `+cond, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func (s *Postgres) GetProduct(ctx context.Context, id string) (*models.Product, bool, error) {
	var p models.Product
	err := scanProduct(s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get product %s: %w", id, err)
	}

	ids := []string{p.ID}
	index := map[string]*models.Product{p.ID: &p}
	p.Images = []models.Image{}

	if err := s.loadImages(ctx, ids, index, false); err != nil {
		return nil, false, err
	}
	if err := s.loadColors(ctx, ids, index); err != nil {
		return nil, false, err
	}
	if err := s.loadSizes(ctx, ids, index, false); err != nil {
		return nil, false, err
	}
	if err := s.loadDetails(ctx, ids, index); err != nil {
		return nil, false, err
	}
	if err := s.loadReviews(ctx, ids, index); err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

func (s *Postgres) Facets(ctx context.Context, where filter.Predicate) (models.FacetsResponse, error) {
	cond, args := filter.SQL(where)
	w := "WHERE " + cond

	var out models.FacetsResponse
	groups := []struct {
		column string
		dest   *[]models.Facet
	}{
		{"p.category", &out.Categories},
		{"p.gender", &out.Genders},
		{"p.sport", &out.Sports},
	}

	for _, g := range groups {
		rows, err := s.pool.Query(ctx, `SELECT `+g.column+`, COUNT(*) FROM products p `+w+
			` AND `+g.column+` IS NOT NULL GROUP BY `+g.column+` ORDER BY COUNT(*) DESC, `+g.column+` ASC`, args...)
		if err != nil {
			return out, fmt.Errorf("facets %s: %w", g.column, err)
		}
		list := []models.Facet{}
		for rows.Next() {
			var f models.Facet
			if err := rows.Scan(&f.Name, &f.Count); err != nil {
				rows.Close()
				return out, fmt.Errorf("scan facet: %w", err)
			}
			if f.Name != "" {
				list = append(list, f)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return out, fmt.Errorf("facets %s: %w", g.column, err)
		}
		*g.dest = list
	}

	if err := s.pool.QueryRow(ctx, `SELECT MIN(p.price), MAX(p.price) FROM products p `+w, args...).
		Scan(&out.PriceRange.Min, &out.PriceRange.Max); err != nil {
		return out, fmt.Errorf("price range: %w", err)
	}
	return out, nil
}

// loadListingRelations attaches the rows a listing shape exposes: the primary
// image, and for full listings every colour plus the in-stock sizes.
func (s *Postgres) loadListingRelations(ctx context.Context, products []models.Product, shape filter.Shape) error {
	ids := make([]string, 0, len(products))
	index := make(map[string]*models.Product, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
		index[products[i].ID] = &products[i]
	}

	if err := s.loadImages(ctx, ids, index, true); err != nil {
		return err
	}
	if shape != filter.ShapeListing {
		return nil
	}
	for i := range products {
		products[i].Colors = []models.Color{}
		products[i].Sizes = []models.Size{}
	}
	if err := s.loadColors(ctx, ids, index); err != nil {
		return err
	}
	return s.loadSizes(ctx, ids, index, true)
}

func (s *Postgres) loadImages(ctx context.Context, ids []string, index map[string]*models.Product, primaryOnly bool) error {
	sql := `SELECT product_id, id, url, is_primary FROM product_images WHERE product_id = ANY($1) ORDER BY product_id, position, id`
	if primaryOnly {
		sql = `SELECT DISTINCT ON (product_id) product_id, id, url, is_primary
FROM product_images
WHERE product_id = ANY($1) AND is_primary
ORDER BY product_id, position, id`
	}

	rows, err := s.pool.Query(ctx, sql, ids)
	if err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var img models.Image
		if err := rows.Scan(&productID, &img.ID, &img.URL, &img.IsPrimary); err != nil {
			return fmt.Errorf("scan image: %w", err)
		}
		if p, ok := index[productID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return rows.Err()
}

func (s *Postgres) loadColors(ctx context.Context, ids []string, index map[string]*models.Product) error {
	rows, err := s.pool.Query(ctx, `SELECT product_id, id, name, hex_code, image_url FROM product_colors WHERE product_id = ANY($1) ORDER BY product_id, position, id`, ids)
	if err != nil {
		return fmt.Errorf("load colors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var c models.Color
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.HexCode, &c.ImageURL); err != nil {
			return fmt.Errorf("scan color: %w", err)
		}
		if p, ok := index[productID]; ok {
			p.Colors = append(p.Colors, c)
		}
	}
	return rows.Err()
}

func (s *Postgres) loadSizes(ctx context.Context, ids []string, index map[string]*models.Product, inStockOnly bool) error {
	sql := `SELECT product_id, id, size, in_stock FROM product_sizes WHERE product_id = ANY($1)`
	if inStockOnly {
		sql += ` AND in_stock`
	}
	sql += ` ORDER BY product_id, position, id`

	rows, err := s.pool.Query(ctx, sql, ids)
	if err != nil {
		return fmt.Errorf("load sizes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var sz models.Size
		if err := rows.Scan(&productID, &sz.ID, &sz.Size, &sz.InStock); err != nil {
			return fmt.Errorf("scan size: %w", err)
		}
		if p, ok := index[productID]; ok {
			p.Sizes = append(p.Sizes, sz)
		}
	}
	return rows.Err()
}

func (s *Postgres) loadDetails(ctx context.Context, ids []string, index map[string]*models.Product) error {
	rows, err := s.pool.Query(ctx, `SELECT product_id, id, key, value FROM product_details WHERE product_id = ANY($1) ORDER BY product_id, position, id`, ids)
	if err != nil {
		return fmt.Errorf("load details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var d models.Detail
		if err := rows.Scan(&productID, &d.ID, &d.Key, &d.Value); err != nil {
			return fmt.Errorf("scan detail: %w", err)
		}
		if p, ok := index[productID]; ok {
			p.Details = append(p.Details, d)
		}
	}
	return rows.Err()
}

func (s *Postgres) loadReviews(ctx context.Context, ids []string, index map[string]*models.Product) error {
	rows, err := s.pool.Query(ctx, `
SELECT r.product_id, r.id, r.rating, r.comment, r.user_id, r.created_at, u.full_name
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.product_id = ANY($1)
ORDER BY r.product_id, r.created_at DESC, r.id`, ids)
	if err != nil {
		return fmt.Errorf("load reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var r models.Review
		if err := rows.Scan(&productID, &r.ID, &r.Rating, &r.Comment, &r.UserID, &r.CreatedAt, &r.User.FullName); err != nil {
			return fmt.Errorf("scan review: %w", err)
		}
		if p, ok := index[productID]; ok {
			p.Reviews = append(p.Reviews, r)
		}
	}
	return rows.Err()
}

func (s *Postgres) ReplaceCatalog(ctx context.Context, products []models.Product) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear catalogue: %w", err)
	}

	batch := &pgx.Batch{}
	for _, p := range prepareCatalog(products, time.Now()) {

		batch.Queue(`INSERT INTO products (id, name, category, price, description, rating, review_count, style,
  badge, gender, sport, shoe_height, is_highly_rated, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			p.ID, p.Name, p.Category, p.Price, p.Description, p.Rating, p.ReviewCount, p.Style,
			p.Badge, p.Gender, p.Sport, p.ShoeHeight, p.IsHighlyRated, p.CreatedAt, p.UpdatedAt)

		for pos, img := range p.Images {
			batch.Queue(`INSERT INTO product_images (id, product_id, url, is_primary, position) VALUES ($1,$2,$3,$4,$5)`,
				img.ID, p.ID, img.URL, img.IsPrimary, pos)
		}
		for pos, c := range p.Colors {
			batch.Queue(`INSERT INTO product_colors (id, product_id, name, hex_code, image_url, position) VALUES ($1,$2,$3,$4,$5,$6)`,
				c.ID, p.ID, c.Name, c.HexCode, c.ImageURL, pos)
		}
		for pos, sz := range p.Sizes {
			batch.Queue(`INSERT INTO product_sizes (id, product_id, size, in_stock, position) VALUES ($1,$2,$3,$4,$5)`,
				sz.ID, p.ID, sz.Size, sz.InStock, pos)
		}
		for pos, d := range p.Details {
			batch.Queue(`INSERT INTO product_details (id, product_id, key, value, position) VALUES ($1,$2,$3,$4,$5)`,
				d.ID, p.ID, d.Key, d.Value, pos)
		}
		for _, r := range p.Reviews {
			batch.Queue(`INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
				r.ID, p.ID, r.UserID, r.Rating, r.Comment, r.CreatedAt)
		}
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert catalogue: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert catalogue: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.NewString()
	u.Email = normalizeEmail(u.Email)

	err := s.pool.QueryRow(ctx, `
INSERT INTO users (id, email, password, full_name)
VALUES ($1, $2, $3, $4)
RETURNING created_at`, u.ID, u.Email, u.Password, u.FullName).Scan(&u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Postgres) UpsertUser(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)

	err := s.pool.QueryRow(ctx, `
INSERT INTO users (id, email, password, full_name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO UPDATE SET password = EXCLUDED.password, full_name = EXCLUDED.full_name
RETURNING id, created_at`, uuid.NewString(), u.Email, u.Password, u.FullName).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *Postgres) UserByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	return s.user(ctx, `WHERE email = $1`, normalizeEmail(email))
}

func (s *Postgres) UserByID(ctx context.Context, id string) (*models.User, bool, error) {
	return s.user(ctx, `WHERE id = $1`, id)
}

func (s *Postgres) user(ctx context.Context, where string, arg string) (*models.User, bool, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `SELECT id, email, password, full_name, created_at FROM users `+where, arg).
		Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get user: %w", err)
	}
	return &u, true, nil
}

func itoa(i int) string { return strconv.Itoa(i) }
