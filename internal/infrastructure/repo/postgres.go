package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"norahair-backend/internal/domain"
	"norahair-backend/internal/usecase"

	_ "github.com/lib/pq"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	r := &PostgresRepo{db: db}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepo) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		customer_id TEXT,
		address_id TEXT,
		customer_name TEXT,
		email TEXT,
		phone TEXT,
		items TEXT,
		total_amount NUMERIC(14,2),
		payment_plan TEXT,
		first_payment NUMERIC(14,2),
		second_payment NUMERIC(14,2),
		first_payment_status TEXT,
		second_payment_status TEXT,
		payment_status TEXT,
		paystack_reference TEXT UNIQUE,
		order_status TEXT,
		order_date TIMESTAMPTZ,
		paid_at TIMESTAMPTZ
	);`)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT,
		description TEXT,
		price NUMERIC(14,2),
		category TEXT,
		length TEXT,
		texture TEXT,
		images TEXT,
		in_stock BOOLEAN,
		stock_count INT,
		featured BOOLEAN,
		badge TEXT
	);`)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`CREATE TABLE IF NOT EXISTS testimonials (
		id TEXT PRIMARY KEY,
		customer_name TEXT,
		location TEXT,
		content TEXT,
		rating INT,
		image TEXT,
		product_purchased TEXT
	);`)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`CREATE TABLE IF NOT EXISTS subscribers (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE,
		phone TEXT
	);`)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`CREATE TABLE IF NOT EXISTS admin_users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE,
		password_hash TEXT,
		created_at TIMESTAMPTZ
	);`)
	return err
}

const orderColumns = `id,customer_id,address_id,customer_name,email,phone,items,total_amount,payment_plan,
	first_payment,second_payment,first_payment_status,second_payment_status,payment_status,
	paystack_reference,order_status,order_date,paid_at`

func (r *PostgresRepo) Put(o *domain.Order) error {
	items, _ := json.Marshal(o.Items)
	var paidAt sql.NullTime
	if o.PaidAt != nil {
		paidAt = sql.NullTime{Time: *o.PaidAt, Valid: true}
	}
	ref := sql.NullString{String: o.PaystackReference, Valid: o.PaystackReference != ""}
	_, err := r.db.Exec(`INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO UPDATE SET customer_id=$2,address_id=$3,customer_name=$4,email=$5,phone=$6,
			items=$7,total_amount=$8,payment_plan=$9,first_payment=$10,second_payment=$11,
			first_payment_status=$12,second_payment_status=$13,payment_status=$14,
			paystack_reference=$15,order_status=$16,order_date=$17,paid_at=$18`,
		o.ID, o.CustomerID, o.AddressID, o.CustomerName, o.Email, o.Phone, string(items),
		o.TotalAmount, string(o.PaymentPlan), o.FirstPayment, o.SecondPayment,
		string(o.FirstPaymentStatus), string(o.SecondPaymentStatus), string(o.PaymentStatus),
		ref, string(o.OrderStatus), o.OrderDate, paidAt)
	return err
}

func (r *PostgresRepo) scanOrder(row interface{ Scan(...any) error }) (*domain.Order, bool) {
	var o domain.Order
	var items string
	var ref sql.NullString
	var paidAt sql.NullTime
	err := row.Scan(&o.ID, &o.CustomerID, &o.AddressID, &o.CustomerName, &o.Email, &o.Phone, &items,
		&o.TotalAmount, (*string)(&o.PaymentPlan), &o.FirstPayment, &o.SecondPayment,
		(*string)(&o.FirstPaymentStatus), (*string)(&o.SecondPaymentStatus), (*string)(&o.PaymentStatus),
		&ref, (*string)(&o.OrderStatus), &o.OrderDate, &paidAt)
	if err != nil {
		return nil, false
	}
	_ = json.Unmarshal([]byte(items), &o.Items)
	o.PaystackReference = ref.String
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}
	return &o, true
}

func (r *PostgresRepo) Get(id string) (*domain.Order, bool) {
	return r.scanOrder(r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
}

func (r *PostgresRepo) GetByReference(ref string) (*domain.Order, bool) {
	return r.scanOrder(r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE paystack_reference=$1`, ref))
}

func (r *PostgresRepo) List(page, pageSize int) ([]domain.Order, int) {
	rows, err := r.db.Query(`SELECT `+orderColumns+` FROM orders ORDER BY order_date DESC LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0
	}
	defer rows.Close()
	out := make([]domain.Order, 0, pageSize)
	for rows.Next() {
		if o, ok := r.scanOrder(rows); ok {
			out = append(out, *o)
		}
	}
	var total int
	_ = r.db.QueryRow(`SELECT COUNT(1) FROM orders`).Scan(&total)
	return out, total
}

func (r *PostgresRepo) UpdateStatus(id string, status domain.OrderStatus) (*domain.Order, bool) {
	return r.scanOrder(r.db.QueryRow(
		`UPDATE orders SET order_status=$2 WHERE id=$1 RETURNING `+orderColumns, id, string(status)))
}

func (r *PostgresRepo) UpdatePayment(id string, status domain.PaymentStatus, paidAt *time.Time) (*domain.Order, bool) {
	var at sql.NullTime
	if paidAt != nil {
		at = sql.NullTime{Time: *paidAt, Valid: true}
	}
	return r.scanOrder(r.db.QueryRow(
		`UPDATE orders SET payment_status=$2,
			paid_at=COALESCE($3, paid_at),
			first_payment_status=CASE WHEN $2='paid' THEN 'paid' ELSE first_payment_status END
		WHERE id=$1 RETURNING `+orderColumns, id, string(status), at))
}

// MarkPaid is the single guarded mutation both confirmation paths funnel
// through. The payment_status predicate makes the read-check-write atomic:
// whichever of the verify call and the webhook lands second matches zero rows.
func (r *PostgresRepo) MarkPaid(id string, paidAt time.Time) (*domain.Order, bool) {
	o, ok := r.scanOrder(r.db.QueryRow(
		`UPDATE orders SET payment_status='paid', first_payment_status='paid', paid_at=$2,
			order_status=CASE WHEN order_status='pending' THEN 'processing' ELSE order_status END
		WHERE id=$1 AND payment_status='unpaid' RETURNING `+orderColumns, id, paidAt))
	if ok {
		return o, true
	}
	o, ok = r.Get(id)
	if !ok {
		return nil, false
	}
	return o, false
}

// MarkFailed records a declined attempt under the same unpaid predicate as
// MarkPaid, so a webhook confirmation racing a declined verify keeps its win.
func (r *PostgresRepo) MarkFailed(id string) (*domain.Order, bool) {
	o, ok := r.scanOrder(r.db.QueryRow(
		`UPDATE orders SET payment_status='failed'
		WHERE id=$1 AND payment_status='unpaid' RETURNING `+orderColumns, id))
	if ok {
		return o, true
	}
	o, ok = r.Get(id)
	if !ok {
		return nil, false
	}
	return o, false
}

// PostgresProductRepo exposes the products table behind the catalog
// repository interface; the order methods on PostgresRepo already claim the
// short names.
type PostgresProductRepo struct {
	pg *PostgresRepo
}

func (r *PostgresRepo) Products() *PostgresProductRepo {
	return &PostgresProductRepo{pg: r}
}

func (r *PostgresProductRepo) Put(p *domain.Product) error           { return r.pg.PutProduct(p) }
func (r *PostgresProductRepo) Get(id string) (*domain.Product, bool) { return r.pg.GetProduct(id) }
func (r *PostgresProductRepo) List() ([]domain.Product, error)       { return r.pg.ListProducts() }
func (r *PostgresProductRepo) Delete(id string) bool                 { return r.pg.DeleteProduct(id) }

func (r *PostgresRepo) PutProduct(p *domain.Product) error {
	images, _ := json.Marshal(p.Images)
	_, err := r.db.Exec(`INSERT INTO products (id,name,description,price,category,length,texture,images,in_stock,stock_count,featured,badge)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET name=$2,description=$3,price=$4,category=$5,length=$6,texture=$7,
			images=$8,in_stock=$9,stock_count=$10,featured=$11,badge=$12`,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Length, p.Texture, string(images),
		p.InStock, p.StockCount, p.Featured, p.Badge)
	return err
}

func (r *PostgresRepo) GetProduct(id string) (*domain.Product, bool) {
	var p domain.Product
	var images string
	err := r.db.QueryRow(`SELECT id,name,description,price,category,length,texture,images,in_stock,stock_count,featured,badge
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Length, &p.Texture, &images,
			&p.InStock, &p.StockCount, &p.Featured, &p.Badge)
	if err != nil {
		return nil, false
	}
	_ = json.Unmarshal([]byte(images), &p.Images)
	return &p, true
}

func (r *PostgresRepo) ListProducts() ([]domain.Product, error) {
	rows, err := r.db.Query(`SELECT id,name,description,price,category,length,texture,images,in_stock,stock_count,featured,badge
		FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		var images string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Length, &p.Texture,
			&images, &p.InStock, &p.StockCount, &p.Featured, &p.Badge); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(images), &p.Images)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) DeleteProduct(id string) bool {
	res, err := r.db.Exec(`DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (r *PostgresRepo) ListTestimonials() ([]domain.Testimonial, error) {
	rows, err := r.db.Query(`SELECT id,customer_name,location,content,rating,image,product_purchased FROM testimonials`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Testimonial
	for rows.Next() {
		var t domain.Testimonial
		if err := rows.Scan(&t.ID, &t.CustomerName, &t.Location, &t.Content, &t.Rating, &t.Image, &t.ProductPurchased); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) PutTestimonial(t *domain.Testimonial) error {
	_, err := r.db.Exec(`INSERT INTO testimonials (id,customer_name,location,content,rating,image,product_purchased)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET customer_name=$2,location=$3,content=$4,rating=$5,image=$6,product_purchased=$7`,
		t.ID, t.CustomerName, t.Location, t.Content, t.Rating, t.Image, t.ProductPurchased)
	return err
}

func (r *PostgresRepo) PutSubscriber(s *domain.Subscriber) error {
	res, err := r.db.Exec(`INSERT INTO subscribers (id,email,phone) VALUES ($1,$2,$3) ON CONFLICT (email) DO NOTHING`,
		s.ID, s.Email, s.Phone)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return usecase.ErrConflict("email already subscribed")
	}
	return nil
}

func (r *PostgresRepo) PutAdmin(u *domain.AdminUser) error {
	_, err := r.db.Exec(`INSERT INTO admin_users (id,username,password_hash,created_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (username) DO UPDATE SET password_hash=$3`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt)
	return err
}

func (r *PostgresRepo) GetAdminByUsername(username string) (*domain.AdminUser, bool) {
	var u domain.AdminUser
	err := r.db.QueryRow(`SELECT id,username,password_hash,created_at FROM admin_users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, false
	}
	return &u, true
}
