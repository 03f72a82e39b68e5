// Command seed creates the marketplace schema and loads a small demo
// dataset: one admin, two sellers with a handful of handcrafted products,
// and a buyer account. Stock counters are synced to Redis afterwards so
// checkout reservations see the same numbers as the database.
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/handcrafted-haven/marketplace/internal/adapter/storage"
	"github.com/handcrafted-haven/marketplace/internal/config"
	"github.com/handcrafted-haven/marketplace/internal/core/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		username VARCHAR(100) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		slug VARCHAR(100) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(36) PRIMARY KEY,
		seller_id VARCHAR(36) NOT NULL,
		category_id VARCHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DECIMAL(10,2) NOT NULL,
		stock INT NOT NULL,
		image_ref VARCHAR(255),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_products_seller (seller_id),
		INDEX idx_products_category (category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id VARCHAR(36) PRIMARY KEY,
		buyer_id VARCHAR(36) NOT NULL,
		status VARCHAR(20) NOT NULL,
		total DECIMAL(10,2) NOT NULL,
		transaction_id VARCHAR(64),
		shipping_name VARCHAR(255) NOT NULL,
		shipping_address VARCHAR(255) NOT NULL,
		shipping_city VARCHAR(100) NOT NULL,
		shipping_zip VARCHAR(20) NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_orders_buyer (buyer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id VARCHAR(36) NOT NULL,
		product_id VARCHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		unit_price DECIMAL(10,2) NOT NULL,
		quantity INT NOT NULL,
		INDEX idx_order_items_order (order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id VARCHAR(36) PRIMARY KEY,
		product_id VARCHAR(36) NOT NULL,
		author_id VARCHAR(36) NOT NULL,
		rating INT NOT NULL,
		comment TEXT,
		created_at DATETIME NOT NULL,
		INDEX idx_reviews_product (product_id)
	)`,
}

type seedProduct struct {
	name        string
	description string
	price       float64
	stock       int
	category    string
	imageRef    string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("failed to create schema: %v", err)
		}
	}
	log.Println("schema ready")

	now := time.Now()

	categories := map[string]string{}
	for _, c := range []struct{ name, slug string }{
		{"Pottery", "pottery"},
		{"Jewelry", "jewelry"},
		{"Woodwork", "woodwork"},
		{"Textiles", "textiles"},
	} {
		id := uuid.NewString()
		_, err := db.ExecContext(ctx, `
			INSERT INTO categories (id, name, slug) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE id = id`, id, c.name, c.slug)
		if err != nil {
			log.Fatalf("failed to seed category %s: %v", c.slug, err)
		}
		// Re-read so reruns reuse the existing row's id.
		if err := db.QueryRowContext(ctx,
			`SELECT id FROM categories WHERE slug = ?`, c.slug).Scan(&id); err != nil {
			log.Fatalf("failed to read category %s: %v", c.slug, err)
		}
		categories[c.slug] = id
	}
	log.Printf("seeded %d categories", len(categories))

	seedUser := func(email, username, password string, role domain.Role) string {
		var id string
		err := db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&id)
		if err == nil {
			return id
		}
		if err != sql.ErrNoRows {
			log.Fatalf("failed to check user %s: %v", email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		id = uuid.NewString()
		_, err = db.ExecContext(ctx, `
			INSERT INTO users (id, email, username, password_hash, role, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, email, username, hash, role, now)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", email, err)
		}
		return id
	}

	seedUser("admin@handcrafted.test", "admin", "admin123", domain.RoleAdmin)
	seedUser("buyer@handcrafted.test", "casual_buyer", "buyer123", domain.RoleBuyer)
	maria := seedUser("maria@handcrafted.test", "marias_pottery", "seller123", domain.RoleSeller)
	elena := seedUser("elena@handcrafted.test", "elenas_jewels", "seller123", domain.RoleSeller)
	log.Println("seeded users")

	products := map[string][]seedProduct{
		maria: {
			{"Glazed Stoneware Bowl", "Hand-thrown bowl with a speckled blue glaze.", 34.00, 8, "pottery", "bowl-blue.jpg"},
			{"Ceramic Mug Set", "Set of two wheel-thrown mugs.", 42.50, 10, "pottery", "mug-set.jpg"},
			{"Woven Wall Hanging", "Wool and cotton weave, natural dyes.", 89.00, 3, "textiles", "wall-hanging.jpg"},
		},
		elena: {
			{"Silver Leaf Pendant", "Sterling silver pendant cast from a real maple leaf.", 65.00, 5, "jewelry", "leaf-pendant.jpg"},
			{"Walnut Serving Board", "End-grain walnut board, food-safe oil finish.", 58.00, 6, "woodwork", "serving-board.jpg"},
			{"Beaded Earrings", "Glass seed beads on hypoallergenic hooks.", 24.00, 12, "jewelry", "earrings.jpg"},
		},
	}

	stock := storage.NewRedisStockReserver(rdb)
	seeded := 0
	for sellerID, list := range products {
		for _, sp := range list {
			var existing string
			err := db.QueryRowContext(ctx,
				`SELECT id FROM products WHERE seller_id = ? AND name = ?`,
				sellerID, sp.name).Scan(&existing)
			if err == nil {
				if err := stock.SetStock(ctx, existing, sp.stock); err != nil {
					log.Fatalf("failed to sync stock for %s: %v", sp.name, err)
				}
				continue
			}
			if err != sql.ErrNoRows {
				log.Fatalf("failed to check product %s: %v", sp.name, err)
			}

			id := uuid.NewString()
			_, err = db.ExecContext(ctx, `
				INSERT INTO products (id, seller_id, category_id, name, description, price, stock, image_ref, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, sellerID, categories[sp.category], sp.name, sp.description,
				sp.price, sp.stock, sp.imageRef, now, now)
			if err != nil {
				log.Fatalf("failed to seed product %s: %v", sp.name, err)
			}
			if err := stock.SetStock(ctx, id, sp.stock); err != nil {
				log.Fatalf("failed to sync stock for %s: %v", sp.name, err)
			}
			seeded++
		}
	}
	log.Printf("seeded %d products, stock counters synced", seeded)
}
