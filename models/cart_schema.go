package models

// CreateTableSQL creates the cart line table used by the Postgres cart repository.
// design_key is '' for lines without a design so the match key can be a plain unique index.
func (CartLine) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS cart_lines (
		id BIGSERIAL PRIMARY KEY,
		cart_id TEXT NOT NULL,
		product_id TEXT NOT NULL DEFAULT '',
		product_name TEXT NOT NULL DEFAULT '',
		unit_price BIGINT NOT NULL DEFAULT 0,
		garment_id TEXT NOT NULL,
		base_color TEXT NOT NULL,
		design_id TEXT,
		design_key TEXT NOT NULL DEFAULT '',
		placement JSONB NOT NULL,
		colors JSONB NOT NULL DEFAULT '{}'::jsonb,
		selected_size TEXT NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		preview_image TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		UNIQUE (cart_id, garment_id, selected_size, design_key)
	);`
}
