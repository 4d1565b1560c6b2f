package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS bottle_types (
	id TEXT PRIMARY KEY,
	label TEXT NOT NULL UNIQUE,
	quantity_ltr REAL NOT NULL DEFAULT 0,
	bottles_in_batch INTEGER NOT NULL DEFAULT 0,
	can_price REAL NOT NULL DEFAULT 0,
	price_per_kg REAL NOT NULL DEFAULT 0,
	box_cost REAL NOT NULL DEFAULT 0,
	selling_price_per_batch REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	address TEXT NOT NULL DEFAULT '',
	gst TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sales (
	id TEXT PRIMARY KEY,
	date DATETIME NOT NULL,
	client_name TEXT NOT NULL,
	freight REAL NOT NULL DEFAULT 0,
	quantity_kg REAL NOT NULL DEFAULT 0,
	sale_type TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sale_items (
	sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	catalog_item_id TEXT NOT NULL DEFAULT '',
	quantity_kg REAL NOT NULL DEFAULT 0,
	cost_rate_per_kg REAL NOT NULL DEFAULT 0,
	selling_rate_per_kg REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (sale_id, position)
);

CREATE TABLE IF NOT EXISTS locations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	location_id TEXT NOT NULL DEFAULT '',
	indiamart_link TEXT NOT NULL DEFAULT '',
	deal_status TEXT NOT NULL DEFAULT '',
	comments TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (date);
CREATE INDEX IF NOT EXISTS idx_leads_location ON leads (location_id);
`
