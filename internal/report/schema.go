package report

const schemaSQL = `
-- One row per visited page (or compared page side)
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    side TEXT NOT NULL DEFAULT 'single' CHECK (side IN ('single', 'baseline', 'upgraded')),
    url TEXT NOT NULL,
    title TEXT,
    fetch_status INTEGER,
    link_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
CREATE INDEX IF NOT EXISTS idx_pages_side ON pages(side);

-- Captured links, one row per link record on a page
CREATE TABLE IF NOT EXISTS links (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    page_id INTEGER NOT NULL REFERENCES pages(id),
    link_text TEXT,
    abs_url TEXT NOT NULL,
    final_url TEXT,
    http_status INTEGER,
    target TEXT,
    rel TEXT
);

CREATE INDEX IF NOT EXISTS idx_links_page ON links(page_id);
CREATE INDEX IF NOT EXISTS idx_links_abs_url ON links(abs_url);

-- Classified differences between baseline and upgraded page pairs
CREATE TABLE IF NOT EXISTS diffs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    base_page_url TEXT NOT NULL,
    upg_page_url TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('Missing', 'Extra', 'Wrong')),
    link_text TEXT,
    base_url TEXT,
    upg_url TEXT,
    base_status INTEGER,
    upg_status INTEGER,
    note TEXT
);

CREATE INDEX IF NOT EXISTS idx_diffs_kind ON diffs(kind);
CREATE INDEX IF NOT EXISTS idx_diffs_base_page ON diffs(base_page_url);

-- Exactly one row, written when the run finishes
CREATE TABLE IF NOT EXISTS run_summary (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    pages_visited INTEGER NOT NULL,
    links_captured INTEGER NOT NULL,
    missing INTEGER NOT NULL,
    extra INTEGER NOT NULL,
    wrong INTEGER NOT NULL,
    finished_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
