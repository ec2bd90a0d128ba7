package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"maker_hedge/internal/domain"
)

// TradeStore persists executed legs and matched trade pairs in SQLite.
// The core only ever inserts and queries; records are immutable apart from
// the matched flag.
type TradeStore struct {
	db *sql.DB
}

// NewTradeStore opens (or creates) the trade database with WAL mode enabled.
func NewTradeStore(dbPath string) (*TradeStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			exchange TEXT NOT NULL,
			asset TEXT NOT NULL,
			side TEXT NOT NULL,
			amount REAL NOT NULL,
			price REAL NOT NULL,
			fees_earned REAL,
			fees_asset TEXT,
			matched INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create trades table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trade_pairs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			asset TEXT NOT NULL,
			origin_trade_id INTEGER NOT NULL,
			hedge_trade_id INTEGER NOT NULL,
			origin_amount REAL NOT NULL,
			origin_price REAL NOT NULL,
			hedge_amount REAL NOT NULL,
			hedge_price REAL NOT NULL,
			fees_earned_quote REAL NOT NULL,
			pnl REAL NOT NULL,
			pnl_percentage REAL NOT NULL,
			FOREIGN KEY (origin_trade_id) REFERENCES trades(id),
			FOREIGN KEY (hedge_trade_id) REFERENCES trades(id)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade_pairs table: %w", err)
	}

	return &TradeStore{db: db}, nil
}

// InsertTrade records one executed leg and returns its row id.
func (s *TradeStore) InsertTrade(ctx context.Context, t domain.TradeRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (timestamp, exchange, asset, side, amount, price, fees_earned, fees_asset, matched)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Timestamp, t.Venue, t.Asset, t.Side, t.Amount, t.Price,
		nullFloat(t.FeesEarned, t.FeesAsset != ""), nullString(t.FeesAsset), boolInt(t.Matched),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read trade id: %w", err)
	}
	return id, nil
}

// InsertTradePair records a matched origin/hedge pair and flags both legs.
func (s *TradeStore) InsertTradePair(ctx context.Context, p domain.TradePair) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO trade_pairs
		 (timestamp, asset, origin_trade_id, hedge_trade_id, origin_amount, origin_price,
		  hedge_amount, hedge_price, fees_earned_quote, pnl, pnl_percentage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Timestamp, p.Asset, p.OriginTradeID, p.HedgeTradeID, p.OriginAmount, p.OriginPrice,
		p.HedgeAmount, p.HedgePrice, p.FeesEarnedQuote, p.PnL, p.PnLPercentage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade pair: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE trades SET matched = 1 WHERE id IN (?, ?)",
		p.OriginTradeID, p.HedgeTradeID,
	); err != nil {
		return 0, fmt.Errorf("failed to flag matched trades: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit trade pair: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read pair id: %w", err)
	}
	return id, nil
}

// GetTrade loads one trade by id.
func (s *TradeStore) GetTrade(ctx context.Context, id int64) (domain.TradeRecord, error) {
	var t domain.TradeRecord
	var fees sql.NullFloat64
	var feesAsset sql.NullString
	var matched int

	err := s.db.QueryRowContext(ctx,
		`SELECT id, timestamp, exchange, asset, side, amount, price, fees_earned, fees_asset, matched
		 FROM trades WHERE id = ?`, id,
	).Scan(&t.ID, &t.Timestamp, &t.Venue, &t.Asset, &t.Side, &t.Amount, &t.Price, &fees, &feesAsset, &matched)
	if err != nil {
		return domain.TradeRecord{}, fmt.Errorf("failed to load trade %d: %w", id, err)
	}

	t.FeesEarned = fees.Float64
	t.FeesAsset = feesAsset.String
	t.Matched = matched != 0
	return t, nil
}

// UnmatchedTrades returns origin-venue trades that never got a hedge pair.
func (s *TradeStore) UnmatchedTrades(ctx context.Context, venue string) ([]domain.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, exchange, asset, side, amount, price, fees_earned, fees_asset, matched
		 FROM trades WHERE exchange = ? AND matched = 0 ORDER BY id ASC`, venue)
	if err != nil {
		return nil, fmt.Errorf("failed to query unmatched trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		var fees sql.NullFloat64
		var feesAsset sql.NullString
		var matched int
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Venue, &t.Asset, &t.Side, &t.Amount, &t.Price,
			&fees, &feesAsset, &matched); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.FeesEarned = fees.Float64
		t.FeesAsset = feesAsset.String
		t.Matched = matched != 0
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return trades, nil
}

// GetTradePair loads one pair by id.
func (s *TradeStore) GetTradePair(ctx context.Context, id int64) (domain.TradePair, error) {
	var p domain.TradePair
	err := s.db.QueryRowContext(ctx,
		`SELECT id, timestamp, asset, origin_trade_id, hedge_trade_id, origin_amount, origin_price,
		        hedge_amount, hedge_price, fees_earned_quote, pnl, pnl_percentage
		 FROM trade_pairs WHERE id = ?`, id,
	).Scan(&p.ID, &p.Timestamp, &p.Asset, &p.OriginTradeID, &p.HedgeTradeID, &p.OriginAmount,
		&p.OriginPrice, &p.HedgeAmount, &p.HedgePrice, &p.FeesEarnedQuote, &p.PnL, &p.PnLPercentage)
	if err != nil {
		return domain.TradePair{}, fmt.Errorf("failed to load trade pair %d: %w", id, err)
	}
	return p, nil
}

// Close closes the database connection.
func (s *TradeStore) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloat(v float64, valid bool) interface{} {
	if !valid {
		return nil
	}
	return v
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
