package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"cryptointel/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trading_decisions (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			decision TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			explanation TEXT,
			entry_price DOUBLE PRECISION,
			stop_loss DOUBLE PRECISION,
			take_profit DOUBLE PRECISION,
			position_size DOUBLE PRECISION,
			risk_fraction DOUBLE PRECISION,
			capital_at_risk DOUBLE PRECISION,
			technical_score DOUBLE PRECISION,
			sentiment_score DOUBLE PRECISION,
			onchain_score DOUBLE PRECISION,
			trend TEXT,
			trend_strength DOUBLE PRECISION,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS alert_events (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			priority TEXT NOT NULL,
			message TEXT NOT NULL,
			price DOUBLE PRECISION,
			triggered_at TIMESTAMP NOT NULL
		)
	`)

	return err
}

// SaveDecision persists one trading decision
func (db *DB) SaveDecision(ctx context.Context, d models.TradingDecision) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO trading_decisions (
			symbol, decision, confidence, explanation,
			entry_price, stop_loss, take_profit,
			position_size, risk_fraction, capital_at_risk,
			technical_score, sentiment_score, onchain_score,
			trend, trend_strength, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		d.Symbol, d.Decision, d.Confidence, d.Explanation,
		d.Levels.Entry, d.Levels.StopLoss, d.Levels.TakeProfit,
		d.Risk.PositionSize, d.Risk.RiskFraction, d.Risk.CapitalAtRisk,
		d.Breakdown.Technical, d.Breakdown.Sentiment, d.Breakdown.OnChain,
		d.Breakdown.MarketCondition.Trend, d.Breakdown.MarketCondition.Strength,
		d.GeneratedAt,
	)

	return err
}

// RecentDecisions retrieves the latest decisions for a symbol
func (db *DB) RecentDecisions(ctx context.Context, symbol string, limit int) ([]models.TradingDecision, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			symbol, decision, confidence, explanation,
			entry_price, stop_loss, take_profit,
			position_size, risk_fraction, capital_at_risk,
			technical_score, sentiment_score, onchain_score,
			trend, trend_strength, created_at
		FROM trading_decisions
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []models.TradingDecision
	for rows.Next() {
		var d models.TradingDecision
		if err := rows.Scan(
			&d.Symbol, &d.Decision, &d.Confidence, &d.Explanation,
			&d.Levels.Entry, &d.Levels.StopLoss, &d.Levels.TakeProfit,
			&d.Risk.PositionSize, &d.Risk.RiskFraction, &d.Risk.CapitalAtRisk,
			&d.Breakdown.Technical, &d.Breakdown.Sentiment, &d.Breakdown.OnChain,
			&d.Breakdown.MarketCondition.Trend, &d.Breakdown.MarketCondition.Strength,
			&d.GeneratedAt,
		); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}

// SaveAlertEvent records a fired alert
func (db *DB) SaveAlertEvent(ctx context.Context, event models.AlertEvent) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO alert_events (symbol, priority, message, price, triggered_at)
		VALUES ($1, $2, $3, $4, $5)
	`, event.Symbol, event.Priority, event.Message, event.Price, event.TriggeredAt)

	return err
}

// AlertHistory retrieves the latest fired alerts for a symbol
func (db *DB) AlertHistory(ctx context.Context, symbol string, limit int) ([]models.AlertEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT symbol, priority, message, price, triggered_at
		FROM alert_events
		WHERE symbol = $1
		ORDER BY triggered_at DESC
		LIMIT $2
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AlertEvent
	for rows.Next() {
		var e models.AlertEvent
		if err := rows.Scan(&e.Symbol, &e.Priority, &e.Message, &e.Price, &e.TriggeredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
