package votestore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and returns a vote store.
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-votestore-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStore{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// SaveVote upserts one vote row. A second vote by the same voter in the same
// election replaces the first.
func (p *PostgresStore) SaveVote(ctx context.Context, rec VoteRecord) error {
	query := `
		INSERT INTO election_votes (
			vote_id, election_id, player_id, candidate, voter, cast_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		ON CONFLICT (vote_id) DO UPDATE SET
			candidate = EXCLUDED.candidate,
			voter = EXCLUDED.voter,
			cast_at = EXCLUDED.cast_at
	`

	_, err := p.db.ExecContext(ctx, query,
		rec.VoteID,
		rec.ElectionID,
		rec.PlayerID,
		rec.Candidate,
		rec.Voter,
		rec.CastAt,
	)
	if err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}

	votesPersistedTotal.Inc()
	p.logger.Debug("vote-persisted",
		zap.String("vote-id", rec.VoteID),
		zap.String("election-id", rec.ElectionID))

	return nil
}

// ElectionVotes returns all live votes for one election.
func (p *PostgresStore) ElectionVotes(ctx context.Context, electionID string) ([]VoteRecord, error) {
	query := `
		SELECT vote_id, election_id, player_id, candidate, voter, cast_at
		FROM election_votes
		WHERE election_id = $1
	`

	rows, err := p.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []VoteRecord
	for rows.Next() {
		var rec VoteRecord
		err = rows.Scan(&rec.VoteID, &rec.ElectionID, &rec.PlayerID, &rec.Candidate, &rec.Voter, &rec.CastAt)
		if err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		records = append(records, rec)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate votes: %w", err)
	}

	return records, nil
}

// SaveOutcome archives one decided round.
func (p *PostgresStore) SaveOutcome(ctx context.Context, rec OutcomeRecord) error {
	query := `
		INSERT INTO election_outcomes (
			id, topic, election_id, winner_label, votes, decided_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		rec.ID,
		rec.Topic,
		rec.ElectionID,
		rec.WinnerLabel,
		rec.Votes,
		rec.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}

	outcomesPersistedTotal.Inc()
	p.logger.Debug("outcome-persisted",
		zap.String("outcome-id", rec.ID),
		zap.String("election-id", rec.ElectionID),
		zap.String("winner", rec.WinnerLabel))

	return nil
}

// Close closes the database connection.
func (p *PostgresStore) Close() error {
	p.logger.Info("closing-postgres-votestore")
	return p.db.Close()
}
