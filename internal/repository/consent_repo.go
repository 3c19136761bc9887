package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mirrorbrain/internal/domain"
)

// ConsentRepository persiste pruebas de consentimiento para auditoria legal.
type ConsentRepository interface {
	Log(ctx context.Context, proof domain.ConsentProof) (int64, error)
	GetByFingerprint(ctx context.Context, fingerprint string) ([]domain.ConsentProof, error)
	Stats(ctx context.Context) (domain.ConsentStats, error)
	Close() error
}

// SqliteConsentRepository guarda los consent proofs en SQLite.
// El registro de consentimiento vive aparte de la base principal a proposito:
// es un rastro legal que debe sobrevivir a resets del resto del estado.
type SqliteConsentRepository struct {
	db *sql.DB
}

// OpenSqliteConsentRepository abre (o crea) la base de consentimientos.
func OpenSqliteConsentRepository(path string) (*SqliteConsentRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("consent db path is required")
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open consent db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping consent db: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS consent_proofs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			proof_hash TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			version TEXT NOT NULL,
			acks TEXT,
			page TEXT,
			fingerprint TEXT,
			user_agent TEXT,
			screen TEXT,
			timezone TEXT,
			language TEXT,
			referrer TEXT,
			consent_type TEXT DEFAULT 'full',
			feature TEXT,
			logged_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_consent_fingerprint ON consent_proofs (fingerprint);
		CREATE INDEX IF NOT EXISTS idx_consent_timestamp ON consent_proofs (timestamp);
		CREATE INDEX IF NOT EXISTS idx_consent_version ON consent_proofs (version);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init consent schema: %w", err)
	}
	return &SqliteConsentRepository{db: db}, nil
}

// Close cierra el handle de SQLite.
func (r *SqliteConsentRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SqliteConsentRepository) Log(ctx context.Context, proof domain.ConsentProof) (int64, error) {
	acks, err := json.Marshal(proof.Acks)
	if err != nil {
		return 0, fmt.Errorf("marshal acks: %w", err)
	}

	const query = `
		INSERT INTO consent_proofs
			(proof_hash, timestamp, version, acks, page, fingerprint,
			 user_agent, screen, timezone, language, referrer,
			 consent_type, feature, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		proof.ProofHash,
		proof.Timestamp,
		proof.Version,
		string(acks),
		proof.Page,
		proof.Fingerprint,
		proof.UserAgent,
		proof.Screen,
		proof.Timezone,
		proof.Language,
		proof.Referrer,
		proof.ConsentType,
		proof.Feature,
		proof.LoggedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (r *SqliteConsentRepository) GetByFingerprint(ctx context.Context, fingerprint string) ([]domain.ConsentProof, error) {
	const query = `
		SELECT id, proof_hash, timestamp, version, acks, page, fingerprint,
			   user_agent, screen, timezone, language, referrer,
			   consent_type, feature, logged_at
		FROM consent_proofs
		WHERE fingerprint = ?
		ORDER BY timestamp DESC
	`
	rows, err := r.db.QueryContext(ctx, query, fingerprint)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proofs []domain.ConsentProof
	for rows.Next() {
		var (
			proof    domain.ConsentProof
			acks     sql.NullString
			screen   sql.NullString
			timezone sql.NullString
			language sql.NullString
			referrer sql.NullString
			loggedAt string
		)
		if err := rows.Scan(
			&proof.ID,
			&proof.ProofHash,
			&proof.Timestamp,
			&proof.Version,
			&acks,
			&proof.Page,
			&proof.Fingerprint,
			&proof.UserAgent,
			&screen,
			&timezone,
			&language,
			&referrer,
			&proof.ConsentType,
			&proof.Feature,
			&loggedAt,
		); err != nil {
			return nil, err
		}
		if acks.Valid && acks.String != "" {
			if err := json.Unmarshal([]byte(acks.String), &proof.Acks); err != nil {
				return nil, fmt.Errorf("unmarshal acks: %w", err)
			}
		}
		proof.Screen = screen.String
		proof.Timezone = timezone.String
		proof.Language = language.String
		proof.Referrer = referrer.String
		if parsed, err := time.Parse(time.RFC3339, loggedAt); err == nil {
			proof.LoggedAt = parsed
		}
		proofs = append(proofs, proof)
	}
	return proofs, rows.Err()
}

func (r *SqliteConsentRepository) Stats(ctx context.Context) (domain.ConsentStats, error) {
	stats := domain.ConsentStats{VersionBreakdown: make(map[string]int)}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM consent_proofs`, &stats.TotalConsents},
		{`SELECT COUNT(*) FROM consent_proofs WHERE consent_type = 'full'`, &stats.FullConsents},
		{`SELECT COUNT(*) FROM consent_proofs WHERE consent_type = 'quick'`, &stats.QuickConsents},
		{`SELECT COUNT(DISTINCT fingerprint) FROM consent_proofs`, &stats.UniqueFingerprints},
	}
	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return domain.ConsentStats{}, err
		}
	}

	// Timestamps del cliente llegan en milisegundos.
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayMillis := dayStart.UnixMilli()
	weekMillis := dayStart.AddDate(0, 0, -7).UnixMilli()

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM consent_proofs WHERE timestamp >= ?`, todayMillis,
	).Scan(&stats.ConsentsToday); err != nil {
		return domain.ConsentStats{}, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM consent_proofs WHERE timestamp >= ?`, weekMillis,
	).Scan(&stats.ConsentsThisWeek); err != nil {
		return domain.ConsentStats{}, err
	}

	pageRows, err := r.db.QueryContext(ctx, `
		SELECT page, COUNT(*) AS count
		FROM consent_proofs
		GROUP BY page
		ORDER BY count DESC
		LIMIT 10
	`)
	if err != nil {
		return domain.ConsentStats{}, err
	}
	defer pageRows.Close()
	for pageRows.Next() {
		var pc domain.ConsentPageCount
		if err := pageRows.Scan(&pc.Page, &pc.Count); err != nil {
			return domain.ConsentStats{}, err
		}
		stats.TopPages = append(stats.TopPages, pc)
	}
	if err := pageRows.Err(); err != nil {
		return domain.ConsentStats{}, err
	}

	versionRows, err := r.db.QueryContext(ctx, `
		SELECT version, COUNT(*)
		FROM consent_proofs
		GROUP BY version
	`)
	if err != nil {
		return domain.ConsentStats{}, err
	}
	defer versionRows.Close()
	for versionRows.Next() {
		var (
			version string
			count   int
		)
		if err := versionRows.Scan(&version, &count); err != nil {
			return domain.ConsentStats{}, err
		}
		stats.VersionBreakdown[version] = count
	}
	return stats, versionRows.Err()
}
