package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
)

// ScanDB stores scan records in SQLite.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now stamps new records and ends the dashboard windows.
	now func() time.Time
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool

	// Now overrides the clock used for CreatedAt. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, config.DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}
	if opts.Now != nil {
		sdb.now = opts.Now
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *ScanDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		url TEXT NOT NULL,
		url_hash TEXT NOT NULL,
		risk_score INTEGER NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('safe', 'suspicious', 'malicious')),
		reasons TEXT,
		details TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scans_user ON scans(user_id);
	CREATE INDEX IF NOT EXISTS idx_scans_user_hash ON scans(user_id, url_hash);
	CREATE INDEX IF NOT EXISTS idx_scans_created ON scans(created_at);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// URLHash returns the blake2b-256 fingerprint of the trimmed lowercase URL
// as lowercase hex. Records of the same URL share a fingerprint.
func URLHash(rawURL string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(rawURL))))
	return hex.EncodeToString(sum[:])
}

// Save stores one scan result for userID and returns the new record ID.
func (sdb *ScanDB) Save(ctx context.Context, userID, url string, riskScore int, status model.DomainStatus, details model.Details, reasons ...string) (int64, error) {
	return sdb.SaveRecord(ctx, &model.ScanRecord{
		UserID:    userID,
		URL:       url,
		RiskScore: riskScore,
		Status:    status,
		Reasons:   reasons,
		Details:   details,
	})
}

// SaveRecord validates and inserts record. URLHash and CreatedAt are filled
// in when empty, and record.ID is set on success.
func (sdb *ScanDB) SaveRecord(ctx context.Context, record *model.ScanRecord) (int64, error) {
	if err := validateRecord(record); err != nil {
		return 0, err
	}

	if record.URLHash == "" {
		record.URLHash = URLHash(record.URL)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = sdb.now()
	}

	reasonsJSON, err := json.Marshal(record.Reasons)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize reasons: %w", err)
	}
	detailsJSON, err := json.Marshal(record.Details)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize details: %w", err)
	}

	query := `
	INSERT INTO scans (user_id, url, url_hash, risk_score, status, reasons, details, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sdb.db.ExecContext(ctx, query,
		record.UserID,
		record.URL,
		record.URLHash,
		record.RiskScore,
		string(record.Status),
		string(reasonsJSON),
		string(detailsJSON),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read record id: %w", err)
	}
	record.ID = id

	return id, nil
}

func validateRecord(record *model.ScanRecord) error {
	if record == nil || strings.TrimSpace(record.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(record.URL) == "" {
		return ErrEmptyURL
	}
	if !record.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, record.Status)
	}
	if record.RiskScore < model.MinRiskScore || record.RiskScore > model.MaxRiskScore {
		return fmt.Errorf("%w: %d", ErrInvalidRiskScore, record.RiskScore)
	}
	return nil
}

const selectColumns = `id, user_id, url, url_hash, risk_score, status, reasons, details, created_at`

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.ScanRecord, error) {
	var (
		record      model.ScanRecord
		status      string
		reasonsJSON sql.NullString
		detailsJSON sql.NullString
		createdAt   string
	)

	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.URL,
		&record.URLHash,
		&record.RiskScore,
		&status,
		&reasonsJSON,
		&detailsJSON,
		&createdAt,
	); err != nil {
		return nil, err
	}

	record.Status = model.DomainStatus(status)
	record.CreatedAt = parseTimestamp(createdAt)

	if reasonsJSON.Valid && reasonsJSON.String != "" {
		if err := json.Unmarshal([]byte(reasonsJSON.String), &record.Reasons); err != nil {
			return nil, fmt.Errorf("failed to parse reasons: %w", err)
		}
	}
	if detailsJSON.Valid && detailsJSON.String != "" {
		if err := json.Unmarshal([]byte(detailsJSON.String), &record.Details); err != nil {
			return nil, fmt.Errorf("failed to parse details: %w", err)
		}
	}

	return &record, nil
}

// GetByID retrieves a scan record by its database ID.
// It returns nil, nil when no record exists.
func (sdb *ScanDB) GetByID(ctx context.Context, id int64) (*model.ScanRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM scans WHERE id = ?`

	record, err := scanRecord(sdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan record: %w", err)
	}
	return record, nil
}

// History returns the most recent scans of userID, newest first.
// A limit of zero or less returns every record.
func (sdb *ScanDB) History(ctx context.Context, userID string, limit int) ([]*model.ScanRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM scans WHERE user_id = ? ORDER BY id DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var records []*model.ScanRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// CountByURL returns how often userID has scanned url. URLs are compared by
// fingerprint, so case and surrounding spaces do not matter.
func (sdb *ScanDB) CountByURL(ctx context.Context, userID, url string) (int, error) {
	query := `SELECT COUNT(*) FROM scans WHERE user_id = ? AND url_hash = ?`

	var count int
	if err := sdb.db.QueryRowContext(ctx, query, userID, URLHash(url)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scans: %w", err)
	}
	return count, nil
}

// ListUsers returns every user with saved scans, sorted by ID.
func (sdb *ScanDB) ListUsers(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT user_id FROM scans ORDER BY user_id`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var user string
		if err := rows.Scan(&user); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Dashboard windows.
const (
	// StatsDays is how many days the daily breakdown covers, today included.
	StatsDays = 7

	// StatsMonths is how many months the trend covers, this month included.
	StatsMonths = 6

	// TopDomainLimit is the maximum number of flagged domains reported.
	TopDomainLimit = 5
)

// userFilter returns a WHERE condition restricting rows to userID.
// An empty userID matches every user.
func userFilter(userID string) (string, []any) {
	if userID == "" {
		return "1 = 1", nil
	}
	return "user_id = ?", []any{userID}
}

// Stats aggregates the scans of userID. An empty userID aggregates all users.
// The daily and monthly windows end at the store clock, in UTC.
func (sdb *ScanDB) Stats(ctx context.Context, userID string) (*model.Stats, error) {
	where, args := userFilter(userID)
	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'safe' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'suspicious' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'malicious' THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(risk_score), 0),
		COALESCE(MAX(id), 0)
	FROM scans
	WHERE ` + where

	stats := &model.Stats{UserID: userID}
	var lastID int64
	if err := sdb.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalScans,
		&stats.SafeCount,
		&stats.SuspiciousCount,
		&stats.MaliciousCount,
		&stats.AverageRiskScore,
		&lastID,
	); err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	if lastID > 0 {
		var createdAt string
		if err := sdb.db.QueryRowContext(ctx, `SELECT created_at FROM scans WHERE id = ?`, lastID).Scan(&createdAt); err != nil {
			return nil, fmt.Errorf("failed to get last scan time: %w", err)
		}
		stats.LastScanAt = parseTimestamp(createdAt)
	}

	now := sdb.now().UTC()
	var err error
	if stats.Daily, err = sdb.daily(ctx, userID, now); err != nil {
		return nil, err
	}
	if stats.Monthly, err = sdb.monthly(ctx, userID, now); err != nil {
		return nil, err
	}
	if stats.TopDomains, err = sdb.topDomains(ctx, userID); err != nil {
		return nil, err
	}

	return stats, nil
}

// daily counts scans per day and status for the StatsDays days ending at now.
func (sdb *ScanDB) daily(ctx context.Context, userID string, now time.Time) ([]model.DailyCount, error) {
	days := make([]model.DailyCount, StatsDays)
	index := make(map[string]int, StatsDays)
	for i := range days {
		date := now.AddDate(0, 0, i-(StatsDays-1)).Format(time.DateOnly)
		days[i].Date = date
		index[date] = i
	}

	where, args := userFilter(userID)
	query := `
	SELECT substr(created_at, 1, 10) AS day, status, COUNT(*)
	FROM scans
	WHERE ` + where + ` AND created_at >= ?
	GROUP BY day, status
	`
	args = append(args, days[0].Date)

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count daily scans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			day    string
			status string
			count  int
		)
		if err := rows.Scan(&day, &status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		i, ok := index[day]
		if !ok {
			continue
		}
		switch model.DomainStatus(status) {
		case model.DomainStatusSafe:
			days[i].Safe += count
		case model.DomainStatusSuspicious:
			days[i].Suspicious += count
		case model.DomainStatusMalicious:
			days[i].Malicious += count
		}
	}

	return days, rows.Err()
}

// monthly builds the threat trend for the StatsMonths months ending at now.
func (sdb *ScanDB) monthly(ctx context.Context, userID string, now time.Time) ([]model.MonthlyTrend, error) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]model.MonthlyTrend, StatsMonths)
	index := make(map[string]int, StatsMonths)
	for i := range months {
		month := first.AddDate(0, i-(StatsMonths-1), 0).Format("2006-01")
		months[i].Month = month
		index[month] = i
	}

	where, args := userFilter(userID)
	query := `
	SELECT
		substr(created_at, 1, 7) AS month,
		SUM(CASE WHEN status IN ('suspicious', 'malicious') THEN 1 ELSE 0 END),
		SUM(CASE WHEN status = 'malicious' THEN 1 ELSE 0 END)
	FROM scans
	WHERE ` + where + ` AND created_at >= ?
	GROUP BY month
	`
	args = append(args, months[0].Month)

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly trend: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			month   string
			threats int
			blocked int
		)
		if err := rows.Scan(&month, &threats, &blocked); err != nil {
			return nil, fmt.Errorf("failed to scan monthly trend: %w", err)
		}
		if i, ok := index[month]; ok {
			months[i].Threats = threats
			months[i].Blocked = blocked
		}
	}

	return months, rows.Err()
}

// topDomains returns the registrable domains with the most threat scans.
// Ties are broken by domain name.
func (sdb *ScanDB) topDomains(ctx context.Context, userID string) ([]model.DomainRisk, error) {
	where, args := userFilter(userID)
	query := `
	SELECT
		json_extract(details, '$.registrable_domain') AS domain,
		COUNT(*) AS attempts,
		MAX(CASE WHEN status = 'malicious' THEN 1 ELSE 0 END)
	FROM scans
	WHERE ` + where + `
		AND status IN ('suspicious', 'malicious')
		AND COALESCE(json_extract(details, '$.registrable_domain'), '') != ''
	GROUP BY domain
	ORDER BY attempts DESC, domain ASC
	LIMIT ?
	`
	args = append(args, TopDomainLimit)

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to rank domains: %w", err)
	}
	defer rows.Close()

	domains := make([]model.DomainRisk, 0, TopDomainLimit)
	for rows.Next() {
		var (
			d         model.DomainRisk
			malicious int
		)
		if err := rows.Scan(&d.Domain, &d.Attempts, &malicious); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		d.Risk = model.RiskMedium
		if malicious > 0 {
			d.Risk = model.RiskHigh
		}
		domains = append(domains, d)
	}

	return domains, rows.Err()
}

// DeleteHistory removes every record of userID and returns how many were deleted.
func (sdb *ScanDB) DeleteHistory(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrEmptyUserID
	}

	result, err := sdb.db.ExecContext(ctx, `DELETE FROM scans WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete history: %w", err)
	}
	return result.RowsAffected()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each known format and returns the zero time if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
