package archive

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"sysweather/internal/collector"
	"sysweather/internal/weather"
)

// DuckDB is columnar and favors wide append-only fact tables, so the archive
// keeps one flat samples table plus a tiny hosts dimension.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS hosts (
  host_id    BIGINT PRIMARY KEY,
  hostname   VARCHAR NOT NULL UNIQUE,
  created_at TIMESTAMP NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS samples (
  sample_id        BIGINT PRIMARY KEY,
  host_id          BIGINT NOT NULL,
  sampled_at       TIMESTAMP NOT NULL,

  cpu_usage_pct    DOUBLE,
  cpu_cores        INTEGER,
  cpu_temp_c       DOUBLE,
  cpu_temp_known   BOOLEAN,

  mem_usage_pct    DOUBLE,
  mem_total_bytes  BIGINT,
  mem_used_bytes   BIGINT,
  swap_used_bytes  BIGINT,

  disk_usage_pct   DOUBLE,
  net_rx_bytes     BIGINT,
  net_tx_bytes     BIGINT,

  procs_running    INTEGER,
  procs_total      INTEGER,

  condition        VARCHAR,
  severity_score   DOUBLE
);

CREATE INDEX IF NOT EXISTS idx_samples_host_time ON samples(host_id, sampled_at);
`

// Record is one archived sample row joined with its host.
type Record struct {
	SampleID      int64     `json:"sample_id"`
	Hostname      string    `json:"hostname"`
	SampledAt     time.Time `json:"sampled_at"`
	CPUUsagePct   float64   `json:"cpu_usage_pct"`
	CPUTempC      float64   `json:"cpu_temp_c"`
	CPUTempKnown  bool      `json:"cpu_temp_known"`
	MemUsagePct   float64   `json:"mem_usage_pct"`
	DiskUsagePct  float64   `json:"disk_usage_pct"`
	NetRxBytes    uint64    `json:"net_rx_bytes"`
	NetTxBytes    uint64    `json:"net_tx_bytes"`
	ProcsRunning  int       `json:"procs_running"`
	ProcsTotal    int       `json:"procs_total"`
	Condition     string    `json:"condition"`
	SeverityScore float64   `json:"severity_score"`
}

// Repo stores and queries archived samples for one host.
type Repo struct {
	client *Client

	mu       sync.Mutex
	hostID   int64
	nextID   int64
	hostname string
}

// NewRepo initializes the schema and resolves the host row for hostname.
func NewRepo(ctx context.Context, client *Client, hostname string) (*Repo, error) {
	if client == nil {
		return nil, fmt.Errorf("archive: nil client")
	}
	if hostname == "" {
		hostname = "unknown"
	}

	if _, err := client.db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("archive: init schema: %w", err)
	}

	r := &Repo{client: client, hostname: hostname}
	if err := r.resolveHost(ctx); err != nil {
		return nil, err
	}
	if err := r.seedNextID(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repo) resolveHost(ctx context.Context) error {
	row := r.client.db.QueryRowContext(ctx,
		`SELECT host_id FROM hosts WHERE hostname = ?`, r.hostname)
	switch err := row.Scan(&r.hostID); err {
	case nil:
		return nil
	case sql.ErrNoRows:
	default:
		return fmt.Errorf("archive: lookup host: %w", err)
	}

	var maxID sql.NullInt64
	if err := r.client.db.QueryRowContext(ctx,
		`SELECT max(host_id) FROM hosts`).Scan(&maxID); err != nil {
		return fmt.Errorf("archive: next host id: %w", err)
	}
	r.hostID = maxID.Int64 + 1
	if _, err := r.client.db.ExecContext(ctx,
		`INSERT INTO hosts (host_id, hostname) VALUES (?, ?)`, r.hostID, r.hostname); err != nil {
		return fmt.Errorf("archive: insert host: %w", err)
	}
	return nil
}

func (r *Repo) seedNextID(ctx context.Context) error {
	var maxID sql.NullInt64
	if err := r.client.db.QueryRowContext(ctx,
		`SELECT max(sample_id) FROM samples`).Scan(&maxID); err != nil {
		return fmt.Errorf("archive: seed sample id: %w", err)
	}
	r.nextID = maxID.Int64 + 1
	return nil
}

// Insert archives one sample together with its classified condition.
func (r *Repo) Insert(ctx context.Context, s *collector.Sample, report weather.Report) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("archive: nil sample")
	}

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.mu.Unlock()

	_, err := r.client.db.ExecContext(ctx, `
		INSERT INTO samples (
			sample_id, host_id, sampled_at,
			cpu_usage_pct, cpu_cores, cpu_temp_c, cpu_temp_known,
			mem_usage_pct, mem_total_bytes, mem_used_bytes, swap_used_bytes,
			disk_usage_pct, net_rx_bytes, net_tx_bytes,
			procs_running, procs_total,
			condition, severity_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.hostID, s.Timestamp.UTC(),
		s.CPU.UsagePercent, s.CPU.CoreCount, s.CPU.TemperatureC, s.CPU.TemperatureKnown,
		s.Memory.UsagePercent(), int64(s.Memory.TotalBytes), int64(s.Memory.UsedBytes), int64(s.Memory.SwapUsedBytes),
		s.AvgDiskUsage(), int64(s.Network.TotalRx()), int64(s.Network.TotalTx()),
		s.Processes.Running, s.Processes.Total,
		report.Condition.String(), report.Score,
	)
	if err != nil {
		return 0, fmt.Errorf("archive: insert sample: %w", err)
	}
	return id, nil
}

// Query returns the most recent archived samples, newest first.
func (r *Repo) Query(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := r.client.db.QueryContext(ctx, `
		SELECT
			s.sample_id,
			COALESCE(h.hostname, 'unknown'),
			s.sampled_at,
			s.cpu_usage_pct, s.cpu_temp_c, s.cpu_temp_known,
			s.mem_usage_pct, s.disk_usage_pct,
			s.net_rx_bytes, s.net_tx_bytes,
			s.procs_running, s.procs_total,
			COALESCE(s.condition, ''), s.severity_score
		FROM samples s
		LEFT JOIN hosts h ON s.host_id = h.host_id
		WHERE s.host_id = ?
		ORDER BY s.sampled_at DESC
		LIMIT ?`, r.hostID, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: query samples: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var rx, tx int64
		err := rows.Scan(
			&rec.SampleID, &rec.Hostname, &rec.SampledAt,
			&rec.CPUUsagePct, &rec.CPUTempC, &rec.CPUTempKnown,
			&rec.MemUsagePct, &rec.DiskUsagePct,
			&rx, &tx,
			&rec.ProcsRunning, &rec.ProcsTotal,
			&rec.Condition, &rec.SeverityScore,
		)
		if err != nil {
			return nil, fmt.Errorf("archive: scan sample: %w", err)
		}
		rec.NetRxBytes = uint64(rx)
		rec.NetTxBytes = uint64(tx)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: rows: %w", err)
	}
	return records, nil
}

// Latest returns the most recent archived sample for the host.
func (r *Repo) Latest(ctx context.Context) (*Record, error) {
	records, err := r.Query(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("archive: no samples recorded")
	}
	return &records[0], nil
}

// Count reports how many samples the host has archived.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.client.db.QueryRowContext(ctx,
		`SELECT count(*) FROM samples WHERE host_id = ?`, r.hostID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("archive: count samples: %w", err)
	}
	return n, nil
}
