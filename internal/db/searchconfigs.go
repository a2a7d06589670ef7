package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobmate/jobboard-service/internal/model"
)

// ErrNotFound is returned when a search config id has no row.
var ErrNotFound = errors.New("search config not found")

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const searchConfigColumns = `id, user_id, job_titles, locations, remote_policy, keywords, red_flags,
		        salary_min, salary_max`

func scanSearchConfig(row pgx.Row) (model.SearchConfig, error) {
	var c model.SearchConfig
	err := row.Scan(
		&c.ID, &c.UserID, &c.JobTitles, &c.Locations,
		&c.RemotePolicy, &c.Keywords, &c.RedFlags,
		&c.SalaryMin, &c.SalaryMax,
	)
	return c, err
}

// LoadActiveConfigs fetches all is_active = true search configs.
func LoadActiveConfigs(ctx context.Context, q Querier) ([]model.SearchConfig, error) {
	rows, err := q.Query(ctx,
		`SELECT `+searchConfigColumns+`
		 FROM search_configs
		 WHERE is_active = true`,
	)
	if err != nil {
		return nil, fmt.Errorf("query search_configs: %w", err)
	}
	defer rows.Close()

	var configs []model.SearchConfig
	for rows.Next() {
		c, err := scanSearchConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		configs = append(configs, c)
	}

	return configs, rows.Err()
}

// LoadSearchConfig fetches one search config by id, active or not.
func LoadSearchConfig(ctx context.Context, q Querier, id string) (model.SearchConfig, error) {
	c, err := scanSearchConfig(q.QueryRow(ctx,
		`SELECT `+searchConfigColumns+`
		 FROM search_configs
		 WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SearchConfig{}, ErrNotFound
	}
	if err != nil {
		return model.SearchConfig{}, fmt.Errorf("load search config %s: %w", id, err)
	}
	return c, nil
}
