package registry

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/voidshard/era5d/internal/utils"
	"github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/structs"
)

const (
	jobColumns    = `id, status, progress, request, created_at, completed_at, result, error, queue_task_id`
	selectColumns = `id::text, status, progress, request, created_at, completed_at, result, error, queue_task_id`
)

//go:embed migrations/*.sql
var migrations embed.FS

// Postgres is a registry that keeps jobs in postgres, so they survive restarts &
// can be shared between API servers and worker processes.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

// NewPostgres connects to the database & (unless told not to) migrates the schema.
func NewPostgres(opts *Options) (*Postgres, error) {
	opts.setDefaults()
	opts.URL = strings.Replace(opts.URL, "$"+opts.UsernameEnvVar, os.Getenv(opts.UsernameEnvVar), 1)
	opts.URL = strings.Replace(opts.URL, "$"+opts.PasswordEnvVar, os.Getenv(opts.PasswordEnvVar), 1)

	if !opts.SkipMigrate {
		if err := migrateUp(opts.URL); err != nil {
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	}

	pool, err := pgxpool.New(context.Background(), opts.URL)
	return &Postgres{pool: pool, opts: opts}, err
}

// migrateUp applies the embedded migrations. golang-migrate wants a database/sql
// handle, so this goes via lib/pq rather than the pgx pool.
func migrateUp(url string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return err
	}
	defer db.Close()

	drv, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if err == migrate.ErrNoChange {
		return nil
	} else if err == nil {
		zap.S().Named("registry").Infow("applied database migrations")
	}
	return err
}

// toStoredPrecision truncates t to what TIMESTAMPTZ keeps, so returned jobs
// match what a later Get reads back.
func toStoredPrecision(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Create(ctx context.Context, req *structs.RetrievalRequest) (*structs.Job, error) {
	j := &structs.Job{
		ID:        utils.NewID(),
		Status:    structs.QUEUED,
		Request:   req.Copy(),
		CreatedAt: toStoredPrecision(timeNow()),
	}
	qstr, args, err := toJobSqlArgs(1, j)
	if err != nil {
		return nil, err
	}
	qstr = fmt.Sprintf(`INSERT INTO jobs (%s) VALUES %s;`, jobColumns, qstr)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*structs.Job, error) {
	if !utils.IsValidID(id) {
		// the column is a UUID, so postgres would reject this anyway
		return nil, fmt.Errorf("%w: job %s", errors.ErrNotFound, id)
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM jobs WHERE id=$1;`, selectColumns), id)
	return scanJob(id, row)
}

// List returns jobs matching the given query
func (p *Postgres) List(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()

	where, args := toSqlQuery(map[string][]string{
		"status": statusToStrings(q.Statuses),
	})
	page := ""
	if q.Limit > 0 {
		args = append(args, q.Limit)
		page = fmt.Sprintf("LIMIT $%d ", len(args))
	}
	args = append(args, q.Offset)
	page += fmt.Sprintf("OFFSET $%d", len(args))

	qstr := fmt.Sprintf(`SELECT %s FROM jobs %s ORDER BY created_at DESC %s;`,
		selectColumns, where, page,
	)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*structs.Job{}
	for rows.Next() {
		j, err := scanJob("", rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}

// Update locks the job row, applies the patch & writes it back in one transaction.
func (p *Postgres) Update(ctx context.Context, id string, patch *structs.JobPatch) (*structs.Job, error) {
	if !utils.IsValidID(id) {
		return nil, fmt.Errorf("%w: job %s", errors.ErrNotFound, id)
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM jobs WHERE id=$1 FOR UPDATE;`, selectColumns), id)
	j, err := scanJob(id, row)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}

	err = patch.Apply(j)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	if j.CompletedAt != nil {
		at := toStoredPrecision(*j.CompletedAt)
		j.CompletedAt = &at
	}

	result, err := marshalNullable(j.Result)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE jobs SET status=$1, progress=$2, completed_at=$3, result=$4, error=$5, queue_task_id=$6 WHERE id=$7;`,
		string(j.Status), j.Progress, j.CompletedAt, result, j.Error, j.QueueTaskID, j.ID,
	)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	return j, nil
}

// scanJob reads one row of jobColumns. id is used only for the not found error.
func scanJob(id string, row pgx.Row) (*structs.Job, error) {
	j := structs.Job{}
	var status string
	var request, result []byte
	err := row.Scan(
		&j.ID,
		&status,
		&j.Progress,
		&request,
		&j.CreatedAt,
		&j.CompletedAt,
		&result,
		&j.Error,
		&j.QueueTaskID,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: job %s", errors.ErrNotFound, id)
	} else if err != nil {
		return nil, err
	}
	j.Status = structs.ToStatus(status)
	j.CreatedAt = j.CreatedAt.UTC()
	if j.CompletedAt != nil {
		at := j.CompletedAt.UTC()
		j.CompletedAt = &at
	}

	j.Request = &structs.RetrievalRequest{}
	if err := json.Unmarshal(request, j.Request); err != nil {
		return nil, fmt.Errorf("decoding request of job %s: %w", j.ID, err)
	}
	if len(result) > 0 {
		j.Result = &structs.JobResult{}
		if err := json.Unmarshal(result, j.Result); err != nil {
			return nil, fmt.Errorf("decoding result of job %s: %w", j.ID, err)
		}
	}
	return &j, nil
}

func marshalNullable(v *structs.JobResult) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// toSqlQuery converts query data into a SQL WHERE clause & args
func toSqlQuery(in map[string][]string) (string, []interface{}) {
	and := []string{}
	args := []interface{}{}
	for k, v := range in {
		if len(v) == 0 {
			continue
		}
		s, a := toSqlIn(len(args)+1, k, v)
		and = append(and, s)
		args = append(args, a...)
	}
	if len(and) == 0 {
		return "", args
	}
	return fmt.Sprintf("WHERE %s", strings.Join(and, " AND ")), args
}

// toSqlIn converts a list of strings into a SQL IN clause
func toSqlIn(offset int, field string, args []string) (string, []interface{}) {
	if len(args) == 0 {
		return "", []interface{}{}
	}
	vals := []string{}
	ifargs := []interface{}{}
	for i, a := range args {
		vals = append(vals, fmt.Sprintf("$%d", i+offset))
		ifargs = append(ifargs, a)
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(vals, ", ")), ifargs
}

// toJobSqlArgs converts a job into a SQL values string & args (for an insert)
func toJobSqlArgs(offset int, j *structs.Job) (string, []interface{}, error) {
	vals := []string{}
	for i := offset; i < 9+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	request, err := json.Marshal(j.Request)
	if err != nil {
		return "", nil, err
	}
	result, err := marshalNullable(j.Result)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		j.ID,
		string(j.Status),
		j.Progress,
		request,
		j.CreatedAt,
		j.CompletedAt,
		result,
		j.Error,
		j.QueueTaskID,
	}, nil
}

func statusToStrings(in []structs.Status) []string {
	out := []string{}
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}
