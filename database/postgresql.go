package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql
)

const uniqueViolation = "23505"

const profileColumns = "user_name, first_name, last_name, email_address, mobile_number, city, password"

const todoColumns = "id, user_name, subject, description, status, created_at, updated_at"

// PostgresStore keeps profiles and todos in two PostgreSQL tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects to uri and creates the tables if they do not exist.
func OpenPostgres(ctx context.Context, uri string) (*PostgresStore, error) {
	if uri == "" {
		return nil, errors.New("you must set your 'POSTGRESQL_URI' environmental variable")
	}

	db, err := sql.Open("pgx", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot connect to PostgreSQL: %w", err)
	}

	s := NewPostgresStore(db)
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// createTables creates the tables if they do not exist yet
func (s *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS profiles (
		id SERIAL PRIMARY KEY,
		user_name VARCHAR(255) UNIQUE NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email_address TEXT NOT NULL,
		mobile_number TEXT NOT NULL,
		city TEXT NOT NULL,
		password TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS todos (
		id VARCHAR(50) PRIMARY KEY,
		user_name VARCHAR(255) NOT NULL DEFAULT '',
		subject TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(50) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS todos_user_name_idx ON todos (user_name);
	CREATE INDEX IF NOT EXISTS todos_created_at_idx ON todos (created_at)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresStore) Close(context.Context) error {
	return s.db.Close()
}

func (s *PostgresStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO profiles ("+profileColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		p.UserName, p.FirstName, p.LastName, p.EmailAddress, p.MobileNumber, p.City, p.Password,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: userName %q already exists", ErrDuplicateKey, p.UserName)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindProfiles(ctx context.Context, userName string) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_name = $1", userName)
	if err != nil {
		return nil, fmt.Errorf("failed to find profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		var p models.Profile
		if err := scanProfile(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *PostgresStore) FindProfile(ctx context.Context, userName string) (*models.Profile, error) {
	var p models.Profile
	row := s.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_name = $1", userName)
	if err := scanProfile(row, &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userName string, patch models.ProfilePatch) (*models.Profile, error) {
	if patch.Empty() {
		return s.FindProfile(ctx, userName)
	}

	var sets []string
	var args []any
	add := func(column string, value *string) {
		if value != nil {
			args = append(args, *value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("first_name", patch.FirstName)
	add("last_name", patch.LastName)
	add("email_address", patch.EmailAddress)
	add("mobile_number", patch.MobileNumber)
	add("city", patch.City)
	add("password", patch.Password)
	args = append(args, userName)

	query := fmt.Sprintf("UPDATE profiles SET %s WHERE user_name = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), profileColumns)

	var p models.Profile
	if err := scanProfile(s.db.QueryRowContext(ctx, query, args...), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) CreateTodo(ctx context.Context, t *models.Todo) error {
	id, err := utils.UniqueID(func(id string) (bool, error) {
		var exists bool
		err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM todos WHERE id = $1)", id).Scan(&exists)
		return exists, err
	})
	if err != nil {
		return fmt.Errorf("failed to generate todo id: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO todos ("+todoColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		id, t.UserName, t.Subject, t.Description, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	t.ID = id
	return nil
}

func (s *PostgresStore) FindTodos(ctx context.Context, f models.TodoFilter) ([]models.Todo, error) {
	var conds []string
	var args []any
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserName != "" {
		add("user_name = $%d", f.UserName)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if !f.CreatedFrom.IsZero() {
		add("created_at >= $%d", f.CreatedFrom)
	}
	if !f.CreatedTo.IsZero() {
		add("created_at <= $%d", f.CreatedTo)
	}

	query := "SELECT " + todoColumns + " FROM todos"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var (
			t                    models.Todo
			createdAt, updatedAt sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.UserName, &t.Subject, &t.Description, &t.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		t.CreatedAt = createdAt.Time
		t.UpdatedAt = updatedAt.Time
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (s *PostgresStore) UpdateTodo(ctx context.Context, id string, set models.TodoUpdate, upsert bool) (models.UpdateResult, error) {
	columns, values := todoAssignments(set)
	if len(columns) == 0 {
		return models.UpdateResult{}, errors.New("update has no fields")
	}

	if upsert {
		return s.upsertTodo(ctx, id, columns, values)
	}

	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	args := append(values, id)
	query := fmt.Sprintf("UPDATE todos SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("failed to update todo: %w", err)
	}

	// Every update writes a fresh updated_at, so a matched row is always modified.
	count, _ := res.RowsAffected()
	return models.UpdateResult{Matched: count, Modified: count}, nil
}

func (s *PostgresStore) upsertTodo(ctx context.Context, id string, columns []string, values []any) (models.UpdateResult, error) {
	placeholders := make([]string, len(columns)+1)
	updates := make([]string, len(columns))
	placeholders[0] = "$1"
	for i, c := range columns {
		placeholders[i+1] = fmt.Sprintf("$%d", i+2)
		updates[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	}
	query := fmt.Sprintf(
		"INSERT INTO todos (id, %s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s RETURNING (xmax = 0) AS inserted",
		strings.Join(columns, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "),
	)

	var inserted bool
	args := append([]any{id}, values...)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&inserted); err != nil {
		return models.UpdateResult{}, fmt.Errorf("failed to upsert todo: %w", err)
	}

	if inserted {
		return models.UpdateResult{Upserted: 1}, nil
	}
	return models.UpdateResult{Matched: 1, Modified: 1}, nil
}

func (s *PostgresStore) DeleteTodo(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todo: %w", err)
	}

	count, _ := res.RowsAffected()
	return count, nil
}

func todoAssignments(set models.TodoUpdate) ([]string, []any) {
	var columns []string
	var values []any
	if set.Subject != nil {
		columns = append(columns, "subject")
		values = append(values, *set.Subject)
	}
	if set.Description != nil {
		columns = append(columns, "description")
		values = append(values, *set.Description)
	}
	if set.Status != nil {
		columns = append(columns, "status")
		values = append(values, *set.Status)
	}
	if set.UpdatedAt != nil {
		columns = append(columns, "updated_at")
		values = append(values, *set.UpdatedAt)
	}
	return columns, values
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner, p *models.Profile) error {
	return row.Scan(&p.UserName, &p.FirstName, &p.LastName, &p.EmailAddress, &p.MobileNumber, &p.City, &p.Password)
}

var _ Store = (*PostgresStore)(nil)
