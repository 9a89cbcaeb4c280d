package schoolapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matheus3301/classnotes/internal/school"
	"go.uber.org/zap"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// PostgresRepository is the pgx-backed Repository.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresRepository{pool: pool, logger: logger}, nil
}

// Pool exposes the connection pool for migrations.
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func (r *PostgresRepository) Classes(ctx context.Context) ([]school.Class, error) {
	rows, err := r.pool.Query(ctx, `SELECT cod_class, nom_class, nbre_etud FROM classes ORDER BY cod_class`)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	classes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (school.Class, error) {
		var c school.Class
		err := row.Scan(&c.ID, &c.Name, &c.StudentCount)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan classes: %w", err)
	}

	links, err := r.classSubjects(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range classes {
		classes[i].Subjects = links[classes[i].ID]
	}
	return classes, nil
}

// classSubjects returns subjects grouped by class. classID 0 loads every class.
func (r *PostgresRepository) classSubjects(ctx context.Context, classID int64) (map[int64][]school.Subject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cs.cod_class, s.cod_mat, s.int_mat, s.description
		FROM class_subjects cs
		JOIN subjects s ON s.cod_mat = cs.cod_mat
		WHERE $1::bigint = 0 OR cs.cod_class = $1
		ORDER BY cs.cod_class, s.cod_mat
	`, classID)
	if err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]school.Subject)
	for rows.Next() {
		var cid int64
		var s school.Subject
		if err := rows.Scan(&cid, &s.ID, &s.Title, &s.Description); err != nil {
			return nil, fmt.Errorf("scan class subject: %w", err)
		}
		out[cid] = append(out[cid], s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Class(ctx context.Context, id int64) (*school.Class, error) {
	var c school.Class
	err := r.pool.QueryRow(ctx, `SELECT cod_class, nom_class, nbre_etud FROM classes WHERE cod_class = $1`, id).
		Scan(&c.ID, &c.Name, &c.StudentCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	links, err := r.classSubjects(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Subjects = links[id]
	return &c, nil
}

func (r *PostgresRepository) CreateClass(ctx context.Context, c school.Class) (*school.Class, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classes (nom_class, nbre_etud) VALUES ($1, $2) RETURNING cod_class`,
		c.Name, c.StudentCount,
	).Scan(&c.ID)
	if err != nil {
		r.logger.Error("insert class failed", zap.String("name", c.Name), zap.Error(err))
		return nil, fmt.Errorf("create class: %w", err)
	}
	c.Subjects = nil
	return &c, nil
}

func (r *PostgresRepository) UpdateClass(ctx context.Context, c school.Class) (*school.Class, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE classes SET nom_class = $2, nbre_etud = $3 WHERE cod_class = $1`,
		c.ID, c.Name, c.StudentCount,
	)
	if err != nil {
		return nil, fmt.Errorf("update class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.Class(ctx, c.ID)
}

func (r *PostgresRepository) DeleteClass(ctx context.Context, id int64) error {
	return r.execOne(ctx, "delete class", `DELETE FROM classes WHERE cod_class = $1`, id)
}

func (r *PostgresRepository) StudentsByClass(ctx context.Context, classID int64) ([]school.Student, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, cod_class, nom, prenom, date_nais
		FROM students WHERE cod_class = $1 ORDER BY id
	`, classID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	students, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (school.Student, error) {
		var s school.Student
		err := row.Scan(&s.ID, &s.ClassID, &s.LastName, &s.FirstName, &s.BirthDate)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan students: %w", err)
	}
	if students == nil {
		students = []school.Student{}
	}
	return students, nil
}

func (r *PostgresRepository) CreateStudent(ctx context.Context, s school.Student) (*school.Student, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (cod_class, nom, prenom, date_nais) VALUES ($1, $2, $3, $4) RETURNING id`,
		s.ClassID, s.LastName, s.FirstName, s.BirthDate,
	).Scan(&s.ID)
	if pgCode(err) == pgForeignKeyViolation {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) UpdateStudent(ctx context.Context, s school.Student) (*school.Student, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET cod_class = $2, nom = $3, prenom = $4, date_nais = $5 WHERE id = $1`,
		s.ID, s.ClassID, s.LastName, s.FirstName, s.BirthDate,
	)
	if pgCode(err) == pgForeignKeyViolation {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *PostgresRepository) DeleteStudent(ctx context.Context, id int64) error {
	return r.execOne(ctx, "delete student", `DELETE FROM students WHERE id = $1`, id)
}

func (r *PostgresRepository) Subjects(ctx context.Context) ([]school.Subject, error) {
	rows, err := r.pool.Query(ctx, `SELECT cod_mat, int_mat, description FROM subjects ORDER BY cod_mat`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	subjects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (school.Subject, error) {
		var s school.Subject
		err := row.Scan(&s.ID, &s.Title, &s.Description)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan subjects: %w", err)
	}
	if subjects == nil {
		subjects = []school.Subject{}
	}
	return subjects, nil
}

func (r *PostgresRepository) CreateSubject(ctx context.Context, s school.Subject) (*school.Subject, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (int_mat, description) VALUES ($1, $2) RETURNING cod_mat`,
		s.Title, s.Description,
	).Scan(&s.ID)
	if err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) UpdateSubject(ctx context.Context, s school.Subject) (*school.Subject, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subjects SET int_mat = $2, description = $3 WHERE cod_mat = $1`,
		s.ID, s.Title, s.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("update subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *PostgresRepository) DeleteSubject(ctx context.Context, id int64) error {
	return r.execOne(ctx, "delete subject", `DELETE FROM subjects WHERE cod_mat = $1`, id)
}

func (r *PostgresRepository) LinkSubject(ctx context.Context, classID, subjectID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO class_subjects (cod_class, cod_mat) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		classID, subjectID,
	)
	if pgCode(err) == pgForeignKeyViolation {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("link subject: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UnlinkSubject(ctx context.Context, classID, subjectID int64) error {
	return r.execOne(ctx, "unlink subject",
		`DELETE FROM class_subjects WHERE cod_class = $1 AND cod_mat = $2`, classID, subjectID)
}

func (r *PostgresRepository) AccountByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM accounts WHERE LOWER(email) = LOWER($1)`, email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) CreateAccount(ctx context.Context, email string, hash []byte) (*Account, error) {
	a := Account{Email: email, PasswordHash: hash}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		email, hash,
	).Scan(&a.ID, &a.CreatedAt)
	if pgCode(err) == pgUniqueViolation {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &a, nil
}

// execOne runs a statement that must affect exactly one row.
func (r *PostgresRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
