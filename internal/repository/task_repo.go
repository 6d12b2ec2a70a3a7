package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"TASKMANAGER_BACK-END/internal/models"
)

// TaskStore persists task records. Every read and write is scoped by the
// owning user id; a task owned by someone else behaves as if it does not
// exist.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error)
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error)
	// Update writes all mutable fields plus updated_at in one statement.
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// TaskRepository is the Postgres-backed TaskStore.
type TaskRepository struct {
	db *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository instance
func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, category, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID, task.Title, task.Description, task.Status, task.Priority, task.Category,
		task.OwnerID, task.CreatedAt, task.UpdatedAt)
	return err
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, status, priority, category, owner_id, created_at, updated_at
		   FROM tasks
		  WHERE owner_id = $1
		  ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.Category, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := r.db.QueryRow(ctx,
		`SELECT id, title, description, status, priority, category, owner_id, created_at, updated_at
		   FROM tasks
		  WHERE id = $1 AND owner_id = $2`, id, ownerID).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Category, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks
		    SET title = $1,
		        description = $2,
		        status = $3,
		        priority = $4,
		        category = $5,
		        updated_at = $6
		  WHERE id = $7 AND owner_id = $8`,
		task.Title, task.Description, task.Status, task.Priority, task.Category,
		task.UpdatedAt, task.ID, task.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
