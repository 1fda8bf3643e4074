package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/store"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/task"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskStore implements task.TaskStore using GORM.
type TaskStore struct {
	db     database.Database
	mapper TaskMapper
}

// NewTaskStore creates a new TaskStore.
func NewTaskStore(db database.Database) TaskStore {
	return TaskStore{
		db:     db,
		mapper: TaskMapper{},
	}
}

// Get retrieves a task by ID.
func (s TaskStore) Get(ctx context.Context, id int64) (task.Task, error) {
	var model TaskModel
	result := s.db.Session(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return task.Task{}, fmt.Errorf("%w: task id %d", database.ErrNotFound, id)
		}
		return task.Task{}, fmt.Errorf("get task: %w", result.Error)
	}
	return s.mapper.ToDomain(model)
}

// FindPending retrieves pending tasks ordered by priority.
func (s TaskStore) FindPending(ctx context.Context, options ...store.Option) ([]task.Task, error) {
	var models []TaskModel
	db := s.db.Session(ctx).Order("priority DESC, created_at ASC")
	db = database.ApplyOptions(db, options...)
	result := db.Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("find pending tasks: %w", result.Error)
	}

	tasks := make([]task.Task, len(models))
	for i, model := range models {
		t, err := s.mapper.ToDomain(model)
		if err != nil {
			return nil, fmt.Errorf("find pending tasks: %w", err)
		}
		tasks[i] = t
	}
	return tasks, nil
}

// Save creates a new task or updates an existing one.
// Uses dedup_key for conflict resolution: enqueueing the same operation and
// payload again bumps the existing row's priority instead of duplicating it.
func (s TaskStore) Save(ctx context.Context, t task.Task) (task.Task, error) {
	model, err := s.mapper.ToModel(t)
	if err != nil {
		return task.Task{}, fmt.Errorf("save task: %w", err)
	}

	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"priority", "updated_at"}),
	}).Create(&model)

	if result.Error != nil {
		return task.Task{}, fmt.Errorf("save task: %w", result.Error)
	}

	return s.mapper.ToDomain(model)
}

// SaveBulk creates or updates multiple tasks.
func (s TaskStore) SaveBulk(ctx context.Context, tasks []task.Task) ([]task.Task, error) {
	if len(tasks) == 0 {
		return []task.Task{}, nil
	}

	models := make([]TaskModel, len(tasks))
	for i, t := range tasks {
		model, err := s.mapper.ToModel(t)
		if err != nil {
			return nil, fmt.Errorf("save tasks bulk: %w", err)
		}
		models[i] = model
	}

	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"priority", "updated_at"}),
	}).Create(&models)

	if result.Error != nil {
		return nil, fmt.Errorf("save tasks bulk: %w", result.Error)
	}

	saved := make([]task.Task, len(models))
	for i, model := range models {
		t, err := s.mapper.ToDomain(model)
		if err != nil {
			return nil, fmt.Errorf("save tasks bulk: %w", err)
		}
		saved[i] = t
	}
	return saved, nil
}

// Delete removes a task.
func (s TaskStore) Delete(ctx context.Context, t task.Task) error {
	result := s.db.Session(ctx).Delete(&TaskModel{}, t.ID())
	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	return nil
}

// DeleteAll removes every queued task.
func (s TaskStore) DeleteAll(ctx context.Context) error {
	result := s.db.Session(ctx).Where("1 = 1").Delete(&TaskModel{})
	if result.Error != nil {
		return fmt.Errorf("delete all tasks: %w", result.Error)
	}
	return nil
}

// CountPending returns the number of pending tasks matching the options.
func (s TaskStore) CountPending(ctx context.Context, options ...store.Option) (int64, error) {
	var count int64
	db := database.ApplyConditions(s.db.Session(ctx).Model(&TaskModel{}), options...)
	result := db.Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count pending tasks: %w", result.Error)
	}
	return count, nil
}

// Dequeue atomically claims and removes the highest-priority pending task.
// Returns false when the queue is empty.
func (s TaskStore) Dequeue(ctx context.Context) (task.Task, bool, error) {
	model, err := database.WithTransactionResult(ctx, s.db, func(tx *gorm.DB) (TaskModel, error) {
		var m TaskModel
		result := tx.Order("priority DESC, created_at ASC").First(&m)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return TaskModel{}, nil // queue is empty
			}
			return TaskModel{}, result.Error
		}

		return m, tx.Delete(&m).Error
	})

	if err != nil {
		return task.Task{}, false, fmt.Errorf("dequeue task: %w", err)
	}

	if model.ID == 0 {
		return task.Task{}, false, nil
	}

	t, err := s.mapper.ToDomain(model)
	if err != nil {
		return task.Task{}, false, fmt.Errorf("dequeue task: %w", err)
	}
	return t, true, nil
}
