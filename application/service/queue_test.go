package service

import (
	"context"
	"errors"
	"testing"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/task"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Enqueue(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	queue := NewQueue(store, testLogger())

	err := queue.Enqueue(ctx, task.NewTask(task.OperationEmbedForm, 100, map[string]any{"form_uuid": "a"}))
	require.NoError(t, err)

	tasks := store.All()
	require.Len(t, tasks, 1)
	assert.Equal(t, task.OperationEmbedForm, tasks[0].Operation())
}

func TestQueue_Enqueue_Deduplicates(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	queue := NewQueue(store, testLogger())

	payload := map[string]any{"form_uuid": "a"}
	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationEmbedForm, 100, payload)))
	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationEmbedForm, 500, payload)))

	// Same operation and payload collapse onto one row with the new priority.
	tasks := store.All()
	require.Len(t, tasks, 1)
	assert.Equal(t, 500, tasks[0].Priority())
}

func TestQueue_EnqueueOperations_PriorityOrder(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	queue := NewQueue(store, testLogger())

	operations := []task.Operation{task.OperationEmbedForm, task.OperationBackfillEmbeddings}
	err := queue.EnqueueOperations(ctx, operations, task.PriorityNormal, map[string]any{"form_uuid": "a"})
	require.NoError(t, err)

	tasks, err := queue.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// First operation carries the highest priority so it dequeues first.
	assert.Equal(t, task.OperationEmbedForm, tasks[0].Operation())
	assert.Equal(t, task.OperationBackfillEmbeddings, tasks[1].Operation())
	assert.Greater(t, tasks[0].Priority(), tasks[1].Priority())
	assert.Greater(t, tasks[1].Priority(), int(task.PriorityNormal))
}

func TestQueue_List_FiltersByOperation(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	queue := NewQueue(store, testLogger())

	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationEmbedForm, 100, map[string]any{"form_uuid": "a"})))
	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationEmbedForm, 100, map[string]any{"form_uuid": "b"})))
	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationBackfillEmbeddings, 100, map[string]any{})))

	op := task.OperationEmbedForm
	tasks, err := queue.List(ctx, &TaskListParams{Operation: &op})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, tk := range tasks {
		assert.Equal(t, task.OperationEmbedForm, tk.Operation())
	}
}

func TestQueue_List_Pagination(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	queue := NewQueue(store, testLogger())

	for i := range 5 {
		require.NoError(t, queue.Enqueue(ctx,
			task.NewTask(task.OperationEmbedForm, 100+i, map[string]any{"form_uuid": string(rune('a' + i))})))
	}

	tasks, err := queue.List(ctx, &TaskListParams{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// Priority descending: full order is 104,103,102,101,100; page skips one.
	assert.Equal(t, 103, tasks[0].Priority())
	assert.Equal(t, 102, tasks[1].Priority())
}

func TestQueue_Count(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	queue := NewQueue(store, testLogger())

	count, err := queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationEmbedForm, 100, map[string]any{"form_uuid": "a"})))

	count, err = queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestQueue_Get(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	queue := NewQueue(store, testLogger())

	saved, err := store.Save(ctx, task.NewTask(task.OperationEmbedForm, 100, map[string]any{"form_uuid": "a"}))
	require.NoError(t, err)

	got, err := queue.Get(ctx, saved.ID())
	require.NoError(t, err)
	assert.Equal(t, saved.DedupKey(), got.DedupKey())

	_, err = queue.Get(ctx, 9999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestQueue_DrainForForm(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	queue := NewQueue(store, testLogger())

	target := uuid.New()
	other := uuid.New()

	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationEmbedForm, 100,
		map[string]any{"form_uuid": target.String()})))
	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationBackfillEmbeddings, 100,
		map[string]any{"form_uuid": target.String()})))
	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationEmbedForm, 100,
		map[string]any{"form_uuid": other.String()})))

	removed, err := queue.DrainForForm(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Only the unrelated task survives.
	remaining := store.All()
	require.Len(t, remaining, 1)
	assert.Equal(t, other.String(), remaining[0].StringValue("form_uuid"))
}

func TestQueue_DrainForForm_NoMatches(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	queue := NewQueue(store, testLogger())

	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationEmbedForm, 100,
		map[string]any{"form_uuid": uuid.New().String()})))

	removed, err := queue.DrainForForm(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Len(t, store.All(), 1)
}

func TestQueue_DrainForForm_FindError(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	store.findErr = errors.New("database gone")
	queue := NewQueue(store, testLogger())

	_, err := queue.DrainForForm(ctx, uuid.New())
	require.Error(t, err)
}
