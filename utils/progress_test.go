package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probfile/tracker/models"
)

func subs(progresses ...int) []models.Subtask {
	out := make([]models.Subtask, len(progresses))
	for i, p := range progresses {
		out[i] = models.Subtask{Progress: p}
	}
	return out
}

func TestTaskProgress(t *testing.T) {
	assert.Equal(t, 0.0, TaskProgress(nil))
	assert.Equal(t, 50.0, TaskProgress(subs(0, 100)))
	assert.Equal(t, 100.0, TaskProgress(subs(100, 100, 100)))
	assert.InDelta(t, 33.333, TaskProgress(subs(0, 0, 100)), 0.001)
}

func TestProjectProgress(t *testing.T) {
	assert.Equal(t, 0.0, ProjectProgress(nil))

	tasks := []models.Task{
		{Subtasks: subs(100, 100)},
		{Subtasks: subs(0, 50)},
	}
	assert.Equal(t, 62.5, ProjectProgress(tasks))

	// A task with no subtasks counts as zero and drags the average down.
	tasks = append(tasks, models.Task{})
	assert.InDelta(t, 41.666, ProjectProgress(tasks), 0.001)
}
