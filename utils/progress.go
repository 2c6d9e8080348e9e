package utils

import "github.com/probfile/tracker/models"

// TaskProgress is the mean progress over a task's subtasks; a task with no
// subtasks counts as zero.
func TaskProgress(subtasks []models.Subtask) float64 {
	if len(subtasks) == 0 {
		return 0
	}
	total := 0
	for _, s := range subtasks {
		total += s.Progress
	}
	return float64(total) / float64(len(subtasks))
}

// ProjectProgress is the mean of task progresses across a file. Tasks with
// no subtasks drag the average down, matching how the tracker has always
// reported it.
func ProjectProgress(tasks []models.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tasks {
		sum += TaskProgress(t.Subtasks)
	}
	return sum / float64(len(tasks))
}
