package utils

import (
	"time"

	"github.com/probfile/tracker/config"
	"github.com/probfile/tracker/models"
	"github.com/probfile/tracker/notify"
)

// StartDeadlineNotifier launches a background goroutine that periodically
// scans for incomplete subtasks due within the configured alert window and
// emails each file's owner one digest. Best-effort: failures are logged and
// the next tick tries again.
func StartDeadlineNotifier(interval time.Duration, dispatcher *notify.Dispatcher) {
	if interval <= 0 {
		interval = 12 * time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			runDeadlineScan(dispatcher)
		}
	}()
}

func runDeadlineScan(dispatcher *notify.Dispatcher) {
	db := config.DB()
	if db == nil {
		return
	}
	cfg := config.Get()
	dir := notify.NewDirectory(cfg.UserEmails)
	today := time.Now().Truncate(24 * time.Hour)
	horizon := today.AddDate(0, 0, cfg.DeadlineAlertDays)

	var files []models.ProblemFile
	if err := db.Preload("Tasks.Subtasks").Find(&files).Error; err != nil {
		if Sugar != nil {
			Sugar.Warnf("deadline scan query failed: %v", err)
		}
		return
	}

	for _, file := range files {
		var due []notify.DeadlineTask
		for _, task := range file.Tasks {
			for _, sub := range task.Subtasks {
				if sub.Progress >= 100 {
					continue
				}
				end := sub.ProjectedEndDate.Truncate(24 * time.Hour)
				if end.Before(today) || end.After(horizon) {
					continue
				}
				due = append(due, notify.DeadlineTask{
					TaskName:   task.Name + " - " + sub.Name,
					AssignedTo: sub.AssignedTo,
					DueDate:    end,
					DaysUntil:  int(end.Sub(today).Hours() / 24),
					Progress:   sub.Progress,
				})
			}
		}
		if len(due) == 0 {
			continue
		}
		email, ok := dir.ResolveEmail(file.Owner)
		if !ok {
			if Sugar != nil {
				Sugar.Debugf("deadline alert skipped, no email for owner=%s file=%s", file.Owner, file.ProblemName)
			}
			continue
		}
		subject, body := notify.DeadlineEmail(file.Owner, file.ProblemName, due)
		dispatcher.Dispatch(email, subject, body)
	}
}
