package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/probfile/tracker/config"
	"github.com/probfile/tracker/models"
	"github.com/probfile/tracker/notify"
	"github.com/probfile/tracker/routes"
	"github.com/probfile/tracker/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	db := config.InitDatabase(
		&models.User{},
		&models.ProblemFile{},
		&models.Task{},
		&models.Subtask{},
		&models.Contact{},
		&models.Comment{},
	)

	directory := notify.NewDirectory(cfg.UserEmails)
	gate := notify.NewGate(directory)
	dispatcher := notify.NewDispatcher(notify.SenderFunc(utils.SendMail), zap.S())

	utils.StartDeadlineNotifier(time.Duration(cfg.DeadlineCheckIntervalMin)*time.Minute, dispatcher)

	router := routes.SetupRouter(db, gate, dispatcher)

	zap.S().Infof("listening on :%s", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, router); err != nil {
		zap.S().Fatalf("server exited: %v", err)
	}
}
