package main

import (
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
	"github.com/longlg88/wallyhub/core/board"
	"github.com/longlg88/wallyhub/core/student"
	activitysvc "github.com/longlg88/wallyhub/services/activity"
	logsvc "github.com/longlg88/wallyhub/services/logger"
	"github.com/longlg88/wallyhub/storage/document"
)

func main() {
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags)

	if _, err := core.NewConfig(); err != nil {
		std.Fatal(err)
	}
	logger := logsvc.NewConsoleLogger(std)

	// document.Open starts an empty in-memory store, so commands only see
	// data created during this invocation. Point this at a persistent
	// DocumentStore backend to operate on live data.
	db := document.Open()
	activity := activitysvc.NewService(db, logger)
	boardSvc := board.NewService(db, logger)
	studentSvc := student.NewService(db, boardSvc, activity, logger)

	cli := &commandLine{
		boardSvc:   boardSvc,
		studentSvc: studentSvc,
	}
	if err := cli.run(os.Args); err != nil && !errors.Is(err, errHelp) {
		std.Fatal(err)
	}
}
