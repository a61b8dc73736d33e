package main

import (
	"log"
	"os"

	echoapi "github.com/longlg88/wallyhub/apps/api/echo"
	"github.com/longlg88/wallyhub/core"
	"github.com/longlg88/wallyhub/core/board"
	"github.com/longlg88/wallyhub/core/photo"
	"github.com/longlg88/wallyhub/core/student"
	"github.com/longlg88/wallyhub/core/view"
	activitysvc "github.com/longlg88/wallyhub/services/activity"
	blobsvc "github.com/longlg88/wallyhub/services/blob"
	logsvc "github.com/longlg88/wallyhub/services/logger"
	"github.com/longlg88/wallyhub/storage/document"
)

func main() {
	std := log.New(os.Stdout, "WALLYHUB : ", log.LstdFlags|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatal(err)
	}

	var logger core.Logger
	if conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = logsvc.NewConsoleLogger(std)
	}

	// set up stores
	db := document.Open()

	var blobs core.BlobStore
	if conf.Blob.Backend == "http" {
		blobs = blobsvc.NewHTTPStore(conf.Blob.UploadURL, conf.Blob.APIKey)
	} else {
		blobs = blobsvc.NewMemoryStore()
	}

	// set up services
	activity := activitysvc.NewService(db, logger)
	boardSvc := board.NewService(db, logger)
	studentSvc := student.NewService(db, boardSvc, activity, logger)
	photoSvc := photo.NewService(db, blobs, studentSvc, activity, logger, conf.Photo.MaxBytes)
	viewSvc := view.NewService(db, logger)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Conf:        conf,
		Logger:      logger,
		BoardSvc:    boardSvc,
		StudentSvc:  studentSvc,
		PhotoSvc:    photoSvc,
		ViewSvc:     viewSvc,
		ActivitySvc: activity,
	})
	app.Start()
}
