package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/propline/bidboard/dao"
	"github.com/propline/bidboard/dao/query"
	"github.com/propline/bidboard/internal"
	"github.com/propline/bidboard/internal/handler"
	"github.com/propline/bidboard/internal/service"
	"github.com/propline/bidboard/pkg/config"
	"github.com/propline/bidboard/pkg/cronjob"
	"github.com/propline/bidboard/pkg/hub"
	"github.com/propline/bidboard/pkg/notify"
	"github.com/propline/bidboard/pkg/objstore"
)

// @title BidBoard API
// @version 1.0.0
// @description API server for BidBoard, a vendor bidding marketplace for property management.
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Log in via /v1/auth/login and pass 'Bearer ${TOKEN}' to access protected endpoints.
func main() {
	// set global timezone
	time.Local = time.UTC

	// variable overrides in local development
	if gin.Mode() == gin.DebugMode {
		if err := godotenv.Load(".debug.env"); err != nil {
			klog.Warningf("no .debug.env loaded: %v", err)
		}
	}

	backendConfig := config.GetConfig()

	db := query.GetDB()
	if err := dao.Migrate(db); err != nil {
		klog.Fatalf("migrate database: %v", err)
	}

	store, err := objstore.New(context.Background())
	if err != nil {
		klog.Fatalf("connect object store: %v", err)
	}

	eventHub := hub.New()
	notifier := notify.NewDispatcher(db, eventHub)
	svc := service.New(db, notifier, store)

	sweeper := cronjob.NewManager(db)
	if err := sweeper.Start(); err != nil {
		klog.Fatalf("start retention sweeps: %v", err)
	}
	defer sweeper.Stop()

	backend := internal.Register(&handler.RegisterConfig{
		DB:       db,
		Service:  svc,
		Hub:      eventHub,
		Notifier: notifier,
	})

	klog.Infof("serving on %s", backendConfig.ServerAddr)
	if err := backend.R.Run(backendConfig.ServerAddr); err != nil {
		klog.Fatalf("server exited: %v", err)
	}
}
