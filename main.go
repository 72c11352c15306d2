package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/m3u8-downloader/internal/api"
	"github.com/ytget/m3u8-downloader/internal/cache"
	"github.com/ytget/m3u8-downloader/internal/config"
	"github.com/ytget/m3u8-downloader/internal/download"
	"github.com/ytget/m3u8-downloader/internal/probe"
	"github.com/ytget/m3u8-downloader/internal/store"
	"github.com/ytget/m3u8-downloader/internal/sysinfo"
	"github.com/ytget/m3u8-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.m3u8-downloader"
	AppName = "M3U8 Downloader"

	WindowWidth  = 960
	WindowHeight = 640

	snapshotLoadTimeout = 5 * time.Second
)

func main() {
	log.Printf("%s v%s starting...", AppName, version)

	rt := config.LoadRuntime()

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	// Initialize services
	settings := config.NewSettings(myApp)
	serverURL := settings.GetServerURL(rt.APIURL)
	client := api.NewClient(serverURL, rt.CommandTimeout)
	settings.SetConcurrencyUpdater(client)
	log.Printf("using service at %s", client.BaseURL())

	tasks := store.New()

	var snapshotter download.Snapshotter
	snapshot, err := cache.Open(rt.DataDir)
	if err != nil {
		log.Printf("task snapshot unavailable: %v", err)
	} else {
		defer snapshot.Close()
		snapshotter = snapshot

		ctx, cancel := context.WithTimeout(context.Background(), snapshotLoadTimeout)
		cached, err := snapshot.LoadTasks(ctx)
		cancel()
		if err != nil {
			log.Printf("failed to load task snapshot: %v", err)
		}
		tasks.UpsertAll(cached)
	}

	downloadSvc := download.NewService(client, tasks, settings, download.OptionsFromRuntime(rt))
	status := sysinfo.NewView(client)

	// The UI registers its callbacks before any background work starts
	ui.NewRootUI(myWindow, ui.Dependencies{
		Controller: downloadSvc,
		Tasks:      tasks,
		Status:     status,
		Prober:     probe.NewProber(rt.CommandTimeout),
		Settings:   settings,
		ServerURL:  rt.APIURL,
	})

	poller := download.NewPoller(downloadSvc, client, download.PollerOptions{
		Interval:   rt.PollInterval,
		Timeout:    rt.CommandTimeout,
		StaleAfter: rt.StaleAfter,
		Status:     status,
		Snapshot:   snapshotter,
	})

	ctx, cancel := context.WithCancel(context.Background())
	poller.Start(ctx)
	status.Start(ctx, rt.SystemInfoInterval)

	myWindow.ShowAndRun()

	cancel()
	poller.Stop()
	status.Stop()
	log.Printf("%s stopped", AppName)
}
