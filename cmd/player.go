package cmd

import (
	"errors"
	"time"

	"github.com/melody-cli/melody/auth"
	"github.com/melody-cli/melody/backend"
	"github.com/melody-cli/melody/history"
	"github.com/melody-cli/melody/key"
	"github.com/melody-cli/melody/media"
	"github.com/melody-cli/melody/playback"
	"github.com/melody-cli/melody/report"
	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/where"
	"github.com/spf13/viper"
)

// catalogLifetime is how long the on-disk catalog snapshot is trusted.
const catalogLifetime = 6 * time.Hour

// player is everything a playback session needs, assembled from the config.
type player struct {
	client     *backend.Client
	fetcher    *track.CachedFetcher
	catalog    *track.Catalog
	dispatcher *report.Dispatcher
	controller *playback.Controller
}

type playerOptions struct {
	Notifier playback.Notifier
	OnChange func()
	// OnRecorded runs after a play was stored in either history.
	OnRecorded func(trackID string)
}

func newClient() *backend.Client {
	return backend.New(viper.GetString(key.BackendURL), auth.GetToken)
}

func newCatalog(client *backend.Client) (*track.Catalog, *track.CachedFetcher) {
	fetcher := track.Cached(client, where.Catalog(), catalogLifetime)
	return track.NewCatalog(fetcher), fetcher
}

func newPlayer(options playerOptions) (*player, error) {
	if viper.GetString(key.PlayerBackend) == "mpv" {
		CheckDependencies()
	}

	resource, err := media.New(viper.GetString(key.PlayerBackend))
	if err != nil {
		return nil, err
	}

	client := newClient()
	catalog, fetcher := newCatalog(client)

	cfg := report.Config{SignedIn: auth.SignedIn}
	if viper.GetBool(key.HistoryReport) {
		cfg.Remote = client
	}
	if viper.GetBool(key.HistorySaveOnPlay) {
		cfg.Local = func(trackID string) error {
			t, err := catalog.FindByID(trackID)
			if err != nil {
				return err
			}
			if err := history.Save(t); err != nil {
				return err
			}
			if options.OnRecorded != nil {
				options.OnRecorded(trackID)
			}
			return nil
		}
	}
	dispatcher := report.New(cfg)
	if options.Notifier != nil {
		watchFailures(dispatcher, options.Notifier)
	}
	if options.OnRecorded != nil {
		dispatcher.OnRecorded(options.OnRecorded)
	}

	controller := playback.New(playback.Options{
		Catalog:  catalog,
		Resource: resource,
		Reporter: dispatcher,
		Notifier: options.Notifier,
		Volume:   viper.GetFloat64(key.PlayerVolume),
		OnChange: options.OnChange,
	})
	catalog.OnLoaded(controller.Bootstrap)

	return &player{
		client:     client,
		fetcher:    fetcher,
		catalog:    catalog,
		dispatcher: dispatcher,
		controller: controller,
	}, nil
}

// watchFailures turns failed play reports into warnings for the listener.
func watchFailures(d *report.Dispatcher, n playback.Notifier) {
	d.OnError(func(err error) {
		n.Notify(failureNotice(err))
	})
}

func failureNotice(err error) playback.Notification {
	message := "A play report failed"

	var failure *report.Failure
	if errors.As(err, &failure) {
		switch failure.Kind {
		case report.KindIncrement:
			message = "Failed to increment view count"
		case report.KindStream:
			message = "Failed to record listening history"
		case report.KindLocal:
			message = "Failed to save local history"
		}
	}

	return playback.Notification{Level: playback.LevelWarn, Message: message}
}

// Close stops playback and waits for pending reports.
func (p *player) Close() error {
	err := p.controller.Close()
	p.dispatcher.Wait()
	return err
}
