package config

import (
	"context"
	"os"
	"time"
)

// DoctorsWatcher polls doctors.yaml and hands every successful reload to OnUpdate.
type DoctorsWatcher struct {
	Path     string
	Interval time.Duration

	OnUpdate func(*DoctorsConfig)
	// OnError receives reload failures; the previous config stays in effect.
	OnError func(error)

	lastMod time.Time
}

// Start loads doctors.yaml once, then reloads it in the background whenever
// its modification time moves forward. The initial load error is returned directly.
func (w *DoctorsWatcher) Start(ctx context.Context) error {
	if w.Path == "" {
		w.Path = "configs/doctors.yaml"
	}
	if w.Interval <= 0 {
		w.Interval = 30 * time.Second
	}

	info, err := os.Stat(w.Path)
	if err != nil {
		return err
	}
	cfg, err := LoadDoctorsConfig(w.Path)
	if err != nil {
		return err
	}
	w.lastMod = info.ModTime()
	w.publish(cfg)

	go w.loop(ctx)
	return nil
}

func (w *DoctorsWatcher) loop(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *DoctorsWatcher) poll() {
	info, err := os.Stat(w.Path)
	if err != nil {
		w.fail(err)
		return
	}
	if !info.ModTime().After(w.lastMod) {
		return
	}

	cfg, err := LoadDoctorsConfig(w.Path)
	if err != nil {
		w.fail(err)
		return
	}
	w.lastMod = info.ModTime()
	w.publish(cfg)
}

func (w *DoctorsWatcher) publish(cfg *DoctorsConfig) {
	if w.OnUpdate != nil {
		w.OnUpdate(cfg)
	}
}

func (w *DoctorsWatcher) fail(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}
