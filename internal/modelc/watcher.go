package modelc

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchManifestDrift watches modelYAMLPath for changes after discovery and
// only ever logs a warning. Discovery is one-shot per spec; this exists
// purely so an operator notices a manifest edited after the container
// already started, not to trigger a reload.
func WatchManifestDrift(ctx context.Context, modelYAMLPath string) {
	watcher, err := fsnotify.NewWatcher()
	usePolling := false

	if err != nil {
		log.Printf("[ModelContainer] manifest watcher: fsnotify unavailable (%v), falling back to polling", err)
		usePolling = true
	} else if err := watcher.Add(modelYAMLPath); err != nil {
		log.Printf("[ModelContainer] manifest watcher: failed to watch %s (%v), falling back to polling", modelYAMLPath, err)
		usePolling = true
		watcher.Close()
	}

	if !usePolling {
		go func() {
			defer watcher.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Op&fsnotify.Write == fsnotify.Write {
						log.Printf("[ModelContainer] manifest %s changed after discovery; no reload will occur", modelYAMLPath)
					}
				case werr, ok := <-watcher.Errors:
					if !ok {
						return
					}
					log.Printf("[ModelContainer] manifest watcher error: %v", werr)
				}
			}
		}()
		return
	}

	go pollManifestDrift(ctx, modelYAMLPath)
}

func pollManifestDrift(ctx context.Context, modelYAMLPath string) {
	lastMod, _ := statModTime(modelYAMLPath)

	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mod, err := statModTime(modelYAMLPath)
			if err != nil {
				continue
			}
			if !mod.Equal(lastMod) {
				log.Printf("[ModelContainer] manifest %s changed after discovery; no reload will occur", modelYAMLPath)
				lastMod = mod
			}
		}
	}
}

func statModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
