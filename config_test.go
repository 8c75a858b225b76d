package reviewengine

import (
	"testing"
	"time"

	"github.com/labstack/gommon/log"
)

func TestSiteConfigDefaults(t *testing.T) {
	var c SiteConfig
	c.setDefaults()
	if c.Name != "Research Review Blog" || c.Addr != ":3000" || c.Language != "en-US" {
		t.Errorf("defaults = %+v", c)
	}
	if c.Description != "A blog dedicated to reviewing and discussing the latest research papers in various fields." {
		t.Errorf("Description = %q", c.Description)
	}
	if c.TokenTTL != 7*24*time.Hour || c.SyncInterval != time.Minute || c.FeedCacheTTL != 5*time.Minute {
		t.Errorf("durations = %v %v %v", c.TokenTTL, c.SyncInterval, c.FeedCacheTTL)
	}

	c = SiteConfig{Name: "Mine", TokenTTL: time.Hour}
	c.setDefaults()
	if c.Name != "Mine" || c.TokenTTL != time.Hour {
		t.Errorf("explicit values overwritten: %+v", c)
	}
}

func TestSiteConfigLogLevel(t *testing.T) {
	tests := map[string]log.Lvl{
		"":        log.INFO,
		"debug":   log.DEBUG,
		"WARN":    log.WARN,
		"error":   log.ERROR,
		"off":     log.OFF,
		"verbose": log.INFO,
	}
	for in, want := range tests {
		if got := (SiteConfig{LogLevel: in}).logLevel(); got != want {
			t.Errorf("logLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOptions(t *testing.T) {
	called := false
	app := New(SiteConfig{}, WithUploadDir("/tmp/up"), WithCustomRoutes(func(*App) { called = true }))
	if app.Config.UploadDir != "/tmp/up" {
		t.Errorf("UploadDir = %q", app.Config.UploadDir)
	}
	if len(app.customRoutes) != 1 || called {
		t.Errorf("custom routes registered %d, called early %v", len(app.customRoutes), called)
	}
}
