package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port == "" {
		t.Error("port default missing")
	}
	if cfg.Clips.Domain != "smartclips.app" {
		t.Errorf("domain = %q, want smartclips.app", cfg.Clips.Domain)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DYNAMO_TABLE_NAME", "clips-table")
	t.Setenv("SEGMENT_FETCH_TIMEOUT_SEC", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Metadata.TableName != "clips-table" {
		t.Errorf("table = %q", cfg.Metadata.TableName)
	}
	if cfg.Clips.SegmentFetchTimeoutSec != 5 {
		t.Errorf("fetch timeout = %d", cfg.Clips.SegmentFetchTimeoutSec)
	}
}
