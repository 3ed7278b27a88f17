package image

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestConfigHealthcheckSerialization(t *testing.T) {
	cfg := Config{
		Architecture: "amd64",
		OS:           "linux",
		Config: ConfigBody{
			Entrypoint: []string{"/bin/sh", "/usr/local/bin/unhealthy.sh"},
			Healthcheck: &Healthcheck{
				Test:     []string{"CMD-SHELL", "[ ! -f /tmp/unhealthy ]"},
				Interval: 5 * time.Second,
				Timeout:  3 * time.Second,
				Retries:  3,
			},
		},
		RootFS: RootFS{Type: "layers"},
	}

	b, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s := string(b)
	for _, field := range []string{`"Healthcheck"`, `"Test"`, `"Interval"`, `"Timeout"`, `"Retries"`} {
		if !strings.Contains(s, field) {
			t.Fatalf("serialized config missing %s: %s", field, s)
		}
	}

	var back Config
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Config.Healthcheck == nil {
		t.Fatal("healthcheck lost in round trip")
	}
	if back.Config.Healthcheck.Interval != 5*time.Second {
		t.Fatalf("interval = %v, want 5s", back.Config.Healthcheck.Interval)
	}
}

func TestConfigHealthcheckOmittedWhenAbsent(t *testing.T) {
	cfg := Config{
		Architecture: "amd64",
		OS:           "linux",
		Config:       ConfigBody{Env: []string{"OXKER_RUNTIME=container"}},
		RootFS:       RootFS{Type: "layers"},
	}

	b, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "Healthcheck") {
		t.Fatalf("nil healthcheck serialized: %s", b)
	}
}
