package core

import (
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_STORE_KEYPREFIX", "demo:")
	t.Setenv("TEST_STORE_BOLTTIMEOUT", "3s")

	conf := NewConfig()
	if conf.Env != "TEST" || !conf.TestMode {
		t.Errorf("Env = %q, TestMode = %v; want TEST, true", conf.Env, conf.TestMode)
	}
	if conf.Store.Engine != StoreMemory {
		t.Errorf("Store.Engine = %q, want %q", conf.Store.Engine, StoreMemory)
	}
	if conf.Store.KeyPrefix != "demo:" {
		t.Errorf("Store.KeyPrefix = %q, want demo:", conf.Store.KeyPrefix)
	}
	if conf.Store.BoltTimeout != 3*time.Second {
		t.Errorf("Store.BoltTimeout = %v, want 3s", conf.Store.BoltTimeout)
	}
}

func TestNewConfig_defaults(t *testing.T) {
	t.Setenv("ENV", "")

	conf := NewConfig()
	if conf.Env != "DEV" || conf.TestMode {
		t.Errorf("Env = %q, TestMode = %v; want DEV, false", conf.Env, conf.TestMode)
	}
	if conf.Store.Engine != StoreBolt {
		t.Errorf("Store.Engine = %q, want %q", conf.Store.Engine, StoreBolt)
	}
	if conf.AppName != "Acadify" {
		t.Errorf("AppName = %q, want Acadify", conf.AppName)
	}
}
