package config

import "testing"

func TestParseEnv(t *testing.T) {
	t.Setenv("CONTINENTAL_TEST_NAME", "alpha")
	t.Setenv("CONTINENTAL_TEST_COUNT", "7")

	var cfg struct {
		Name  string `env:"CONTINENTAL_TEST_NAME"`
		Count int    `env:"CONTINENTAL_TEST_COUNT" envDefault:"1"`
		Path  string `env:"CONTINENTAL_TEST_PATH" envDefault:"fallback"`
	}
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	if cfg.Name != "alpha" {
		t.Errorf("Name = %q, want alpha", cfg.Name)
	}
	if cfg.Count != 7 {
		t.Errorf("Count = %d, want 7", cfg.Count)
	}
	if cfg.Path != "fallback" {
		t.Errorf("Path = %q, want default fallback", cfg.Path)
	}
}

func TestParseEnvRejectsBadValue(t *testing.T) {
	t.Setenv("CONTINENTAL_TEST_COUNT", "not-a-number")
	var cfg struct {
		Count int `env:"CONTINENTAL_TEST_COUNT"`
	}
	if err := ParseEnv(&cfg); err == nil {
		t.Error("ParseEnv accepted a non-numeric int")
	}
}
