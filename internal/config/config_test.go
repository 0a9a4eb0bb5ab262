package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func isolate(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("MSGSTATS_CONFIG_DIR", dir)
	t.Setenv("MSGSTATS_CHAT_DB", "")
	t.Setenv("MSGSTATS_OUTPUT_DIR", "")
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	isolate(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Report.TopN != 50 {
		t.Errorf("TopN = %d, want 50", cfg.Report.TopN)
	}
	if cfg.Serve.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Serve.Port)
	}
	if got := filepath.Base(cfg.Messages.ChatDB); got != "chat.db" {
		t.Errorf("ChatDB base = %q", got)
	}
	if got := filepath.Base(cfg.Contacts.AddressBookDir); got != "AddressBook" {
		t.Errorf("AddressBookDir base = %q", got)
	}
	if cfg.ServeDir() != "." {
		t.Errorf("ServeDir = %q, want .", cfg.ServeDir())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	isolate(t, dir)
	t.Setenv("MSGSTATS_CHAT_DB", "/tmp/override.db")
	t.Setenv("HOME", "/home/tester")

	yml := `
messages:
  chat_db: ~/chat.db
contacts:
  addressbook_dir: ~/ab
  sources: ["~/extra.abcddb"]
report:
  output_dir: out
  top_n: 10
  since: "2021-06-01"
  timezone: America/New_York
serve:
  port: 9000
  chart_dir: ~/charts
log_level: debug
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Messages.ChatDB != "/tmp/override.db" {
		t.Errorf("ChatDB = %q", cfg.Messages.ChatDB)
	}
	if cfg.Contacts.AddressBookDir != "/home/tester/ab" {
		t.Errorf("AddressBookDir = %q", cfg.Contacts.AddressBookDir)
	}
	if !slices.Equal(cfg.Contacts.Sources, []string{"/home/tester/extra.abcddb"}) {
		t.Errorf("Sources = %v", cfg.Contacts.Sources)
	}
	if cfg.Report.TopN != 10 || cfg.Serve.Port != 9000 || cfg.ServeDir() != "out" {
		t.Errorf("report/serve = %+v %+v", cfg.Report, cfg.Serve)
	}
	if cfg.Serve.ChartDir != "/home/tester/charts" {
		t.Errorf("ChartDir = %q", cfg.Serve.ChartDir)
	}

	since, err := cfg.Since()
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if since.Location().String() != "America/New_York" || since.Month() != time.June {
		t.Errorf("Since = %v", since)
	}
}

func TestLoadDoesNotValidate(t *testing.T) {
	dir := t.TempDir()
	isolate(t, dir)
	yml := "report:\n  timezone: Mars/Olympus\nserve:\n  port: 0\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// A flag can still repair the timezone, and the bad port only matters to serve.
	cfg.Apply(Overrides{Timezone: "UTC"})
	if err := cfg.ValidateRun(); err != nil {
		t.Fatalf("ValidateRun after override: %v", err)
	}
	if err := cfg.ValidateServe(); err == nil {
		t.Fatal("ValidateServe accepted port 0")
	}
}

func TestApply(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	top := 0

	cfg := Default()
	cfg.Apply(Overrides{ChatDB: "~/Messages/chat.db", OutputDir: "~/out", TopN: &top, Since: "2020-01-01"})
	if cfg.Messages.ChatDB != "/home/tester/Messages/chat.db" {
		t.Errorf("ChatDB = %q", cfg.Messages.ChatDB)
	}
	if cfg.Report.OutputDir != "/home/tester/out" {
		t.Errorf("OutputDir = %q", cfg.Report.OutputDir)
	}
	if cfg.Report.TopN != 0 || cfg.Report.Since != "2020-01-01" {
		t.Errorf("report = %+v", cfg.Report)
	}

	before := *cfg
	cfg.Apply(Overrides{})
	if cfg.Report != before.Report || cfg.Messages != before.Messages {
		t.Error("empty overrides changed the config")
	}
}

func TestValidateRun(t *testing.T) {
	cases := map[string]func(c *Config){
		"negative top_n": func(c *Config) { c.Report.TopN = -1 },
		"bad timezone":   func(c *Config) { c.Report.Timezone = "Mars/Olympus" },
		"bad since":      func(c *Config) { c.Report.Since = "June 2021" },
		"bad log level":  func(c *Config) { c.LogLevel = "loud" },
		"no chat db":     func(c *Config) { c.Messages.ChatDB = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			if err := cfg.ValidateRun(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if err := Default().ValidateRun(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestValidateServe(t *testing.T) {
	cfg := Default()
	cfg.Serve.Port = 70000
	if err := cfg.ValidateServe(); err == nil {
		t.Fatal("expected error for port 70000")
	}
	// Run-only fields do not block serving.
	cfg = Default()
	cfg.Messages.ChatDB = ""
	cfg.Report.Timezone = "Mars/Olympus"
	if err := cfg.ValidateServe(); err != nil {
		t.Fatalf("ValidateServe: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t, filepath.Join(t.TempDir(), "nested"))

	cfg := Default()
	cfg.Report.TopN = 25
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Report.TopN != 25 {
		t.Fatalf("TopN = %d, want 25", loaded.Report.TopN)
	}
}

func TestLocationLocal(t *testing.T) {
	loc, err := Default().Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc != time.Local {
		t.Fatalf("Location = %v, want Local", loc)
	}
}
