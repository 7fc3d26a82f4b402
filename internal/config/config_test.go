package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage.DataFile != "contacts.json" {
		t.Errorf("default data file = %q, want %q", cfg.Storage.DataFile, "contacts.json")
	}
	if cfg.Display.PageSize != 5 {
		t.Errorf("default page size = %d, want 5", cfg.Display.PageSize)
	}
	if cfg.Export.Format != "csv" {
		t.Errorf("default export format = %q, want %q", cfg.Export.Format, "csv")
	}
	if cfg.Log.File != "" {
		t.Errorf("default log file = %q, want empty", cfg.Log.File)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadLayered_ValidFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  data_file: /var/lib/agenda/contacts.json
display:
  page_size: 10
export:
  format: xlsx
  dir: exports
log:
  level: debug
  file: agenda.log
`)

	cfg, err := LoadLayered(path)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	want := Config{
		Storage: Storage{DataFile: "/var/lib/agenda/contacts.json"},
		Display: Display{PageSize: 10},
		Export:  Export{Format: "xlsx", Dir: "exports"},
		Log:     Log{Level: "debug", File: "agenda.log"},
	}
	if *cfg != want {
		t.Errorf("LoadLayered() = %+v, want %+v", *cfg, want)
	}
}

func TestLoadLayered_MissingFile(t *testing.T) {
	cfg, err := LoadLayered("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("LoadLayered() should return defaults for missing file, got error: %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("LoadLayered(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoadLayered_InvalidYAML(t *testing.T) {
	if _, err := LoadLayered(writeConfig(t, "{{invalid yaml")); err == nil {
		t.Fatal("LoadLayered(invalid YAML) should return error")
	}
}

func TestLoadLayered_UnknownField(t *testing.T) {
	path := writeConfig(t, `
display:
  pagesize: 10
`)
	if _, err := LoadLayered(path); err == nil {
		t.Fatal("LoadLayered() should return error for unknown field 'pagesize'")
	}
}

func TestLoadLayered_PartialConfig(t *testing.T) {
	cfg, err := LoadLayered(writeConfig(t, `
display:
  page_size: 7
`))
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	if cfg.Display.PageSize != 7 {
		t.Errorf("page size = %d, want 7", cfg.Display.PageSize)
	}
	// Unset fields should retain defaults.
	if cfg.Storage.DataFile != "contacts.json" {
		t.Errorf("data file = %q, want default %q", cfg.Storage.DataFile, "contacts.json")
	}
}

func TestLoadLayered_Priority(t *testing.T) {
	// Given a user config setting the data file and page size,
	// and a project config overriding only the page size
	userCfg := writeConfig(t, `
storage:
  data_file: /home/me/contacts.json
display:
  page_size: 20
`)
	projectCfg := writeConfig(t, `
display:
  page_size: 3
`)

	// When both layers are loaded
	cfg, err := LoadLayered(userCfg, projectCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}

	// Then the later layer wins only where it sets a value
	if cfg.Storage.DataFile != "/home/me/contacts.json" {
		t.Errorf("data file = %q, want %q", cfg.Storage.DataFile, "/home/me/contacts.json")
	}
	if cfg.Display.PageSize != 3 {
		t.Errorf("page size = %d, want 3", cfg.Display.PageSize)
	}
	if cfg.Export.Format != "csv" {
		t.Errorf("export format = %q, want default %q", cfg.Export.Format, "csv")
	}
}

func TestLoadLayered_AllMissing(t *testing.T) {
	cfg, err := LoadLayered("/no/user.yaml", "/no/project.yaml")
	if err != nil {
		t.Fatalf("LoadLayered(all missing) error = %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("got %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoadLayered_InvalidLayer(t *testing.T) {
	if _, err := LoadLayered(writeConfig(t, "log:\n  colour: red\n")); err == nil {
		t.Fatal("LoadLayered() should reject unknown fields")
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "AGENDA_DATA_FILE overrides data file",
			envs: map[string]string{"AGENDA_DATA_FILE": "/tmp/book.json"},
			check: func(t *testing.T, c Config) {
				if c.Storage.DataFile != "/tmp/book.json" {
					t.Errorf("data file = %q, want %q", c.Storage.DataFile, "/tmp/book.json")
				}
			},
		},
		{
			name: "AGENDA_PAGE_SIZE overrides page size",
			envs: map[string]string{"AGENDA_PAGE_SIZE": "12"},
			check: func(t *testing.T, c Config) {
				if c.Display.PageSize != 12 {
					t.Errorf("page size = %d, want 12", c.Display.PageSize)
				}
			},
		},
		{
			name: "AGENDA_LOG_LEVEL and AGENDA_LOG_FILE override log settings",
			envs: map[string]string{"AGENDA_LOG_LEVEL": "warn", "AGENDA_LOG_FILE": "/tmp/agenda.log"},
			check: func(t *testing.T, c Config) {
				if c.Log.Level != "warn" || c.Log.File != "/tmp/agenda.log" {
					t.Errorf("log = %+v, want warn at /tmp/agenda.log", c.Log)
				}
			},
		},
		{
			name:    "invalid AGENDA_PAGE_SIZE returns error",
			envs:    map[string]string{"AGENDA_PAGE_SIZE": "five"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := cfg.ApplyEnv()

			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnv() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:    "empty data file",
			modify:  func(c *Config) { c.Storage.DataFile = "" },
			wantErr: true,
		},
		{
			name:    "zero page size",
			modify:  func(c *Config) { c.Display.PageSize = 0 },
			wantErr: true,
		},
		{
			name:    "unknown export format",
			modify:  func(c *Config) { c.Export.Format = "pdf" },
			wantErr: true,
		},
		{
			name:   "xlsx export format",
			modify: func(c *Config) { c.Export.Format = "xlsx" },
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadLayered_CommentOnlyFile(t *testing.T) {
	cfg, err := LoadLayered(writeConfig(t, "# just a comment\n"))
	if err != nil {
		t.Fatalf("LoadLayered(comment-only) error = %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("LoadLayered(comment-only) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoadLayered_EmptyFile(t *testing.T) {
	cfg, err := LoadLayered(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadLayered(empty) error = %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("LoadLayered(empty) = %+v, want defaults %+v", *cfg, want)
	}
}
