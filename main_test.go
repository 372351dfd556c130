package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestNewBusinessCalendar(t *testing.T) {
	c := newBusinessCalendar()

	tests := []struct {
		name     string
		date     time.Time
		expected bool
	}{
		{"regular weekday", time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC), true},
		{"Saturday", time.Date(2026, 7, 18, 0, 0, 0, 0, time.UTC), false},
		{"New Years Day", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"Good Friday", time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), false},
		{"Easter Monday", time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), false},
		{"Spring bank holiday", time.Date(2026, 5, 25, 0, 0, 0, 0, time.UTC), false},
		{"Summer bank holiday", time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), false},
		{"Christmas Day", time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsWorkday(tt.date); got != tt.expected {
				t.Errorf("IsWorkday(%s) = %v, want %v", tt.date.Format("2006-01-02 Monday"), got, tt.expected)
			}
		})
	}
}

func TestPreviousWorkday(t *testing.T) {
	c := newBusinessCalendar()

	tests := []struct {
		name     string
		now      time.Time
		expected time.Time
	}{
		{"Tuesday", time.Date(2026, 7, 14, 9, 30, 0, 0, time.UTC), time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC)},
		{"Monday skips weekend", time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC), time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)},
		{"Sunday", time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)},
		{"after Easter", time.Date(2026, 4, 7, 8, 0, 0, 0, time.UTC), time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)},
		{"after Spring bank holiday", time.Date(2026, 5, 26, 8, 0, 0, 0, time.UTC), time.Date(2026, 5, 22, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := previousWorkday(c, tt.now); !got.Equal(tt.expected) {
				t.Errorf("previousWorkday(%s) = %s, want %s", tt.now.Format("2006-01-02"), isoDate(got), isoDate(tt.expected))
			}
		})
	}
}

func TestParseServiceDay(t *testing.T) {
	now := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC) // Monday

	tests := []struct {
		name     string
		arg      string
		expected string
		wantErr  bool
	}{
		{"full date", "14/07/2026", "2026-07-14", false},
		{"short date", "1/2/2026", "2026-02-01", false},
		{"default is previous workday", "", "2026-10-16", false},
		{"impossible day", "31/02/2026", "", true},
		{"iso format", "2026-07-14", "", true},
		{"month out of range", "01/13/2026", "", true},
		{"garbage", "yesterday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseServiceDay(tt.arg, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseServiceDay(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if !tt.wantErr && isoDate(got) != tt.expected {
				t.Errorf("parseServiceDay(%q) = %s, want %s", tt.arg, isoDate(got), tt.expected)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		dir := t.TempDir()
		configFile := filepath.Join(dir, "config.yaml")
		content := `company:
  name: Test Waste Ltd
  lines:
    - 1 Test Road
smtp:
  host: smtp.example.com
  port: 465
email:
  from: wtn@example.com
  to: office@example.com
records_dir: ./records
image_timeout: 5s
sections:
  - title: Carrier
    left: [carrier_registration_number]
    right: [portaloo_dropoff_date]
`
		os.WriteFile(configFile, []byte(content), 0644)

		cfg, err := loadConfig(configFile)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.Company.Name != "Test Waste Ltd" || len(cfg.Company.Lines) != 1 {
			t.Errorf("company = %+v", cfg.Company)
		}
		if cfg.SMTP.Port != 465 || cfg.Email.To != "office@example.com" {
			t.Errorf("smtp/email = %+v / %+v", cfg.SMTP, cfg.Email)
		}
		if cfg.ImageTimeout != 5*time.Second {
			t.Errorf("ImageTimeout = %v, want 5s", cfg.ImageTimeout)
		}
		if len(cfg.Sections) != 1 || cfg.Sections[0].Title != "Carrier" {
			t.Errorf("sections = %+v", cfg.Sections)
		}
		if cfg.Listen != ":8080" {
			t.Errorf("Listen = %q, want default :8080", cfg.Listen)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig("/nonexistent/config.yaml")
		if err == nil {
			t.Error("loadConfig() expected error for missing file")
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		dir := t.TempDir()
		configFile := filepath.Join(dir, "config.yaml")
		os.WriteFile(configFile, []byte("{{invalid yaml"), 0644)

		_, err := loadConfig(configFile)
		if err == nil {
			t.Error("loadConfig() expected error for invalid YAML")
		}
	})

	t.Run("unknown field key", func(t *testing.T) {
		dir := t.TempDir()
		configFile := filepath.Join(dir, "config.yaml")
		content := `sections:
  - title: Job Details
    left: [date_of_service, colour]
`
		os.WriteFile(configFile, []byte(content), 0644)

		_, err := loadConfig(configFile)
		if err == nil {
			t.Error("loadConfig() expected error for unknown field key")
		}
	})

	t.Run("zero SMTP port", func(t *testing.T) {
		dir := t.TempDir()
		configFile := filepath.Join(dir, "config.yaml")
		os.WriteFile(configFile, []byte("smtp:\n  host: smtp.example.com\n  port: 0\n"), 0644)

		cfg, err := loadConfig(configFile)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.SMTP.Port != defaultSMTPPort {
			t.Errorf("SMTP.Port = %d, want %d", cfg.SMTP.Port, defaultSMTPPort)
		}
	})

	t.Run("validate leaves config untouched", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.SMTP.Port = 0
		if err := cfg.validate(); err != nil {
			t.Fatalf("validate() error = %v", err)
		}
		if cfg.SMTP.Port != 0 {
			t.Errorf("validate() changed SMTP.Port to %d", cfg.SMTP.Port)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		cfg := defaultConfig()
		if err := cfg.validate(); err != nil {
			t.Fatalf("defaultConfig() is invalid: %v", err)
		}
		if len(cfg.Sections) != 3 || cfg.Company.Terms == "" {
			t.Errorf("defaultConfig() = %+v", cfg)
		}
	})
}

func TestReadNoteFiles(t *testing.T) {
	dir := t.TempDir()
	notePath := filepath.Join(dir, "note.json")
	jobPath := filepath.Join(dir, "job.json")
	os.WriteFile(notePath, []byte(`{"id": 7, "job_id": 42, "customer_job_reference": "BW-1042"}`), 0644)
	os.WriteFile(jobPath, []byte(`{"id": 42, "date_of_service": "2026-07-14"}`), 0644)

	note, job, err := readNoteFiles(notePath, jobPath)
	if err != nil {
		t.Fatalf("readNoteFiles() error = %v", err)
	}
	if note.CustomerJobReference != "BW-1042" || job == nil || job.DateOfService != "2026-07-14" {
		t.Errorf("readNoteFiles() = %+v, %+v", note, job)
	}

	note, job, err = readNoteFiles(notePath, "")
	if err != nil || note == nil || job != nil {
		t.Errorf("readNoteFiles() without job = %v, %v, %v", note, job, err)
	}

	if _, _, err := readNoteFiles(filepath.Join(dir, "missing.json"), ""); err == nil {
		t.Error("readNoteFiles() expected error for missing file")
	}
}

func TestWriteDebugOps(t *testing.T) {
	doc := testComposer(nil).Compose(sampleNote(), nil)
	pdfPath := filepath.Join(t.TempDir(), doc.Filename)

	if err := writeDebugOps(doc, pdfPath); err != nil {
		t.Fatalf("writeDebugOps() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(pdfPath), "WTN_BW-1042.layout.json"))
	if err != nil {
		t.Fatal(err)
	}

	var got struct {
		Filename string                `json:"filename"`
		Variant  struct{ Name string } `json:"variant"`
		Ops      []DrawOp              `json:"ops"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("layout JSON does not parse: %v", err)
	}
	if got.Filename != doc.Filename || got.Variant.Name != "normal" || len(got.Ops) != len(doc.Ops) {
		t.Errorf("layout JSON = %s/%s/%d ops", got.Filename, got.Variant.Name, len(got.Ops))
	}
}

func TestComposeDay(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "waste_transfer_notes", `[
		{"id": 1, "job_id": 10, "customer_job_reference": "A/1", "date_of_service": "2026-07-14"},
		{"id": 2, "job_id": 11, "customer_job_reference": "A#1"},
		{"id": 3, "job_id": 12, "customer_job_reference": "B", "date_of_service": "2026-07-15"}
	]`)
	writeTable(t, dir, "jobs", `[{"id": 11, "date_of_service": "2026-07-14"}]`)

	a := &app{cfg: defaultConfig(), logger: testLogger(), composer: testComposer(nil)}
	src := &dirStore{dir: dir}
	attachments, err := a.composeDay(context.Background(), src, time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("composeDay() error = %v", err)
	}
	if len(attachments) != 2 {
		t.Fatalf("composeDay() = %d attachments, want 2", len(attachments))
	}
	if attachments[0].Filename != "WTN_A_1.pdf" || attachments[1].Filename != "WTN_A_1_2.pdf" {
		t.Errorf("filenames = %q, %q", attachments[0].Filename, attachments[1].Filename)
	}
	for _, att := range attachments {
		if len(att.Data) < 4 || string(att.Data[:4]) != "%PDF" {
			t.Errorf("%s is not a PDF", att.Filename)
		}
	}
}

func TestComposeDayGeneratedNameTaken(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "waste_transfer_notes", `[
		{"id": 1, "customer_job_reference": "A", "date_of_service": "2026-07-14"},
		{"id": 2, "customer_job_reference": "A", "date_of_service": "2026-07-14"},
		{"id": 3, "customer_job_reference": "A_2", "date_of_service": "2026-07-14"}
	]`)

	a := &app{cfg: defaultConfig(), logger: testLogger(), composer: testComposer(nil)}
	attachments, err := a.composeDay(context.Background(), &dirStore{dir: dir}, time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("composeDay() error = %v", err)
	}

	var names []string
	for _, att := range attachments {
		names = append(names, att.Filename)
	}
	want := []string{"WTN_A.pdf", "WTN_A_2.pdf", "WTN_A_2_2.pdf"}
	if !slices.Equal(names, want) {
		t.Errorf("filenames = %q, want %q", names, want)
	}
}

func TestUniqueFilename(t *testing.T) {
	used := map[string]bool{}
	tests := []struct {
		name     string
		expected string
	}{
		{"WTN_A.pdf", "WTN_A.pdf"},
		{"WTN_A.pdf", "WTN_A_2.pdf"},
		{"WTN_A_2.pdf", "WTN_A_2_2.pdf"},
		{"WTN_A.pdf", "WTN_A_3.pdf"},
		{"WTN_B.pdf", "WTN_B.pdf"},
	}

	for _, tt := range tests {
		if got := uniqueFilename(tt.name, used); got != tt.expected {
			t.Errorf("uniqueFilename(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}
