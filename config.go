package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

const (
	defaultConfigPath = "config.yaml"
	defaultSMTPPort   = 587
)

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type EmailConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"` // office copy
}

// CompanyConfig holds the fixed header and footer text of every note.
type CompanyConfig struct {
	Name  string   `yaml:"name"`
	Title string   `yaml:"title"`
	Lines []string `yaml:"lines"`
	Logo  string   `yaml:"logo"`
	Terms string   `yaml:"terms"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type Config struct {
	Company      CompanyConfig   `yaml:"company"`
	AssetsDir    string          `yaml:"assets_dir"`
	ImageTimeout time.Duration   `yaml:"image_timeout"`
	Database     DatabaseConfig  `yaml:"database"`
	RecordsDir   string          `yaml:"records_dir"`
	SMTP         SMTPConfig      `yaml:"smtp"`
	Email        EmailConfig     `yaml:"email"`
	Listen       string          `yaml:"listen"`
	OutputDir    string          `yaml:"output_dir"`
	Sections     []SectionConfig `yaml:"sections"`
}

func defaultConfig() *Config {
	return &Config{
		Company: CompanyConfig{
			Name:  "Brooks Waste – Sewage Specialist",
			Title: "CONTROLLED WASTE TRANSFER NOTE",
			Lines: []string{
				"Kendale The Drive, Rayleigh Essex, SS6 8XQ",
				"01268776126 · info@brookswaste.co.uk · www.brookswaste.co.uk",
				"Waste Carriers Reg #: CBDU167551",
			},
			Logo: "/images/brooks-logo.png",
			Terms: "You are signing to say you have read the above details and that they are correct and the operative has completed the job to a satisfactory standard. " +
				"Brooks Waste Ltd takes no responsibility for any damage done to your property where access is not suitable for a tanker. " +
				"Please see our full terms and conditions on brookswaste.co.uk - Registered in England 06747484 Registered Office: 4 Chester Court, Chester Hall Lane Basildon, Essex SS14 3WR",
		},
		AssetsDir:    "public",
		ImageTimeout: 10 * time.Second,
		SMTP:         SMTPConfig{Port: defaultSMTPPort},
		Listen:       ":8080",
		OutputDir:    ".",
		Sections:     defaultSections,
	}
}

// loadConfig reads and parses the YAML configuration file. A missing file at
// the default path yields the built-in defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = defaultSMTPPort
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Company.Name == "" {
		return fmt.Errorf("company name is required")
	}
	if len(c.Sections) == 0 {
		return fmt.Errorf("no sections configured")
	}
	for _, s := range c.Sections {
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}
