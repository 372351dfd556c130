// Package main renders controlled waste transfer notes (WTNs) as single-page
// A4 PDFs.
//
// Every note is laid out in two columns under titled section bands, followed
// by signatures, additional comments and the company terms. When the note does
// not fit on one page the layout is retried with progressively denser
// typography.
//
// Usage:
//
//	wtnpdf render <id> | --file note.json [--job job.json]
//	wtnpdf send <id> [--to address]
//	wtnpdf day [DD/MM/YYYY]
//	wtnpdf serve
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by all commands once configuration is loaded.
type app struct {
	cfg      *Config
	logger   *log.Logger
	composer *Composer
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)
	a := &app{}

	root := &cobra.Command{
		Use:          "wtnpdf",
		Short:        "Render waste transfer notes as single-page PDFs",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			a.logger = newLogger(os.Stderr, level)
			cmd.SetContext(withLogger(cmd.Context(), a.logger))

			cfg, err := loadConfig(configPath)
			if err != nil {
				a.logger.Error("configuration", "err", err)
				return err
			}
			a.cfg = cfg
			images := newImageFetcher(cfg.AssetsDir, cfg.ImageTimeout, a.logger)
			a.composer = newComposer(cfg, images, a.logger)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newSendCmd(a))
	root.AddCommand(newDayCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

// ---------------------------------------------------------------------------
// render
// ---------------------------------------------------------------------------

func newRenderCmd(a *app) *cobra.Command {
	var (
		notePath string
		jobPath  string
		outDir   string
		debug    bool
	)

	cmd := &cobra.Command{
		Use:   "render [id]",
		Short: "Render one note to a PDF file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				note *WasteTransferNote
				job  *Job
				err  error
			)
			switch {
			case notePath != "":
				note, job, err = readNoteFiles(notePath, jobPath)
			case len(args) == 1:
				note, job, err = a.fetchNote(ctx, args[0])
			default:
				return fmt.Errorf("either a note id or --file is required")
			}
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = a.cfg.OutputDir
			}
			doc := a.composer.Compose(note, job)
			path, err := doc.WriteFile(outDir)
			if err != nil {
				return err
			}
			if debug {
				if err := writeDebugOps(doc, path); err != nil {
					return err
				}
			}
			a.logger.Info("rendered", "file", path, "variant", doc.Variant.Name, "attempts", doc.Attempts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&notePath, "file", "f", "", "read the note from a JSON file instead of the record source")
	cmd.Flags().StringVar(&jobPath, "job", "", "JSON file with the note's job (with --file)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "also write the recorded drawing operations as JSON")
	return cmd
}

// readNoteFiles decodes a note and an optional job from JSON files.
func readNoteFiles(notePath, jobPath string) (*WasteTransferNote, *Job, error) {
	var note WasteTransferNote
	if err := readJSONFile(notePath, &note); err != nil {
		return nil, nil, err
	}
	if jobPath == "" {
		return &note, nil, nil
	}
	var job Job
	if err := readJSONFile(jobPath, &job); err != nil {
		return nil, nil, err
	}
	return &note, &job, nil
}

func readJSONFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeDebugOps writes the document's layout next to its PDF.
func writeDebugOps(doc *Document, pdfPath string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	path := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".layout.json"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (a *app) fetchNote(ctx context.Context, id string) (*WasteTransferNote, *Job, error) {
	src, err := openRecordSource(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()
	return loadNote(ctx, src, id)
}

// ---------------------------------------------------------------------------
// send
// ---------------------------------------------------------------------------

func newSendCmd(a *app) *cobra.Command {
	var to []string

	cmd := &cobra.Command{
		Use:   "send <id>",
		Short: "Email one note to the client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, job, err := a.fetchNote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			recipients := to
			if len(recipients) == 0 {
				if email := strings.TrimSpace(note.ClientEmail); email != "" {
					recipients = []string{email}
				}
			}
			if len(recipients) == 0 {
				return fmt.Errorf("note %s has no client email, use --to", args[0])
			}

			doc := a.composer.Compose(note, job)
			data, err := doc.Bytes()
			if err != nil {
				return err
			}
			subject := "Waste Transfer Note " + strings.TrimSuffix(doc.Filename, ".pdf")
			body := fmt.Sprintf("Please find attached the waste transfer note for the service on %s.\n\n%s\n",
				note.resolvedDateOfService(job), a.cfg.Company.Name)
			if err := sendEmail(a.cfg, recipients, subject, body, Attachment{Filename: doc.Filename, Data: data}); err != nil {
				return err
			}
			a.logger.Info("sent", "file", doc.Filename, "to", strings.Join(recipients, ", "))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&to, "to", nil, "recipient address (default: the note's client email)")
	return cmd
}

// ---------------------------------------------------------------------------
// day
// ---------------------------------------------------------------------------

func newDayCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "day [DD/MM/YYYY]",
		Short: "Email all notes of a service day to the office",
		Long:  "Renders every note of the given service day and emails them to the office address in one message. Without a date the previous England & Wales workday is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			day, err := parseServiceDay(arg, time.Now())
			if err != nil {
				return err
			}

			src, err := openRecordSource(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer src.Close()

			attachments, err := a.composeDay(ctx, src, day)
			if err != nil {
				return err
			}
			if len(attachments) == 0 {
				a.logger.Info("no notes for day", "day", formatDate(day))
				return nil
			}

			if dryRun {
				if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				for _, att := range attachments {
					path := filepath.Join(a.cfg.OutputDir, att.Filename)
					if err := os.WriteFile(path, att.Data, 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", path, err)
					}
				}
				a.logger.Info("written", "notes", len(attachments), "dir", a.cfg.OutputDir)
				return nil
			}

			ref := batchReference(day)
			subject := fmt.Sprintf("Waste Transfer Notes %s (%s)", formatDate(day), ref)
			body := fmt.Sprintf("%d waste transfer note(s) for %s attached.\n", len(attachments), formatDate(day))
			if err := sendEmail(a.cfg, []string{a.cfg.Email.To}, subject, body, attachments...); err != nil {
				return err
			}
			a.logger.Info("sent", "notes", len(attachments), "day", formatDate(day), "batch", ref)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "write the PDFs to the output directory instead of sending them")
	return cmd
}

// composeDay renders every note of day. Filenames are made unique within the
// batch.
func (a *app) composeDay(ctx context.Context, src recordSource, day time.Time) ([]Attachment, error) {
	notes, err := src.NotesForDay(ctx, isoDate(day))
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool, len(notes))
	attachments := make([]Attachment, 0, len(notes))
	for _, note := range notes {
		job, err := jobFor(ctx, src, note)
		if err != nil {
			return nil, err
		}
		doc := a.composer.Compose(note, job)
		data, err := doc.Bytes()
		if err != nil {
			return nil, fmt.Errorf("failed to render note %s: %w", note.ID, err)
		}

		attachments = append(attachments, Attachment{Filename: uniqueFilename(doc.Filename, used), Data: data})
	}
	return attachments, nil
}

// uniqueFilename returns name, or name with the first free _N suffix, and
// marks the result as used.
func uniqueFilename(name string, used map[string]bool) string {
	base := strings.TrimSuffix(name, ".pdf")
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s_%d.pdf", base, n)
	}
	used[name] = true
	return name
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve note PDFs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			src, err := openRecordSource(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer src.Close()

			if listen == "" {
				listen = a.cfg.Listen
			}
			s := &server{records: src, composer: a.composer, logger: a.logger}
			return s.listenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	return cmd
}
