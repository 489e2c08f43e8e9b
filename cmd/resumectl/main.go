// Command resumectl edits and exports resume drafts kept in a drafts
// directory. A running server watching the same directory picks up the
// changes.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/draft"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/templates"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/infrastructure"
)

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func openDocument(cmd *cli.Command) (*usecase.Document, error) {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	dir := draftsDir(cfg, cmd.String("drafts"), cmd.IsSet("drafts"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create drafts dir: %w", err)
	}
	fsd, err := repository.NewFSDrafts(dir)
	if err != nil {
		return nil, err
	}
	l := logger()
	return usecase.NewDocument(draft.NewStore(fsd.Backend(cmd.String("session")), l), usecase.DefaultIDs, l), nil
}

func output(cmd *cli.Command) (io.WriteCloser, error) {
	path := cmd.String("out")
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func show(ctx context.Context, cmd *cli.Command) error {
	doc, err := openDocument(cmd)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Data     model.ResumeData `json:"data"`
		Template model.TemplateID `json:"template"`
		Analysis usecase.Analysis `json:"analysis"`
	}{doc.ResumeData(), doc.Template(), usecase.Analyze(doc.ResumeData())})
}

func addSkill(ctx context.Context, cmd *cli.Command) error {
	doc, err := openDocument(cmd)
	if err != nil {
		return err
	}
	for _, name := range cmd.Args().Slice() {
		if !doc.AddSkill(name) {
			fmt.Fprintf(os.Stderr, "skipped %q (blank or already present)\n", name)
		}
	}
	return nil
}

func removeSkill(ctx context.Context, cmd *cli.Command) error {
	doc, err := openDocument(cmd)
	if err != nil {
		return err
	}
	for _, name := range cmd.Args().Slice() {
		doc.RemoveSkill(name)
	}
	return nil
}

func setTemplate(ctx context.Context, cmd *cli.Command) error {
	doc, err := openDocument(cmd)
	if err != nil {
		return err
	}
	got := doc.SetTemplate(cmd.Args().First())
	fmt.Println(got)
	return nil
}

func listTemplates(ctx context.Context, cmd *cli.Command) error {
	for _, t := range templates.All() {
		fmt.Printf("%-10s %-22s %s\n", t.ID(), t.Name(), t.Description())
	}
	return nil
}

func preview(ctx context.Context, cmd *cli.Command) error {
	doc, err := openDocument(cmd)
	if err != nil {
		return err
	}
	tpl := doc.Template()
	if t := cmd.String("template"); t != "" {
		tpl = model.ParseTemplateID(t)
	}
	w, err := output(cmd)
	if err != nil {
		return err
	}
	defer w.Close()
	return templates.Lookup(tpl).Render(w, doc.ResumeData())
}

func exportPDF(ctx context.Context, cmd *cli.Command) error {
	doc, err := openDocument(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if cmd.IsSet("chrome") {
		cfg.Export.ChromePath = cmd.String("chrome")
	}
	if cmd.IsSet("timeout") {
		cfg.Export.Timeout = cmd.Duration("timeout")
	}
	renderer := infrastructure.NewChromedpRenderer(cfg.Export.ChromePath, cfg.Export.Timeout)
	ex := export.New(renderer,
		export.WithPrinter(renderer),
		export.WithLogger(logger()),
		export.WithTimeout(cfg.Export.Timeout),
		export.WithScale(cfg.Export.Scale),
		export.WithArchiveDir(cfg.Export.ArchiveDir),
		export.WithOptimize(cfg.Export.Optimize),
	)
	art, err := ex.Export(ctx, export.Request{
		Title:    cmd.String("title"),
		Template: doc.Template(),
		Data:     doc.ResumeData(),
		Mode:     export.ParseMode(cmd.String("mode")),
	})
	if err != nil {
		return err
	}
	path := outputPath(cmd.String("out"), art.FileName)
	if err := os.WriteFile(path, art.PDF, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s (%d pages, %d links)\n", path, art.Pages, art.Links)
	return nil
}

func clearDrafts(ctx context.Context, cmd *cli.Command) error {
	doc, err := openDocument(cmd)
	if err != nil {
		return err
	}
	doc.ClearAll()
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "resumectl",
		Usage: "Edit and export resume drafts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Server config file; drafts.dir and export settings are read from it when present",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "drafts",
				Aliases: []string{"d"},
				Usage:   "Drafts directory",
				Value:   "./drafts",
				Sources: cli.EnvVars("RESUME_DRAFTS_DIR"),
			},
			&cli.StringFlag{
				Name:    "session",
				Aliases: []string{"s"},
				Usage:   "Draft namespace (the server's session id)",
				Value:   "local",
				Sources: cli.EnvVars("RESUME_SESSION"),
			},
		},
		Commands: []*cli.Command{
			{Name: "show", Usage: "Print the document, template and analysis as JSON", Action: show},
			{Name: "add-skill", Usage: "Add one or more skills", ArgsUsage: "NAME...", Action: addSkill},
			{Name: "remove-skill", Usage: "Remove one or more skills", ArgsUsage: "NAME...", Action: removeSkill},
			{Name: "set-template", Usage: "Select a template", ArgsUsage: "ID", Action: setTemplate},
			{Name: "templates", Usage: "List templates", Action: listTemplates},
			{
				Name:   "preview",
				Usage:  "Render the document as HTML",
				Action: preview,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "Template to render with"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file, - for stdout"},
				},
			},
			{
				Name:   "export",
				Usage:  "Export the document as PDF",
				Action: exportPDF,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Resume title used in the file name"},
					&cli.StringFlag{Name: "mode", Value: "raster", Usage: "raster or print"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file"},
					&cli.StringFlag{Name: "chrome", Usage: "Chrome executable (overrides export.chrome_path)", Sources: cli.EnvVars("CHROME_PATH")},
					&cli.DurationFlag{Name: "timeout", Value: 60 * time.Second, Usage: "Export timeout (overrides export.timeout)"},
				},
			},
			{Name: "clear", Usage: "Erase every draft slot", Action: clearDrafts},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("resumectl error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
