package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/obsidian-tasks/internal/config"
	"github.com/nibzard/obsidian-tasks/internal/filter"
	"github.com/nibzard/obsidian-tasks/internal/vault"
)

// doctorCommand checks the vault root, configuration and schema, then scans
// the vault and reports which notes were skipped and why.
func (a *App) doctorCommand(ctx context.Context, gf *config.Flags, args []string) error {
	verbose := false
	ok, err := a.parseCommandFlags("doctor", gf, args, true, func(fs *flag.FlagSet) {
		fs.BoolVar(&verbose, "verbose", false, "List every parsed task")
	})
	if !ok {
		return err
	}

	w := a.Stdout
	fmt.Fprintln(w, "Obsidian Tasks Doctor")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintln(w)

	// A config error ends the report.
	s, err := a.newSession(gf, true)
	if err != nil {
		fmt.Fprintln(w, "Config:")
		fmt.Fprintf(w, "  ❌ %v\n", err)
		return err
	}
	cfg := s.cfg

	// Check vault root
	fmt.Fprintf(w, "Vault: %s\n", cfg.VaultPath)
	rootErr := vault.CheckRoot(cfg.VaultPath)
	if rootErr != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", rootErr)
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	if archive := cfg.ArchiveRoot(); archive != "" {
		fmt.Fprintf(w, "Archive: %s\n", archive)
		if err := vault.CheckRoot(archive); err != nil {
			fmt.Fprintln(w, "  ⚠️  Not scanned: not found")
		} else {
			fmt.Fprintln(w, "  ✅ OK")
		}
	}
	fmt.Fprintln(w)

	writeConfigReport(w, s.cws)

	fmt.Fprintf(w, "Schema: %s\n", s.parser.SchemaName())
	fmt.Fprintln(w, "  ✅ Compiled")
	fmt.Fprintln(w)

	if rootErr != nil {
		return rootErr
	}

	res, err := s.collect(ctx)
	if err != nil {
		return err
	}
	engine := s.engine(a.Now())

	fmt.Fprintln(w, "Scan:")
	fmt.Fprintf(w, "  Notes scanned: %d\n", res.Scanned)
	fmt.Fprintf(w, "  Tasks parsed: %d\n", len(res.Tasks))
	fmt.Fprintf(w, "  Without frontmatter: %d\n", res.Plain)
	if len(res.Skipped) == 0 {
		fmt.Fprintln(w, "  ✅ Skipped: 0")
	} else {
		fmt.Fprintf(w, "  ⚠️  Skipped: %d\n", len(res.Skipped))
		for _, sk := range res.Skipped {
			fmt.Fprintf(w, "     - %s: %v\n", sk.Path, skipReason(sk))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Views (today %s):\n", engine.Today)
	for _, v := range filter.Views {
		fmt.Fprintf(w, "  %-16s %d\n", v, engine.Count(v, res.Tasks))
	}
	if verbose {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tasks:")
		for _, t := range res.Tasks {
			due := "-"
			if t.Due != nil {
				due = t.Due.String()
			}
			fmt.Fprintf(w, "  - [%s] %s due %s\n", t.Status, t.SourcePath, due)
		}
	}
	return nil
}

func writeConfigReport(w io.Writer, cws *config.ConfigWithSources) {
	cfg := cws.Config
	fmt.Fprintln(w, "Config:")
	if len(cws.Files) == 0 {
		fmt.Fprintln(w, "  Files: none (defaults)")
	} else {
		fmt.Fprintf(w, "  Files: %s\n", strings.Join(cws.Files, ", "))
	}
	values := map[string]string{
		"extensions":     strings.Join(cfg.Extensions, ","),
		"done_status":    cfg.DoneStatus,
		"scan_archive":   fmt.Sprint(cfg.ScanArchive),
		"archive_dir":    cfg.ArchiveDir,
		"schema_file":    cfg.SchemaFile,
		"indent":         fmt.Sprintf("%q", cfg.Indent),
		"compact":        fmt.Sprint(cfg.Compact),
		"log_level":      cfg.LogLevel,
		"log_format":     cfg.LogFormat,
		"log_timestamps": fmt.Sprint(cfg.LogTimestamps),
		"log_caller":     fmt.Sprint(cfg.LogCaller),
	}
	for _, field := range config.Fields() {
		fmt.Fprintf(w, "  %-15s %-20s (%s)\n", field, values[field], cws.SourceOf(field))
	}
	for _, key := range cws.Unknown {
		fmt.Fprintf(w, "  ⚠️  Unknown key %s\n", key)
	}
	fmt.Fprintln(w)
}

// skipReason strips the note path already printed in front of the reason.
func skipReason(sk vault.Skipped) string {
	msg := sk.Err.Error()
	return strings.TrimPrefix(msg, sk.Path+": ")
}
