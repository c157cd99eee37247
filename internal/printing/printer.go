// Package printing spools counter documents to disk and hands them to the OS
// print queue.
package printing

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	Command  string
	Printer  string
	SpoolDir string
	Copies   int
}

// Result tells the caller where the document went. When Printed is false the
// counter should open Path itself.
type Result struct {
	Path       string `json:"path"`
	Printed    bool   `json:"printed"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

type runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

type Printer struct {
	cfg      Config
	archiver Archiver
	run      runner
}

// New builds a printer. archiver may be nil.
func New(cfg Config, archiver Archiver) *Printer {
	if cfg.SpoolDir == "" {
		cfg.SpoolDir = os.TempDir()
	}
	if cfg.Copies < 1 {
		cfg.Copies = 1
	}
	return &Printer{cfg: cfg, archiver: archiver, run: execRunner}
}

func (p *Printer) args(path string) []string {
	var args []string
	if p.cfg.Printer != "" {
		args = append(args, "-d", p.cfg.Printer)
	}
	if p.cfg.Copies > 1 {
		args = append(args, "-n", strconv.Itoa(p.cfg.Copies))
	}
	return append(args, path)
}

// Print spools text as <name>_*.txt, sends it to the print command and, when
// an archiver is set, uploads a copy. A failing print command is not an error:
// the spooled path is returned instead.
func (p *Printer) Print(ctx context.Context, name, text string) (*Result, error) {
	if err := os.MkdirAll(p.cfg.SpoolDir, 0o755); err != nil {
		return nil, fmt.Errorf("spool dir: %w", err)
	}
	f, err := os.CreateTemp(p.cfg.SpoolDir, sanitize(name)+"_*.txt")
	if err != nil {
		return nil, fmt.Errorf("spool file: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return nil, fmt.Errorf("write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close spool file: %w", err)
	}

	res := &Result{Path: f.Name()}

	if p.cfg.Command != "" {
		runCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		err := p.run(runCtx, p.cfg.Command, p.args(res.Path)...)
		cancel()
		if err != nil {
			zap.L().Warn("print command failed, returning spool path",
				zap.String("command", p.cfg.Command), zap.String("path", res.Path), zap.Error(err))
		} else {
			res.Printed = true
		}
	}

	if p.archiver != nil {
		key, err := p.archiver.Archive(ctx, filepath.Base(res.Path), []byte(text))
		if err != nil {
			zap.L().Warn("document archive failed", zap.String("path", res.Path), zap.Error(err))
		} else {
			res.ArchiveKey = key
		}
	}

	return res, nil
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		return "document"
	}
	return name
}
