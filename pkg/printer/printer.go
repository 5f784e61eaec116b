package printer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Printer is the interface for sending a rendered receipt to an output device.
type Printer interface {
	// Print sends one rendered job to the printer.
	Print(data []byte) error
	// Close releases the printer handle.
	Close() error
	// IsConnected returns true if the printer can accept jobs.
	IsConnected() bool
}

// --- Spool Printer (one file per job in a directory picked up by a print daemon) ---

type spoolPrinter struct {
	dir string
	now func() time.Time

	mu  sync.Mutex
	seq int
}

// NewSpoolPrinter creates a printer that writes each job to a file under dir.
func NewSpoolPrinter(dir string) Printer {
	return &spoolPrinter{dir: dir, now: time.Now}
}

func (p *spoolPrinter) Print(data []byte) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("printer: failed to create spool dir %s: %w", p.dir, err)
	}

	p.mu.Lock()
	p.seq++
	name := fmt.Sprintf("receipt-%s-%04d.txt", p.now().Format("20060102-150405"), p.seq)
	p.mu.Unlock()

	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("printer: failed to write spool file %s: %w", path, err)
	}
	return nil
}

func (p *spoolPrinter) Close() error {
	return nil
}

func (p *spoolPrinter) IsConnected() bool {
	info, err := os.Stat(p.dir)
	return err == nil && info.IsDir()
}

// --- Writer Printer (any io.Writer, e.g. stdout in development) ---

type writerPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterPrinter creates a printer that copies every job to w.
func NewWriterPrinter(w io.Writer) Printer {
	return &writerPrinter{w: w}
}

func (p *writerPrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.w.Write(data); err != nil {
		return fmt.Errorf("printer: write failed: %w", err)
	}
	return nil
}

func (p *writerPrinter) Close() error {
	if c, ok := p.w.(io.Closer); ok && p.w != os.Stdout && p.w != os.Stderr {
		return c.Close()
	}
	return nil
}

func (p *writerPrinter) IsConnected() bool {
	return p.w != nil
}

// --- Null Printer (no-op, used when printing happens in the browser only) ---

type nullPrinter struct{}

// NewNullPrinter creates a no-op printer.
func NewNullPrinter() Printer {
	return &nullPrinter{}
}

func (p *nullPrinter) Print(data []byte) error {
	return nil
}

func (p *nullPrinter) Close() error {
	return nil
}

func (p *nullPrinter) IsConnected() bool {
	return false
}

// NewPrinterFromConfig creates the appropriate Printer based on type.
//
//	printerType: "spool", "stdout", or "none"
//	spoolDir: directory for spool printers (e.g. "./spool")
func NewPrinterFromConfig(printerType, spoolDir string) (Printer, error) {
	switch printerType {
	case "spool":
		if spoolDir == "" {
			return nil, fmt.Errorf("printer: spool directory is required for spool printer type")
		}
		return NewSpoolPrinter(spoolDir), nil
	case "stdout":
		return NewWriterPrinter(os.Stdout), nil
	case "none", "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use spool, stdout, or none)", printerType)
	}
}
