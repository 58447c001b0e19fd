package actions

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"smartplaylist/internal/config"
	"smartplaylist/internal/logger"
	"smartplaylist/internal/porter"
)

const (
	FormatURIs = "uris"
	FormatCSV  = "csv"
)

func GeneratePlaylist(c *cli.Context) error {
	format := strings.ToLower(c.String("format"))
	if format != FormatURIs && format != FormatCSV {
		return fmt.Errorf("unknown output format %q, expected %q or %q", format, FormatURIs, FormatCSV)
	}

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	text, err := readDirectives(c.String("file"), os.Stdin)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no directives given")
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	// initialize porter
	p, err := porter.NewPorterWithConfig(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create porter: %w", err)
	}
	defer closeLogged(p, "porter", log)

	opts := porter.Options{
		Grouping:     c.String("group"),
		Ordering:     c.String("order"),
		LastfmUser:   c.String("lastfm-user"),
		SkipFailures: c.Bool("skip-failures"),
	}
	if c.IsSet("unique") {
		unique := c.Bool("unique")
		opts.Unique = &unique
	}

	quiet := c.Bool("quiet")
	var trace bytes.Buffer
	if !quiet {
		opts.Trace = &trace
	}

	var out bytes.Buffer
	generate := func(ctx context.Context) error {
		return Generate(ctx, p, text, opts, format, &out)
	}

	if !quiet && isTerminal(os.Stderr) {
		err = spinner.New().Title("Resolving playlist...").Context(ctx).ActionWithErr(generate).Run()
	} else {
		err = generate(ctx)
	}
	if err != nil {
		return err
	}

	flushTrace(c.App.ErrWriter, &trace, log)
	return writeOutput(c.String("output"), c.App.Writer, out.Bytes(), log)
}

// Generate writes the playlist described by text to w in the given format.
func Generate(ctx context.Context, p *porter.Porter, text string, opts porter.Options, format string, w io.Writer) error {
	if format == FormatCSV {
		return p.ExportCSV(ctx, text, opts, w)
	}
	uris, err := p.Generate(ctx, text, opts)
	if err != nil {
		return err
	}
	if uris != "" {
		_, err = fmt.Fprintln(w, uris)
	}
	return err
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// readDirectives reads the directive text from path ("-" is stdin), from
// piped stdin, or from an interactive prompt when stdin is a terminal.
func readDirectives(path string, stdin *os.File) (string, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("error reading directives: %w", err)
		}
		return string(data), nil
	}

	if path == "" && isTerminal(stdin) {
		var text string
		err := huh.NewText().
			Title("Enter the playlist directives").
			Description("One track, #ARTIST, #ALBUM, #TOP or #SIMILAR entry per line").
			Lines(12).
			Value(&text).
			Run()
		return text, err
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("error reading directives: %w", err)
	}
	return string(data), nil
}

func writeOutput(path string, stdout io.Writer, data []byte, log *zap.Logger) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	log.Info("playlist written", zap.String("path", path))
	return nil
}

// flushTrace copies the track trace to w. A failed write only loses the trace.
func flushTrace(w io.Writer, trace *bytes.Buffer, log *zap.Logger) {
	if trace.Len() == 0 {
		return
	}
	if _, err := io.Copy(w, trace); err != nil {
		log.Debug("failed to write track trace", zap.Error(err))
	}
}

func closeLogged(c io.Closer, name string, log *zap.Logger) {
	if err := c.Close(); err != nil {
		log.Debug("failed to close "+name, zap.Error(err))
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
