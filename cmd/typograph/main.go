// Command typograph расставляет неразрывные пробелы в тексте или файле макета.
//
// Без аргументов читает простой текст из stdin и пишет результат в stdout.
// С файлом обрабатывает макет (.json, .yaml, .html, .txt) и пишет его в -o,
// поверх исходного файла с -w или в stdout. Итог выводится в stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"typobot/internal/config"
	"typobot/internal/fonts"
	"typobot/internal/notify"
	"typobot/internal/scene"
	"typobot/internal/service"
	"typobot/internal/typograph"
	"typobot/pkg/logger"
)

// Коды выхода
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	scope    string
	format   string
	selector string
	fontsDir string
	output   string
	inPlace  bool
	verbose  bool
	lang     string
	path     string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("typograph", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.scope, "scope", "", "scope: selection, page or file (default DEFAULT_SCOPE)")
	fs.StringVar(&opts.format, "format", "", "input format: json, yaml, html or text (default by extension)")
	fs.StringVar(&opts.selector, "selector", "", "CSS selector of the HTML selection")
	fs.StringVar(&opts.fontsDir, "fonts", "", "fonts directory (default FONTS_DIR)")
	fs.StringVar(&opts.output, "o", "", "output file")
	fs.BoolVar(&opts.inPlace, "w", false, "overwrite the input file")
	fs.BoolVar(&opts.verbose, "v", false, "print per-stage counts and debug log")
	fs.StringVar(&opts.lang, "lang", "", "summary language, e.g. ru or en (default LANG)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.path = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one file, got %d", fs.NArg())
	}

	if opts.inPlace && opts.path == "" {
		return nil, errors.New("-w requires a file")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, "typograph:", err)
		}
		return exitUsage
	}

	cfg := config.Read()

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logger.NewWithOptions(logger.Options{Level: level, Output: zapcore.AddSync(stderr)})
	defer func() { _ = log.Sync() }()

	scope, err := resolveScope(opts.scope, cfg.DefaultScope)
	if err != nil {
		fmt.Fprintln(stderr, "typograph:", err)
		return exitUsage
	}

	file, err := openFile(opts, stdin)
	if err != nil {
		fmt.Fprintln(stderr, "typograph:", err)
		return exitFailure
	}

	processor, err := newProcessor(opts, cfg, log)
	if err != nil {
		fmt.Fprintln(stderr, "typograph:", err)
		return exitFailure
	}

	if opts.verbose {
		printStages(stderr, file, scope)
	}

	report, _ := processor.ProcessFile(ctx, file, scope)
	summary := notify.Summarize(report, notify.Language(summaryLanguage(opts.lang)))
	fmt.Fprintln(stderr, summary.Message)

	if summary.IsError {
		log.Debug("Processing failed", zap.Error(report.Err))
		return exitFailure
	}

	if err := writeResult(opts, file, report, stdout); err != nil {
		fmt.Fprintln(stderr, "typograph:", err)
		return exitFailure
	}
	return exitOK
}

func resolveScope(flagValue string, fallback scene.Scope) (scene.Scope, error) {
	if flagValue == "" {
		flagValue = fallback.String()
	}
	return scene.ParseScope(flagValue)
}

// openFile читает файл из аргумента или stdin; stdin по умолчанию простой текст
func openFile(opts *options, stdin io.Reader) (scene.File, error) {
	var format scene.Format
	if opts.format != "" {
		f, err := scene.ParseFormat(opts.format)
		if err != nil {
			return nil, err
		}
		format = f
	}

	if opts.path != "" {
		return scene.Open(opts.path, format, opts.selector)
	}
	if format == "" {
		format = scene.FormatText
	}
	return scene.Decode(stdin, format, opts.selector)
}

func newProcessor(opts *options, cfg *config.Config, log *zap.Logger) (*service.Processor, error) {
	dir := opts.fontsDir
	if dir == "" {
		dir = cfg.FontsDir
	}

	var loader fonts.Loader
	if dir != "" {
		dirLoader, err := fonts.NewDirLoader(dir, log.Named("fonts"))
		if err != nil {
			return nil, err
		}
		loader = dirLoader
	}

	return service.NewProcessor(loader, service.ProcessorConfig{
		Workers:         cfg.ProcessorWorkers,
		FontLoadTimeout: cfg.FontLoadTimeout,
	}, log.Named("processor")), nil
}

// printStages выводит, сколько замен сделал бы каждый этап в области
func printStages(w io.Writer, file scene.File, scope scene.Scope) {
	nodes, err := file.TextNodes(scope)
	if err != nil {
		return
	}

	counts := make(map[string]int)
	for _, node := range nodes {
		for _, s := range typograph.Process(node.Characters()).Stages {
			counts[s.Stage] += s.Count
		}
	}

	names := typograph.NewPipeline().StageNames()
	order := make(map[string]int, len(names))
	for i, name := range names {
		order[name] = i
	}

	stages := make([]string, 0, len(counts))
	for name := range counts {
		stages = append(stages, name)
	}
	sort.Slice(stages, func(i, j int) bool { return order[stages[i]] < order[stages[j]] })

	for _, name := range stages {
		fmt.Fprintf(w, "%-18s %d\n", name, counts[name])
	}
}

// writeResult пишет результат. Неизмененный файл с -w не переписывается.
func writeResult(opts *options, file scene.File, report *service.Report, stdout io.Writer) error {
	target := opts.output
	if target == "" && opts.inPlace {
		if !report.Changed() {
			return nil
		}
		target = opts.path
	}

	data, err := file.Encode()
	if err != nil {
		return err
	}

	if target == "" {
		_, err = stdout.Write(data)
		return err
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(target, data, mode)
}

// summaryLanguage берет язык из флага или переменной LANG вида ru_RU.UTF-8
func summaryLanguage(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	lang, _, _ := strings.Cut(os.Getenv("LANG"), ".")
	if lang == "C" || lang == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(lang, "_", "-")
}
