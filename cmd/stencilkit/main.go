// stencilkit - Render design documents to images.
//
// Usage:
//
//	stencilkit -o <file> --doc <path> [--fields <path>] [options]
//	stencilkit fields --doc <path>
//	stencilkit bundle --doc <path> -o <file.skbundle>
//	stencilkit fonts [--fonts <dir>]
//	stencilkit serve [--addr :8080]
//	stencilkit watch --doc <path> -o <file>
//	stencilkit init
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/xob0t/stencilkit/clients/server"
	"github.com/xob0t/stencilkit/clients/watch"
	"github.com/xob0t/stencilkit/pkg/assets"
	"github.com/xob0t/stencilkit/pkg/compose"
	"github.com/xob0t/stencilkit/pkg/document"
	"github.com/xob0t/stencilkit/pkg/fonts"
	"github.com/xob0t/stencilkit/pkg/generator"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "fields":
		err = runFields(os.Args[2:])
	case "bundle":
		err = runBundle(os.Args[2:])
	case "fonts":
		err = runFonts(os.Args[2:])
	case "serve":
		err = server.RunServe(ctx, os.Args[2:])
	case "watch":
		err = watch.RunWatch(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	case "render":
		err = run(ctx, os.Args[2:])
	default:
		// Default: render mode (all flags on root).
		err = run(ctx, os.Args[1:])
	}
	if err != nil {
		fatal(err)
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stencilkit", flag.ExitOnError)

	var (
		output     string
		docPath    string
		fieldsPath string
		scale      float64
		background string
		quality    int
		timeout    time.Duration
		logLevel   string
		fontDirs   stringList
	)

	fs.StringVar(&output, "o", "", "Output file path (.png, .jpg, .bmp, .tiff)")
	fs.StringVar(&output, "output", "", "Output file path (.png, .jpg, .bmp, .tiff)")
	fs.StringVar(&docPath, "doc", "", "Path to document JSON or .skbundle")
	fs.StringVar(&fieldsPath, "fields", "", "Path to fields JSON (optional)")
	fs.Float64Var(&scale, "scale", 1, "Scale factor applied to all geometry")
	fs.StringVar(&background, "bg", "", "Background color override")
	fs.IntVar(&quality, "quality", generator.DefaultJPEGQuality, "JPEG quality (1-100)")
	fs.DurationVar(&timeout, "timeout", assets.DefaultTimeout, "Image download timeout")
	fs.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	fs.Var(&fontDirs, "fonts", "Font directory to load (repeatable)")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	if output == "" {
		printUsage()
		return fmt.Errorf("output file is required (-o)")
	}
	if docPath == "" {
		return fmt.Errorf("--doc is required")
	}
	logger, err := compose.InstallLogger(os.Stderr, logLevel)
	if err != nil {
		return err
	}

	doc, cleanup, err := document.Load(docPath)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	defer cleanup()

	fields, err := loadFields(fieldsPath, doc)
	if err != nil {
		return err
	}

	engine, err := compose.NewHeadless(compose.Config{
		FontDirs: fontDirs,
		Fetcher: assets.FetcherOptions{
			Timeout: timeout,
			BaseDir: filepath.Dir(docPath),
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Rendering: %s\n", displayName(doc, docPath))
	img, err := engine.Render(ctx, doc, fields, compose.RenderOptions{Scale: scale, Background: background})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := generator.Generate(output, img, generator.Config{Quality: quality}); err != nil {
		return err
	}
	fmt.Printf("Done: %s (%dx%d)\n", output, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

// loadFields reads and validates the optional fields file, printing
// warnings to stderr.
func loadFields(path string, doc *document.Document) (document.FieldValues, error) {
	if path == "" {
		return nil, nil
	}
	fields, warnings, err := document.LoadFields(path)
	if err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}
	warnings = append(warnings, document.ValidateFields(fields, doc)...)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	return fields, nil
}

func displayName(doc *document.Document, path string) string {
	if doc.Meta.Name != "" {
		return doc.Meta.Name
	}
	return filepath.Base(path)
}

func runFields(args []string) error {
	fs := flag.NewFlagSet("fields", flag.ExitOnError)
	var docPath string
	fs.StringVar(&docPath, "doc", "", "Path to document JSON or .skbundle")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if docPath == "" {
		return fmt.Errorf("--doc is required for fields command")
	}

	doc, cleanup, err := document.Load(docPath)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Print(document.FormatFields(doc))
	return nil
}

// runBundle packs a document and the local files its layers reference into
// a .skbundle archive. Referenced files are stored under assets/ and the
// layer fileUrl values rewritten to match.
func runBundle(args []string) error {
	fs := flag.NewFlagSet("bundle", flag.ExitOnError)
	var docPath, output string
	fs.StringVar(&docPath, "doc", "", "Path to document JSON")
	fs.StringVar(&output, "o", "", "Output .skbundle path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if docPath == "" || output == "" {
		return fmt.Errorf("--doc and -o are required for bundle command")
	}
	if !strings.EqualFold(filepath.Ext(output), document.BundleExt) {
		output += document.BundleExt
	}

	doc, cleanup, err := document.Load(docPath)
	if err != nil {
		return err
	}
	defer cleanup()

	files := make(map[string][]byte)
	for i := range doc.Layers {
		l := &doc.Layers[i]
		if !l.Type.ImageCapable() || l.FileURL == "" || !filepath.IsAbs(l.FileURL) {
			continue
		}
		data, err := os.ReadFile(l.FileURL)
		if err != nil {
			return fmt.Errorf("layer %q: %w", l.ID, err)
		}
		name := l.ID + "-" + filepath.Base(l.FileURL)
		files[name] = data
		l.FileURL = "assets/" + name
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := document.WriteBundle(f, doc, files); err != nil {
		f.Close()
		os.Remove(output)
		return fmt.Errorf("write bundle: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Created: %s (%d assets)\n", output, len(files))
	return nil
}

func runFonts(args []string) error {
	fs := flag.NewFlagSet("fonts", flag.ExitOnError)
	var dirs stringList
	fs.Var(&dirs, "fonts", "Font directory to load (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg := fonts.New()
	for _, dir := range dirs {
		if _, err := reg.LoadDir(dir); err != nil {
			return err
		}
	}
	for _, name := range reg.Families() {
		fmt.Println(name)
	}
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var docOut, fieldsOut string
	fs.StringVar(&docOut, "doc", "document.json", "Output path for sample document")
	fs.StringVar(&fieldsOut, "fields", "fields.json", "Output path for sample fields")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d, f := document.ExampleJSON()

	if err := os.WriteFile(docOut, []byte(d), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.WriteFile(fieldsOut, []byte(f), 0o644); err != nil {
		return fmt.Errorf("write fields: %w", err)
	}

	fmt.Printf("Created: %s, %s\n", docOut, fieldsOut)
	fmt.Println("Run: stencilkit -o output.png --doc document.json --fields fields.json")
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`stencilkit - Design document rendering

USAGE:
    stencilkit -o <file> --doc <path> [--fields <path>] [options]
    stencilkit fields --doc <path>
    stencilkit bundle --doc <path> -o <file.skbundle>
    stencilkit fonts [--fonts <dir>]
    stencilkit serve [--addr :8080]
    stencilkit watch --doc <path> -o <file> [--fields <path>]
    stencilkit init [options]

RENDER:
    --doc <path>           Document JSON or .skbundle archive
    --fields <path>        Field values JSON (optional)
    -o, --output <path>    Output file (.png, .jpg, .bmp, .tiff)
    --scale <n>            Scale factor (default: 1)
    --bg <color>           Background color override
    --fonts <dir>          Extra font directory (repeatable)
    --quality <n>          JPEG quality (default: 90)
    --timeout <dur>        Image download timeout (default: 15s)
    --log-level <level>    debug, info, warn, error (default: warn)

FIELDS:
    stencilkit fields --doc <path>      Print the document's field keys

EXAMPLES:
    stencilkit init
    stencilkit -o post.png --doc document.json --fields fields.json
    stencilkit -o post@2x.jpg --doc post.skbundle --scale 2
    stencilkit watch --doc document.json --fields fields.json -o preview.png
    stencilkit serve --addr :8080
`)
}
