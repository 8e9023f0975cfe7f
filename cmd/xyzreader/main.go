package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bodgit/xyzreader"
	"github.com/bodgit/xyzreader/bitmap"
	"github.com/bodgit/xyzreader/sample"
	"github.com/urfave/cli/v2"
)

const defaultDB = "xyzreader.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func options(c *cli.Context) (xyzreader.Options, error) {
	opts := xyzreader.DefaultOptions()

	opts.Bounds = sample.Bounds{
		Width:  c.Int("width"),
		Height: c.Int("height"),
	}
	opts.DefaultFactor = c.Int("default-factor")
	opts.Colors = c.Int("colors")
	opts.Dither = c.Bool("dither")
	opts.Workers = c.Int("workers")
	opts.MaxSize = c.Int64("max-size")

	i, err := bitmap.ParseInterpolator(c.String("kernel"))
	if err != nil {
		return opts, err
	}
	opts.Interpolator = i

	return opts, nil
}

func newReader(c *cli.Context) (*xyzreader.Reader, error) {
	opts, err := options(c)
	if err != nil {
		return nil, err
	}
	return xyzreader.New(c.String("db"), newLogger(c), opts)
}

func main() {
	app := cli.NewApp()

	app.Name = "xyzreader"
	app.Usage = "Article catalog and thumbnail utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	defaults := xyzreader.DefaultOptions()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"XYZREADER_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
		&cli.IntFlag{
			Name:    "width",
			EnvVars: []string{"XYZREADER_WIDTH"},
			Value:   defaults.Bounds.Width,
			Usage:   "target thumbnail width, 0 for no constraint",
		},
		&cli.IntFlag{
			Name:    "height",
			EnvVars: []string{"XYZREADER_HEIGHT"},
			Value:   defaults.Bounds.Height,
			Usage:   "target thumbnail height, 0 for no constraint",
		},
		&cli.IntFlag{
			Name:    "default-factor",
			EnvVars: []string{"XYZREADER_DEFAULT_FACTOR"},
			Value:   defaults.DefaultFactor,
			Usage:   "sample factor used when the photo fits or no bounds are given",
		},
		&cli.IntFlag{
			Name:    "colors",
			EnvVars: []string{"XYZREADER_COLORS"},
			Value:   defaults.Colors,
			Usage:   "reduce thumbnails to this many colors, 0 to disable",
		},
		&cli.BoolFlag{
			Name:    "dither",
			EnvVars: []string{"XYZREADER_DITHER"},
			Usage:   "dither when reducing colors",
		},
		&cli.StringFlag{
			Name:    "kernel",
			EnvVars: []string{"XYZREADER_KERNEL"},
			Value:   "approx-bilinear",
			Usage:   "scaling kernel; nearest, approx-bilinear, bilinear or catmull-rom",
		},
		&cli.IntFlag{
			Name:    "workers",
			EnvVars: []string{"XYZREADER_WORKERS"},
			Value:   defaults.Workers,
			Usage:   "number of directories to scan concurrently",
		},
		&cli.Int64Flag{
			Name:    "max-size",
			EnvVars: []string{"XYZREADER_MAX_SIZE"},
			Value:   defaults.MaxSize,
			Usage:   "ignore image files larger than this many bytes",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "import",
			Usage:       "Import articles from an XML feed",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				r, err := newReader(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer r.Close()

				if err := r.ImportXML(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "list",
			Usage:       "List articles, newest first",
			Description: "",
			Action: func(c *cli.Context) error {
				r, err := newReader(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer r.Close()

				articles, err := r.DB().Articles()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, a := range articles {
					published := "-"
					if !a.Published.IsZero() {
						published = a.Published.Format("2006-01-02 15:04")
					}
					fmt.Fprintf(c.App.Writer, "%s\t%s\t%s by %s\n", a.ID, published, a.Title, a.Author)
				}

				return nil
			},
		},
		{
			Name:        "thumbnail",
			Usage:       "Write a PNG thumbnail of an article photo",
			Description: "",
			ArgsUsage:   "ID FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				r, err := newReader(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer r.Close()

				f, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				if _, err := r.Thumbnail(f, c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := f.Close(); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem and generate thumbnail indexes",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				r, err := newReader(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer r.Close()

				if err := r.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "factor",
			Usage:       "Print the sample factor for an image and target size",
			Description: "",
			ArgsUsage:   "WIDTH HEIGHT TARGET_WIDTH TARGET_HEIGHT",
			Action: func(c *cli.Context) error {
				if c.NArg() < 4 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				var n [4]int
				for i := range n {
					v, err := strconv.Atoi(c.Args().Get(i))
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					n[i] = v
				}

				f, err := sample.Factor(sample.Dimensions{Width: n[0], Height: n[1]}, sample.Bounds{Width: n[2], Height: n[3]}, c.Int("default-factor"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Fprintln(c.App.Writer, f)

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
