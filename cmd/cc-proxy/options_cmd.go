package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/cache-control/pkg/options"
)

const optionsUsage = `usage: cc-proxy options <command> [flags]

commands:
  init    print a settings file with every field at its default
  lint    report values that will be read as "default"
`

func runOptionsCommand(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, optionsUsage)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "init":
		return runOptionsInit(args[1:], out)
	case "lint":
		return runOptionsLint(args[1:], out)
	default:
		fmt.Fprint(out, optionsUsage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runOptionsInit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("options init", flag.ContinueOnError)
	fs.SetOutput(out)
	postTypes := fs.String("post-types", "post,page", "comma separated public post types")
	taxonomies := fs.String("taxonomies", "category,post_tag,post_format", "comma separated public taxonomies")
	templates := fs.String("templates", "", "comma separated page templates")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b, err := options.EncodeYAML(options.Scaffold(options.ScaffoldInput{
		PostTypes:  strings.Split(*postTypes, ","),
		Taxonomies: strings.Split(*taxonomies, ","),
		Templates:  strings.Split(*templates, ","),
	}))
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

func runOptionsLint(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("options lint", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("file", "cache-control.yaml", "settings file to check")
	if err := fs.Parse(args); err != nil {
		return err
	}

	o, err := options.NewFileStore(*path).Load(context.Background())
	if err != nil {
		return err
	}

	problems := o.Lint()
	for _, p := range problems {
		fmt.Fprintln(out, p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) in %s", len(problems), *path)
	}
	fmt.Fprintln(out, "ok")
	return nil
}
