package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	databind "github.com/goliatone/go-databind"
	"github.com/goliatone/go-databind/pkg/dom"
)

func main() {
	templatePath := flag.String("template", "", "HTML file containing a <template> container")
	dataPath := flag.String("data", "", "record file (YAML or JSON); a top-level sequence renders as a batch")
	form := flag.String("form", "", "form-encoded record, e.g. \"name=Jane&tags[]=go\"")
	sourcePath := flag.String("source", "", "HTML file to extract microdata records from")
	output := flag.String("output", "", "output file (stdout if empty)")
	sanitize := flag.Bool("sanitize", false, "strip markup from bound content values")
	flag.Parse()

	if *templatePath == "" {
		log.Fatal("missing -template")
	}

	var options []databind.Option
	if *sanitize {
		options = append(options, databind.WithUGCSanitizer())
	}
	eng := databind.New(options...)

	templateSrc, err := os.ReadFile(*templatePath)
	if err != nil {
		log.Fatalf("Failed to read template: %v", err)
	}
	if err := eng.RegisterTemplate("cli", string(templateSrc)); err != nil {
		log.Fatalf("Failed to register template: %v", err)
	}

	input, err := loadInput(*dataPath, *form, *sourcePath)
	if err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}

	result, err := eng.Render("cli", input)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	for _, diag := range result.Diagnostics {
		log.Printf("warning: %s", diag)
	}

	rendered, err := result.HTML()
	if err != nil {
		log.Fatalf("Failed to serialize output: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", *output)
	} else {
		fmt.Println(rendered)
	}
}

// loadInput picks the record source: data file, inline form encoding, or a
// microdata-annotated HTML document. YAML handles JSON data files too.
func loadInput(dataPath, form, sourcePath string) (any, error) {
	switch {
	case dataPath != "":
		payload, err := os.ReadFile(dataPath)
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := yaml.Unmarshal(payload, &decoded); err != nil {
			return nil, fmt.Errorf("decode %s: %w", dataPath, err)
		}
		return decoded, nil
	case form != "":
		return databind.ParseForm(form), nil
	case sourcePath != "":
		file, err := os.Open(sourcePath)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return dom.ParseDocument(file, sourcePath)
	default:
		return nil, fmt.Errorf("one of -data, -form or -source is required")
	}
}
