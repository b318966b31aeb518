// Command gameinfo decodes a game file and prints the world as YAML.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/tatianab/scottfree/internal/config"
	"github.com/tatianab/scottfree/internal/loader"
)

func main() {
	headerOnly := flag.Bool("header", false, "print only the title, dialect and header")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: gameinfo [-header] <game file>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	closeLog, err := cfg.SetupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	opts, err := cfg.LoaderOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}
	w, err := loader.LoadFile(flag.Arg(0), opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
	if err := loader.Validate(w); err != nil {
		log.Warn(err)
	}

	var out interface{} = w
	if *headerOnly {
		out = map[string]interface{}{
			"title":   w.Title,
			"dialect": w.Dialect,
			"header":  w.Header,
		}
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding world: %v\n", err)
		os.Exit(1)
	}
	enc.Close()
}
