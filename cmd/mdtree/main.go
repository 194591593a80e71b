// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// mdtree parses a Markdown file and prints its tree, HTML, or normalized Markdown.
package main

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"zombiezen.com/go/mdtree"
	"zombiezen.com/go/mdtree/format"
)

var version = "0.1.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mdtree:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	log := logrus.New()
	var configFile string
	var cfg *Config

	cmd := &cobra.Command{
		Use:   "mdtree [flags] FILE",
		Short: "Parse Markdown into a tree",
		Long: `Parses a Markdown file and prints the result.

FILE may be "-" to read from standard input.
The output is the document tree by default,
or HTML or normalized Markdown with --format.

Settings may also come from an mdtree.yaml config file
or from MDTREE_* environment variables (e.g. MDTREE_FORMAT=html).`,
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to config `file` (default: search for mdtree.yaml)")
	flags.StringP("format", "f", formatTree, "output `format`: tree, html, or markdown")
	flags.Int("max-nesting", mdtree.DefaultMaxNesting, "maximum `depth` of nested block quotes and list items")
	flags.Bool("ignore-raw", false, "omit raw HTML from html output")
	flags.String("soft-break", mdtree.SoftBreakPreserve.String(), "line breaks in html paragraphs: preserve, space, or harden")
	flags.String("log-level", "warn", "log messages at or above `level`: debug, info, warn, error")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		log.SetOutput(cmd.ErrOrStderr())
		var err error
		cfg, err = loadConfig(v, flags, configFile)
		if err != nil {
			return err
		}
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		if f := v.ConfigFileUsed(); f != "" {
			log.Debugf("Using config file %s", f)
		}
		return nil
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		source, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		lines := mdtree.Preprocess(string(source))
		doc := cfg.parseOptions().ParseLines(lines)
		log.WithFields(logrus.Fields{
			"bytes":  len(source),
			"lines":  len(lines),
			"blocks": len(doc.Blocks()),
		}).Debugf("Parsed %s", args[0])
		return writeOutput(cmd.OutOrStdout(), cfg, doc)
	}
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	var source []byte
	var err error
	if path == "-" {
		source, err = io.ReadAll(stdin)
	} else {
		source, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(source) {
		return nil, fmt.Errorf("read %s: not valid UTF-8", path)
	}
	return source, nil
}

func writeOutput(w io.Writer, cfg *Config, doc *mdtree.Document) error {
	switch cfg.Format {
	case formatHTML:
		return cfg.htmlRenderer().Render(w, doc)
	case formatMarkdown:
		return format.Format(w, doc)
	default:
		return mdtree.Dump(w, doc)
	}
}
