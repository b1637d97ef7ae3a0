// Command schemagen renders JSON Schema documents from descriptor files.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	sg "github.com/reoring/schemagen"
	"github.com/reoring/schemagen/descfile"
	"github.com/reoring/schemagen/i18n"
	js "github.com/reoring/schemagen/jsonschema"
)

type cli struct {
	verbose bool
	logger  *zap.Logger

	root     string
	dialect  string
	target   string
	contract string
	inline   bool
	output   string
	asYAML   bool
	lang     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "schemagen",
		Short:         "Synthesize JSON Schema documents from type descriptors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !c.verbose {
				return nil
			}
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	generateCmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "Generate the root schema for a type declared in a descriptor file",
		Long: `Generate loads a YAML descriptor file and prints the root schema of one
of its types, with every referenced definition embedded.

The root type defaults to the file's "root" key, then to its first type.
The dialect defaults to the file's "dialect" key, then to 2020-12.`,
		Args: cobra.ExactArgs(1),
		RunE: c.runGenerate,
	}
	generateCmd.Flags().StringVarP(&c.root, "root", "r", "", "Root type name")
	generateCmd.Flags().StringVarP(&c.dialect, "dialect", "d", "", "Target dialect: "+strings.Join(sg.Dialects(), ", "))
	generateCmd.Flags().StringVar(&c.contract, "contract", "deserialize", "Contract: serialize or deserialize")
	generateCmd.Flags().BoolVar(&c.inline, "inline", false, "Inline every subschema that is not recursive")
	generateCmd.Flags().StringVarP(&c.output, "output", "o", "", "Write to this file instead of stdout")
	generateCmd.Flags().BoolVar(&c.asYAML, "yaml", false, "Emit YAML instead of JSON")

	transformCmd := &cobra.Command{
		Use:   "transform FILE",
		Short: "Rewrite an existing JSON Schema document for another dialect",
		Long: `Transform reads a JSON Schema document ("-" for stdin) and applies the
transform pipeline of the chosen dialect to it. Definitions stored at the
dialect's definitions path are transformed too.`,
		Args: cobra.ExactArgs(1),
		RunE: c.runTransform,
	}
	transformCmd.Flags().StringVarP(&c.target, "dialect", "d", "draft-07", "Target dialect: "+strings.Join(sg.Dialects(), ", "))
	transformCmd.Flags().StringVarP(&c.output, "output", "o", "", "Write to this file instead of stdout")
	transformCmd.Flags().BoolVar(&c.asYAML, "yaml", false, "Emit YAML instead of JSON")

	checkCmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate every type declared in a descriptor file",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runCheck,
	}
	checkCmd.Flags().StringVar(&c.lang, "lang", "en", "Issue message language: "+strings.Join(i18n.Languages(), ", "))

	dialectsCmd := &cobra.Command{
		Use:   "dialects",
		Short: "List the known dialect presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range sg.Dialects() {
				s, _ := sg.Dialect(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s %s\n", name, s.DefinitionsPath, s.MetaSchema)
			}
			return nil
		},
	}

	rootCmd.AddCommand(generateCmd, transformCmd, checkCmd, dialectsCmd)
	return rootCmd
}

func (c *cli) runGenerate(cmd *cobra.Command, args []string) error {
	doc, err := descfile.LoadFile(args[0])
	if err != nil {
		return err
	}
	settings, err := doc.Settings(sg.Draft202012())
	if err != nil {
		return err
	}
	if c.dialect != "" {
		if settings, err = sg.Dialect(c.dialect); err != nil {
			return err
		}
	}
	contract, err := sg.ParseContract(c.contract)
	if err != nil {
		return err
	}
	settings = settings.WithContract(contract).WithInlineSubschemas(c.inline)

	d, err := doc.RootDescriptor(c.root)
	if err != nil {
		return err
	}
	c.logger.Debug("generating schema",
		zap.String("file", args[0]),
		zap.String("root", d.SchemaName()),
		zap.String("definitions", settings.DefinitionsPath),
		zap.Stringer("contract", contract))

	schema, err := sg.RootSchemaFor(d, settings, sg.WithLogger(c.logger))
	if err != nil {
		return err
	}
	return c.write(cmd, schema)
}

func (c *cli) runTransform(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	schema, err := js.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	settings, err := sg.Dialect(c.target)
	if err != nil {
		return err
	}
	c.logger.Debug("transforming schema",
		zap.String("file", args[0]),
		zap.Int("transforms", len(settings.Transforms)),
		zap.String("definitions", settings.DefinitionsPath))
	if n := sg.ApplyTransforms(schema, settings); n > 0 {
		c.logger.Debug("transformed definitions", zap.Int("count", n))
	}
	return c.write(cmd, schema)
}

func (c *cli) runCheck(cmd *cobra.Command, args []string) error {
	doc, err := descfile.LoadFile(args[0])
	if err != nil {
		return err
	}
	i18n.SetLanguage(c.lang)
	var failed int
	for _, name := range doc.Types {
		d, _ := doc.Lookup(name)
		err := sg.Validate(d)
		if err == nil {
			c.logger.Debug("type ok", zap.String("type", name))
			continue
		}
		failed++
		iss, ok := sg.AsIssues(err)
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", name, err)
			continue
		}
		for _, it := range iss {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", name, i18n.T(it.Code, map[string]string{"path": it.Path}), it.Message)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d types failed validation", failed, len(doc.Types))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d types ok\n", len(doc.Types))
	return nil
}

func (c *cli) write(cmd *cobra.Command, schema *js.Schema) error {
	var (
		out []byte
		err error
	)
	if c.asYAML {
		out, err = toYAML(schema)
	} else {
		out, err = js.MarshalIndent(schema, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return err
	}
	if c.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.output), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	c.logger.Debug("writing output", zap.String("path", c.output), zap.Int("bytes", len(out)))
	return os.WriteFile(c.output, out, 0o644)
}

// toYAML re-encodes the JSON rendering of schema as block-style YAML,
// keeping key order.
func toYAML(schema *js.Schema) ([]byte, error) {
	raw, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

func blockStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style = 0
	case yaml.ScalarNode:
		if n.Style == yaml.DoubleQuotedStyle {
			n.Style = 0
		}
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}
