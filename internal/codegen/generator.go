package codegen

import (
	"fmt"
	"go/token"
	"io"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/s4ke/moar/pkg/moar"
)

// Config holds the configuration for code generation.
type Config struct {
	Name             string        // Prefix for generated identifiers (e.g. "Email" generates "EmailMatchString")
	Package          string        // Package clause of the generated file
	OutputFile       string        // Path of the generated file
	Pattern          *moar.Pattern // Automaton to embed
	GenerateTestFile bool          // Also write <output>_test.go with expectations and a benchmark
	TestFileInputs   []string      // Inputs for the generated test file
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New("name cannot be empty")
	}
	if !token.IsIdentifier(c.Name) || !isASCIILetter(c.Name[0]) {
		return errors.Errorf("name %q is not an identifier starting with a letter", c.Name)
	}
	if c.Package == "" {
		return errors.New("package cannot be empty")
	}
	if !token.IsIdentifier(c.Package) {
		return errors.Errorf("package %q is not an identifier", c.Package)
	}
	if c.Pattern == nil {
		return errors.New("pattern cannot be nil")
	}
	if _, err := fieldNames(c.Pattern.Variables()); err != nil {
		return err
	}
	return nil
}

// Generator renders the source for one pattern.
type Generator struct {
	config    Config
	name      string // exported prefix
	local     string // unexported prefix
	fields    []string
	automaton string
}

// New validates cfg and serializes its pattern.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	data, err := cfg.Pattern.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize automaton")
	}
	fields, _ := fieldNames(cfg.Pattern.Variables())
	return &Generator{
		config:    cfg,
		name:      UpperFirst(cfg.Name),
		local:     LowerFirst(cfg.Name),
		fields:    fields,
		automaton: string(data),
	}, nil
}

// Generate writes the generated file, and the test file when requested.
func Generate(cfg Config) error {
	if cfg.OutputFile == "" {
		return errors.New("invalid config: output file cannot be empty")
	}
	g, err := New(cfg)
	if err != nil {
		return err
	}
	if err := g.file().Save(cfg.OutputFile); err != nil {
		return errors.Wrap(err, "failed to save file")
	}
	glog.V(1).Infof("codegen: wrote %s (%d states, %d variables)",
		cfg.OutputFile, cfg.Pattern.Graph().NumStates(), len(g.fields))

	if cfg.GenerateTestFile {
		path := TestFileName(cfg.OutputFile)
		if err := g.testFile().Save(path); err != nil {
			return errors.Wrap(err, "failed to save test file")
		}
		glog.V(1).Infof("codegen: wrote %s (%d inputs)", path, len(g.testInputs()))
	}
	return nil
}

// TestFileName derives the test file path from the output path.
func TestFileName(output string) string {
	return strings.TrimSuffix(output, ".go") + "_test.go"
}

// Render writes the generated source to w.
func (g *Generator) Render(w io.Writer) error {
	return g.file().Render(w)
}

// RenderTest writes the generated test source to w.
func (g *Generator) RenderTest(w io.Writer) error {
	return g.testFile().Render(w)
}

func (g *Generator) automatonID() string { return g.local + AutomatonSuffix }
func (g *Generator) patternID() string   { return g.local + PatternSuffix }
func (g *Generator) resultID() string    { return g.name + ResultSuffix }
func (g *Generator) fn(suffix string) string {
	return g.name + suffix
}

func (g *Generator) file() *jen.File {
	f := jen.NewFile(g.config.Package)
	f.HeaderComment("Code generated by moar. DO NOT EDIT.")
	if re := g.config.Pattern.Regex(); re != "" {
		f.Comment(fmt.Sprintf("Pattern: %q", re))
		f.Line()
	}

	f.Comment(fmt.Sprintf("%s is the serialized automaton behind the %s helpers.", g.automatonID(), g.name))
	f.Const().Id(g.automatonID()).Op("=").Lit(g.automaton)
	f.Line()
	f.Var().Id(g.patternID()).Op("=").Qual(moarPath, "MustLoad").Call(
		jen.Index().Byte().Call(jen.Id(g.automatonID())),
	)
	f.Line()

	g.stringFunc(f, "MatchString", "reports whether input contains a match.",
		jen.Bool(), "MatchString")
	g.stringFunc(f, "FindString", "returns the leftmost match in input, or \"\".",
		jen.String(), "FindString")

	f.Comment(fmt.Sprintf("%s replaces the leftmost match in input with replacement.", g.fn("ReplaceFirst")))
	f.Func().Id(g.fn("ReplaceFirst")).
		Params(jen.List(jen.Id(InputName), jen.Id(ReplacementName)).String()).
		String().
		Block(jen.Return(jen.Id(g.patternID()).Dot("ReplaceFirst").Call(jen.Id(InputName), jen.Id(ReplacementName))))
	f.Line()

	g.result(f)
	return f
}

// stringFunc emits a one-line wrapper around a Pattern method taking the input.
func (g *Generator) stringFunc(f *jen.File, suffix, doc string, ret jen.Code, method string) {
	f.Comment(g.fn(suffix) + " " + doc)
	f.Func().Id(g.fn(suffix)).
		Params(jen.Id(InputName).String()).
		Add(ret).
		Block(jen.Return(jen.Id(g.patternID()).Dot(method).Call(jen.Id(InputName))))
	f.Line()
}

func (g *Generator) result(f *jen.File) {
	vars := g.config.Pattern.Variables()

	fields := []jen.Code{
		jen.Id(MatchField).String().Comment("whole match"),
		jen.Id(StartField).Int().Comment("byte offset of the match"),
		jen.Id(EndField).Int(),
	}
	for i, v := range vars {
		fields = append(fields, jen.Id(g.fields[i]).String().Comment(fmt.Sprintf("variable %s", v)))
	}
	f.Comment(fmt.Sprintf("%s holds the leftmost match and its variables.", g.resultID()))
	f.Type().Id(g.resultID()).Struct(fields...)
	f.Line()

	values := jen.Dict{
		jen.Id(MatchField): jen.Id(MatchName).Dot("Text"),
		jen.Id(StartField): jen.Id(MatchName).Dot("Start"),
		jen.Id(EndField):   jen.Id(MatchName).Dot("End"),
	}
	for i, v := range vars {
		values[jen.Id(g.fields[i])] = jen.Id(MatchName).Dot("Get").Call(jen.Lit(v))
	}

	fn := g.fn("FindStringResult")
	f.Comment(fmt.Sprintf("%s returns the leftmost match in input with its variables.", fn))
	f.Func().Id(fn).
		Params(jen.Id(InputName).String()).
		Params(jen.Op("*").Id(g.resultID()), jen.Bool()).
		Block(
			jen.Id(MatchName).Op(":=").Id(g.patternID()).Dot("FindStringSubmatch").Call(jen.Id(InputName)),
			jen.If(jen.Id(MatchName).Op("==").Nil()).Block(jen.Return(jen.Nil(), jen.False())),
			jen.Return(jen.Op("&").Id(g.resultID()).Values(values), jen.True()),
		)
}

func (g *Generator) testInputs() []string {
	if len(g.config.TestFileInputs) == 0 {
		return []string{"example"}
	}
	return g.config.TestFileInputs
}

// testFile pins the current behavior of the pattern on each input.
func (g *Generator) testFile() *jen.File {
	f := jen.NewFile(g.config.Package)
	f.HeaderComment("Code generated by moar. DO NOT EDIT.")

	inputs := g.testInputs()
	rows := make([]jen.Code, 0, len(inputs))
	lits := make([]jen.Code, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, jen.Values(
			jen.Lit(in),
			jen.Lit(g.config.Pattern.FindString(in)),
			jen.Lit(g.config.Pattern.MatchString(in)),
		))
		lits = append(lits, jen.Lit(in))
	}

	find, match := g.fn("FindString"), g.fn("MatchString")
	tt := func(field string) *jen.Statement { return jen.Id("tt").Dot(field) }

	f.Func().Id("Test"+find).Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(
		jen.Id("tests").Op(":=").Index().Struct(
			jen.Id("input").String(),
			jen.Id("want").String(),
			jen.Id("matched").Bool(),
		).Values(rows...),
		jen.Line(),
		jen.For(jen.List(jen.Id("_"), jen.Id("tt")).Op(":=").Range().Id("tests")).Block(
			jen.If(
				jen.Id("got").Op(":=").Id(find).Call(tt("input")),
				jen.Id("got").Op("!=").Add(tt("want")),
			).Block(
				jen.Id("t").Dot("Errorf").Call(jen.Lit(find+"(%q) = %q, want %q"), tt("input"), jen.Id("got"), tt("want")),
			),
			jen.If(
				jen.Id("got").Op(":=").Id(match).Call(tt("input")),
				jen.Id("got").Op("!=").Add(tt("matched")),
			).Block(
				jen.Id("t").Dot("Errorf").Call(jen.Lit(match+"(%q) = %v, want %v"), tt("input"), jen.Id("got"), tt("matched")),
			),
		),
	)
	f.Line()

	f.Func().Id("Benchmark"+match).Params(jen.Id("b").Op("*").Qual("testing", "B")).Block(
		jen.Id("inputs").Op(":=").Index().String().Values(lits...),
		jen.Id("b").Dot("ResetTimer").Call(),
		jen.For(jen.Id("i").Op(":=").Lit(0), jen.Id("i").Op("<").Id("b").Dot("N"), jen.Id("i").Op("++")).Block(
			jen.For(jen.List(jen.Id("_"), jen.Id("in")).Op(":=").Range().Id("inputs")).Block(
				jen.Id(match).Call(jen.Id("in")),
			),
		),
	)
	return f
}
