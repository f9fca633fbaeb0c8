package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"go.toylang.dev/pkg"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	outputFlag = cli.StringFlag{
		Name:  "output, o",
		Usage: "Write the output to `FILE` instead of stdout",
	}
	emitFlag = cli.StringFlag{
		Name:  "emit",
		Usage: "Output stage: tokens, ast or ir",
		Value: "ir",
	}
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "With --emit ast, dump the full node structures",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 1,
	}
	recoveryFlag = cli.StringFlag{
		Name:  "recovery",
		Usage: "What to do after a failed unit: skip, skip-parse or abort",
	}
	externFlag = cli.BoolFlag{
		Name:  "extern",
		Usage: "Reserve the extern keyword for body-less declarations",
	}
	noCheckArityFlag = cli.BoolFlag{
		Name:  "no-check-arity",
		Usage: "Leave argument count mismatches to the verifier",
	}
	strictParamsFlag = cli.BoolFlag{
		Name:  "strict-params",
		Usage: "Reject parameter lists with stray or missing commas",
	}
	noVerifyFlag = cli.BoolFlag{
		Name:  "no-verify",
		Usage: "Skip verification of generated functions",
	}
	noOptimizeFlag = cli.BoolFlag{
		Name:  "no-optimize",
		Usage: "Skip the reassociation pass",
	}

	flags = []cli.Flag{
		configFileFlag,
		outputFlag,
		emitFlag,
		dumpFlag,
		verbosityFlag,
		recoveryFlag,
		externFlag,
		noCheckArityFlag,
		strictParamsFlag,
		noVerifyFlag,
		noOptimizeFlag,
	}

	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		Description: `The dumpconfig command shows the effective configuration values.`,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "toyc"
	app.Usage = "compile a toy source file to LLVM IR"
	app.ArgsUsage = "<source file>"
	app.Flags = flags
	app.Commands = []cli.Command{dumpConfigCommand}
	app.Before = setupLogging
	app.Action = compile

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(ctx *cli.Context) error {
	usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	output := io.Writer(os.Stderr)
	if usecolor {
		output = colorable.NewColorableStderr()
	}

	glogger := log.NewGlogHandler(log.StreamHandler(output, log.TerminalFormat(usecolor)))
	glogger.Verbosity(log.Lvl(ctx.GlobalInt(verbosityFlag.Name)))
	log.Root().SetHandler(glogger)

	return nil
}

func makeConfig(ctx *cli.Context) (toy.Config, error) {
	cfg := toy.DefaultConfig

	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := toy.LoadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if ctx.GlobalIsSet(recoveryFlag.Name) {
		cfg.Recovery = toy.RecoveryPolicy(ctx.GlobalString(recoveryFlag.Name))
	}
	if ctx.GlobalIsSet(externFlag.Name) {
		cfg.Extern = true
	}
	if ctx.GlobalIsSet(noCheckArityFlag.Name) {
		cfg.CheckArity = false
	}
	if ctx.GlobalIsSet(strictParamsFlag.Name) {
		cfg.StrictParams = true
	}
	if ctx.GlobalIsSet(noVerifyFlag.Name) {
		cfg.Verify = false
	}
	if ctx.GlobalIsSet(noOptimizeFlag.Name) {
		cfg.Optimize = false
	}

	return cfg, cfg.Validate()
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}

	out, err := toy.EncodeConfig(&cfg)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(out)
	return err
}

func compile(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: toyc [flags] <source file>", 1)
	}

	cfg, err := makeConfig(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	filename := ctx.Args().First()
	lexer, err := toy.NewLexer(filename)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	lexer.Extern = cfg.Extern

	var out bytes.Buffer
	c := toy.NewCompiler(cfg)

	res := &toy.Result{}
	switch stage := ctx.String(emitFlag.Name); stage {
	case "tokens":
		printTokens(&out, lexer.Tokenize())
	case "ast":
		if res, err = c.Parse(lexer); err != nil {
			return cli.NewExitError(err, 1)
		}
		printUnits(&out, res.Units, ctx.Bool(dumpFlag.Name))
	case "ir":
		if res, err = c.Run(lexer); err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprint(&out, res.Module)
	default:
		return cli.NewExitError(fmt.Sprintf("unknown emit stage: %s", stage), 1)
	}

	if err := writeOutput(ctx.String(outputFlag.Name), out.Bytes()); err != nil {
		return cli.NewExitError(err, 1)
	}

	if res.Failed() {
		printErrors(res.Errors)
		return cli.NewExitError(fmt.Sprintf("%d units failed", len(res.Errors)), 2)
	}

	return nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrap(err, "write output")
	}

	return errors.Wrap(f.Close(), "close output")
}

func printTokens(w io.Writer, tokens []toy.Token) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Position", "Kind", "Value"})
	for _, tok := range tokens {
		value := tok.Value
		if tok.Typ == toy.TokenNumber {
			value = strconv.FormatInt(tok.Num, 10)
		}

		table.Append([]string{tok.Loc.String(), tok.Typ.String(), value})
	}

	table.Render()
}

func printUnits(w io.Writer, units []toy.Unit, dump bool) {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
	for _, u := range units {
		if dump {
			cfg.Fdump(w, u)
			continue
		}

		fmt.Fprintln(w, toy.Format(u))
	}
}

func printErrors(errs []toy.CompileError) {
	loc := color.New(color.FgRed)
	msg := color.New(color.Bold)

	for _, err := range errs {
		loc.Fprintf(os.Stderr, "%s: ", err.Location())

		switch e := err.(type) {
		case *toy.ParseError:
			msg.Fprintln(os.Stderr, "syntax error:", e.Msg)
		case *toy.UndefinedError:
			msg.Fprintln(os.Stderr, "undefined value:", e.Name)
		case *toy.UndefinedFuncError:
			msg.Fprintln(os.Stderr, "undefined function:", e.Name)
		case *toy.UnknownOperatorError:
			msg.Fprintln(os.Stderr, "undefined operation:", e.Op)
		case *toy.RedefinitionError:
			msg.Fprintln(os.Stderr, "redefinition of", e.Name)
		case *toy.SignatureMismatchError:
			msg.Fprintf(os.Stderr, "%s redeclared with %d parameters, previously %d\n", e.Name, e.Got, e.Want)
		case *toy.ArityError:
			msg.Fprintf(os.Stderr, "%s expects %d arguments, got %d\n", e.Name, e.Want, e.Got)
		case *toy.VerifyError:
			msg.Fprintf(os.Stderr, "invalid function %s: %s\n", e.Func, e.Msg)
		default:
			msg.Fprintln(os.Stderr, err)
		}
	}
}
