package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/tally/internal/calc"
	"github.com/artpar/tally/internal/calculator"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	resultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// REPL is the interactive read-eval-print loop around a Calculator.
type REPL struct {
	calc       *calculator.Calculator
	in         io.Reader
	out        io.Writer
	lastResult string
	hasResult  bool
}

// NewREPL creates a REPL reading commands from in and writing to out.
func NewREPL(c *calculator.Calculator, in io.Reader, out io.Writer) *REPL {
	return &REPL{calc: c, in: in, out: out}
}

// Run processes commands until exit or EOF.
func (r *REPL) Run() {
	fmt.Fprintln(r.out, promptStyle.Render("=== tally ==="))
	fmt.Fprintln(r.out, successStyle.Render("Type 'help' for available commands"))

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, promptStyle.Render("tally> "), " ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			fmt.Fprintln(r.out, infoStyle.Render("Goodbye!"))
			return
		}
		if !r.Process(scanner.Text()) {
			return
		}
	}
}

// Process handles a single command line. It returns false when the
// REPL should stop.
func (r *REPL) Process(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if _, err := calc.Resolve(cmd); err == nil {
		r.handleCompute(cmd, args)
		return true
	}

	switch cmd {
	case "exit", "quit":
		fmt.Fprintln(r.out, infoStyle.Render("Goodbye!"))
		return false
	case "help":
		r.printHelp()
	case "history":
		r.handleHistory()
	case "clear":
		r.calc.Clear()
		fmt.Fprintln(r.out, successStyle.Render("History cleared"))
	case "undo":
		r.handleUndo()
	case "redo":
		r.handleRedo()
	case "save":
		r.handleSave()
	case "load":
		r.handleLoad()
	case "copy":
		r.handleCopy()
	default:
		r.printError(fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", cmd))
	}
	return true
}

func (r *REPL) handleCompute(op string, args []string) {
	if len(args) != 2 {
		r.printError("Calculation requires exactly two operands")
		return
	}

	a, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		r.printError(fmt.Sprintf("Invalid number: %s", args[0]))
		return
	}
	b, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		r.printError(fmt.Sprintf("Invalid number: %s", args[1]))
		return
	}

	result, err := r.calc.Compute(op, a, b)
	if err != nil {
		r.printError(err.Error())
		return
	}

	r.lastResult = strconv.FormatFloat(result, 'g', -1, 64)
	r.hasResult = true
	fmt.Fprintln(r.out, resultStyle.Render(fmt.Sprintf("Result: %v", result)))
}

func (r *REPL) handleHistory() {
	entries := r.calc.History()
	if len(entries) == 0 {
		fmt.Fprintln(r.out, infoStyle.Render("No calculation history"))
		return
	}

	fmt.Fprintln(r.out, promptStyle.Render("=== Calculation History ==="))
	for i, c := range entries {
		fmt.Fprintf(r.out, "%d. %s %s\n",
			i+1,
			c.String(),
			dimStyle.Render("("+c.Timestamp.Format("2006-01-02 15:04:05")+")"),
		)
	}
}

func (r *REPL) handleUndo() {
	if _, err := r.calc.Undo(); err != nil {
		r.printError("Nothing to undo")
		return
	}
	fmt.Fprintln(r.out, successStyle.Render("Undo successful"))
}

func (r *REPL) handleRedo() {
	if _, err := r.calc.Redo(); err != nil {
		r.printError("Nothing to redo")
		return
	}
	fmt.Fprintln(r.out, successStyle.Render("Redo successful"))
}

func (r *REPL) handleSave() {
	path, err := r.calc.Save()
	if err != nil {
		r.printError(fmt.Sprintf("Failed to save history: %v", err))
		return
	}
	fmt.Fprintln(r.out, successStyle.Render("History saved to "+path))
}

func (r *REPL) handleLoad() {
	n, err := r.calc.Load()
	if err != nil {
		r.printError(fmt.Sprintf("Failed to load history: %v", err))
		return
	}
	fmt.Fprintln(r.out, successStyle.Render(fmt.Sprintf("Loaded %d calculations from history", n)))
}

func (r *REPL) handleCopy() {
	if !r.hasResult {
		fmt.Fprintln(r.out, infoStyle.Render("No result to copy yet"))
		return
	}
	if err := clipboard.WriteAll(r.lastResult); err != nil {
		r.printError(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		return
	}
	fmt.Fprintln(r.out, successStyle.Render("Copied "+r.lastResult+" to clipboard"))
}

func (r *REPL) printError(msg string) {
	fmt.Fprintln(r.out, errorStyle.Render("Error: "+msg))
}

func (r *REPL) printHelp() {
	var b strings.Builder

	b.WriteString(promptStyle.Render("=== Tally Help ===") + "\n\n")

	b.WriteString(infoStyle.Render("Operations:") + "\n")
	for _, k := range calc.Kinds() {
		b.WriteString("  " + successStyle.Render(string(k)) + " A B\n")
	}

	b.WriteString("\n" + infoStyle.Render("History commands:") + "\n")
	b.WriteString("  " + successStyle.Render("history") + " - display calculation history\n")
	b.WriteString("  " + successStyle.Render("clear") + "   - clear calculation history\n")
	b.WriteString("  " + successStyle.Render("undo") + "    - undo the last calculation\n")
	b.WriteString("  " + successStyle.Render("redo") + "    - redo the last undone calculation\n")

	b.WriteString("\n" + infoStyle.Render("File commands:") + "\n")
	b.WriteString("  " + successStyle.Render("save") + " - save history to file\n")
	b.WriteString("  " + successStyle.Render("load") + " - load history from file\n")

	b.WriteString("\n" + infoStyle.Render("Other commands:") + "\n")
	b.WriteString("  " + successStyle.Render("copy") + " - copy the last result to the clipboard\n")
	b.WriteString("  " + successStyle.Render("help") + " - display this help\n")
	b.WriteString("  " + successStyle.Render("exit") + " - exit\n")

	b.WriteString("\n" + dimStyle.Render("Example: add 5 3") + "\n")

	fmt.Fprint(r.out, b.String())
}
