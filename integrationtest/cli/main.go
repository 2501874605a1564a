// Package main provides an interactive CLI for exercising extraction and
// validation against hand-typed provider payloads.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/rickchristie/extract"
	"github.com/rickchristie/extract/validate"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// Person is the demo target type payloads are parsed into.
type Person struct {
	extract.Meta
	Name string `json:"name" description:"The person's full name"`
	Age  int    `json:"age"`
}

func init() {
	validate.Field[Person]("age", func(_ context.Context, value any) error {
		age, _ := value.(int)
		if age < 0 || age > 150 {
			return fmt.Errorf("age %d is out of range", age)
		}
		return nil
	})
}

var modes = []extract.Mode{
	extract.ModeToolCall,
	extract.ModeFunctionCall,
	extract.ModeJSON,
	extract.ModeMarkdownJSON,
	extract.ModeYAML,
}

func main() {
	if err := run(); err != nil && !errors.Is(err, readline.ErrInterrupt) {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

func run() error {
	rl, err := readline.New(colorBold + "mode> " + colorReset)
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Printf("%sInteractive payload tester%s\n", colorBold, colorReset)
	fmt.Printf("%sTarget type: Person{name string, age int}%s\n\n", colorDim, colorReset)

	for {
		fmt.Println("Modes:")
		for i, m := range modes {
			fmt.Printf("  %s%d%s. %s\n", colorCyan, i+1, colorReset, m)
		}
		fmt.Printf("  %sq%s. quit\n", colorCyan, colorReset)

		rl.SetPrompt(colorBold + "mode> " + colorReset)
		choice, err := rl.Readline()
		if err != nil {
			return err
		}
		choice = strings.TrimSpace(choice)
		if choice == "q" || choice == "quit" {
			return nil
		}

		var mode extract.Mode
		if len(choice) == 1 && choice[0] >= '1' && int(choice[0]-'0') <= len(modes) {
			mode = modes[choice[0]-'1']
		} else {
			fmt.Printf("%sUnknown choice %q%s\n\n", colorYellow, choice, colorReset)
			continue
		}

		payload, err := readPayload(rl)
		if err != nil {
			return err
		}

		resp := responseFor(mode, payload)
		person, failures, err := extract.ParseAndValidate[Person](
			context.Background(), resp, mode, nil,
		)
		if err != nil {
			fmt.Printf("%sparse failed: %v%s\n\n", colorRed, err, colorReset)
			continue
		}

		fmt.Printf("%sparsed:%s name=%q age=%d\n", colorGreen, colorReset, person.Name, person.Age)
		if len(failures) == 0 {
			fmt.Printf("%svalid: no validator failures%s\n\n", colorGreen, colorReset)
			continue
		}
		for _, f := range failures {
			fmt.Printf("%sfailure:%s %s\n", colorYellow, colorReset, f.Error())
		}
		fmt.Println()
	}
}

// readPayload reads lines until a lone "." terminator.
func readPayload(rl *readline.Instance) (string, error) {
	fmt.Printf("%sPaste the payload, end with a single '.' line:%s\n", colorDim, colorReset)
	rl.SetPrompt("")

	var sb strings.Builder
	for {
		line, err := rl.Readline()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) == "." {
			return sb.String(), nil
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// responseFor wraps the payload in the response shape the mode reads.
func responseFor(mode extract.Mode, payload string) *extract.Response {
	switch mode {
	case extract.ModeToolCall:
		return extract.ToolCallResponse("Person", payload)
	case extract.ModeFunctionCall:
		resp := extract.ToolCallResponse("Person", payload)
		call := resp.Choices[0].ToolCalls[0]
		resp.Choices[0].ToolCalls = nil
		resp.Choices[0].FuncCall = call.FunctionCall
		return resp
	default:
		return extract.TextResponse(payload)
	}
}
