// Package cli implements the interactive console front end: a terminal
// walker over the same flow surface the HTTP API exposes.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/ports"
)

// Console drives one intake conversation over a terminal.
type Console struct {
	flow   ports.Flow
	in     *bufio.Scanner
	out    io.Writer
	render func(string) (string, error)
}

// NewConsole builds a Console. render turns markdown into styled terminal
// output; pass an identity function for plain text.
func NewConsole(flow ports.Flow, in io.Reader, out io.Writer, render func(string) (string, error)) *Console {
	if render == nil {
		render = func(s string) (string, error) { return s, nil }
	}
	return &Console{
		flow:   flow,
		in:     bufio.NewScanner(in),
		out:    out,
		render: render,
	}
}

// ErrQuit is returned when the user types an exit command.
var ErrQuit = errors.New("session aborted by user")

// Run walks one full intake: question loop, final summary, approval.
func (c *Console) Run(ctx context.Context, language string) error {
	start, err := c.flow.StartFlow(ctx, "", "", language)
	if err != nil {
		return err
	}

	question := start.Question
	for question != nil {
		c.printQuestion(question)

		raw, err := c.read(question)
		if err != nil {
			return err
		}

		step, err := c.flow.SubmitAnswer(ctx, start.SessionID, raw)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				c.printMarkdown("> " + verr.Reason + "\n")
				continue
			}
			return err
		}

		if step.Summary != nil {
			c.printSummary(step.Summary)
			return c.askApproval(ctx, start.SessionID)
		}
		question = step.Question
	}
	return nil
}

func (c *Console) printQuestion(q *domain.LocalizedQuestion) {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", q.Prompt)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
	}
	for _, line := range q.Details {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "> %s\n", line)
	}
	c.printMarkdown(b.String())
}

// read collects one raw answer. Display-only steps are acknowledged with a
// keypress; everything else takes a line of input.
func (c *Console) read(q *domain.LocalizedQuestion) (any, error) {
	switch q.Type {
	case domain.TypeRecommendation, domain.TypeRecommendationDisplay, domain.TypeCompletionMessage:
		fmt.Fprint(c.out, "(press Enter to continue) ")
		if _, err := c.readLine(); err != nil {
			return nil, err
		}
		return "ok", nil

	case domain.TypeMultipleChoice, domain.TypeMedicationCart:
		fmt.Fprint(c.out, "(comma-separated) > ")
		return c.readLine()

	default:
		fmt.Fprint(c.out, "> ")
		return c.readLine()
	}
}

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", ErrQuit
	}
	line := strings.TrimSpace(c.in.Text())
	if line == "exit" || line == "quit" {
		return "", ErrQuit
	}
	return line, nil
}

func (c *Console) printSummary(report *domain.Report) {
	var b strings.Builder
	b.WriteString("## Intake summary\n\n")
	if report.Age != "" {
		fmt.Fprintf(&b, "- Age: %s\n", report.Age)
	}
	if report.Gender != "" {
		fmt.Fprintf(&b, "- Gender: %s\n", report.Gender)
	}
	if report.Allergies != "" {
		fmt.Fprintf(&b, "- Allergies: %s\n", report.Allergies)
	}
	if report.Medications != "" {
		fmt.Fprintf(&b, "- Current medications: %s\n", report.Medications)
	}
	if len(report.Symptoms) > 0 {
		fmt.Fprintf(&b, "- Symptoms: %s\n", strings.Join(report.Symptoms, ", "))
	}
	for _, rec := range report.Recommendations {
		fmt.Fprintf(&b, "\n**%s**\n\n", heading(rec.Symptom))
		for _, line := range rec.Details {
			fmt.Fprintf(&b, "%s\n", line)
		}
	}
	if len(report.Candidates) > 0 {
		b.WriteString("\n**Suggested medicines**\n\n")
		for _, med := range report.Candidates {
			fmt.Fprintf(&b, "- %s (%s)\n", med.Name, med.Type)
		}
	}
	c.printMarkdown(b.String())
}

func (c *Console) askApproval(ctx context.Context, sessionID string) error {
	fmt.Fprint(c.out, "Approve and proceed to payment? (y/n) > ")
	line, err := c.readLine()
	if err != nil {
		return err
	}
	approved := strings.EqualFold(line, "y") || strings.EqualFold(line, "yes")

	result, err := c.flow.SetApproval(ctx, sessionID, approved)
	if err != nil {
		return err
	}
	c.printMarkdown(result.Message + "\n")
	return nil
}

func (c *Console) printMarkdown(markdown string) {
	out, err := c.render(markdown)
	if err != nil {
		out = markdown
	}
	fmt.Fprint(c.out, out)
}

func heading(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
