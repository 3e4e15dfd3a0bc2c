// Package ciout writes results of operations as GitHub Actions step outputs
// and workflow annotations.
package ciout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// OutputFileEnv is the environment variable that contains the path of the
// file step outputs are appended to.
const OutputFileEnv = "GITHUB_OUTPUT"

// FailureMessageKey is the output key of the message describing why a step
// failed.
const FailureMessageKey = "failure_message"

// Writer writes results to stdout and, if configured, to the step output
// file.
type Writer struct {
	stdout     io.Writer
	outputFile string
	filter     *Filter
}

type Option func(*Writer)

// WithOutputFile sets the path of the step output file.
func WithOutputFile(path string) Option {
	return func(w *Writer) {
		w.outputFile = path
	}
}

// WithFilter applies filter to results before they are written to stdout.
func WithFilter(f *Filter) Option {
	return func(w *Writer) {
		w.filter = f
	}
}

// NewWriter returns a Writer that writes to stdout.
// The step output file is read from the GITHUB_OUTPUT environment variable.
func NewWriter(stdout io.Writer, opts ...Option) *Writer {
	w := Writer{
		stdout:     stdout,
		outputFile: os.Getenv(OutputFileEnv),
	}

	for _, o := range opts {
		o(&w)
	}

	return &w
}

// WriteResult writes v as indented JSON to stdout, or the results of the
// filter if one is set.
// The top-level fields of v are additionally written as step outputs.
func (w *Writer) WriteResult(ctx context.Context, v any) error {
	if err := w.writeStdout(ctx, v); err != nil {
		return err
	}

	if w.outputFile == "" {
		return nil
	}

	outputs, err := toOutputs(v)
	if err != nil {
		return err
	}

	return w.SetOutputs(outputs)
}

func (w *Writer) writeStdout(ctx context.Context, v any) error {
	if w.filter == nil {
		return writeJSON(w.stdout, v)
	}

	results, err := w.filter.Apply(ctx, v)
	if err != nil {
		return err
	}

	for _, r := range results {
		if s, ok := r.(string); ok {
			if _, err := fmt.Fprintln(w.stdout, s); err != nil {
				return err
			}
			continue
		}

		if err := writeJSON(w.stdout, r); err != nil {
			return err
		}
	}

	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// toOutputs converts the top-level fields of the JSON representation of v to
// output values. Strings are used verbatim, other values as compact JSON.
func toOutputs(v any) (map[string]string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return map[string]string{"result": string(b)}, nil
	}

	result := make(map[string]string, len(fields))
	for k, raw := range fields {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			result[k] = s
			continue
		}

		result[k] = string(raw)
	}

	return result, nil
}

// SetOutputs appends outputs to the step output file.
// It is a no-op if no output file is configured.
func (w *Writer) SetOutputs(outputs map[string]string) error {
	if w.outputFile == "" {
		return nil
	}

	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		if err := formatOutput(&sb, k, outputs[k]); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(w.outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening output file failed: %w", err)
	}

	if _, err := f.WriteString(sb.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing output file failed: %w", err)
	}

	return f.Close()
}

// SetFailureMessage writes msg as failure_message output.
func (w *Writer) SetFailureMessage(msg string) error {
	return w.SetOutputs(map[string]string{FailureMessageKey: msg})
}

func formatOutput(sb *strings.Builder, key, val string) error {
	if !strings.ContainsAny(val, "\r\n") {
		sb.WriteString(key + "=" + val + "\n")
		return nil
	}

	delim, err := heredocDelimiter(val)
	if err != nil {
		return err
	}

	sb.WriteString(key + "<<" + delim + "\n")
	sb.WriteString(val)
	if !strings.HasSuffix(val, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(delim + "\n")

	return nil
}

func heredocDelimiter(val string) (string, error) {
	buf := make([]byte, 8)

	for i := 0; i < 8; i++ {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		delim := "ghadelimiter_" + hex.EncodeToString(buf)
		if !strings.Contains(val, delim) {
			return delim, nil
		}
	}

	return "", errors.New("could not generate a heredoc delimiter that is not part of the value")
}

// Annotation levels.
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// Annotate writes a workflow command that creates an annotation with msg.
func Annotate(out io.Writer, level, msg string) {
	fmt.Fprintf(out, "::%s::%s\n", level, escapeData(msg))
}

func Error(out io.Writer, msg string) {
	Annotate(out, LevelError, msg)
}

func Warning(out io.Writer, msg string) {
	Annotate(out, LevelWarning, msg)
}

func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}
