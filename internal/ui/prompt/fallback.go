package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/raphi011/twig/internal/errs"
)

// Fallback is a line-based Picker for pipes and dumb terminals. Options are
// listed with 1-based numbers. An empty answer, "q" or end of input cancels.
type Fallback struct {
	in  *bufio.Reader
	out io.Writer
}

// NewFallback returns a Fallback reading answers from in and writing
// prompts to out.
func NewFallback(in io.Reader, out io.Writer) *Fallback {
	return &Fallback{in: bufio.NewReader(in), out: out}
}

func (f *Fallback) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errs.ErrCancelled
	}
	line, err := f.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errs.ErrCancelled
	}
	return strings.TrimSpace(line), nil
}

func (f *Fallback) list(title string, options []string) {
	fmt.Fprintln(f.out, title)
	for i, opt := range options {
		fmt.Fprintf(f.out, "  %d) %s\n", i+1, opt)
	}
}

// Select implements Picker.
func (f *Fallback) Select(ctx context.Context, title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, errs.ErrCancelled
	}
	f.list(title, options)
	for {
		fmt.Fprintf(f.out, "Select [1-%d]: ", len(options))
		line, err := f.readLine(ctx)
		if err != nil {
			return -1, err
		}
		if line == "" || line == "q" {
			return -1, errs.ErrCancelled
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(f.out, "invalid choice %q\n", line)
	}
}

// MultiSelect implements Picker. Answers are numbers and ranges separated
// by commas or spaces ("1,3 5-7"), or "all".
func (f *Fallback) MultiSelect(ctx context.Context, title string, options []string) ([]int, error) {
	if len(options) == 0 {
		return nil, errs.ErrCancelled
	}
	f.list(title, options)
	for {
		fmt.Fprintf(f.out, "Select (e.g. 1,3 or 2-4 or all): ")
		line, err := f.readLine(ctx)
		if err != nil {
			return nil, err
		}
		if line == "" || line == "q" {
			return nil, errs.ErrCancelled
		}
		picked, err := ParseSelection(line, len(options))
		if err == nil {
			return picked, nil
		}
		fmt.Fprintln(f.out, err)
	}
}

// Text implements Picker. An empty answer is returned as "".
func (f *Fallback) Text(ctx context.Context, title, placeholder string) (string, error) {
	if placeholder != "" {
		fmt.Fprintf(f.out, "%s (%s): ", title, placeholder)
	} else {
		fmt.Fprintf(f.out, "%s: ", title)
	}
	return f.readLine(ctx)
}

// Confirm implements Picker. Only y or yes confirm.
func (f *Fallback) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(f.out, "%s [y/N] ", question)
	line, err := f.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ParseSelection parses a numbered multi-selection against n options and
// returns 0-based indices, sorted and deduplicated.
func ParseSelection(input string, n int) ([]int, error) {
	if strings.EqualFold(strings.TrimSpace(input), "all") {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	var picked []int
	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' })
	for _, field := range fields {
		lo, hi, isRange := strings.Cut(field, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid choice %q", field)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("invalid range %q", field)
			}
		}
		if start < 1 || end > n || start > end {
			return nil, fmt.Errorf("choice %q out of range 1-%d", field, n)
		}
		for i := start; i <= end; i++ {
			picked = append(picked, i-1)
		}
	}
	if len(picked) == 0 {
		return nil, fmt.Errorf("nothing selected")
	}
	slices.Sort(picked)
	return slices.Compact(picked), nil
}
