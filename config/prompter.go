package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoAnswer is returned when the input ends before a question is answered.
var ErrNoAnswer = errors.New("input ended before a valid answer")

// A Filter checks an answer. A non-nil error is shown to the user and the
// question is asked again.
type Filter func(answer string) error

// Prompter asks for a configuration one question at a time, repeating each
// question until the answer passes its filter.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a Prompter that reads answers from in and writes
// questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Ask prints question until a line passing filter is read. The returned
// answer has surrounding space removed.
func (p *Prompter) Ask(question string, filter Filter) (string, error) {
	for {
		fmt.Fprintln(p.out, question)

		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return "", err
			}

			return "", ErrNoAnswer
		}

		answer := strings.TrimSpace(p.in.Text())

		err := filter(answer)
		if err == nil {
			return answer, nil
		}

		fmt.Fprintf(p.out, "%s\n\n", err)
	}
}

// Collect asks every question needed to build a Config.
func (p *Prompter) Collect() (Config, error) {
	var cfg Config

	cacheSizeExp, err := p.askUint(
		"The cache size is a power of two. For example, 3 means 2^3 = 8 bytes.\n" +
			"Enter the cache size exponent:")
	if err != nil {
		return Config{}, err
	}

	lineSizeExp, err := p.askUint(
		"The line size is a power of two. For example, 3 means 2^3 = 8 bytes.\n" +
			"Enter the line size exponent:")
	if err != nil {
		return Config{}, err
	}

	cfg.CacheSizeExp = cacheSizeExp
	cfg.LineSizeExp = lineSizeExp

	cfg.Policy, err = p.Ask(
		"Replacement policy? Enter L for LRU, anything else for FIFO:",
		func(string) error { return nil })
	if err != nil {
		return Config{}, err
	}

	cfg.Associativity, err = p.Ask(
		"Is the cache fully associative, direct mapped, or set associative?\n"+
			"Enter FA, DM, or SA:",
		isOneOf(AssocFullyAssociative, AssocDirectMapped, AssocSetAssociative))
	if err != nil {
		return Config{}, err
	}

	cfg.Associativity = strings.ToLower(cfg.Associativity)

	if cfg.Associativity == AssocSetAssociative {
		ways, err := p.Ask(
			"Enter 1 for 2 lines per set, 2 for 4, 3 for 8, or 4 for 16:",
			isOneOf("1", "2", "3", "4"))
		if err != nil {
			return Config{}, err
		}

		n, _ := strconv.ParseUint(ways, 10, 32)
		cfg.WaysExp = uint(n)
	}

	return cfg, nil
}

func (p *Prompter) askUint(question string) (uint, error) {
	answer, err := p.Ask(question, func(s string) error {
		_, err := strconv.ParseUint(s, 10, 32)
		return err
	})
	if err != nil {
		return 0, err
	}

	n, _ := strconv.ParseUint(answer, 10, 32)

	return uint(n), nil
}

func isOneOf(options ...string) Filter {
	return func(answer string) error {
		for _, o := range options {
			if strings.EqualFold(answer, o) {
				return nil
			}
		}

		return fmt.Errorf("%s is not %s", answer, strings.Join(options, ", "))
	}
}
