package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

var errUsage = errors.New("usage")

// IntArg splits Args into a leading integer and the remaining text, as used
// by ":review 5 great drummer" and ":react 12 🔥".
func (c Command) IntArg() (int, string, error) {
	head, rest, _ := strings.Cut(c.Args, " ")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, "", fmt.Errorf("%w: :%s <number> <text>", errUsage, c.Name)
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return 0, "", fmt.Errorf("%w: :%s <number> <text>", errUsage, c.Name)
	}
	return n, rest, nil
}

// Emoji returns the single reaction glyph of ":react <item> <emoji>".
func (c Command) Emoji() (int, string, error) {
	id, emoji, err := c.IntArg()
	if err != nil {
		return 0, "", err
	}
	if strings.ContainsRune(emoji, ' ') || utf8.RuneCountInString(emoji) > 8 {
		return 0, "", fmt.Errorf("%w: :react <item> <emoji>", errUsage)
	}
	return id, emoji, nil
}

// WordArg splits Args into its first word and the remaining text.
func (c Command) WordArg() (string, string, error) {
	head, rest, _ := strings.Cut(c.Args, " ")
	rest = strings.TrimSpace(rest)
	if head == "" || rest == "" {
		return "", "", fmt.Errorf("%w: :%s <word> <text>", errUsage, c.Name)
	}
	return head, rest, nil
}
