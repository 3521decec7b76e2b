package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	input  io.Reader = os.Stdin
	reader *bufio.Reader
)

// SetInput replaces stdin as the prompt source. Passwords are then read
// as plain lines.
func SetInput(r io.Reader) {
	input = r
	reader = bufio.NewReader(r)
}

func lineReader() *bufio.Reader {
	if reader == nil {
		reader = bufio.NewReader(input)
	}
	return reader
}

func readLine() (string, error) {
	line, err := lineReader().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Print(label)
	return readLine()
}

// PromptPassword prompts for a password without echoing it when stdin is a terminal
func PromptPassword(label string) (string, error) {
	fmt.Print(label)

	if f, ok := input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return readLine()
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	fmt.Print(label + " (y/n) ")
	response, err := readLine()
	if err != nil {
		return false, err
	}
	response = strings.ToLower(response)
	return response == "y" || response == "yes", nil
}

// PromptPhrase asks the user to type phrase exactly
func PromptPhrase(label, phrase string) (bool, error) {
	fmt.Printf("%s\nType %q to continue: ", label, phrase)
	response, err := readLine()
	if err != nil {
		return false, err
	}
	return response == phrase, nil
}
