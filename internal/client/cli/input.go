package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal access, replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

var errEmptyInput = errors.New("empty input")

// readLine returns the next line without its line terminator. A final line
// without a newline is returned as is; io.EOF is reported only when nothing
// was read.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// GetSimpleText prompts on w and reads one trimmed line.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := readLine(reader)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password without echo. Outside a terminal the next line
// of reader is used. Surrounding spaces are kept, since they are part of the
// password; an empty answer is rejected.
//
// The caller wipes the returned slice.
func GetPassword(reader *bufio.Reader, prompt string, w io.Writer) ([]byte, error) {
	var (
		pw  []byte
		err error
	)
	if fd := stdinFd(); isTerminal(fd) {
		if _, err := fmt.Fprint(w, prompt+": "); err != nil {
			return nil, err
		}
		pw, err = readPassword(fd)
		fmt.Fprintln(w)
	} else {
		if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
			return nil, err
		}
		var line string
		line, err = readLine(reader)
		pw = []byte(line)
	}
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, errEmptyInput
	}
	return pw, nil
}
