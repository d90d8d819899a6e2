package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// errAborted is returned when the user aborts a prompt (Ctrl+C).
var errAborted = errors.New("aborted")

// minPasswordLength matches the server's registration rule.
const minPasswordLength = 8

func isAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrEOF)
}

func wrapPromptError(err error) error {
	if err == nil {
		return nil
	}

	if isAborted(err) {
		return errAborted
	}

	return err
}

// askInput returns value when the flag was given, otherwise prompts for it.
func askInput(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}

	p := promptui.Prompt{Label: label, Validate: requireNonEmpty}

	result, err := p.Run()

	return strings.TrimSpace(result), wrapPromptError(err)
}

// askPassword is askInput with masked entry and an optional length rule.
func askPassword(label, value string, minLength int) (string, error) {
	if value != "" {
		return value, nil
	}

	p := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) < minLength {
				return fmt.Errorf("password must be at least %d characters", minLength)
			}

			return nil
		},
	}

	result, err := p.Run()

	return result, wrapPromptError(err)
}

func requireNonEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("must not be empty")
	}

	return nil
}
