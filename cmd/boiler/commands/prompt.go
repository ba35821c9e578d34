package commands

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user interrupted a prompt.
var ErrAborted = errors.New("boiler: prompt aborted")

// Prompter asks the user for a template value.
type Prompter interface {
	Ask(key, def string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Ask(key, def string) (string, error) {
	var out string
	prompt := &survey.Input{
		Message: key,
		Default: def,
		Help:    fmt.Sprintf("value bound to .%s", key),
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return out, nil
}

// ask fills each key through p, offering the current value as default.
func ask(p Prompter, keys []string, data map[string]any) error {
	for _, key := range keys {
		def := ""
		if v, ok := data[key]; ok && v != nil {
			def = fmt.Sprint(v)
		}
		answer, err := p.Ask(key, def)
		if err != nil {
			return fmt.Errorf("prompt %s: %w", key, err)
		}
		data[key] = answer
	}
	return nil
}
