package main

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/AlekSi/pointer"

	"dialogbot/core/telegram/dialog"
	tghelpers "dialogbot/core/telegram/helpers"
	"dialogbot/core/telegram/keyboard"
	"dialogbot/core/telegram/state"
)

var surveySteps = []string{
	"first_name",
	"age",
	"favorite_color",
	"another_color",
	"is_everything_right",
}

var colorChoices = []dialog.Choice{
	{Label: "Red", Value: "red"},
	{Label: "Blue", Value: "blue"},
	{Label: "Green", Value: "green"},
	{Label: "Yellow", Value: "yellow"},
}

// buildSurvey assembles the questionnaire started by /survey.
func buildSurvey(strict bool, store state.Store) (*dialog.Dialog, error) {
	var selectOpts []dialog.SelectOption
	if strict {
		selectOpts = append(selectOpts, dialog.Restrict())
	}

	return dialog.New("survey").
		Step("first_name", &dialog.TextInput{
			Prompt:      dialog.Static("What is your name?"),
			Constraints: &dialog.Constraints{MinLength: pointer.ToInt(3)},
		}).
		Step("age", &dialog.TextInput{
			Prompt: dialog.Dynamic(func(data map[string]any) string {
				return fmt.Sprintf("Nice to meet you, %v! How old are you?", data["first_name"])
			}),
			Kind:        dialog.KindInt,
			Constraints: &dialog.Constraints{Ge: pointer.ToFloat64(0)},
		}).
		Step("favorite_color", &dialog.ReplySelect{
			Prompt:  dialog.Static("What is your favorite color?"),
			Choices: []string{"Red", "Blue", "Green", "Yellow"},
			Columns: 2,
		}).
		Step("another_color", dialog.NewInlineSelect(
			dialog.Static("And which one would you pick if that ran out?"),
			colorChoices, 2, selectOpts...,
		)).
		Step("is_everything_right", dialog.NewBoolPrompt(
			dialog.Dynamic(func(data map[string]any) string {
				return surveySummary(data) + "\n\nIs everything right?"
			}),
		)).
		OnFinish(finishSurvey).
		Build(store)
}

func finishSurvey(c tele.Context, answers map[string]any) error {
	if ok, _ := answers["is_everything_right"].(bool); !ok {
		return tghelpers.SendText(c,
			"No problem, let's start over. Send /survey whenever you are ready.",
			&tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()},
		)
	}
	return tghelpers.SendText(c,
		"Thank you!\n\n"+surveySummary(answers),
		&tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()},
	)
}

func surveySummary(answers map[string]any) string {
	var b strings.Builder
	b.WriteString("Here is what you told me:\n")
	for _, step := range surveySteps {
		v, ok := answers[step]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %v\n", strings.ReplaceAll(step, "_", " "), v)
	}
	return strings.TrimRight(b.String(), "\n")
}
