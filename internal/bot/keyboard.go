package bot

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"kinobot/internal/models"
	"kinobot/internal/wizard"
)

const (
	callbackCheckSub      = "check_sub"
	callbackRemoveChannel = "chrm:"
)

// dataBtn builds an inline button whose callback data reaches OnCallback verbatim.
func dataBtn(text, data string) tele.Btn {
	return tele.Btn{Text: text, Data: data}
}

// adminPanelKeyboard lays the panel actions out two per row.
func adminPanelKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	var (
		rows []tele.Row
		row  []tele.Btn
	)
	for _, a := range wizard.PanelActions() {
		row = append(row, menu.Text(a.Label()))
		if len(row) == 2 {
			rows = append(rows, menu.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, menu.Row(row...))
	}

	menu.Reply(rows...)
	return menu
}

// joinKeyboard has one link per channel and a button that re-runs the check.
func (b *Bot) joinKeyboard(ctx context.Context, channels []models.Channel) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(channels)+1)
	for i, ch := range channels {
		rows = append(rows, menu.Row(menu.URL(fmt.Sprintf("Kanal %d", i+1), b.svc.Channels.JoinURL(ctx, ch))))
	}
	rows = append(rows, menu.Row(dataBtn("✅ Tekshirish", callbackCheckSub)))
	menu.Inline(rows...)
	return menu
}

func channelRemoveKeyboard(channels []models.Channel) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(channels)+1)
	for _, ch := range channels {
		rows = append(rows, menu.Row(dataBtn("🗑 "+ch.ID, callbackRemoveChannel+ch.ID)))
	}
	rows = append(rows, menu.Row(dataBtn(wizard.ActionCancel.Label(), wizard.ActionCancel.Callback())))
	menu.Inline(rows...)
	return menu
}

func actionsKeyboard(actions ...wizard.Action) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	btns := make([]tele.Btn, 0, len(actions))
	for _, a := range actions {
		btns = append(btns, dataBtn(a.Label(), a.Callback()))
	}
	menu.Inline(menu.Row(btns...))
	return menu
}
