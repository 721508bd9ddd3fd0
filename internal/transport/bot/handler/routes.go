package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"smartdeals/internal/transport/bot/middleware"
	"smartdeals/internal/transport/bot/view"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))
	adminGroup.HandleMessage(h.OnLogin, th.CommandEqual("login"))
	adminGroup.HandleMessage(h.OnLogout, th.CommandEqual("logout"))
	adminGroup.HandleMessage(h.OnRefresh, th.CommandEqual("refresh"))
	adminGroup.HandleMessage(h.OnScan, th.CommandEqual("scan"))
	adminGroup.HandleMessage(h.OnDeals, th.CommandEqual("deals"))
	adminGroup.HandleMessage(h.OnRuns, th.CommandEqual("runs"))
	adminGroup.HandleMessage(h.OnConfig, th.CommandEqual("config"))
	adminGroup.HandleMessage(h.OnSet, th.CommandEqual("set"))
	adminGroup.HandleMessage(h.OnSave, th.CommandEqual("save"))
	adminGroup.HandleMessage(h.OnApprove, th.CommandEqual("approve"))
	adminGroup.HandleMessage(h.OnReject, th.CommandEqual("reject"))
	adminGroup.HandleMessage(h.OnJournal, th.CommandEqual("journal"))

	cbGroup := bh.Group(th.AnyCallbackQuery())
	cbGroup.Use(middleware.AdminOnly(adminID))

	cbGroup.HandleCallbackQuery(h.OnDealCallback, th.CallbackDataPrefix(view.CallbackApprove))
	cbGroup.HandleCallbackQuery(h.OnDealCallback, th.CallbackDataPrefix(view.CallbackReject))
}
