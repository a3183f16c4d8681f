package routes

import (
	"github.com/gofiber/fiber/v2"

	"walletgw/controllers/callback/slots/gslot"
	"walletgw/controllers/callback/sportsbook/sbo"
	"walletgw/controllers/user"
	"walletgw/middlewares"
)

type Deps struct {
	APIKey string

	SboCompanyKey    string
	GslotAgentCode   string
	GslotAgentSecret string

	User  *user.Handler
	Sbo   *sbo.Handler
	Gslot *gslot.Handler
}

func Setup(app *fiber.App, deps Deps) {
	userroutes := app.Group("/user", middlewares.UserAuth(deps.APIKey))
	userroutes.Post("/register", deps.User.Register)
	userroutes.Post("/balance", deps.User.CheckBalance)
	userroutes.Post("/session", deps.User.CreateSession)
	userroutes.Delete("/session/:sid", deps.User.DeleteSession)
	userroutes.Post("/transfer", deps.User.Transfer)

	sboroutes := app.Group("/seamless/sportsbook/sbo", middlewares.SboAuth(deps.SboCompanyKey))
	sboroutes.Post("/GetBalance", deps.Sbo.GetBalance)
	sboroutes.Post("/Deduct", deps.Sbo.Deduct)
	sboroutes.Post("/Settle", deps.Sbo.Settle)
	sboroutes.Post("/Cancel", deps.Sbo.Cancel)
	sboroutes.Post("/Rollback", deps.Sbo.Rollback)
	sboroutes.Post("/Bonus", deps.Sbo.Bonus)

	gslotroutes := app.Group("/seamless/slot/gslot", middlewares.GslotAgentAuth(deps.GslotAgentCode, deps.GslotAgentSecret))
	gslotroutes.Post("/user_balance", deps.Gslot.CheckUserBalance)
	gslotroutes.Post("/game_callback", deps.Gslot.ProcessSlotTransaction)
}
