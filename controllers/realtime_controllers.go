package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-storefront/middlewares"
	"github.com/yeremiapane/restaurant-storefront/realtime"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type RealtimeController struct {
	Hub    *realtime.Hub
	Admins middlewares.AdminChecker
	// Tables is the subscription used when the client names none; it is
	// narrowed to what the client may see.
	Tables []string
}

func NewRealtimeController(hub *realtime.Hub, admins middlewares.AdminChecker, tables []string) *RealtimeController {
	return &RealtimeController{Hub: hub, Admins: admins, Tables: tables}
}

// Subscribe upgrades to a websocket that receives db_change events. The
// "tables" query parameter is a comma separated list; asking for a table
// the caller may not see is refused before the upgrade.
func (rc *RealtimeController) Subscribe(c *gin.Context) {
	sub := realtime.Subscription{UserID: middlewares.UserID(c)}
	if sub.UserID != 0 {
		isAdmin, err := rc.Admins.IsAdmin(c.Request.Context(), sub.UserID)
		if err != nil {
			respondServiceError(c, "open the change stream", err)
			return
		}
		sub.Admin = isAdmin
	}

	if raw := strings.TrimSpace(c.Query("tables")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if !sub.Allowed(t) {
				utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
				return
			}
			sub.Tables = append(sub.Tables, t)
		}
	} else {
		for _, t := range rc.Tables {
			if sub.Allowed(t) {
				sub.Tables = append(sub.Tables, t)
			}
		}
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	rc.Hub.Register(ws, sub)
	utils.InfoLogger.Printf("Change stream opened for user %d on %v", sub.UserID, sub.Tables)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	rc.Hub.Unregister(ws)
}
