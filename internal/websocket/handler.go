package websocket

import (
	"net/http"
	"strconv"

	ws "github.com/coder/websocket"
)

// Handler upgrades GET /ws to a change-feed subscription. ?quest=<id>
// limits the feed to one quest. Only same-origin pages may subscribe.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var quest int64
		if s := r.URL.Query().Get("quest"); s != "" {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "invalid quest", http.StatusBadRequest)
				return
			}
			quest = id
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			hub.logger.Warn("accept subscriber", "error", err)
			return
		}
		defer conn.CloseNow()

		NewClient(hub, conn, quest).Run(r.Context())
	}
}
