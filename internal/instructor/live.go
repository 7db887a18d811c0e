package instructor

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/learnflow/learnflow/internal/mastery"
)

const writeTimeout = 10 * time.Second

// Message is one websocket frame of the live feed. The first frame is a
// snapshot of current alerts; each later frame carries one new alert.
type Message struct {
	Type   string                           `json:"type"`
	Alerts []mastery.StruggleClassification `json:"alerts,omitempty"`
	Alert  *mastery.StruggleClassification  `json:"alert,omitempty"`
}

// LiveHandler upgrades to a websocket and streams the feed until the client
// goes away or the feed stops. Authorisation is the caller's job.
func LiveHandler(feed *Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			slog.Warn("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := conn.CloseRead(r.Context())
		sub := feed.Subscribe()
		slog.Info("live feed subscriber joined", "subscribers", feed.Subscribers())
		defer func() {
			feed.Unsubscribe(sub)
			slog.Info("live feed subscriber left", "subscribers", feed.Subscribers(), "dropped", sub.Dropped())
		}()

		if err := write(ctx, conn, Message{Type: "snapshot", Alerts: feed.Latest()}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case c, ok := <-sub.C:
				if !ok {
					conn.Close(websocket.StatusGoingAway, "feed stopped")
					return
				}
				if err := write(ctx, conn, Message{Type: "alert", Alert: &c}); err != nil {
					slog.Debug("live feed write failed", "error", err)
					return
				}
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
