package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var (
	smokeChat   int64
	smokeSender int64
	smokeReader int64
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run an end-to-end check against a live server",
	Long: `Open two realtime connections to one chat and verify:
  - a send is broadcast exactly once to every connection
  - a retry with the same client_msg_id is answered privately with the stored message
  - a read receipt fans out only on the unread to read transition
  - the HTTP send replays the same message and history contains it
  - a stranger is refused with close code 1008

Examples:
  STORE_DRIVER=memory go run ./cmd/rest &
  messengerctl smoke --chat 1 --sender 1 --reader 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &smoke{}
		s.run()
		if s.failed {
			return errors.New("smoke run failed")
		}
		color.Green("\nSmoke run passed")
		return nil
	},
}

func init() {
	smokeCmd.Flags().Int64Var(&smokeChat, "chat", 1, "chat shared by --sender and --reader")
	smokeCmd.Flags().Int64Var(&smokeSender, "sender", 1, "user id that sends")
	smokeCmd.Flags().Int64Var(&smokeReader, "reader", 2, "user id that marks read")
	rootCmd.AddCommand(smokeCmd)
}

type smoke struct {
	failed bool
}

func (s *smoke) check(step string, ok bool, format string, args ...interface{}) {
	if ok {
		color.Green("PASS %s", step)
		return
	}
	s.failed = true
	color.Red("FAIL %s: "+format, append([]interface{}{step}, args...)...)
}

// peer reads frames in the background so "nothing arrived" checks can time
// out without poisoning the connection.
type peer struct {
	conn   *websocket.Conn
	frames chan map[string]interface{}
	err    chan error
}

func dial(userID int64) (*peer, error) {
	tok, err := mintToken(userID, allScopes, 10*time.Minute)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(smokeChat, tok), nil)
	if err != nil {
		return nil, err
	}

	p := &peer{conn: conn, frames: make(chan map[string]interface{}, 16), err: make(chan error, 1)}
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				p.err <- err
				return
			}
			var frame map[string]interface{}
			if json.Unmarshal(data, &frame) == nil {
				p.frames <- frame
			}
		}
	}()
	return p, nil
}

func (p *peer) send(v interface{}) error {
	return p.conn.WriteJSON(v)
}

func (p *peer) Close() error {
	return p.conn.Close()
}

// next returns the next frame, or nil when nothing arrives within wait.
func (p *peer) next(wait time.Duration) (map[string]interface{}, error) {
	select {
	case frame := <-p.frames:
		return frame, nil
	case err := <-p.err:
		return nil, err
	case <-time.After(wait):
		return nil, nil
	}
}

func frameID(frame map[string]interface{}, key string) int64 {
	v, _ := frame[key].(float64)
	return int64(v)
}

func (s *smoke) run() {
	color.Cyan("=== 1. Connect sender and reader ===")
	a, err := dial(smokeSender)
	if err != nil {
		s.check("connect sender", false, "%v", err)
		return
	}
	defer a.Close()
	b, err := dial(smokeReader)
	if err != nil {
		s.check("connect reader", false, "%v", err)
		return
	}
	defer b.Close()
	s.check("connect", true, "")

	color.Cyan("\n=== 2. Send over the socket ===")
	clientID := uuid.NewString()
	frame := map[string]interface{}{"type": "message", "text": "smoke " + clientID[:8], "client_msg_id": clientID}
	if err := a.send(frame); err != nil {
		s.check("send", false, "%v", err)
		return
	}
	gotA, errA := a.next(3 * time.Second)
	gotB, errB := b.next(3 * time.Second)
	s.check("sender sees broadcast", errA == nil && gotA != nil && gotA["type"] == "message", "%v %v", gotA, errA)
	s.check("reader sees broadcast", errB == nil && gotB != nil && gotB["type"] == "message", "%v %v", gotB, errB)
	if gotA == nil {
		return
	}
	msgID := frameID(gotA, "id")

	color.Cyan("\n=== 3. Retry with the same client_msg_id ===")
	_ = a.send(frame)
	ack, err := a.next(3 * time.Second)
	s.check("sender gets private replay", err == nil && ack != nil && frameID(ack, "id") == msgID, "%v %v", ack, err)
	extra, _ := b.next(500 * time.Millisecond)
	s.check("reader sees no second broadcast", extra == nil, "unexpected %v", extra)

	color.Cyan("\n=== 4. Read receipt ===")
	_ = b.send(map[string]interface{}{"type": "read", "message_id": msgID})
	receiptA, _ := a.next(3 * time.Second)
	receiptB, _ := b.next(3 * time.Second)
	s.check("sender sees receipt", receiptA != nil && receiptA["type"] == "read" && frameID(receiptA, "message_id") == msgID, "%v", receiptA)
	s.check("reader sees receipt", receiptB != nil && receiptB["type"] == "read", "%v", receiptB)

	_ = b.send(map[string]interface{}{"type": "read", "message_id": msgID})
	again, _ := a.next(500 * time.Millisecond)
	s.check("second read is silent", again == nil, "unexpected %v", again)

	color.Cyan("\n=== 5. HTTP replay and history ===")
	tok, _ := mintToken(smokeSender, allScopes, time.Minute)
	status, env, err := call(http.MethodPost, fmt.Sprintf("/chats/%d/messages", smokeChat), tok,
		map[string]interface{}{"text": "ignored on replay", "client_msg_id": clientID})
	var replay message
	if err == nil && env != nil {
		_ = json.Unmarshal(env.Data, &replay)
	}
	s.check("http replay", err == nil && status == http.StatusOK && replay.Id == msgID, "status=%d id=%d err=%v", status, replay.Id, err)

	status, env, err = call(http.MethodGet, fmt.Sprintf("/history/%d?limit=500", smokeChat), tok, nil)
	var history []message
	if err == nil && env != nil {
		_ = json.Unmarshal(env.Data, &history)
	}
	found := false
	for _, m := range history {
		if m.Id == msgID {
			found = m.Read
		}
	}
	s.check("history holds the read message", status == http.StatusOK && found, "status=%d err=%v", status, err)

	color.Cyan("\n=== 6. Stranger is refused ===")
	stranger, err := dial(smokeSender + smokeReader + 1_000_000)
	if err != nil {
		s.check("stranger dial", false, "%v", err)
		return
	}
	defer stranger.Close()
	_, err = stranger.next(3 * time.Second)
	var closeErr *websocket.CloseError
	s.check("stranger closed with 1008", errors.As(err, &closeErr) && closeErr.Code == websocket.ClosePolicyViolation, "%v", err)
}
