package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wireroom-server/internal/proto"
)

// wireOutbound keeps the payload raw so each event can be decoded by name.
type wireOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// run plays a full two-player mission against a live server.
func run() error {
	addr := flag.String("addr", "ws://localhost:5000/ws", "WebSocket address")
	answers := flag.String("answers", "2940,8,amazonie,60", "comma-separated answers for stages 1..N")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	host, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer host.Close(websocket.StatusNormalClosure, "bye")
	guest, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer guest.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, host, proto.InboundTypeCreateRoom, proto.CreateRoomData{DisplayName: "smoke-host"}); err != nil {
		return err
	}
	var room proto.Room
	if err := await(ctx, host, proto.EventNameRoomCreated, &room); err != nil {
		return err
	}
	fmt.Printf("created room %s\n", room.Code)

	if err := send(ctx, guest, proto.InboundTypeJoinRoom, proto.JoinRoomData{Code: room.Code, DisplayName: "smoke-guest"}); err != nil {
		return err
	}
	if err := await(ctx, guest, proto.EventNameRoomJoined, &room); err != nil {
		return err
	}
	fmt.Printf("joined with %d members\n", len(room.Members))

	if err := send(ctx, host, proto.InboundTypeStartGame, proto.RoomRef{Code: room.Code}); err != nil {
		return err
	}
	if err := await(ctx, guest, proto.EventNameGameStarted, nil); err != nil {
		return err
	}

	for i, answer := range strings.Split(*answers, ",") {
		raw, _ := json.Marshal(strings.TrimSpace(answer))
		data := proto.SubmitAnswerData{Code: room.Code, StageIndex: i + 1, Answer: raw}
		if err := send(ctx, guest, proto.InboundTypeSubmitAnswer, data); err != nil {
			return err
		}
		var solved proto.EventPuzzleSolved
		if err := await(ctx, host, proto.EventNamePuzzleSolved, &solved); err != nil {
			return err
		}
		fmt.Printf("stage %d solved by %s\n", solved.StageIndex, solved.SolvedBy)
	}

	var done proto.EventGameCompleted
	if err := await(ctx, host, proto.EventNameGameCompleted, &done); err != nil {
		return err
	}
	fmt.Printf("mission %s in %ds (budget %ds)\n", done.Outcome, done.FinalTime, done.MaxTime)
	return nil
}

func dial(ctx context.Context, addr string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

// await reads until the named event, failing on any error envelope.
func await(ctx context.Context, conn *websocket.Conn, event string, v any) error {
	for {
		var out wireOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if out.Type == proto.OutboundTypeError && out.Error != nil {
			return fmt.Errorf("server error %s: %s", out.Error.Code, out.Error.Msg)
		}
		switch out.Event {
		case event:
			if v == nil {
				return nil
			}
			return json.Unmarshal(out.Data, v)
		case proto.EventNameJoinError, proto.EventNameWrongAnswer:
			return fmt.Errorf("%s: %s", out.Event, out.Data)
		}
	}
}
