package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wireroom-server/internal/proto"
)

type wireOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:5000/ws", "WebSocket address")
	name := flag.String("name", "cli-player", "display name")
	room := flag.String("room", "", "room code to join; empty creates a room")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	s := &session{conn: conn, name: *name, code: strings.ToUpper(*room)}
	if s.room() == "" {
		err = s.send(ctx, proto.InboundTypeCreateRoom, proto.CreateRoomData{DisplayName: *name})
	} else {
		err = s.send(ctx, proto.InboundTypeJoinRoom, proto.JoinRoomData{Code: s.room(), DisplayName: *name})
	}
	if err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *name)
	fmt.Println("Commands: /start, /answer <stage> <text>, /clue <text>, /leave. Anything else is chat.")

	go func() {
		defer cancel()
		s.readLoop(ctx)
	}()

	s.inputLoop(ctx)
	return nil
}

type session struct {
	conn *websocket.Conn
	name string

	mu   sync.Mutex
	code string
}

func (s *session) room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

func (s *session) setRoom(code string) {
	s.mu.Lock()
	s.code = code
	s.mu.Unlock()
}

func (s *session) send(ctx context.Context, typ string, data any) error {
	var payload json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		payload = b
	}
	return wsjson.Write(ctx, s.conn, proto.Inbound{Type: typ, Data: payload})
}

func (s *session) readLoop(ctx context.Context) {
	for {
		var out wireOutbound
		if err := wsjson.Read(ctx, s.conn, &out); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		if out.Type == proto.OutboundTypeError && out.Error != nil {
			fmt.Printf("! %s: %s\n", out.Error.Code, out.Error.Msg)
			continue
		}
		s.print(out)
	}
}

func (s *session) print(out wireOutbound) {
	switch out.Event {
	case proto.EventNameRoomCreated, proto.EventNameRoomJoined:
		var room proto.Room
		if err := json.Unmarshal(out.Data, &room); err != nil {
			log.Printf("unmarshal room: %v", err)
			return
		}
		s.setRoom(room.Code)
		fmt.Printf("[room %s] %d member(s), phase %s\n", room.Code, len(room.Members), room.Phase)
	case proto.EventNamePlayerJoined, proto.EventNamePlayerLeft:
		var evt proto.EventMembership
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			log.Printf("unmarshal membership: %v", err)
			return
		}
		if evt.NewMemberName != "" {
			fmt.Printf("[room %s] %s joined\n", s.room(), evt.NewMemberName)
		} else {
			fmt.Printf("[room %s] %s left\n", s.room(), evt.LeftMemberName)
		}
	case proto.EventNameNewMessage:
		var evt proto.EventMessage
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			log.Printf("unmarshal message: %v", err)
			return
		}
		fmt.Printf("[%s] %s: %s\n", s.room(), evt.DisplayName, evt.Text)
	case proto.EventNameClueShared:
		var evt proto.EventClue
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			log.Printf("unmarshal clue: %v", err)
			return
		}
		fmt.Printf("[clue] %s: %s\n", evt.From, evt.Text)
	default:
		fmt.Printf("event=%s data=%s\n", out.Event, out.Data)
	}
}

func (s *session) inputLoop(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := s.handleLine(ctx, strings.TrimSpace(line)); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func (s *session) handleLine(ctx context.Context, line string) error {
	switch {
	case line == "":
		return nil
	case line == "/start":
		return s.send(ctx, proto.InboundTypeStartGame, proto.RoomRef{Code: s.room()})
	case line == "/leave":
		return s.send(ctx, proto.InboundTypeLeaveRoom, nil)
	case strings.HasPrefix(line, "/clue "):
		return s.send(ctx, proto.InboundTypeShareClue, proto.ShareClueData{Code: s.room(), Text: strings.TrimPrefix(line, "/clue ")})
	case strings.HasPrefix(line, "/answer "):
		fields := strings.SplitN(strings.TrimPrefix(line, "/answer "), " ", 2)
		stage, err := strconv.Atoi(fields[0])
		if err != nil || len(fields) < 2 {
			fmt.Println("usage: /answer <stage> <text>")
			return nil
		}
		answer, _ := json.Marshal(fields[1])
		return s.send(ctx, proto.InboundTypeSubmitAnswer, proto.SubmitAnswerData{Code: s.room(), StageIndex: stage, Answer: answer})
	default:
		return s.send(ctx, proto.InboundTypeSendMessage, proto.SendMessageData{Code: s.room(), DisplayName: s.name, Text: line})
	}
}
