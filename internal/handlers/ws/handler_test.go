package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/broadcast"
	uuidMocks "github.com/KirkDiggler/sketchroom/internal/common/uuid/mocks"
	"github.com/KirkDiggler/sketchroom/internal/models"
	"github.com/KirkDiggler/sketchroom/internal/protocol"
	"github.com/KirkDiggler/sketchroom/internal/services/session"
	sessionMocks "github.com/KirkDiggler/sketchroom/internal/services/session/mocks"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type HandlerTestSuite struct {
	suite.Suite
	mockCtrl    *gomock.Controller
	mockSession *sessionMocks.MockService
	mockUUID    *uuidMocks.MockUUID
	handler     *Handler
	server      *httptest.Server
	left        chan struct{}
}

func (s *HandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockSession = sessionMocks.NewMockService(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.mockUUID.EXPECT().NewUUID().Return("conn-1").AnyTimes()
	s.left = make(chan struct{})

	handler, err := New(&Config{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		SessionService: s.mockSession,
		UUIDGenerator:  s.mockUUID,
	})
	s.Require().NoError(err)
	s.handler = handler
	s.server = httptest.NewServer(handler.Routes())
}

func (s *HandlerTestSuite) TearDownTest() {
	s.server.Close()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) expectLeave() {
	s.mockSession.EXPECT().
		Leave(gomock.Any(), &session.LeaveInput{ConnID: "conn-1"}).
		DoAndReturn(func(context.Context, *session.LeaveInput) (*session.LeaveOutput, error) {
			close(s.left)
			return &session.LeaveOutput{}, nil
		})
}

func (s *HandlerTestSuite) dial(room string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws?room=" + room
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	return client
}

func (s *HandlerTestSuite) hangUp(client *websocket.Conn) {
	_ = client.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = client.Close()
	select {
	case <-s.left:
	case <-time.After(2 * time.Second):
		s.Fail("connection never left its room")
	}
}

func (s *HandlerTestSuite) readEvent(client *websocket.Conn) map[string]any {
	s.Require().NoError(client.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, data, err := client.ReadMessage()
	s.Require().NoError(err)
	var event map[string]any
	s.Require().NoError(json.Unmarshal(data, &event))
	return event
}

func (s *HandlerTestSuite) TestNew_Validation() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{SessionService: s.mockSession, UUIDGenerator: s.mockUUID})
	s.ErrorIs(err, ErrNilLogger)

	_, err = New(&Config{Logger: slog.Default(), UUIDGenerator: s.mockUUID})
	s.ErrorIs(err, ErrNilSessionService)

	_, err = New(&Config{Logger: slog.Default(), SessionService: s.mockSession})
	s.ErrorIs(err, ErrNilUUIDGenerator)
}

func (s *HandlerTestSuite) TestHealth() {
	resp, err := http.Get(s.server.URL + "/up")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerTestSuite) TestRooms() {
	started := time.Date(2025, 4, 19, 20, 0, 0, 0, time.UTC)
	s.mockSession.EXPECT().
		ListRooms(gomock.Any(), &session.ListRoomsInput{}).
		Return(&session.ListRoomsOutput{Rooms: []*models.RoomSummary{{
			ID:           "lobby",
			Phase:        models.Phase{Kind: models.PhaseOpen},
			Participants: 3,
			StartedAt:    started,
			UpdatedAt:    started,
		}}}, nil)

	resp, err := http.Get(s.server.URL + "/rooms")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var rooms []models.RoomSummary
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&rooms))
	s.Require().Len(rooms, 1)
	s.Equal("lobby", rooms[0].ID)
	s.Equal(3, rooms[0].Participants)
}

func (s *HandlerTestSuite) TestRooms_Error() {
	s.mockSession.EXPECT().ListRooms(gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)

	resp, err := http.Get(s.server.URL + "/rooms")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusInternalServerError, resp.StatusCode)
}

func (s *HandlerTestSuite) TestEvictions_EmptyList() {
	s.mockSession.EXPECT().
		ListEvictions(gomock.Any(), &session.ListEvictionsInput{RoomID: "lobby"}).
		Return(&session.ListEvictionsOutput{}, nil)

	resp, err := http.Get(s.server.URL + "/rooms/lobby/evictions")
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal("[]\n", string(body))
}

func (s *HandlerTestSuite) TestJoin_UsesQueryRoomAndDeliversEvents() {
	s.mockSession.EXPECT().
		Join(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *session.JoinInput) (*session.JoinOutput, error) {
			s.Equal("lobby", input.RoomID)
			s.True(input.AgeVerified)
			data, err := protocol.Encode(protocol.Joined{Number: 1, Participants: []int{1}, Phase: models.PhaseOpen})
			s.NoError(err)
			s.NoError(input.Conn.Send(data))
			return &session.JoinOutput{RoomID: "lobby", Number: 1}, nil
		})
	s.expectLeave()

	client := s.dial("lobby")
	s.Require().NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","ageVerified":true}`)))

	event := s.readEvent(client)
	s.Equal("joined", event["type"])
	s.Equal(float64(1), event["number"])

	s.hangUp(client)
}

func (s *HandlerTestSuite) TestMalformedCommandKeepsConnectionOpen() {
	drawn := make(chan *session.DrawInput, 1)
	s.mockSession.EXPECT().
		Draw(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *session.DrawInput) (*session.DrawOutput, error) {
			drawn <- input
			return &session.DrawOutput{Applied: true}, nil
		})
	s.expectLeave()

	client := s.dial("lobby")
	s.Require().NoError(client.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	s.Require().NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport"}`)))
	s.Require().NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"erase","x":1,"y":1,"radius":0}`)))
	s.Require().NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"draw","pathId":"p","x":3,"y":4,"color":"#fff","width":2}`)))

	select {
	case input := <-drawn:
		s.Equal("conn-1", input.ConnID)
		s.Equal("p", input.PathID)
		s.Equal(models.Point{X: 3, Y: 4}, input.Point)
	case <-time.After(2 * time.Second):
		s.Fail("draw never dispatched")
	}

	s.hangUp(client)
}

func (s *HandlerTestSuite) TestCommandsDispatchToService() {
	voted := make(chan *session.CastVoteInput, 1)
	invited := make(chan *session.CreateSectionInput, 1)
	s.mockSession.EXPECT().
		CastVote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *session.CastVoteInput) (*session.CastVoteOutput, error) {
			voted <- input
			return &session.CastVoteOutput{}, nil
		})
	s.mockSession.EXPECT().
		CreateSection(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *session.CreateSectionInput) (*session.CreateSectionOutput, error) {
			invited <- input
			return nil, session.ErrNotJoined
		})
	s.expectLeave()

	client := s.dial("lobby")
	s.Require().NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"vote_remove","targetId":7}`)))
	s.Require().NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"create_section","inviteeIds":[2,3]}`)))

	select {
	case input := <-voted:
		s.Equal(7, input.TargetNumber)
	case <-time.After(2 * time.Second):
		s.Fail("vote never dispatched")
	}
	select {
	case input := <-invited:
		s.Equal([]int{2, 3}, input.InviteeNumbers)
	case <-time.After(2 * time.Second):
		s.Fail("section never dispatched")
	}

	s.hangUp(client)
}

func (s *HandlerTestSuite) TestServerCloseFlushesThenSendsReason() {
	s.mockSession.EXPECT().
		Join(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *session.JoinInput) (*session.JoinOutput, error) {
			data, err := protocol.Encode(protocol.Error{Reason: "You must confirm you are of age to join."})
			s.NoError(err)
			s.NoError(input.Conn.Send(data))
			s.NoError(input.Conn.Close("age not verified"))
			s.False(input.Conn.Open())
			s.ErrorIs(input.Conn.Send(data), broadcast.ErrConnClosed)
			return nil, session.ErrAgeNotVerified
		})
	s.expectLeave()

	client := s.dial("")
	s.Require().NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","ageVerified":false}`)))

	event := s.readEvent(client)
	s.Equal("error", event["type"])

	_, _, err := client.ReadMessage()
	var closeErr *websocket.CloseError
	s.Require().ErrorAs(err, &closeErr)
	s.Equal(websocket.CloseNormalClosure, closeErr.Code)
	s.Equal("age not verified", closeErr.Text)

	_ = client.Close()
	select {
	case <-s.left:
	case <-time.After(2 * time.Second):
		s.Fail("connection never left its room")
	}
}
