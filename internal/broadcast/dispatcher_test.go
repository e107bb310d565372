package broadcast_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/KirkDiggler/sketchroom/internal/broadcast"
	"github.com/KirkDiggler/sketchroom/internal/broadcast/mocks"
	"github.com/KirkDiggler/sketchroom/internal/protocol"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DispatcherTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	dispatcher *broadcast.Dispatcher
}

func (s *DispatcherTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	var err error
	s.dispatcher, err = broadcast.New(&broadcast.Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	s.Require().NoError(err)
}

func (s *DispatcherTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DispatcherTestSuite) conn(id string, open bool) *mocks.MockConn {
	c := mocks.NewMockConn(s.ctrl)
	c.EXPECT().ID().Return(id).AnyTimes()
	c.EXPECT().Open().Return(open).AnyTimes()
	return c
}

func (s *DispatcherTestSuite) TestNew_Validation() {
	_, err := broadcast.New(nil)
	s.ErrorIs(err, broadcast.ErrNilConfig)

	_, err = broadcast.New(&broadcast.Config{})
	s.ErrorIs(err, broadcast.ErrNilLogger)
}

func (s *DispatcherTestSuite) TestBroadcast_SkipsClosedAndExcluded() {
	want := []byte(`{"type":"participant_left","number":3}`)

	a := s.conn("a", true)
	a.EXPECT().Send(want).Return(nil)
	b := s.conn("b", true)
	closed := s.conn("c", false)

	n := s.dispatcher.Broadcast([]broadcast.Conn{a, b, closed}, protocol.ParticipantLeft{Number: 3}, "b")
	s.Equal(1, n)
}

func (s *DispatcherTestSuite) TestBroadcast_FailureDoesNotAbort() {
	a := s.conn("a", true)
	a.EXPECT().Send(gomock.Any()).Return(errors.New("buffer full"))
	b := s.conn("b", true)
	b.EXPECT().Send(gomock.Any()).Return(nil)

	n := s.dispatcher.Broadcast([]broadcast.Conn{a, b}, protocol.VotingEnded{Round: 1}, "")
	s.Equal(1, n)
}

func (s *DispatcherTestSuite) TestPublish_EchoPolicy() {
	tests := []struct {
		name       string
		event      protocol.Event
		originHear bool
	}{
		{name: "participant joined", event: protocol.ParticipantJoined{Number: 2}, originHear: false},
		{name: "drawing", event: protocol.Drawing{StrokeID: "s"}, originHear: false},
		{name: "text added", event: protocol.TextAdded{}, originHear: true},
		{name: "erased", event: protocol.Erased{}, originHear: true},
		{name: "vote update", event: protocol.VoteUpdate{TargetID: 7, Votes: 1}, originHear: true},
		{name: "participant removed", event: protocol.ParticipantRemoved{Number: 7}, originHear: true},
		{name: "section created", event: protocol.SectionCreated{}, originHear: true},
		{name: "voting started", event: protocol.VotingStarted{Round: 1}, originHear: true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			origin := s.conn("origin", true)
			other := s.conn("other", true)
			other.EXPECT().Send(gomock.Any()).Return(nil)
			if tt.originHear {
				origin.EXPECT().Send(gomock.Any()).Return(nil)
			}

			s.dispatcher.Publish([]broadcast.Conn{origin, other}, "origin", tt.event)
		})
	}
}

func (s *DispatcherTestSuite) TestSend() {
	c := s.conn("a", true)
	c.EXPECT().Send([]byte(`{"type":"error","reason":"room is full"}`)).Return(nil)
	s.NoError(s.dispatcher.Send(c, protocol.Error{Reason: "room is full"}))

	s.ErrorIs(s.dispatcher.Send(s.conn("b", false), protocol.Error{}), broadcast.ErrConnClosed)
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}
