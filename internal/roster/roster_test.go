package roster

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type testConn struct {
	id     string
	closed bool
}

func (c *testConn) ID() string { return c.id }
func (c *testConn) Open() bool { return !c.closed }

type RosterTestSuite struct {
	suite.Suite
	roster *Roster[*testConn]
	conns  []*testConn
}

func (s *RosterTestSuite) SetupTest() {
	r, err := New[*testConn](DefaultCapacity)
	s.Require().NoError(err)
	s.roster = r
	s.conns = nil
}

func TestRosterTestSuite(t *testing.T) {
	suite.Run(t, new(RosterTestSuite))
}

func (s *RosterTestSuite) admit(n int) {
	for i := 0; i < n; i++ {
		c := &testConn{id: fmt.Sprintf("conn-%d", len(s.conns)+1)}
		s.conns = append(s.conns, c)
		_, err := s.roster.Admit(fmt.Sprintf("p-%d", len(s.conns)), c)
		s.Require().NoError(err)
	}
}

func (s *RosterTestSuite) TestNew_InvalidCapacity() {
	_, err := New[*testConn](0)
	s.ErrorIs(err, ErrInvalidCapacity)
}

func (s *RosterTestSuite) TestAdmit_AllocatesLowestNumbers() {
	s.admit(3)
	s.Equal([]int{1, 2, 3}, s.roster.Numbers())

	e, ok := s.roster.ByConn("conn-2")
	s.Require().True(ok)
	s.Equal(2, e.Participant.Number)
	s.Equal("p-2", e.Participant.ID)
}

func (s *RosterTestSuite) TestAdmit_ReusesFreedNumber() {
	s.admit(5)
	_, ok := s.roster.Remove("p-2")
	s.Require().True(ok)

	c := &testConn{id: "late"}
	e, err := s.roster.Admit("late-p", c)
	s.Require().NoError(err)
	s.Equal(2, e.Participant.Number)
}

func (s *RosterTestSuite) TestAdmit_RejectsTwentyFirst() {
	s.admit(DefaultCapacity)

	_, err := s.roster.Admit("p-21", &testConn{id: "conn-21"})
	s.ErrorIs(err, ErrRoomFull)
	s.Equal(DefaultCapacity, s.roster.Count())

	numbers := s.roster.Numbers()
	s.Len(numbers, DefaultCapacity)
	s.Equal(1, numbers[0])
	s.Equal(DefaultCapacity, numbers[len(numbers)-1])
}

func (s *RosterTestSuite) TestAdmit_DuplicateConnection() {
	s.admit(1)
	_, err := s.roster.Admit("p-other", s.conns[0])
	s.ErrorIs(err, ErrAlreadyAdmitted)
}

func (s *RosterTestSuite) TestSweep_RemovesClosedConnections() {
	s.admit(4)
	s.conns[1].closed = true
	s.conns[3].closed = true

	dead := s.roster.Sweep()

	s.Require().Len(dead, 2)
	s.Equal(2, dead[0].Participant.Number)
	s.Equal(4, dead[1].Participant.Number)
	s.Equal([]int{1, 3}, s.roster.Numbers())
	s.Len(s.roster.Conns(), 2)
}

func (s *RosterTestSuite) TestSweep_FreesSlotsForFullRoom() {
	s.admit(DefaultCapacity)
	s.conns[6].closed = true

	s.roster.Sweep()
	e, err := s.roster.Admit("fresh", &testConn{id: "fresh-conn"})
	s.Require().NoError(err)
	s.Equal(7, e.Participant.Number)
}

func TestRoster_NumbersStayUniqueUnderChurn(t *testing.T) {
	r, err := New[*testConn](DefaultCapacity)
	require.NoError(t, err)

	var mu sync.Mutex
	var wg sync.WaitGroup
	var unexpected []error
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			id := fmt.Sprintf("p-%d", i)
			if _, err := r.Admit(id, &testConn{id: fmt.Sprintf("c-%d", i)}); err != nil && err != ErrRoomFull {
				unexpected = append(unexpected, err)
			}
			if i%3 == 0 {
				r.Remove(id)
			}
		}(i)
	}
	wg.Wait()
	require.Empty(t, unexpected)

	numbers := r.Numbers()
	require.LessOrEqual(t, len(numbers), DefaultCapacity)
	seen := make(map[int]bool)
	for _, n := range numbers {
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, DefaultCapacity)
		require.False(t, seen[n])
		seen[n] = true
	}
}
