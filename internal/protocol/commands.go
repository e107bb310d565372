// Package protocol defines the messages exchanged with canvas clients.
//
// Every message is a JSON object discriminated by its "type" field. Client
// commands form a closed set: Command can only be implemented inside this
// package, so a type switch over the variants below covers every command.
package protocol

import (
	"github.com/KirkDiggler/sketchroom/internal/models"
)

// CommandType is the discriminator of a client command
type CommandType string

const (
	CommandJoin                    CommandType = "join"
	CommandDraw                    CommandType = "draw"
	CommandDrawUpdate              CommandType = "draw_update"
	CommandText                    CommandType = "text"
	CommandErase                   CommandType = "erase"
	CommandVoteRemove              CommandType = "vote_remove"
	CommandCreateSection           CommandType = "create_section"
	CommandAcceptSectionInvitation CommandType = "accept_section_invitation"
)

// Command is a decoded client command
type Command interface {
	Type() CommandType
	sealed()
}

// Join asks for admission to a room. An empty RoomID means the default room.
type Join struct {
	RoomID      string `json:"roomId" validate:"omitempty,max=64,printascii"`
	AgeVerified bool   `json:"ageVerified"`
}

// Draw starts a stroke, or continues the caller's stroke with the same PathID
type Draw struct {
	PathID string  `json:"pathId" validate:"max=128"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color" validate:"max=32"`
	Width  float64 `json:"width" validate:"gte=0,lte=500"`
}

// DrawUpdate appends points to the caller's current stroke
type DrawUpdate struct {
	PathID string         `json:"pathId" validate:"max=128"`
	Points []models.Point `json:"points" validate:"required,min=1,max=1024"`
}

// Text places a label
type Text struct {
	Content string  `json:"content" validate:"required,max=500"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Color   string  `json:"color" validate:"max=32"`
	Size    float64 `json:"size" validate:"gte=0,lte=500"`
}

// Erase removes everything within Radius of (X, Y)
type Erase struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius" validate:"gt=0"`
}

// VoteRemove nominates a participant, by public number, for removal
type VoteRemove struct {
	TargetID int `json:"targetId" validate:"min=1"`
}

// CreateSection invites participants, by public number, into a new section
type CreateSection struct {
	InviteeIDs []int `json:"inviteeIds" validate:"required,min=1,dive,min=1"`
}

// AcceptSectionInvitation consents to a pending section
type AcceptSectionInvitation struct {
	SectionID string `json:"sectionId" validate:"required,max=64"`
}

func (*Join) Type() CommandType                    { return CommandJoin }
func (*Draw) Type() CommandType                    { return CommandDraw }
func (*DrawUpdate) Type() CommandType              { return CommandDrawUpdate }
func (*Text) Type() CommandType                    { return CommandText }
func (*Erase) Type() CommandType                   { return CommandErase }
func (*VoteRemove) Type() CommandType              { return CommandVoteRemove }
func (*CreateSection) Type() CommandType           { return CommandCreateSection }
func (*AcceptSectionInvitation) Type() CommandType { return CommandAcceptSectionInvitation }

func (*Join) sealed()                    {}
func (*Draw) sealed()                    {}
func (*DrawUpdate) sealed()              {}
func (*Text) sealed()                    {}
func (*Erase) sealed()                   {}
func (*VoteRemove) sealed()              {}
func (*CreateSection) sealed()           {}
func (*AcceptSectionInvitation) sealed() {}
